// Package scheduler периодически ищет абонементы, которые скоро закончатся,
// и публикует по каждому уведомление в брокер сообщений.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/metrics"
	"github.com/magabrotheeeer/studio-churn/internal/models"
	"github.com/magabrotheeeer/studio-churn/internal/rabbitmq"
)

// NoticeSource возвращает уведомления об абонементах, заканчивающихся в ближайшие days дней.
type NoticeSource interface {
	ExpiringNotices(ctx context.Context, now time.Time, days int) ([]models.ExpiringNotice, error)
}

// Publisher публикует сообщение с ключом маршрутизации.
type Publisher interface {
	Publish(routingKey string, message any) error
}

type SchedulerService struct {
	source    NoticeSource
	publisher Publisher
	log       *slog.Logger
	interval  time.Duration
	days      int
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService.
func NewSchedulerService(source NoticeSource, publisher Publisher, log *slog.Logger, interval time.Duration, days int) *SchedulerService {
	return &SchedulerService{
		source:    source,
		publisher: publisher,
		log:       log,
		interval:  interval,
		days:      days,
		now:       time.Now,
	}
}

// Run выполняет проверку сразу и затем каждые interval, пока не отменён ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// runOnce возвращает число опубликованных уведомлений.
func (s *SchedulerService) runOnce(ctx context.Context) int {
	const op = "scheduler.runOnce"
	log := s.log.With(sl.Op(op))

	notices, err := s.source.ExpiringNotices(ctx, s.now(), s.days)
	if err != nil {
		log.Error("failed to find expiring memberships", sl.Err(err))
		return 0
	}
	if len(notices) == 0 {
		log.Info("no expiring memberships found")
		return 0
	}
	log.Info("found expiring memberships", slog.Int("count", len(notices)))

	published := 0
	for _, n := range notices {
		if err := s.publisher.Publish(rabbitmq.ExpiringRoutingKey, n); err != nil {
			log.Error("failed to publish message", sl.Err(err), slog.String("unique_id", n.UniqueID))
			continue
		}
		published++
	}
	metrics.NoticesPublished.Add(float64(published))
	return published
}
