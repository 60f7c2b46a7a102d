// Package notifier обрабатывает уведомления об истекающих абонементах:
// открывает тикеты-напоминания для персонала и пишет участникам.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/metrics"
	"github.com/magabrotheeeer/studio-churn/internal/models"
	"github.com/magabrotheeeer/studio-churn/internal/rabbitmq"
)

// FollowUps создаёт тикет-напоминание по уведомлению.
type FollowUps interface {
	OpenFollowUp(ctx context.Context, n models.ExpiringNotice) (bool, error)
}

// Reminders отправляет участнику письмо о продлении.
type Reminders interface {
	SendRenewalReminder(n models.ExpiringNotice) error
}

type NotifierService struct {
	tickets   FollowUps
	reminders Reminders
	log       *slog.Logger
}

// NewNotifierService создает новый экземпляр NotifierService.
// reminders может быть nil, тогда письма не отправляются.
func NewNotifierService(tickets FollowUps, reminders Reminders, log *slog.Logger) *NotifierService {
	return &NotifierService{
		tickets:   tickets,
		reminders: reminders,
		log:       log,
	}
}

// Handler возвращает обработчик сообщений очереди, привязанный к ctx.
func (s *NotifierService) Handler(ctx context.Context) func([]byte) error {
	return func(body []byte) error {
		return s.HandleExpiring(ctx, body)
	}
}

// HandleExpiring разбирает уведомление и открывает тикет. Некорректное
// сообщение отбрасывается, ошибка хранилища возвращает сообщение в очередь.
func (s *NotifierService) HandleExpiring(ctx context.Context, body []byte) error {
	const op = "notifier.HandleExpiring"

	var notice models.ExpiringNotice
	if err := json.Unmarshal(body, &notice); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return fmt.Errorf("%s: %w: %w", op, rabbitmq.ErrDrop, err)
	}
	if notice.UniqueID == "" || notice.EndDate.IsZero() {
		s.log.Error("notice without unique_id or end_date", sl.Op(op))
		return fmt.Errorf("%s: %w: incomplete notice", op, rabbitmq.ErrDrop)
	}

	created, err := s.tickets.OpenFollowUp(ctx, notice)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !created {
		s.log.Debug("follow-up already exists", sl.Op(op), slog.String("unique_id", notice.UniqueID))
		return nil
	}

	// письмо уходит один раз, вместе с новым тикетом
	if s.reminders != nil && notice.Email != "" {
		if err := s.reminders.SendRenewalReminder(notice); err != nil {
			metrics.RemindersSent.WithLabelValues("failed").Inc()
			s.log.Error("failed to send renewal reminder", sl.Op(op),
				slog.String("unique_id", notice.UniqueID), sl.Err(err))
			return nil
		}
		metrics.RemindersSent.WithLabelValues("sent").Inc()
	}
	return nil
}
