// Package tickets реализует создание и чтение тикетов поддержки, в том числе
// тикетов-напоминаний об окончании абонемента.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/metrics"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// FollowUpAuthor автор тикетов, которые создаются по уведомлениям планировщика.
const FollowUpAuthor = "scheduler"

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// ErrInvalidID возвращается для идентификатора тикета, который не является UUID.
var ErrInvalidID = errors.New("invalid ticket id")

// Repository определяет методы хранилища тикетов.
type Repository interface {
	CreateTicket(ctx context.Context, t models.Ticket) (bool, error)
	GetTicket(ctx context.Context, id string) (*models.Ticket, error)
	ListTickets(ctx context.Context, limit, offset int) ([]models.Ticket, error)
}

// Service создает и читает тикеты.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func New(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// Create сохраняет тикет от имени author. Поля формы сохраняются как есть.
func (s *Service) Create(ctx context.Context, author string, req models.DummyTicket) (*models.Ticket, error) {
	const op = "tickets.Create"

	t := models.Ticket{
		ID:        uuid.NewString(),
		Subject:   req.Subject,
		Status:    models.TicketOpen,
		Author:    author,
		MemberID:  req.MemberID,
		Fields:    req.Fields,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.repo.CreateTicket(ctx, t); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	metrics.TicketsCreated.WithLabelValues("api").Inc()
	s.log.Info("ticket created", sl.Op(op), slog.String("id", t.ID), slog.String("author", author))
	return &t, nil
}

// Read возвращает тикет по ID.
func (s *Service) Read(ctx context.Context, id string) (*models.Ticket, error) {
	const op = "tickets.Read"
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w: %q", op, ErrInvalidID, id)
	}
	t, err := s.repo.GetTicket(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// List возвращает тикеты от новых к старым.
func (s *Service) List(ctx context.Context, limit, offset int) ([]models.Ticket, error) {
	const op = "tickets.List"
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)

	list, err := s.repo.ListTickets(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// FollowUpKey ключ дедупликации тикета-напоминания: один тикет на абонемент и дату окончания.
func FollowUpKey(n models.ExpiringNotice) string {
	return fmt.Sprintf("expiring:%s:%s", n.UniqueID, n.EndDate.Format(time.DateOnly))
}

// OpenFollowUp создает тикет-напоминание о продлении абонемента.
// Повторное уведомление по тому же абонементу тикет не создаёт, created будет false.
func (s *Service) OpenFollowUp(ctx context.Context, n models.ExpiringNotice) (created bool, err error) {
	const op = "tickets.OpenFollowUp"

	t := models.Ticket{
		ID:       uuid.NewString(),
		Subject:  fmt.Sprintf("Membership ending %s: %s %s", n.EndDate.Format(time.DateOnly), n.FirstName, n.LastName),
		Status:   models.TicketOpen,
		Author:   FollowUpAuthor,
		MemberID: n.MemberID,
		Fields: map[string]any{
			"unique_id":       n.UniqueID,
			"email":           n.Email,
			"membership_name": n.MembershipName,
			"location":        n.Location,
			"end_date":        n.EndDate.Format(time.DateOnly),
			"sessions_left":   n.SessionsLeft,
		},
		DedupeKey: FollowUpKey(n),
		CreatedAt: s.now().UTC(),
	}
	created, err = s.repo.CreateTicket(ctx, t)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if created {
		metrics.TicketsCreated.WithLabelValues("notifier").Inc()
		s.log.Info("follow-up ticket created", sl.Op(op), slog.String("member_id", n.MemberID), slog.String("id", t.ID))
	}
	return created, nil
}
