// Package analytics собирает отчёты об оттоке поверх справочника абонементов:
// загружает снимок данных (redis, затем PostgreSQL), применяет фильтры сегментов
// и передаёт записи в движок расчёта.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/magabrotheeeer/studio-churn/internal/churn"
	"github.com/magabrotheeeer/studio-churn/internal/config"
	"github.com/magabrotheeeer/studio-churn/internal/lib/month"
	"github.com/magabrotheeeer/studio-churn/internal/lib/sl"
	"github.com/magabrotheeeer/studio-churn/internal/metrics"
	"github.com/magabrotheeeer/studio-churn/internal/models"
	"github.com/magabrotheeeer/studio-churn/internal/segment"
)

// SnapshotKey ключ снимка справочника в кеше.
const SnapshotKey = "memberships:snapshot"

const (
	defaultPageLimit = 50
	maxPageLimit     = 1000
)

// ErrInvalidRecord возвращается при импорте записи с некорректными полями.
var ErrInvalidRecord = errors.New("invalid membership record")

// Repository определяет методы хранилища абонементов.
type Repository interface {
	ListMemberships(ctx context.Context) ([]models.Membership, error)
	GetMembership(ctx context.Context, uniqueID string) (*models.Membership, error)
	UpsertMemberships(ctx context.Context, records []models.Membership) (int, error)
	UpdateAnnotations(ctx context.Context, uniqueID, comments, notes string, tags []string) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Invalidate(ctx context.Context, key string) error
}

// Service строит отчёты об оттоке. Безопасен для параллельного использования.
type Service struct {
	repo   Repository
	cache  Cache
	log    *slog.Logger
	ttl    time.Duration
	window int
	now    func() time.Time
	group  singleflight.Group
	// gen растёт при каждой записи в справочник.
	gen atomic.Uint64
}

// New создаёт Service. Нулевые значения настроек заменяются значениями по умолчанию.
func New(repo Repository, cache Cache, log *slog.Logger, cfg config.Analytics) *Service {
	window := cfg.WindowSize
	if window < 1 || window > month.MaxWindowSize {
		window = month.DefaultWindowSize
	}
	ttl := cfg.SnapshotTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		log:    log,
		ttl:    ttl,
		window: window,
		now:    time.Now,
	}
}

// WindowSize возвращает размер окна по умолчанию.
func (s *Service) WindowSize() int {
	return s.window
}

// Snapshot возвращает весь справочник абонементов. Сначала читается кеш,
// при промахе данные загружаются из хранилища; параллельные промахи
// объединяются в одну загрузку.
func (s *Service) Snapshot(ctx context.Context) ([]models.Membership, error) {
	const op = "analytics.Snapshot"

	var records []models.Membership
	found, err := s.cache.Get(ctx, SnapshotKey, &records)
	if err != nil {
		s.log.Warn("failed to read snapshot from cache", sl.Op(op), sl.Err(err))
	}
	if found {
		metrics.SnapshotLoads.WithLabelValues("cache").Inc()
		return records, nil
	}

	v, err, _ := s.group.Do(SnapshotKey, func() (any, error) {
		return s.load(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return v.([]models.Membership), nil
}

func (s *Service) load(ctx context.Context) ([]models.Membership, error) {
	const op = "analytics.load"

	gen := s.gen.Load()
	records, err := s.repo.ListMemberships(ctx)
	if err != nil {
		return nil, err
	}
	metrics.SnapshotLoads.WithLabelValues("storage").Inc()
	metrics.SnapshotRecords.Set(float64(len(records)))
	s.inspect(records)

	// справочник изменился во время загрузки: снимок устарел, в кеш его не кладём
	if s.gen.Load() != gen {
		s.log.Debug("snapshot outdated during load, not cached", sl.Op(op))
		return records, nil
	}
	if err := s.cache.Set(ctx, SnapshotKey, records, s.ttl); err != nil {
		s.log.Warn("failed to cache snapshot", sl.Op(op), sl.Err(err))
	}
	// запись могла пройти между проверкой и Set
	if s.gen.Load() != gen {
		if err := s.cache.Invalidate(ctx, SnapshotKey); err != nil {
			s.log.Warn("failed to drop outdated snapshot", sl.Op(op), sl.Err(err))
		}
	}
	s.log.Info("snapshot loaded from storage", sl.Op(op), slog.Int("records", len(records)))
	return records, nil
}

// inspect пишет в лог количество записей с противоречивыми данными.
func (s *Service) inspect(records []models.Membership) {
	issues := churn.Inspect(records, s.now())
	if len(issues) == 0 {
		return
	}
	counts := make(map[churn.InconsistencyKind]int)
	for _, issue := range issues {
		counts[issue.Kind]++
	}
	attrs := make([]any, 0, len(counts)+1)
	attrs = append(attrs, sl.Op("analytics.inspect"))
	for kind, n := range counts {
		metrics.Inconsistencies.WithLabelValues(string(kind)).Add(float64(n))
		attrs = append(attrs, slog.Int(string(kind), n))
	}
	s.log.Warn("membership data inconsistencies", attrs...)
}

func (s *Service) filtered(ctx context.Context, now time.Time, preds []segment.Predicate) ([]models.Membership, error) {
	records, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return segment.Apply(records, now, preds...)
}

// MonthlySeries считает помесячный отток за window месяцев по сегменту preds.
// window == 0 означает размер окна из настроек.
func (s *Service) MonthlySeries(ctx context.Context, now time.Time, window int, preds []segment.Predicate) (*models.ChurnReport, error) {
	const op = "analytics.MonthlySeries"
	if window == 0 {
		window = s.window
	}

	records, err := s.filtered(ctx, now, preds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer metrics.ObserveEngine("series", time.Now())
	series, err := churn.MonthlySeries(records, now, window)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &models.ChurnReport{
		Window: window,
		Series: series,
		Delta:  churn.Delta(series),
	}, nil
}

// StudioBreakdown считает отток текущего месяца по студиям.
func (s *Service) StudioBreakdown(ctx context.Context, now time.Time, preds []segment.Predicate) ([]models.StudioChurnMetric, error) {
	const op = "analytics.StudioBreakdown"

	records, err := s.filtered(ctx, now, preds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer metrics.ObserveEngine("studios", time.Now())
	studios, err := churn.StudioBreakdown(records, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return studios, nil
}

// Overview собирает сводку главной страницы: счётчики, текущий месяц,
// изменение оттока и истекающие в этом месяце абонементы.
func (s *Service) Overview(ctx context.Context, now time.Time, preds []segment.Predicate) (*models.Overview, error) {
	const op = "analytics.Overview"

	records, err := s.filtered(ctx, now, preds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer metrics.ObserveEngine("overview", time.Now())
	// Для изменения оттока достаточно двух последних месяцев.
	series, err := churn.MonthlySeries(records, now, 2)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	overview := &models.Overview{
		TotalMembers: len(records),
		Current:      &series[len(series)-1],
		Delta:        churn.Delta(series),
		Expiring:     churn.Expiring(records, now),
	}
	for _, m := range records {
		switch m.Status {
		case models.StatusActive:
			overview.ActiveMembers++
		case models.StatusExpired:
			overview.ExpiredMembers++
		}
		if m.SessionsLeft > 0 {
			overview.MembersWithSession++
		}
	}
	overview.ExpiringThisMonth = len(overview.Expiring.Expired) + len(overview.Expiring.Expiring)
	return overview, nil
}

// Members возвращает страницу участников сегмента в исходном порядке.
func (s *Service) Members(ctx context.Context, now time.Time, preds []segment.Predicate, limit, offset int) (*models.MemberPage, error) {
	const op = "analytics.Members"

	records, err := s.filtered(ctx, now, preds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if limit <= 0 {
		limit = defaultPageLimit
	}
	limit = min(limit, maxPageLimit)
	offset = max(offset, 0)

	page := &models.MemberPage{
		Total:  len(records),
		Limit:  limit,
		Offset: offset,
		Items:  []models.Membership{},
	}
	if offset < len(records) {
		page.Items = records[offset:min(offset+limit, len(records))]
	}
	return page, nil
}

// Facets возвращает счётчики быстрых фильтров и список студий.
func (s *Service) Facets(ctx context.Context, now time.Time) (*models.Facets, error) {
	const op = "analytics.Facets"

	records, err := s.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	defer metrics.ObserveEngine("facets", time.Now())
	facets := segment.Facets(records, now)
	return &facets, nil
}

// ExpiringNotices возвращает уведомления по активным абонементам,
// которые заканчиваются в ближайшие days дней.
func (s *Service) ExpiringNotices(ctx context.Context, now time.Time, days int) ([]models.ExpiringNotice, error) {
	const op = "analytics.ExpiringNotices"

	records, err := s.filtered(ctx, now, []segment.Predicate{
		segment.StatusIn{Statuses: []models.MembershipStatus{models.StatusActive}},
		segment.ExpiringWithin{Days: days},
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	notices := make([]models.ExpiringNotice, 0, len(records))
	for _, m := range records {
		notices = append(notices, models.ExpiringNotice{
			UniqueID:       m.UniqueID,
			MemberID:       m.MemberID,
			Email:          m.Email,
			FirstName:      m.FirstName,
			LastName:       m.LastName,
			MembershipName: m.MembershipName,
			Location:       m.Location,
			EndDate:        m.EndDate,
			SessionsLeft:   m.SessionsLeft,
		})
	}
	return notices, nil
}

// Member возвращает карточку участника напрямую из хранилища, минуя снимок.
func (s *Service) Member(ctx context.Context, uniqueID string) (*models.Membership, error) {
	const op = "analytics.Member"

	m, err := s.repo.GetMembership(ctx, uniqueID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// Annotate сохраняет комментарии, заметки и теги участника и сбрасывает снимок в кеше.
func (s *Service) Annotate(ctx context.Context, uniqueID string, req models.DummyAnnotations) error {
	const op = "analytics.Annotate"

	if err := s.repo.UpdateAnnotations(ctx, uniqueID, req.Comments, req.Notes, req.Tags); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	return nil
}

// Import проверяет и сохраняет пачку абонементов. Пачка отклоняется целиком,
// если хотя бы одна запись некорректна или UniqueID повторяется.
func (s *Service) Import(ctx context.Context, req []models.DummyMembership) (int, error) {
	const op = "analytics.Import"

	records := make([]models.Membership, 0, len(req))
	for i, r := range req {
		m, err := toMembership(r)
		if err != nil {
			return 0, fmt.Errorf("%s: record %d (%s): %w", op, i, r.UniqueID, err)
		}
		records = append(records, m)
	}
	if err := churn.CheckUnique(records); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	n, err := s.repo.UpsertMemberships(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	s.invalidate(ctx, op)
	s.log.Info("memberships imported", sl.Op(op), slog.Int("records", n))
	return n, nil
}

func (s *Service) invalidate(ctx context.Context, op string) {
	s.gen.Add(1)
	if err := s.cache.Invalidate(ctx, SnapshotKey); err != nil {
		s.log.Warn("failed to invalidate snapshot", sl.Op(op), sl.Err(err))
	}
	s.group.Forget(SnapshotKey)
}

func toMembership(r models.DummyMembership) (models.Membership, error) {
	status := models.MembershipStatus(r.Status)
	if !status.Valid() {
		return models.Membership{}, fmt.Errorf("%w: status %q", ErrInvalidRecord, r.Status)
	}
	if r.SessionsLeft < 0 {
		return models.Membership{}, fmt.Errorf("%w: negative sessions_left", ErrInvalidRecord)
	}
	order, err := month.ParseDate(r.OrderDate)
	if err != nil {
		return models.Membership{}, fmt.Errorf("%w: order_date: %w", ErrInvalidRecord, err)
	}
	end, err := month.ParseDate(r.EndDate)
	if err != nil {
		return models.Membership{}, fmt.Errorf("%w: end_date: %w", ErrInvalidRecord, err)
	}
	start := order
	if r.StartDate != "" {
		if start, err = month.ParseDate(r.StartDate); err != nil {
			return models.Membership{}, fmt.Errorf("%w: start_date: %w", ErrInvalidRecord, err)
		}
	}
	return models.Membership{
		UniqueID:       r.UniqueID,
		MemberID:       r.MemberID,
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		MembershipName: r.MembershipName,
		Location:       r.Location,
		OrderDate:      order,
		StartDate:      start,
		EndDate:        end,
		Status:         status,
		SessionsLeft:   r.SessionsLeft,
		Paid:           r.Paid,
	}, nil
}
