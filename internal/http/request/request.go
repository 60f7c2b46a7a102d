// Package request разбирает общие параметры запросов аналитики и
// сопоставляет ошибки сервисов с HTTP-статусами.
package request

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/magabrotheeeer/studio-churn/internal/churn"
	"github.com/magabrotheeeer/studio-churn/internal/lib/month"
	"github.com/magabrotheeeer/studio-churn/internal/models"
	"github.com/magabrotheeeer/studio-churn/internal/segment"
	"github.com/magabrotheeeer/studio-churn/internal/services/analytics"
	"github.com/magabrotheeeer/studio-churn/internal/services/auth"
	"github.com/magabrotheeeer/studio-churn/internal/services/tickets"
	"github.com/magabrotheeeer/studio-churn/internal/storage/repository"
)

// ErrInvalidQuery возвращается для нечисловых значений числовых параметров.
var ErrInvalidQuery = errors.New("invalid query parameter")

// Now возвращает момент отчёта из параметра now, а без него текущее время.
// Часы читаются один раз на запрос. Результат всегда в UTC, как и даты справочника.
func Now(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("now")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	t, err := month.ParseDate(raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// Window возвращает размер окна из параметра window. 0 означает размер по умолчанию.
func Window(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("window")
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("window: %w", ErrInvalidQuery)
	}
	if n < 1 || n > month.MaxWindowSize {
		return 0, fmt.Errorf("window: %w", month.ErrInvalidWindow)
	}
	return n, nil
}

// Filter собирает фильтр сегмента из query-параметров.
// location и status можно передавать несколько раз.
func Filter(r *http.Request) (models.DummySegmentFilter, error) {
	q := r.URL.Query()
	f := models.DummySegmentFilter{
		Preset:    q.Get("preset"),
		Query:     q.Get("q"),
		Locations: q["location"],
		Statuses:  q["status"],
	}

	var err error
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		return f, fmt.Errorf("limit: %w", err)
	}
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		return f, fmt.Errorf("offset: %w", err)
	}
	if f.ExpiringWithin, err = intParam(q.Get("expiring_within_days")); err != nil {
		return f, fmt.Errorf("expiring_within_days: %w", err)
	}
	return f, nil
}

// Page читает limit и offset для списков. Отсутствующие значения равны нулю.
func Page(r *http.Request) (limit, offset int, err error) {
	q := r.URL.Query()
	if limit, err = intParam(q.Get("limit")); err != nil {
		return 0, 0, fmt.Errorf("limit: %w", err)
	}
	if offset, err = intParam(q.Get("offset")); err != nil {
		return 0, 0, fmt.Errorf("offset: %w", err)
	}
	return limit, offset, nil
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, ErrInvalidQuery
	}
	return n, nil
}

var badRequest = []error{
	ErrInvalidQuery,
	month.ErrInvalidWindow,
	month.ErrInvalidDate,
	segment.ErrInvalidPredicate,
	segment.ErrUnknownPreset,
	churn.ErrDuplicateRecord,
	analytics.ErrInvalidRecord,
	tickets.ErrInvalidID,
}

// ErrorStatus возвращает HTTP-статус и текст ответа для ошибки сервиса.
func ErrorStatus(err error) (int, string) {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest, target.Error()
		}
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
