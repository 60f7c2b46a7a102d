// Package month строит календарные границы месяцев для скользящего окна отчёта
// и разбирает даты из внешних источников в строгом ISO-8601 формате.
package month

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultWindowSize: размер окна отчёта по умолчанию, в месяцах.
const DefaultWindowSize = 12

// MaxWindowSize: наибольший допустимый размер окна, десять лет.
const MaxWindowSize = 120

// LabelLayout: формат подписи месяца, например "January 2024".
const LabelLayout = "January 2006"

var (
	// ErrInvalidWindow возвращается, если размер окна вне [1, MaxWindowSize].
	ErrInvalidWindow = fmt.Errorf("window size must be between 1 and %d", MaxWindowSize)
	// ErrInvalidDate возвращается для пустых и нераспознанных дат.
	ErrInvalidDate = errors.New("invalid date")
)

// Boundary: полуинтервал [Start, End) одного календарного месяца.
type Boundary struct {
	Start time.Time
	End   time.Time
	Label string
}

// Contains сообщает, попадает ли t в [Start, End).
func (b Boundary) Contains(t time.Time) bool {
	return !t.Before(b.Start) && t.Before(b.End)
}

// Of возвращает границы месяца, которому принадлежит t, в часовом поясе t.
func Of(t time.Time) Boundary {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 1, 0)
	return Boundary{Start: start, End: end, Label: start.Format(LabelLayout)}
}

// Window возвращает size подряд идущих месяцев, заканчивая месяцем now включительно.
// Самый старый месяц идёт первым.
func Window(now time.Time, size int) ([]Boundary, error) {
	const op = "month.Window"
	if size < 1 || size > MaxWindowSize {
		return nil, fmt.Errorf("%s: %w: got %d", op, ErrInvalidWindow, size)
	}

	current := Of(now).Start
	out := make([]Boundary, 0, size)
	for i := size - 1; i >= 0; i-- {
		out = append(out, Of(current.AddDate(0, -i, 0)))
	}
	return out, nil
}

// ParseDate разбирает дату в формате 2006-01-02 или RFC 3339.
// Дата без времени трактуется как полночь UTC. Подстановки "по умолчанию" нет:
// всё, что не распознано, возвращается как ErrInvalidDate.
func ParseDate(s string) (time.Time, error) {
	const op = "month.ParseDate"
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%s: %w: empty value", op, ErrInvalidDate)
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %w: %q", op, ErrInvalidDate, s)
	}
	return t, nil
}
