// Package segment отбирает абонементы по набору независимых условий.
//
// Набор условий закрыт: Predicate реализуют только типы этого пакета,
// поэтому новый вид фильтра добавляется как новый тип, и компилятор проверяет все места использования.
// Условия объединяются только через AND.
package segment

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// ErrInvalidPredicate возвращается для условий с некорректными границами.
var ErrInvalidPredicate = errors.New("invalid predicate")

const day = 24 * time.Hour

// Predicate: одно условие отбора.
type Predicate interface {
	// Match сообщает, проходит ли запись условие в момент now.
	Match(m models.Membership, now time.Time) bool
	// Validate проверяет параметры условия до начала отбора.
	Validate() error

	sealed()
}

// StatusIn пропускает записи с одним из статусов. Пустой список пропускает всё.
type StatusIn struct {
	Statuses []models.MembershipStatus
}

func (p StatusIn) Match(m models.Membership, _ time.Time) bool {
	return len(p.Statuses) == 0 || slices.Contains(p.Statuses, m.Status)
}

func (p StatusIn) Validate() error {
	for _, s := range p.Statuses {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrInvalidPredicate, s)
		}
	}
	return nil
}

// LocationIn пропускает записи из перечисленных студий. Пустой список пропускает всё.
type LocationIn struct {
	Locations []string
}

func (p LocationIn) Match(m models.Membership, _ time.Time) bool {
	return len(p.Locations) == 0 || slices.Contains(p.Locations, m.Location)
}

func (LocationIn) Validate() error { return nil }

// TierContains пропускает записи, в названии тарифа которых встречается любое из слов (без учёта регистра).
type TierContains struct {
	Keywords []string
}

// PremiumTier: признак премиального тарифа.
func PremiumTier() TierContains {
	return TierContains{Keywords: []string{"premium", "unlimited"}}
}

func (p TierContains) Match(m models.Membership, _ time.Time) bool {
	if len(p.Keywords) == 0 {
		return true
	}
	name := strings.ToLower(m.MembershipName)
	if name == "" {
		return false
	}
	for _, k := range p.Keywords {
		if k != "" && strings.Contains(name, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

func (TierContains) Validate() error { return nil }

// SessionsInRange пропускает записи с остатком занятий в [Min, Max]. nil: граница не задана.
type SessionsInRange struct {
	Min *int
	Max *int
}

// Sessions: удобный конструктор диапазона с обеими границами.
func Sessions(minimum, maximum int) SessionsInRange {
	return SessionsInRange{Min: &minimum, Max: &maximum}
}

// SessionsAtLeast: диапазон без верхней границы.
func SessionsAtLeast(minimum int) SessionsInRange {
	return SessionsInRange{Min: &minimum}
}

func (p SessionsInRange) Match(m models.Membership, _ time.Time) bool {
	if p.Min != nil && m.SessionsLeft < *p.Min {
		return false
	}
	if p.Max != nil && m.SessionsLeft > *p.Max {
		return false
	}
	return true
}

func (p SessionsInRange) Validate() error {
	if p.Min != nil && *p.Min < 0 {
		return fmt.Errorf("%w: sessions min %d is negative", ErrInvalidPredicate, *p.Min)
	}
	if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
		return fmt.Errorf("%w: sessions min %d > max %d", ErrInvalidPredicate, *p.Min, *p.Max)
	}
	return nil
}

// EndDateBetween пропускает записи с датой окончания в [From, To]. Нулевая граница не ограничивает.
type EndDateBetween struct {
	From time.Time
	To   time.Time
}

func (p EndDateBetween) Match(m models.Membership, _ time.Time) bool {
	if !p.From.IsZero() && m.EndDate.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && m.EndDate.After(p.To) {
		return false
	}
	return true
}

func (p EndDateBetween) Validate() error {
	if !p.From.IsZero() && !p.To.IsZero() && p.From.After(p.To) {
		return fmt.Errorf("%w: end date range %s > %s", ErrInvalidPredicate,
			p.From.Format(time.DateOnly), p.To.Format(time.DateOnly))
	}
	return nil
}

// RecencyWithin пропускает записи, заказанные не раньше чем за Days дней до now.
type RecencyWithin struct {
	Days int
}

func (p RecencyWithin) Match(m models.Membership, now time.Time) bool {
	return !m.OrderDate.Before(now.Add(-time.Duration(p.Days) * day))
}

func (p RecencyWithin) Validate() error {
	if p.Days < 1 {
		return fmt.Errorf("%w: recency days must be positive, got %d", ErrInvalidPredicate, p.Days)
	}
	return nil
}

// ExpiringWithin пропускает записи, заканчивающиеся в ближайшие Days дней, включая now.
type ExpiringWithin struct {
	Days int
}

func (p ExpiringWithin) Match(m models.Membership, now time.Time) bool {
	return !m.EndDate.Before(now) && !m.EndDate.After(now.Add(time.Duration(p.Days)*day))
}

func (p ExpiringWithin) Validate() error {
	if p.Days < 1 {
		return fmt.Errorf("%w: expiring days must be positive, got %d", ErrInvalidPredicate, p.Days)
	}
	return nil
}

// PaidAbove пропускает записи с оплаченной суммой строго больше Amount.
// Пустая сумма, "-" и нераспознанный текст условие не проходят.
type PaidAbove struct {
	Amount float64
}

func (p PaidAbove) Match(m models.Membership, _ time.Time) bool {
	paid, ok := ParsePaid(m.Paid)
	return ok && paid > p.Amount
}

func (PaidAbove) Validate() error { return nil }

// Search ищет подстроку без учёта регистра в имени, почте, номере клиента, тарифе и студии.
type Search struct {
	Query string
}

func (p Search) Match(m models.Membership, _ time.Time) bool {
	q := strings.ToLower(strings.TrimSpace(p.Query))
	if q == "" {
		return true
	}
	for _, field := range []string{m.FirstName, m.LastName, m.Email, m.MemberID, m.MembershipName, m.Location} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

func (Search) Validate() error { return nil }

func (StatusIn) sealed()        {}
func (LocationIn) sealed()      {}
func (TierContains) sealed()    {}
func (SessionsInRange) sealed() {}
func (EndDateBetween) sealed()  {}
func (RecencyWithin) sealed()   {}
func (ExpiringWithin) sealed()  {}
func (PaidAbove) sealed()       {}
func (Search) sealed()          {}

// ParsePaid разбирает сумму оплаты из текста вида "₹1,250.00".
func ParsePaid(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
