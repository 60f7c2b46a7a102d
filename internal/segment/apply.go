package segment

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// Apply возвращает записи, прошедшие все условия, в исходном порядке.
// Все условия проверяются через Validate до отбора, при ошибке результат не возвращается.
func Apply(records []models.Membership, now time.Time, preds ...Predicate) ([]models.Membership, error) {
	const op = "segment.Apply"
	for _, p := range preds {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	out := make([]models.Membership, 0, len(records))
	for _, m := range records {
		if matchAll(m, now, preds) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Count возвращает количество записей, прошедших все условия.
func Count(records []models.Membership, now time.Time, preds ...Predicate) (int, error) {
	filtered, err := Apply(records, now, preds...)
	if err != nil {
		return 0, err
	}
	return len(filtered), nil
}

func matchAll(m models.Membership, now time.Time, preds []Predicate) bool {
	for _, p := range preds {
		if !p.Match(m, now) {
			return false
		}
	}
	return true
}
