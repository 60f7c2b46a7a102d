package segment

import (
	"fmt"

	"github.com/magabrotheeeer/studio-churn/internal/lib/month"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// FromRequest собирает условия из параметров запроса.
// Быстрый фильтр (Preset) и явные поля объединяются через AND.
func FromRequest(req models.DummySegmentFilter) ([]Predicate, error) {
	const op = "segment.FromRequest"

	preds, err := Preset(req.Preset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(req.Statuses) > 0 {
		statuses := make([]models.MembershipStatus, 0, len(req.Statuses))
		for _, s := range req.Statuses {
			statuses = append(statuses, models.MembershipStatus(s))
		}
		preds = append(preds, StatusIn{Statuses: statuses})
	}
	if len(req.Locations) > 0 {
		preds = append(preds, LocationIn{Locations: req.Locations})
	}
	if len(req.TierKeywords) > 0 {
		preds = append(preds, TierContains{Keywords: req.TierKeywords})
	}
	if req.MinSessions != nil || req.MaxSessions != nil {
		preds = append(preds, SessionsInRange{Min: req.MinSessions, Max: req.MaxSessions})
	}
	if req.EndDateFrom != "" || req.EndDateTo != "" {
		var r EndDateBetween
		if req.EndDateFrom != "" {
			if r.From, err = month.ParseDate(req.EndDateFrom); err != nil {
				return nil, fmt.Errorf("%s: end_date_from: %w", op, err)
			}
		}
		if req.EndDateTo != "" {
			if r.To, err = month.ParseDate(req.EndDateTo); err != nil {
				return nil, fmt.Errorf("%s: end_date_to: %w", op, err)
			}
		}
		preds = append(preds, r)
	}
	if req.OrderedWithin > 0 {
		preds = append(preds, RecencyWithin{Days: req.OrderedWithin})
	}
	if req.ExpiringWithin > 0 {
		preds = append(preds, ExpiringWithin{Days: req.ExpiringWithin})
	}
	if req.PaidAbove != nil {
		preds = append(preds, PaidAbove{Amount: *req.PaidAbove})
	}
	if req.Query != "" {
		preds = append(preds, Search{Query: req.Query})
	}

	for _, p := range preds {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return preds, nil
}
