package churn

import (
	"fmt"
	"time"

	"github.com/magabrotheeeer/studio-churn/internal/lib/month"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

const (
	excellentMax = 5.0
	goodMax      = 10.0
)

// StudioBreakdown считает отток текущего месяца отдельно по каждой студии.
// Студии идут в порядке первого появления во входном списке, записи без студии пропускаются.
// Студия без стартовых участников в текущем месяце всё равно попадает в результат с нулями.
func StudioBreakdown(records []models.Membership, now time.Time) ([]models.StudioChurnMetric, error) {
	const op = "churn.StudioBreakdown"
	if err := CheckUnique(records); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	b := month.Of(now)
	locations := Locations(records)
	byLocation := make(map[string]*models.StudioChurnMetric, len(locations))
	out := make([]models.StudioChurnMetric, len(locations))
	for i, loc := range locations {
		out[i] = models.StudioChurnMetric{Location: loc, Month: b.Label}
		byLocation[loc] = &out[i]
	}

	for _, m := range records {
		row, ok := byLocation[m.Location]
		if !ok {
			continue
		}
		c := Classify(m, b)
		if c.Starting {
			row.StartingMembers++
		}
		if c.ExpiredInMonth {
			row.ExpiredMembers++
		}
	}

	for i := range out {
		out[i].ChurnRate = Rate(out[i].ExpiredMembers, out[i].StartingMembers)
		out[i].Tier = TierFor(out[i].ChurnRate)
	}
	return out, nil
}

// TierFor переводит уровень оттока в оценку студии.
// Ровно 5.00: Excellent, ровно 10.00: Good.
func TierFor(rate float64) models.Tier {
	switch {
	case rate <= excellentMax:
		return models.TierExcellent
	case rate <= goodMax:
		return models.TierGood
	default:
		return models.TierNeedsAttention
	}
}

// Locations возвращает непустые студии в порядке первого появления.
func Locations(records []models.Membership) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range records {
		if m.Location == "" {
			continue
		}
		if _, ok := seen[m.Location]; ok {
			continue
		}
		seen[m.Location] = struct{}{}
		out = append(out, m.Location)
	}
	return out
}
