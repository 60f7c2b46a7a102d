package churn

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/magabrotheeeer/studio-churn/internal/lib/month"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// ErrDuplicateRecord возвращается, если во входном списке повторяется UniqueID.
var ErrDuplicateRecord = errors.New("duplicate membership unique_id")

// MonthlySeries возвращает показатели оттока за windowSize месяцев, заканчивая месяцем now.
// Порядок хронологический: последний элемент: текущий месяц, предпоследний: предыдущий.
func MonthlySeries(records []models.Membership, now time.Time, windowSize int) ([]models.MonthlyChurnMetric, error) {
	const op = "churn.MonthlySeries"

	window, err := month.Window(now, windowSize)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := CheckUnique(records); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	series := make([]models.MonthlyChurnMetric, 0, len(window))
	for _, b := range window {
		series = append(series, MonthMetric(records, b))
	}
	return series, nil
}

// MonthMetric считает показатели одного месяца за один проход по записям.
func MonthMetric(records []models.Membership, b month.Boundary) models.MonthlyChurnMetric {
	metric := models.MonthlyChurnMetric{
		Month:      b.Label,
		MonthStart: b.Start,
	}
	for _, m := range records {
		c := Classify(m, b)
		if c.Starting {
			metric.StartingMembers++
		}
		if c.New {
			metric.NewMembers++
		}
		if c.ExpiredInMonth {
			metric.ExpiredMembers++
		}
		if c.Ending {
			metric.EndingMembers++
		}
	}
	metric.ChurnRate = Rate(metric.ExpiredMembers, metric.StartingMembers)
	metric.ChurnCount = metric.ExpiredMembers
	return metric
}

// Rate возвращает expired / starting * 100, округлённое до двух знаков.
// При starting == 0 результат 0.
func Rate(expired, starting int) float64 {
	if starting <= 0 {
		return 0
	}
	return round2(float64(expired) / float64(starting) * 100)
}

// Delta сравнивает текущий месяц ряда с предыдущим.
func Delta(series []models.MonthlyChurnMetric) models.ChurnDelta {
	if len(series) == 0 {
		return models.ChurnDelta{}
	}
	current := series[len(series)-1]
	if len(series) < 2 {
		return models.ChurnDelta{CurrentRate: current.ChurnRate}
	}
	previous := series[len(series)-2]
	return models.ChurnDelta{
		Available:    true,
		CurrentRate:  current.ChurnRate,
		PreviousRate: previous.ChurnRate,
		Change:       round2(current.ChurnRate - previous.ChurnRate),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// CheckUnique возвращает ErrDuplicateRecord для первого повторного UniqueID.
func CheckUnique(records []models.Membership) error {
	seen := make(map[string]struct{}, len(records))
	for _, m := range records {
		if _, ok := seen[m.UniqueID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateRecord, m.UniqueID)
		}
		seen[m.UniqueID] = struct{}{}
	}
	return nil
}
