package churn

import (
	"time"

	"github.com/magabrotheeeer/studio-churn/internal/lib/month"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// InconsistencyKind: вид расхождения в исходных данных.
type InconsistencyKind string

const (
	// EndBeforeOrder: дата окончания раньше даты заказа.
	EndBeforeOrder InconsistencyKind = "end_before_order"
	// ActivePastEnd: статус Active при уже прошедшей дате окончания.
	// Такая запись не попадает в отток, пока статус не сменят снаружи.
	ActivePastEnd InconsistencyKind = "active_past_end"
)

// Inconsistency описывает одну подозрительную запись.
type Inconsistency struct {
	UniqueID string
	Kind     InconsistencyKind
}

// Inspect находит записи, которые считаются как есть, но заслуживают внимания.
// На расчёт оттока результат не влияет.
func Inspect(records []models.Membership, now time.Time) []Inconsistency {
	var out []Inconsistency
	for _, m := range records {
		if m.EndDate.Before(m.OrderDate) {
			out = append(out, Inconsistency{UniqueID: m.UniqueID, Kind: EndBeforeOrder})
		}
		if activePastEnd(m, now) {
			out = append(out, Inconsistency{UniqueID: m.UniqueID, Kind: ActivePastEnd})
		}
	}
	return out
}

// Expiring возвращает абонементы с датой окончания в месяце now,
// разделённые на закрытые (Expired) и ещё активные.
func Expiring(records []models.Membership, now time.Time) models.ExpiringSummary {
	b := month.Of(now)
	summary := models.ExpiringSummary{
		Month:    b.Label,
		Expired:  []models.Membership{},
		Expiring: []models.Membership{},
	}
	for _, m := range records {
		if !b.Contains(m.EndDate) {
			continue
		}
		switch m.Status {
		case models.StatusExpired:
			summary.Expired = append(summary.Expired, m)
		case models.StatusActive:
			summary.Expiring = append(summary.Expiring, m)
		}
	}
	return summary
}
