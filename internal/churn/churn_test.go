package churn

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/studio-churn/internal/lib/month"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func rec(id, order, end string, status models.MembershipStatus, location string) models.Membership {
	return models.Membership{
		UniqueID:  id,
		MemberID:  "m-" + id,
		OrderDate: date(order),
		StartDate: date(order),
		EndDate:   date(end),
		Status:    status,
		Location:  location,
	}
}

func TestClassify(t *testing.T) {
	jan := month.Of(date("2024-01-10"))

	tests := []struct {
		name string
		m    models.Membership
		want Classification
	}{
		{
			name: "started before month and still running",
			m:    rec("1", "2023-12-01", "2024-03-01", models.StatusActive, "A"),
			want: Classification{Starting: true, Ending: true},
		},
		{
			name: "ordered on the first day is new, not starting",
			m:    rec("2", "2024-01-01", "2024-02-01", models.StatusActive, "A"),
			want: Classification{New: true, Ending: true},
		},
		{
			name: "expired inside month",
			m:    rec("3", "2023-12-01", "2024-01-15", models.StatusExpired, "A"),
			want: Classification{Starting: true, ExpiredInMonth: true},
		},
		{
			name: "end inside month but status still active",
			m:    rec("4", "2023-12-01", "2024-01-15", models.StatusActive, "A"),
			want: Classification{Starting: true},
		},
		{
			name: "ended exactly at month start still counts as starting",
			m:    rec("5", "2023-11-01", "2024-01-01", models.StatusExpired, "A"),
			want: Classification{Starting: true, ExpiredInMonth: true},
		},
		{
			name: "ends on the last day is not ending",
			m:    rec("6", "2023-12-01", "2024-01-31", models.StatusActive, "A"),
			want: Classification{Starting: true},
		},
		{
			name: "ends on the first day of next month is ending",
			m:    rec("7", "2023-12-01", "2024-02-01", models.StatusExpired, "A"),
			want: Classification{Starting: true, Ending: true},
		},
		{
			name: "ordered next month",
			m:    rec("8", "2024-02-01", "2024-05-01", models.StatusActive, "A"),
			want: Classification{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.m, jan))
		})
	}
}

func TestMonthlySeries_SingleMonthScenario(t *testing.T) {
	records := []models.Membership{
		rec("1", "2024-01-01", "2024-02-01", models.StatusActive, "A"),
		rec("2", "2023-12-01", "2024-01-15", models.StatusExpired, "A"),
	}

	series, err := MonthlySeries(records, date("2024-01-20"), 1)
	require.NoError(t, err)
	require.Len(t, series, 1)

	got := series[0]
	assert.Equal(t, "January 2024", got.Month)
	assert.Equal(t, 1, got.StartingMembers)
	assert.Equal(t, 1, got.NewMembers)
	assert.Equal(t, 1, got.ExpiredMembers)
	assert.Equal(t, 1, got.EndingMembers)
	assert.Equal(t, 100.0, got.ChurnRate)
	assert.Equal(t, got.ExpiredMembers, got.ChurnCount)
}

func TestMonthlySeries_EmptyInput(t *testing.T) {
	now := date("2024-06-05")

	series, err := MonthlySeries(nil, now, month.DefaultWindowSize)
	require.NoError(t, err)
	require.Len(t, series, month.DefaultWindowSize)

	for _, m := range series {
		assert.Zero(t, m.StartingMembers)
		assert.Zero(t, m.NewMembers)
		assert.Zero(t, m.ExpiredMembers)
		assert.Zero(t, m.EndingMembers)
		assert.Zero(t, m.ChurnRate)
	}
	assert.Equal(t, "July 2023", series[0].Month)
	assert.Equal(t, "June 2024", series[len(series)-1].Month)
}

func TestMonthlySeries_StatusGatesChurn(t *testing.T) {
	records := []models.Membership{
		rec("1", "2023-01-10", "2023-06-10", models.StatusActive, "A"),
		rec("2", "2023-03-01", "2023-09-15", models.StatusActive, "B"),
		rec("3", "2023-08-20", "2024-01-02", models.StatusActive, "A"),
	}

	series, err := MonthlySeries(records, date("2024-01-20"), 12)
	require.NoError(t, err)

	for _, m := range series {
		assert.Zero(t, m.ExpiredMembers, m.Month)
		assert.Zero(t, m.ChurnRate, m.Month)
	}
}

func TestMonthlySeries_RateFormulaAndConservation(t *testing.T) {
	records := []models.Membership{
		rec("1", "2023-12-01", "2024-03-01", models.StatusActive, "A"),
		rec("2", "2023-12-05", "2024-01-10", models.StatusExpired, "A"),
		rec("3", "2023-11-20", "2024-01-25", models.StatusExpired, "B"),
		rec("4", "2024-01-03", "2024-01-28", models.StatusExpired, "B"),
	}

	series, err := MonthlySeries(records, date("2024-01-20"), 3)
	require.NoError(t, err)
	require.Len(t, series, 3)

	jan := series[2]
	assert.Equal(t, 3, jan.StartingMembers)
	assert.Equal(t, 3, jan.ExpiredMembers)
	assert.Equal(t, 100.0, jan.ChurnRate)

	for _, m := range series {
		assert.LessOrEqual(t, m.StartingMembers, len(records))
		assert.LessOrEqual(t, m.NewMembers, len(records))
		assert.LessOrEqual(t, m.ExpiredMembers, len(records))
		if m.StartingMembers == 0 {
			assert.Zero(t, m.ChurnRate)
			continue
		}
		assert.Equal(t, Rate(m.ExpiredMembers, m.StartingMembers), m.ChurnRate)
	}
}

func TestMonthlySeries_Idempotent(t *testing.T) {
	records := []models.Membership{
		rec("1", "2023-12-01", "2024-03-01", models.StatusActive, "A"),
		rec("2", "2023-12-05", "2024-01-10", models.StatusExpired, "A"),
	}
	now := date("2024-02-11")

	first, err := MonthlySeries(records, now, 6)
	require.NoError(t, err)
	second, err := MonthlySeries(records, now, 6)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMonthlySeries_Errors(t *testing.T) {
	t.Run("invalid window", func(t *testing.T) {
		_, err := MonthlySeries(nil, date("2024-01-01"), 0)
		assert.ErrorIs(t, err, month.ErrInvalidWindow)
	})

	t.Run("window above maximum", func(t *testing.T) {
		_, err := MonthlySeries(nil, date("2024-01-20"), 1<<30)
		assert.ErrorIs(t, err, month.ErrInvalidWindow)
	})

	t.Run("duplicate unique id", func(t *testing.T) {
		records := []models.Membership{
			rec("1", "2023-12-01", "2024-03-01", models.StatusActive, "A"),
			rec("1", "2023-12-05", "2024-01-10", models.StatusExpired, "A"),
		}
		_, err := MonthlySeries(records, date("2024-01-20"), 1)
		assert.ErrorIs(t, err, ErrDuplicateRecord)
	})
}

func TestRate(t *testing.T) {
	tests := []struct {
		expired, starting int
		want              float64
	}{
		{0, 0, 0},
		{3, 0, 0},
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 20, 5},
		{1, 8, 12.5},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d_of_%d", tt.expired, tt.starting), func(t *testing.T) {
			assert.Equal(t, tt.want, Rate(tt.expired, tt.starting))
		})
	}
}

func TestDelta(t *testing.T) {
	t.Run("empty series", func(t *testing.T) {
		assert.Equal(t, models.ChurnDelta{}, Delta(nil))
	})

	t.Run("single month has no comparison", func(t *testing.T) {
		d := Delta([]models.MonthlyChurnMetric{{ChurnRate: 4.5}})
		assert.False(t, d.Available)
		assert.Equal(t, 4.5, d.CurrentRate)
	})

	t.Run("two months", func(t *testing.T) {
		d := Delta([]models.MonthlyChurnMetric{{ChurnRate: 10.1}, {ChurnRate: 7.3}})
		assert.True(t, d.Available)
		assert.Equal(t, 10.1, d.PreviousRate)
		assert.Equal(t, -2.8, d.Change)
	})
}

func studioRecords(prefix, location string, active, expired int) []models.Membership {
	var out []models.Membership
	for i := range active {
		out = append(out, rec(fmt.Sprintf("%s-a%d", prefix, i), "2023-12-01", "2024-04-01", models.StatusActive, location))
	}
	for i := range expired {
		out = append(out, rec(fmt.Sprintf("%s-e%d", prefix, i), "2023-12-01", "2024-01-10", models.StatusExpired, location))
	}
	return out
}

func TestStudioBreakdown(t *testing.T) {
	var records []models.Membership
	records = append(records, studioRecords("z", "Zen Studio", 19, 1)...)
	records = append(records, studioRecords("a", "Alpha Gym", 18, 2)...)
	records = append(records, studioRecords("c", "Core Loft", 1, 1)...)
	records = append(records,
		rec("new", "2024-01-05", "2024-06-01", models.StatusActive, "Fresh Start"),
		rec("nowhere", "2023-12-01", "2024-01-10", models.StatusExpired, ""),
	)

	got, err := StudioBreakdown(records, date("2024-01-20"))
	require.NoError(t, err)

	require.Len(t, got, 4)
	assert.Equal(t, []string{"Zen Studio", "Alpha Gym", "Core Loft", "Fresh Start"},
		[]string{got[0].Location, got[1].Location, got[2].Location, got[3].Location})

	assert.Equal(t, models.StudioChurnMetric{
		Location: "Zen Studio", Month: "January 2024", StartingMembers: 20, ExpiredMembers: 1,
		ChurnRate: 5, Tier: models.TierExcellent,
	}, got[0])
	assert.Equal(t, 10.0, got[1].ChurnRate)
	assert.Equal(t, models.TierGood, got[1].Tier)
	assert.Equal(t, 50.0, got[2].ChurnRate)
	assert.Equal(t, models.TierNeedsAttention, got[2].Tier)

	assert.Zero(t, got[3].StartingMembers)
	assert.Zero(t, got[3].ChurnRate)
	assert.Equal(t, models.TierExcellent, got[3].Tier)
}

func TestStudioBreakdown_Duplicate(t *testing.T) {
	records := []models.Membership{
		rec("1", "2023-12-01", "2024-03-01", models.StatusActive, "A"),
		rec("1", "2023-12-01", "2024-03-01", models.StatusActive, "B"),
	}
	_, err := StudioBreakdown(records, date("2024-01-20"))
	assert.ErrorIs(t, err, ErrDuplicateRecord)
}

func TestTierFor(t *testing.T) {
	tests := []struct {
		rate float64
		want models.Tier
	}{
		{0, models.TierExcellent},
		{5.00, models.TierExcellent},
		{5.01, models.TierGood},
		{10.00, models.TierGood},
		{10.01, models.TierNeedsAttention},
		{100, models.TierNeedsAttention},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.2f", tt.rate), func(t *testing.T) {
			assert.Equal(t, tt.want, TierFor(tt.rate))
		})
	}
}

func TestInspect(t *testing.T) {
	records := []models.Membership{
		rec("ok", "2023-12-01", "2024-03-01", models.StatusActive, "A"),
		rec("backwards", "2024-01-10", "2023-12-01", models.StatusExpired, "A"),
		rec("stale", "2023-06-01", "2023-12-01", models.StatusActive, "A"),
	}

	got := Inspect(records, date("2024-01-20"))

	assert.Equal(t, []Inconsistency{
		{UniqueID: "backwards", Kind: EndBeforeOrder},
		{UniqueID: "stale", Kind: ActivePastEnd},
	}, got)
}

func TestActivePastEnd(t *testing.T) {
	now := date("2024-01-20")
	tests := []struct {
		name string
		m    models.Membership
		want bool
	}{
		{"active ended yesterday", rec("a", "2023-12-01", "2024-01-19", models.StatusActive, "A"), true},
		{"active ends today", rec("b", "2023-12-01", "2024-01-20", models.StatusActive, "A"), false},
		{"active ends later", rec("c", "2023-12-01", "2024-02-01", models.StatusActive, "A"), false},
		{"expired in the past", rec("d", "2023-12-01", "2024-01-10", models.StatusExpired, "A"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, activePastEnd(tt.m, now))
		})
	}
}

func TestExpiring(t *testing.T) {
	records := []models.Membership{
		rec("1", "2023-12-01", "2024-01-15", models.StatusExpired, "A"),
		rec("2", "2023-12-01", "2024-01-28", models.StatusActive, "A"),
		rec("3", "2023-12-01", "2024-02-01", models.StatusActive, "A"),
	}

	got := Expiring(records, date("2024-01-20"))

	assert.Equal(t, "January 2024", got.Month)
	require.Len(t, got.Expired, 1)
	require.Len(t, got.Expiring, 1)
	assert.Equal(t, "1", got.Expired[0].UniqueID)
	assert.Equal(t, "2", got.Expiring[0].UniqueID)
}

func TestLocations(t *testing.T) {
	records := []models.Membership{
		{UniqueID: "1", Location: "Bandra"},
		{UniqueID: "2", Location: ""},
		{UniqueID: "3", Location: "Andheri"},
		{UniqueID: "4", Location: "Bandra"},
	}
	assert.Equal(t, []string{"Bandra", "Andheri"}, Locations(records))
}
