package segment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/studio-churn/internal/lib/month"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

var now = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func fixture() []models.Membership {
	return []models.Membership{
		{
			UniqueID: "1", MemberID: "M-100", FirstName: "Asha", LastName: "Rao", Email: "asha@example.com",
			MembershipName: "Studio Premium 12", Location: "Bandra", Status: models.StatusActive,
			OrderDate: now.AddDate(0, 0, -3), EndDate: now.AddDate(0, 0, 5), SessionsLeft: 2, Paid: "₹12,500",
		},
		{
			UniqueID: "2", MemberID: "M-101", FirstName: "Kabir", LastName: "Shah", Email: "kabir@example.com",
			MembershipName: "8 Class Pack", Location: "Andheri", Status: models.StatusExpired,
			OrderDate: now.AddDate(0, -4, 0), EndDate: now.AddDate(0, 0, -10), SessionsLeft: 0, Paid: "-",
		},
		{
			UniqueID: "3", MemberID: "M-102", FirstName: "Meera", LastName: "Iyer", Email: "meera@example.com",
			MembershipName: "UNLIMITED Monthly", Location: "Bandra", Status: models.StatusActive,
			OrderDate: now.AddDate(0, 0, -40), EndDate: now.AddDate(0, 0, 20), SessionsLeft: 14, Paid: "4999",
		},
		{
			UniqueID: "4", MemberID: "M-103", FirstName: "Rohan", LastName: "Das", Email: "rohan@example.com",
			MembershipName: "", Location: "", Status: models.StatusExpired,
			OrderDate: now.AddDate(-1, 0, 0), EndDate: now.AddDate(0, -6, 0), SessionsLeft: 1, Paid: "",
		},
	}
}

func ids(records []models.Membership) []string {
	out := make([]string, 0, len(records))
	for _, m := range records {
		out = append(out, m.UniqueID)
	}
	return out
}

func intPtr(v int) *int { return &v }

func TestApply_Predicates(t *testing.T) {
	tests := []struct {
		name  string
		preds []Predicate
		want  []string
	}{
		{name: "no predicates", preds: nil, want: []string{"1", "2", "3", "4"}},
		{name: "status active", preds: []Predicate{StatusIn{Statuses: []models.MembershipStatus{models.StatusActive}}}, want: []string{"1", "3"}},
		{name: "empty status set passes all", preds: []Predicate{StatusIn{}}, want: []string{"1", "2", "3", "4"}},
		{name: "location", preds: []Predicate{LocationIn{Locations: []string{"Andheri"}}}, want: []string{"2"}},
		{name: "premium tier is case insensitive", preds: []Predicate{PremiumTier()}, want: []string{"1", "3"}},
		{name: "sessions range", preds: []Predicate{Sessions(1, 2)}, want: []string{"1", "4"}},
		{name: "sessions open upper bound", preds: []Predicate{SessionsAtLeast(11)}, want: []string{"3"}},
		{
			name:  "end date range",
			preds: []Predicate{EndDateBetween{From: now.AddDate(0, 0, -10), To: now.AddDate(0, 0, 5)}},
			want:  []string{"1", "2"},
		},
		{name: "ordered within 30 days", preds: []Predicate{RecencyWithin{Days: 30}}, want: []string{"1"}},
		{name: "expiring within 7 days", preds: []Predicate{ExpiringWithin{Days: 7}}, want: []string{"1"}},
		{name: "paid above", preds: []Predicate{PaidAbove{Amount: 5000}}, want: []string{"1"}},
		{name: "search by email", preds: []Predicate{Search{Query: "MEERA@"}}, want: []string{"3"}},
		{name: "search by location", preds: []Predicate{Search{Query: "band"}}, want: []string{"1", "3"}},
		{
			name: "and composition",
			preds: []Predicate{
				StatusIn{Statuses: []models.MembershipStatus{models.StatusActive}},
				LocationIn{Locations: []string{"Bandra"}},
				SessionsAtLeast(3),
			},
			want: []string{"3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(fixture(), now, tt.preds...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestApply_InvalidPredicates(t *testing.T) {
	tests := []struct {
		name string
		pred Predicate
	}{
		{name: "sessions min greater than max", pred: SessionsInRange{Min: intPtr(5), Max: intPtr(1)}},
		{name: "negative sessions", pred: SessionsInRange{Min: intPtr(-1)}},
		{name: "inverted end date range", pred: EndDateBetween{From: now, To: now.AddDate(0, 0, -1)}},
		{name: "zero recency", pred: RecencyWithin{Days: 0}},
		{name: "negative expiring", pred: ExpiringWithin{Days: -3}},
		{name: "unknown status", pred: StatusIn{Statuses: []models.MembershipStatus{"Frozen"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(fixture(), now, tt.pred)
			assert.ErrorIs(t, err, ErrInvalidPredicate)
			assert.Nil(t, got)
		})
	}
}

func TestApply_EmptyInput(t *testing.T) {
	got, err := Apply(nil, now, PremiumTier())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApply_CompositionOrderDoesNotMatter(t *testing.T) {
	status := StatusIn{Statuses: []models.MembershipStatus{models.StatusActive}}
	location := LocationIn{Locations: []string{"Bandra"}}
	records := fixture()

	byStatus, err := Apply(records, now, status)
	require.NoError(t, err)
	statusThenLocation, err := Apply(byStatus, now, location)
	require.NoError(t, err)

	byLocation, err := Apply(records, now, location)
	require.NoError(t, err)
	locationThenStatus, err := Apply(byLocation, now, status)
	require.NoError(t, err)

	combined, err := Apply(records, now, location, status)
	require.NoError(t, err)

	assert.Equal(t, statusThenLocation, locationThenStatus)
	assert.Equal(t, statusThenLocation, combined)
}

func TestPreset(t *testing.T) {
	tests := []struct {
		key     string
		want    []string
		wantErr bool
	}{
		{key: "", want: []string{"1", "2", "3", "4"}},
		{key: PresetAll, want: []string{"1", "2", "3", "4"}},
		{key: PresetActive, want: []string{"1", "3"}},
		{key: PresetExpired, want: []string{"2", "4"}},
		{key: PresetSessions, want: []string{"1", "3", "4"}},
		{key: PresetNoSessions, want: []string{"2"}},
		{key: PresetWeekly, want: []string{"1"}},
		{key: PresetHalfYear, want: []string{"1", "2", "3"}},
		{key: PresetExpiring, want: []string{"1", "3"}},
		{key: PresetExpiringWeek, want: []string{"1"}},
		{key: PresetPremium, want: []string{"1", "3"}},
		{key: PresetLowSessions, want: []string{"1", "4"}},
		{key: PresetHighSessions, want: []string{"3"}},
		{key: "location-Bandra", want: []string{"1", "3"}},
		{key: "location-", wantErr: true},
		{key: "vip", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			preds, err := Preset(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPreset)
				return
			}
			require.NoError(t, err)
			got, err := Apply(fixture(), now, preds...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFacets(t *testing.T) {
	f := Facets(fixture(), now)

	assert.Equal(t, 4, f.Total)
	assert.Equal(t, []string{"Bandra", "Andheri"}, f.Locations)

	counts := make(map[string]int, len(f.Presets))
	for _, p := range f.Presets {
		counts[p.Key] = p.Count
	}
	assert.Equal(t, 4, counts[PresetAll])
	assert.Equal(t, 2, counts[PresetActive])
	assert.Equal(t, 2, counts[PresetPremium])
	assert.Equal(t, 2, counts["location-Bandra"])
	assert.Equal(t, 1, counts["location-Andheri"])
	assert.Equal(t, "location-Andheri", f.Presets[len(f.Presets)-1].Key)
}

func TestFromRequest(t *testing.T) {
	paid := 1000.0

	t.Run("explicit fields and preset", func(t *testing.T) {
		preds, err := FromRequest(models.DummySegmentFilter{
			Preset:      PresetActive,
			Locations:   []string{"Bandra"},
			MinSessions: intPtr(1),
			MaxSessions: intPtr(5),
			PaidAbove:   &paid,
		})
		require.NoError(t, err)
		got, err := Apply(fixture(), now, preds...)
		require.NoError(t, err)
		assert.Equal(t, []string{"1"}, ids(got))
	})

	t.Run("end date bounds", func(t *testing.T) {
		preds, err := FromRequest(models.DummySegmentFilter{EndDateFrom: "2024-05-01", EndDateTo: "2024-05-31"})
		require.NoError(t, err)
		got, err := Apply(fixture(), now, preds...)
		require.NoError(t, err)
		assert.Equal(t, []string{"1", "2"}, ids(got))
	})

	t.Run("bad date", func(t *testing.T) {
		_, err := FromRequest(models.DummySegmentFilter{EndDateFrom: "05/01/2024"})
		assert.ErrorIs(t, err, month.ErrInvalidDate)
	})

	t.Run("inverted sessions", func(t *testing.T) {
		_, err := FromRequest(models.DummySegmentFilter{MinSessions: intPtr(4), MaxSessions: intPtr(2)})
		assert.ErrorIs(t, err, ErrInvalidPredicate)
	})

	t.Run("unknown preset", func(t *testing.T) {
		_, err := FromRequest(models.DummySegmentFilter{Preset: "gold"})
		assert.ErrorIs(t, err, ErrUnknownPreset)
	})
}

func TestParsePaid(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"", 0, false},
		{"-", 0, false},
		{"abc", 0, false},
		{"4999", 4999, true},
		{"₹12,500", 12500, true},
		{" 1,250.50 ", 1250.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParsePaid(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
