package segment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/studio-churn/internal/churn"
	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// ErrUnknownPreset возвращается для неизвестного ключа быстрого фильтра.
var ErrUnknownPreset = errors.New("unknown preset")

// LocationPrefix: префикс ключа быстрого фильтра по студии, например "location-Bandra".
const LocationPrefix = "location-"

// Ключи быстрых фильтров дашборда.
const (
	PresetAll          = "all"
	PresetActive       = "active"
	PresetExpired      = "expired"
	PresetSessions     = "sessions"
	PresetNoSessions   = "no-sessions"
	PresetWeekly       = "weekly"
	PresetRecent       = "recent"
	PresetQuarterly    = "quarterly"
	PresetHalfYear     = "half-year"
	PresetExpiring     = "expiring"
	PresetExpiringWeek = "expiring-week"
	PresetPremium      = "premium"
	PresetLowSessions  = "low-sessions"
	PresetHighSessions = "high-sessions"
)

// presetKeys задаёт порядок вывода счётчиков.
var presetKeys = []string{
	PresetAll, PresetActive, PresetExpired, PresetSessions, PresetNoSessions,
	PresetWeekly, PresetRecent, PresetQuarterly, PresetHalfYear,
	PresetExpiringWeek, PresetExpiring, PresetLowSessions,
	PresetPremium, PresetHighSessions,
}

// Preset переводит ключ быстрого фильтра в набор условий. Пустой ключ равен "all".
func Preset(key string) ([]Predicate, error) {
	switch key {
	case "", PresetAll:
		return nil, nil
	case PresetActive:
		return []Predicate{StatusIn{Statuses: []models.MembershipStatus{models.StatusActive}}}, nil
	case PresetExpired:
		return []Predicate{StatusIn{Statuses: []models.MembershipStatus{models.StatusExpired}}}, nil
	case PresetSessions:
		return []Predicate{SessionsAtLeast(1)}, nil
	case PresetNoSessions:
		return []Predicate{Sessions(0, 0)}, nil
	case PresetWeekly:
		return []Predicate{RecencyWithin{Days: 7}}, nil
	case PresetRecent:
		return []Predicate{RecencyWithin{Days: 30}}, nil
	case PresetQuarterly:
		return []Predicate{RecencyWithin{Days: 90}}, nil
	case PresetHalfYear:
		return []Predicate{RecencyWithin{Days: 180}}, nil
	case PresetExpiring:
		return []Predicate{ExpiringWithin{Days: 30}}, nil
	case PresetExpiringWeek:
		return []Predicate{ExpiringWithin{Days: 7}}, nil
	case PresetPremium:
		return []Predicate{PremiumTier()}, nil
	case PresetLowSessions:
		return []Predicate{Sessions(1, 2)}, nil
	case PresetHighSessions:
		return []Predicate{SessionsAtLeast(11)}, nil
	}

	if loc, ok := strings.CutPrefix(key, LocationPrefix); ok && loc != "" {
		return []Predicate{LocationIn{Locations: []string{loc}}}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
}

// Facets считает, сколько записей попадает под каждый быстрый фильтр,
// включая фильтры по студиям в порядке их первого появления.
func Facets(records []models.Membership, now time.Time) models.Facets {
	locations := churn.Locations(records)
	facets := models.Facets{
		Total:     len(records),
		Presets:   make([]models.Facet, 0, len(presetKeys)+len(locations)),
		Locations: locations,
	}
	if facets.Locations == nil {
		facets.Locations = []string{}
	}

	keys := append([]string{}, presetKeys...)
	for _, loc := range locations {
		keys = append(keys, LocationPrefix+loc)
	}
	for _, key := range keys {
		preds, _ := Preset(key)
		n := 0
		for _, m := range records {
			if matchAll(m, now, preds) {
				n++
			}
		}
		facets.Presets = append(facets.Presets, models.Facet{Key: key, Count: n})
	}
	return facets
}
