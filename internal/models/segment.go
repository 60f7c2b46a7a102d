package models

// DummySegmentFilter используется для приёма параметров фильтрации участников из JSON-запроса
// до валидации и преобразования в предикаты segment. Даты приходят строками в формате 2006-01-02.
// Пустые поля означают, что фильтр по ним не применяется.
type DummySegmentFilter struct {
	Preset         string   `json:"preset,omitempty"`
	Statuses       []string `json:"statuses,omitempty" validate:"omitempty,dive,oneof=Active Expired"`
	Locations      []string `json:"locations,omitempty"`
	TierKeywords   []string `json:"tier_keywords,omitempty"`
	MinSessions    *int     `json:"min_sessions,omitempty" validate:"omitempty,gte=0"`
	MaxSessions    *int     `json:"max_sessions,omitempty" validate:"omitempty,gte=0"`
	EndDateFrom    string   `json:"end_date_from,omitempty"`
	EndDateTo      string   `json:"end_date_to,omitempty"`
	OrderedWithin  int      `json:"ordered_within_days,omitempty" validate:"gte=0"`
	ExpiringWithin int      `json:"expiring_within_days,omitempty" validate:"gte=0"`
	PaidAbove      *float64 `json:"paid_above,omitempty"`
	Query          string   `json:"q,omitempty"`
	Limit          int      `json:"limit,omitempty" validate:"gte=0,lte=1000"`
	Offset         int      `json:"offset,omitempty" validate:"gte=0"`
}

// Facet: количество участников, попадающих под быстрый фильтр.
type Facet struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Facets: счётчики быстрых фильтров и список студий в порядке первого появления.
type Facets struct {
	Total     int      `json:"total"`
	Presets   []Facet  `json:"presets"`
	Locations []string `json:"locations"`
}
