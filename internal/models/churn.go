package models

import "time"

// MonthlyChurnMetric: показатели оттока за один календарный месяц окна.
type MonthlyChurnMetric struct {
	Month           string    `json:"month"`       // Например "January 2024"
	MonthStart      time.Time `json:"month_start"` // Первое число месяца 00:00
	StartingMembers int       `json:"starting_members"`
	NewMembers      int       `json:"new_members"`
	ExpiredMembers  int       `json:"expired_members"`
	EndingMembers   int       `json:"ending_members"`
	ChurnRate       float64   `json:"churn_rate"`  // Процент, два знака после запятой
	ChurnCount      int       `json:"churn_count"` // Совпадает с ExpiredMembers
}

// Tier: оценка студии по уровню оттока.
type Tier string

const (
	TierExcellent      Tier = "Excellent"
	TierGood           Tier = "Good"
	TierNeedsAttention Tier = "Needs Attention"
)

// StudioChurnMetric: отток одной студии за текущий месяц.
type StudioChurnMetric struct {
	Location        string  `json:"location"`
	Month           string  `json:"month"`
	StartingMembers int     `json:"starting_members"`
	ExpiredMembers  int     `json:"expired_members"`
	ChurnRate       float64 `json:"churn_rate"`
	Tier            Tier    `json:"tier"`
}

// ChurnDelta: изменение уровня оттока текущего месяца относительно предыдущего.
// Available равен false, если в окне нет предыдущего месяца.
type ChurnDelta struct {
	Available    bool    `json:"available"`
	CurrentRate  float64 `json:"current_rate"`
	PreviousRate float64 `json:"previous_rate"`
	Change       float64 `json:"change"`
}

// ExpiringSummary: абонементы с датой окончания в текущем месяце.
// Expired: уже закрытые, Expiring: ещё активные.
type ExpiringSummary struct {
	Month    string       `json:"month"`
	Expired  []Membership `json:"expired"`
	Expiring []Membership `json:"expiring"`
}

// Overview: сводка для главной страницы дашборда.
type Overview struct {
	TotalMembers       int                 `json:"total_members"`
	ActiveMembers      int                 `json:"active_members"`
	ExpiredMembers     int                 `json:"expired_members"`
	MembersWithSession int                 `json:"members_with_sessions"`
	ExpiringThisMonth  int                 `json:"expiring_this_month"`
	Current            *MonthlyChurnMetric `json:"current,omitempty"`
	Delta              ChurnDelta          `json:"delta"`
	Expiring           ExpiringSummary     `json:"expiring"`
}

// ChurnReport: ряд помесячных показателей окна и изменение последнего месяца.
type ChurnReport struct {
	Window int                  `json:"window"`
	Series []MonthlyChurnMetric `json:"series"`
	Delta  ChurnDelta           `json:"delta"`
}

// MemberPage: страница отфильтрованного списка участников.
type MemberPage struct {
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
	Items  []Membership `json:"items"`
}
