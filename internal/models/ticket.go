package models

import "time"

// TicketStatus: статус тикета поддержки.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketClosed     TicketStatus = "closed"
)

// Ticket: обращение в поддержку. Поля формы хранятся как непрозрачная карта,
// конфигурация формы находится вне этого сервиса.
type Ticket struct {
	ID        string         `json:"id"`
	Subject   string         `json:"subject"`
	Status    TicketStatus   `json:"status"`
	Author    string         `json:"author"`
	MemberID  string         `json:"member_id,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
	DedupeKey string         `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
}

// DummyTicket используется для приёма тикета из JSON-запроса.
type DummyTicket struct {
	Subject  string         `json:"subject" validate:"required,max=200"`
	MemberID string         `json:"member_id,omitempty" validate:"max=64"`
	Fields   map[string]any `json:"fields,omitempty"`
}

// ExpiringNotice: сообщение планировщика о скором окончании абонемента.
type ExpiringNotice struct {
	UniqueID       string    `json:"unique_id"`
	MemberID       string    `json:"member_id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	MembershipName string    `json:"membership_name"`
	Location       string    `json:"location"`
	EndDate        time.Time `json:"end_date"`
	SessionsLeft   int       `json:"sessions_left"`
}
