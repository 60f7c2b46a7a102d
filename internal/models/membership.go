// Package models содержит доменные структуры дашборда студий: абонементы (membership),
// результаты расчёта оттока, тикеты поддержки и пользователей персонала,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import "time"

// MembershipStatus: статус абонемента, который хранится в источнике данных.
// Статус не пересчитывается по датам: если в источнике стоит Active,
// абонемент считается активным даже при прошедшей дате окончания.
type MembershipStatus string

const (
	// StatusActive: абонемент действует.
	StatusActive MembershipStatus = "Active"
	// StatusExpired: абонемент закрыт (истёк).
	StatusExpired MembershipStatus = "Expired"
)

// Valid сообщает, является ли статус одним из известных значений.
func (s MembershipStatus) Valid() bool {
	return s == StatusActive || s == StatusExpired
}

// Membership представляет один купленный период абонемента одного клиента.
// У клиента (MemberID) может быть несколько записей, UniqueID уникален для записи.
type Membership struct {
	UniqueID       string           `json:"unique_id"`
	MemberID       string           `json:"member_id"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Email          string           `json:"email"`
	MembershipName string           `json:"membership_name"` // Название тарифа, свободный текст
	Location       string           `json:"location"`        // Студия
	OrderDate      time.Time        `json:"order_date"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	Status         MembershipStatus `json:"status"`
	SessionsLeft   int              `json:"sessions_left"`
	Paid           string           `json:"paid"` // Сумма текстом, может быть пустой или "-"

	// Аннотации персонала, движок расчёта их не читает.
	Comments string   `json:"comments,omitempty"`
	Notes    string   `json:"notes,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// DummyAnnotations используется для приёма комментариев, заметок и тегов участника из JSON-запроса.
type DummyAnnotations struct {
	Comments string   `json:"comments" validate:"max=4000"`
	Notes    string   `json:"notes" validate:"max=4000"`
	Tags     []string `json:"tags" validate:"max=32,dive,required,max=64"`
}

// DummyMembership используется для приёма записи абонемента при импорте.
// Даты приходят строками в формате 2006-01-02.
type DummyMembership struct {
	UniqueID       string `json:"unique_id" validate:"required,max=64"`
	MemberID       string `json:"member_id" validate:"required,max=64"`
	FirstName      string `json:"first_name" validate:"max=100"`
	LastName       string `json:"last_name" validate:"max=100"`
	Email          string `json:"email" validate:"omitempty,email"`
	MembershipName string `json:"membership_name" validate:"max=200"`
	Location       string `json:"location" validate:"max=200"`
	OrderDate      string `json:"order_date" validate:"required"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date" validate:"required"`
	Status         string `json:"status" validate:"required,oneof=Active Expired"`
	SessionsLeft   int    `json:"sessions_left" validate:"gte=0"`
	Paid           string `json:"paid" validate:"max=32"`
}

// DummyImport пачка записей для импорта.
type DummyImport struct {
	Records []DummyMembership `json:"records" validate:"required,min=1,max=5000,dive"`
}
