package models

import "time"

// User представляет учётную запись сотрудника.
type User struct {
	UUID         string    // Уникальный идентификатор пользователя
	Email        string    // Электронная почта
	Username     string    // Имя пользователя (уникальное)
	PasswordHash string    // Хэш пароля пользователя
	Role         string    // Роль пользователя, admin или staff
	CreatedAt    time.Time // Дата создания
}
