package entity

import (
	"time"
)

// InvalidToken представляет запись об инвалидированных токенах пользователя.
// Logout записывает текущий момент: все токены, выпущенные раньше него,
// перестают приниматься.
type InvalidToken struct {
	UserID           uint      `gorm:"primaryKey" json:"user_id"`
	InvalidationTime time.Time `gorm:"not null" json:"invalidation_time"`
}

// TableName задает имя таблицы для GORM
func (InvalidToken) TableName() string {
	return "invalid_tokens"
}

// IsTokenInvalidAt проверяет, был ли токен инвалидирован к моменту его выпуска
func (it *InvalidToken) IsTokenInvalidAt(issuedAt time.Time) bool {
	return issuedAt.Before(it.InvalidationTime)
}
