package entity

import (
	"time"
)

// ProbeName - зарезервированное имя, которым клиент проверяет существование
// сессии без присоединения. Записи с этим именем не создаются, а на случай
// старых данных исключаются из выборок на границе хранилища.
const ProbeName = "__validate"

// Player представляет игрока, присоединившегося к сессии
type Player struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"sessionId"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatedAt time.Time `json:"joinedAt"`
}

// TableName определяет имя таблицы для GORM
func (Player) TableName() string {
	return "players"
}

// IsProbe проверяет, является ли запись служебной проверкой сессии
func (p *Player) IsProbe() bool {
	return p.Name == ProbeName
}
