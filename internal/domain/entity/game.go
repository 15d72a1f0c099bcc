package entity

import (
	"time"
)

// Game представляет игру (набор вопросов), принадлежащую администратору.
// Вопросы хранятся внутри записи как JSONB: интерфейс редактора заменяет
// список игр целиком, частичных мутаций нет.
type Game struct {
	ID              uint         `gorm:"primaryKey" json:"id"`
	Owner           string       `gorm:"size:100;not null;index" json:"owner"`
	Name            string       `gorm:"size:200;not null" json:"name"`
	Thumbnail       string       `gorm:"type:text" json:"thumbnail,omitempty"`
	Questions       QuestionList `gorm:"type:jsonb;not null" json:"questions"`
	ActiveSessionID *uint        `json:"active"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Game) TableName() string {
	return "games"
}

// HasActiveSession проверяет, есть ли у игры незавершенная сессия
func (g *Game) HasActiveSession() bool {
	return g.ActiveSessionID != nil
}

// Validate проверяет игру вместе со всеми ее вопросами
func (g *Game) Validate() error {
	for i := range g.Questions {
		if err := g.Questions[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}
