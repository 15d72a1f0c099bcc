package entity

import (
	"time"
)

// AnswerRecord представляет ответ игрока на один вопрос сессии.
// Запись хранит и явный идентификатор вопроса, и его позицию в снапшоте:
// идентификатор убирает хрупкую зависимость от порядка, позиция сохраняет
// выровненный по индексу формат выдачи, который ожидают клиенты.
type AnswerRecord struct {
	ID                uint        `gorm:"primaryKey" json:"-"`
	PlayerID          uint        `gorm:"not null;index;uniqueIndex:idx_player_question" json:"-"`
	SessionID         uint        `gorm:"not null;index" json:"-"`
	QuestionID        int         `gorm:"not null;uniqueIndex:idx_player_question" json:"questionId"`
	QuestionIndex     int         `gorm:"not null" json:"-"`
	Answers           StringArray `gorm:"type:jsonb;not null" json:"answers"`
	Correct           bool        `gorm:"not null" json:"correct"`
	QuestionStartedAt *time.Time  `json:"questionStartedAt"`
	AnsweredAt        *time.Time  `json:"answeredAt"`
	CreatedAt         time.Time   `json:"-"`
	UpdatedAt         time.Time   `json:"-"`
}

// TableName определяет имя таблицы для GORM
func (AnswerRecord) TableName() string {
	return "answer_records"
}

// Answered проверяет, был ли дан ответ (пустая запись выравнивает индексы
// для вопросов, на которые игрок не ответил)
func (r *AnswerRecord) Answered() bool {
	return r.AnsweredAt != nil
}

// TimeUsedSeconds возвращает затраченное на ответ время в секундах,
// либо nil, если какой-то из таймстемпов отсутствует
func (r *AnswerRecord) TimeUsedSeconds() *int {
	if r.AnsweredAt == nil || r.QuestionStartedAt == nil {
		return nil
	}
	sec := int(r.AnsweredAt.Sub(*r.QuestionStartedAt) / time.Second)
	return &sec
}
