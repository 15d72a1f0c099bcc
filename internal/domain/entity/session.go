package entity

import (
	"time"
)

// Позиция -1 означает, что сессия находится в лобби и вопросы еще не показывались
const PositionLobby = -1

// Session представляет живую сессию игры. Список вопросов замораживается
// в момент старта: правки игры в редакторе не влияют на идущую сессию.
type Session struct {
	ID                  uint         `gorm:"primaryKey" json:"id"` // генерируется, не автоинкремент
	GameID              uint         `gorm:"not null;index" json:"gameId"`
	Owner               string       `gorm:"size:100;not null;index" json:"-"`
	Position            int          `gorm:"not null;default:-1" json:"position"`
	Questions           QuestionList `gorm:"type:jsonb;not null" json:"questions"`
	Active              bool         `gorm:"not null;default:true" json:"active"`
	QuestionStartedAt   *time.Time   `json:"isoTimeLastQuestionStarted"`
	CreatedAt           time.Time    `json:"-"`
	UpdatedAt           time.Time    `json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Session) TableName() string {
	return "sessions"
}

// InLobby проверяет, находится ли сессия в лобби (игра не началась)
func (s *Session) InLobby() bool {
	return s.Position == PositionLobby
}

// Started проверяет, идет ли игра (показан хотя бы один вопрос)
func (s *Session) Started() bool {
	return s.Active && s.Position >= 0
}

// CurrentQuestion возвращает текущий вопрос или nil, если сессия в лобби
// либо позиция вышла за пределы снапшота
func (s *Session) CurrentQuestion() *Question {
	if s.Position < 0 || s.Position >= len(s.Questions) {
		return nil
	}
	return &s.Questions[s.Position]
}

// OnLastQuestion проверяет, показан ли последний вопрос
func (s *Session) OnLastQuestion() bool {
	return s.Position >= 0 && s.Position == len(s.Questions)-1
}

// CountdownElapsed проверяет, истек ли отсчет текущего вопроса к моменту now.
// До старта первого вопроса отсчета нет, поэтому возвращается false.
func (s *Session) CountdownElapsed(now time.Time) bool {
	q := s.CurrentQuestion()
	if q == nil || s.QuestionStartedAt == nil {
		return false
	}
	return CountdownRemaining(q.Duration, *s.QuestionStartedAt, now) == 0
}

// CountdownRemaining возвращает, сколько секунд осталось до конца вопроса.
// Значение каждый раз пересчитывается от серверного времени старта, а не
// декрементируется: так пропущенные тики и дрейф часов не накапливаются.
// Результат никогда не бывает отрицательным.
func CountdownRemaining(durationSec int, startedAt time.Time, now time.Time) int {
	remaining := durationSec - int(now.Sub(startedAt)/time.Second)
	if remaining < 0 {
		return 0
	}
	return remaining
}
