package client

import (
	"sync"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	"github.com/yourusername/quizgame-api/internal/score"
)

// SessionContext хранит клиентское состояние одной сессии: токен
// администратора либо идентификатор игрока и накопленные снапшоты вопросов.
// Вопрос попадает в снапшот без правильных ответов; они дописываются
// задним числом, когда сервер их раскрывает. Безопасен для использования
// из нескольких горутин (опросчик пишет, вызывающий код читает).
type SessionContext struct {
	mu sync.RWMutex

	token     string
	email     string
	sessionID uint
	playerID  uint

	questions []entity.Question
	byID      map[int]int // идентификатор вопроса -> позиция в questions
}

// NewSessionContext создает пустой контекст сессии
func NewSessionContext(sessionID uint) *SessionContext {
	return &SessionContext{
		sessionID: sessionID,
		byID:      make(map[int]int),
	}
}

// SetCredentials запоминает токен и email после входа администратора
func (sc *SessionContext) SetCredentials(token, email string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.token = token
	sc.email = email
}

// SetPlayerID запоминает идентификатор игрока после входа в сессию
func (sc *SessionContext) SetPlayerID(playerID uint) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.playerID = playerID
}

// Token возвращает сохраненный токен
func (sc *SessionContext) Token() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.token
}

// Email возвращает сохраненный email
func (sc *SessionContext) Email() string {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.email
}

// SessionID возвращает идентификатор сессии
func (sc *SessionContext) SessionID() uint {
	return sc.sessionID
}

// PlayerID возвращает идентификатор игрока
func (sc *SessionContext) PlayerID() uint {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.playerID
}

// RecordQuestion добавляет вопрос в снапшот. Повторное появление того же
// вопроса (каждый цикл опроса приносит текущий вопрос заново) обновляет
// запись, не создавая дубликата, и не затирает уже дописанные правильные
// ответы.
func (sc *SessionContext) RecordQuestion(q entity.Question) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if idx, ok := sc.byID[q.QuestionID]; ok {
		saved := sc.questions[idx].CorrectAnswers
		sc.questions[idx] = q
		if len(q.CorrectAnswers) == 0 {
			sc.questions[idx].CorrectAnswers = saved
		}
		return
	}
	sc.byID[q.QuestionID] = len(sc.questions)
	sc.questions = append(sc.questions, q)
}

// PatchCorrectAnswers дописывает правильные ответы в уже записанный вопрос.
// Возвращает false, если вопроса с таким идентификатором в снапшоте нет.
func (sc *SessionContext) PatchCorrectAnswers(questionID int, correct []string) bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	idx, ok := sc.byID[questionID]
	if !ok {
		return false
	}
	sc.questions[idx].CorrectAnswers = append(entity.StringArray{}, correct...)
	return true
}

// Questions возвращает копию накопленного снапшота в порядке появления
func (sc *SessionContext) Questions() []entity.Question {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	out := make([]entity.Question, len(sc.questions))
	copy(out, sc.questions)
	return out
}

// Question возвращает вопрос снапшота по идентификатору или nil
func (sc *SessionContext) Question(questionID int) *entity.Question {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	idx, ok := sc.byID[questionID]
	if !ok {
		return nil
	}
	q := sc.questions[idx]
	return &q
}

// ScoreResults пересчитывает очки по ответам игрока и локальному снапшоту.
// Сервер и клиент используют одну и ту же формулу, поэтому суммы совпадают.
func (sc *SessionContext) ScoreResults(records []entity.AnswerRecord) (rows []score.ResultRow, total int) {
	questions := sc.Questions()
	return score.BuildRows(records, questions), score.TotalScore(records, questions)
}

// Reset очищает контекст (выход из сессии, logout)
func (sc *SessionContext) Reset() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.token = ""
	sc.email = ""
	sc.playerID = 0
	sc.questions = nil
	sc.byID = make(map[int]int)
}
