package client

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
	"github.com/yourusername/quizgame-api/internal/pkg/schedule"
)

// GameState - производное состояние сессии глазами игрока
type GameState string

const (
	StateLobby      GameState = "LOBBY"
	StateInProgress GameState = "IN_PROGRESS"
	StateEnded      GameState = "ENDED"
)

// Интервалы опроса
const (
	PlayerPollInterval = time.Second
	ResultPollInterval = 2 * time.Second
)

// DeriveState сводит флаги статуса игрока к одному состоянию.
// Флаг завершения проверяется первым: завершенная сессия остается
// завершенной независимо от остальных полей.
func DeriveState(st PlayerState) GameState {
	if st.SessionEnded || !st.Active {
		return StateEnded
	}
	if !st.Started {
		return StateLobby
	}
	return StateInProgress
}

// Snapshot - один результат цикла опроса
type Snapshot struct {
	State    GameState
	Position int
	// Question и CountdownSec заполнены только в состоянии IN_PROGRESS
	Question     *entity.Question
	CountdownSec int
}

// Poller периодически опрашивает состояние сессии от имени игрока,
// накапливает вопросы в контексте сессии и дописывает правильные ответы,
// когда сервер их раскрывает. Каждое наблюдение передается в handler.
type Poller struct {
	client  *Client
	session *SessionContext
	runner  *schedule.Runner
	handler func(Snapshot)

	interval time.Duration
	now      func() time.Time

	mu             sync.Mutex
	taskID         string
	lastQuestionID int
	patched        map[int]bool
}

// NewPoller создает опросчик для игрока из данного контекста сессии
func NewPoller(c *Client, session *SessionContext, runner *schedule.Runner, handler func(Snapshot)) *Poller {
	if handler == nil {
		handler = func(Snapshot) {}
	}
	return &Poller{
		client:   c,
		session:  session,
		runner:   runner,
		handler:  handler,
		interval: PlayerPollInterval,
		now:      time.Now,
		patched:  make(map[int]bool),
	}
}

// Start запускает цикл опроса. Опрос останавливается сам при переходе
// сессии в ENDED, по Stop или по отмене контекста.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.taskID != "" {
		return
	}
	p.taskID = p.runner.Every(ctx, "player-poll", p.interval, p.tick)
}

// Stop останавливает цикл опроса
func (p *Poller) Stop() {
	p.mu.Lock()
	id := p.taskID
	p.taskID = ""
	p.mu.Unlock()
	if id != "" {
		p.runner.Stop(id)
	}
}

// tick выполняет один цикл опроса. Сетевые ошибки не останавливают опрос:
// следующий тик попробует снова.
func (p *Poller) tick(ctx context.Context) {
	playerID := p.session.PlayerID()

	st, err := p.client.PlayerStatus(ctx, playerID)
	if err != nil {
		log.Printf("[Poller] Ошибка опроса статуса игрока #%d: %v", playerID, err)
		return
	}

	state := DeriveState(*st)
	snap := Snapshot{State: state, Position: st.Position}

	switch state {
	case StateInProgress:
		p.observeQuestion(ctx, playerID, &snap)
	case StateEnded:
		// Последний вопрос мог закрыться одновременно с завершением,
		// его правильные ответы приходят уже только в результатах
		p.Stop()
	}

	p.handler(snap)
}

// observeQuestion запрашивает текущий вопрос, фиксирует смену вопроса
// и дописывает раскрытые правильные ответы в снапшот
func (p *Poller) observeQuestion(ctx context.Context, playerID uint, snap *Snapshot) {
	q, err := p.client.CurrentQuestion(ctx, playerID)
	if err != nil {
		log.Printf("[Poller] Ошибка получения вопроса для игрока #%d: %v", playerID, err)
		return
	}

	p.session.RecordQuestion(q.Question)

	p.mu.Lock()
	changed := p.lastQuestionID != 0 && p.lastQuestionID != q.QuestionID
	p.lastQuestionID = q.QuestionID
	p.mu.Unlock()

	countdown := 0
	if q.QuestionStartedAt != nil {
		countdown = entity.CountdownRemaining(q.Duration, *q.QuestionStartedAt, p.now())
	}

	// Правильные ответы раскрываются в двух случаях: предыдущий вопрос
	// закрылся сменой текущего, либо у текущего истек отсчет
	if changed || countdown == 0 {
		p.patchRevealedAnswers(ctx, playerID)
	}

	question := q.Question
	snap.Question = &question
	snap.CountdownSec = countdown
}

// patchRevealedAnswers запрашивает правильные ответы последнего закрытого
// вопроса и дописывает их в контекст. Каждый вопрос дописывается ровно
// один раз.
func (p *Poller) patchRevealedAnswers(ctx context.Context, playerID uint) {
	payload, err := p.client.CorrectAnswers(ctx, playerID)
	if err != nil {
		// Для первого вопроса до истечения отсчета сервер отвечает
		// "ответы недоступны", это не ошибка цикла
		if KindOf(err) != apperrors.KindNotReady {
			log.Printf("[Poller] Ошибка получения правильных ответов для игрока #%d: %v", playerID, err)
		}
		return
	}

	p.mu.Lock()
	already := p.patched[payload.QuestionID]
	if !already {
		p.patched[payload.QuestionID] = true
	}
	p.mu.Unlock()
	if already {
		return
	}

	if !p.session.PatchCorrectAnswers(payload.QuestionID, payload.CorrectAnswers) {
		log.Printf("[Poller] Вопрос #%d отсутствует в снапшоте, ответы не дописаны", payload.QuestionID)
	}
}

// WaitResults запрашивает результаты игрока, повторяя запрос каждые две
// секунды, пока сервер отвечает, что результаты еще не готовы. Другие
// ошибки и отмена контекста прекращают ожидание.
func (p *Poller) WaitResults(ctx context.Context) ([]entity.AnswerRecord, error) {
	ticker := time.NewTicker(ResultPollInterval)
	defer ticker.Stop()

	for {
		records, err := p.client.PlayerResults(ctx, p.session.PlayerID())
		if err == nil {
			return records, nil
		}
		if KindOf(err) != apperrors.KindNotReady {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
