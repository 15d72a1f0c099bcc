package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	"github.com/yourusername/quizgame-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
	"github.com/yourusername/quizgame-api/internal/score"
)

// PlayerResult - итог одного игрока за сессию
type PlayerResult struct {
	Name string `json:"name"`
	// Answers выровнены по снапшоту вопросов: одна запись на вопрос
	Answers      []entity.AnswerRecord `json:"answers"`
	Score        int                   `json:"score"`
	CorrectCount int                   `json:"correctCount"`
}

// SessionResults - полные результаты сессии для панели администратора
type SessionResults struct {
	SessionID   uint                     `json:"sessionId"`
	Results     []PlayerResult           `json:"results"`
	Leaderboard []score.LeaderboardEntry `json:"leaderboard"`
	Summary     score.Summary            `json:"summary"`
}

// ResultService агрегирует результаты завершенных сессий
type ResultService struct {
	sessionRepo  repository.SessionRepository
	emailService EmailService
}

// NewResultService создает новый сервис результатов
func NewResultService(sessionRepo repository.SessionRepository, emailService EmailService) *ResultService {
	return &ResultService{
		sessionRepo:  sessionRepo,
		emailService: emailService,
	}
}

// SessionResults возвращает результаты сессии для ее владельца.
// Пока сессия активна, результаты недоступны: правильные ответы еще
// не подлежат раскрытию целиком.
func (s *ResultService) SessionResults(ctx context.Context, owner string, sessionID uint) (*SessionResults, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}
	if session.Owner != owner {
		return nil, apperrors.ErrSessionNotFound
	}
	if session.Active {
		return nil, apperrors.ErrAnswersNotReady
	}
	return s.buildResults(ctx, session)
}

// buildResults собирает результаты без проверки прав: вызывающий код
// уже установил, что сессия завершена и доступ разрешен
func (s *ResultService) buildResults(ctx context.Context, session *entity.Session) (*SessionResults, error) {
	players, err := s.sessionRepo.ListPlayers(session.ID)
	if err != nil {
		return nil, err
	}
	grouped, err := s.sessionRepo.GetSessionAnswers(session.ID)
	if err != nil {
		return nil, err
	}

	playerAnswers := make([]score.PlayerAnswers, 0, len(players))
	results := make([]PlayerResult, 0, len(players))
	for _, p := range players {
		aligned := alignAnswers(grouped[p.ID], session.Questions)
		playerAnswers = append(playerAnswers, score.PlayerAnswers{
			Name:    p.Name,
			Answers: aligned,
		})

		correct := 0
		for _, rec := range aligned {
			if rec.Correct {
				correct++
			}
		}
		results = append(results, PlayerResult{
			Name:         p.Name,
			Answers:      aligned,
			Score:        score.TotalScore(aligned, session.Questions),
			CorrectCount: correct,
		})
	}

	return &SessionResults{
		SessionID:   session.ID,
		Results:     results,
		Leaderboard: score.Leaderboard(playerAnswers, session.Questions, score.LeaderboardSize),
		Summary:     score.Summarize(playerAnswers, session.Questions),
	}, nil
}

// SendOwnerSummary отправляет владельцу игры письмо с итогами сессии
func (s *ResultService) SendOwnerSummary(ctx context.Context, ownerEmail, gameName string, sessionID uint) error {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		return err
	}
	results, err := s.buildResults(ctx, session)
	if err != nil {
		return err
	}

	log.Printf("[ResultService] Отправляем сводку сессии #%d владельцу %s", sessionID, ownerEmail)
	return s.emailService.SendSessionSummary(ctx, ownerEmail, gameName, sessionID, renderSummaryHTML(gameName, results))
}

// renderSummaryHTML строит тело письма-сводки. Имена игроков приходят от
// пользователей и экранируются.
func renderSummaryHTML(gameName string, results *SessionResults) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(gameName))
	fmt.Fprintf(&b, "<p>Участников: %d. Вопросов: %d. Точность: %d%%.</p>",
		results.Summary.Participants, results.Summary.TotalQuestions, results.Summary.AccuracyPercent)

	if len(results.Leaderboard) > 0 {
		b.WriteString("<ol>")
		for _, entry := range results.Leaderboard {
			fmt.Fprintf(&b, "<li>%s — %d</li>", html.EscapeString(entry.Name), entry.Score)
		}
		b.WriteString("</ol>")
	}
	return b.String()
}
