package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	"github.com/yourusername/quizgame-api/internal/service"
)

// PlayerHandler обрабатывает запросы игроков. Игроки не аутентифицируются:
// идентификатор игрока, выданный при входе в сессию, служит ключом доступа.
type PlayerHandler struct {
	sessionService *service.SessionService
}

// NewPlayerHandler создает новый обработчик игроков
func NewPlayerHandler(sessionService *service.SessionService) *PlayerHandler {
	return &PlayerHandler{sessionService: sessionService}
}

// JoinRequest представляет запрос на вход в сессию
type JoinRequest struct {
	Name string `json:"name" binding:"required,max=50"`
}

// JoinResponse - ответ на вход в сессию
type JoinResponse struct {
	PlayerID uint `json:"playerId"`
}

// SubmitAnswerRequest представляет отправку ответа на текущий вопрос.
// TimeRemaining принимается для совместимости со старыми клиентами,
// но время считается по серверным часам.
type SubmitAnswerRequest struct {
	Answers       []string `json:"answers" binding:"required,min=1"`
	TimeRemaining int      `json:"timeRemaining"`
}

// questionResponse - текущий вопрос без правильных ответов
// вместе со временем его старта
type questionResponse struct {
	entity.Question
	QuestionStartedAt *time.Time `json:"isoTimeLastQuestionStarted"`
}

// correctAnswersResponse - правильные ответы закрытого вопроса
type correctAnswersResponse struct {
	QuestionID     int      `json:"questionId"`
	CorrectAnswers []string `json:"correctAnswers"`
}

// Join присоединяет игрока к сессии
func (h *PlayerHandler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sessionID := contextUint(c, "session_id")
	playerID, err := h.sessionService.Join(c, sessionID, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, JoinResponse{PlayerID: playerID})
}

// Status возвращает состояние сессии глазами игрока
func (h *PlayerHandler) Status(c *gin.Context) {
	playerID := contextUint(c, "player_id")
	state, err := h.sessionService.PlayerStatus(c, playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// Question возвращает текущий вопрос без правильных ответов
func (h *PlayerHandler) Question(c *gin.Context) {
	playerID := contextUint(c, "player_id")
	q, startedAt, err := h.sessionService.CurrentQuestion(c, playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, questionResponse{
		Question:          *q,
		QuestionStartedAt: startedAt,
	})
}

// SubmitAnswer записывает ответ игрока на текущий вопрос
func (h *PlayerHandler) SubmitAnswer(c *gin.Context) {
	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	playerID := contextUint(c, "player_id")
	if err := h.sessionService.SubmitAnswer(c, playerID, req.Answers, req.TimeRemaining); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Answer recorded"})
}

// CorrectAnswers возвращает правильные ответы последнего закрытого вопроса
func (h *PlayerHandler) CorrectAnswers(c *gin.Context) {
	playerID := contextUint(c, "player_id")
	questionID, answers, err := h.sessionService.CorrectAnswers(c, playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, correctAnswersResponse{
		QuestionID:     questionID,
		CorrectAnswers: answers,
	})
}

// Results возвращает ответы игрока после завершения сессии
func (h *PlayerHandler) Results(c *gin.Context) {
	playerID := contextUint(c, "player_id")
	records, err := h.sessionService.PlayerResults(c, playerID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": records})
}
