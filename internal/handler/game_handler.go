package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	"github.com/yourusername/quizgame-api/internal/service"
)

// GameHandler обрабатывает запросы администрирования игр
type GameHandler struct {
	gameService    *service.GameService
	sessionService *service.SessionService
}

// NewGameHandler создает новый обработчик игр
func NewGameHandler(gameService *service.GameService, sessionService *service.SessionService) *GameHandler {
	return &GameHandler{
		gameService:    gameService,
		sessionService: sessionService,
	}
}

// CreateGameRequest представляет запрос на создание игры
type CreateGameRequest struct {
	Name      string `json:"name" binding:"required,max=100"`
	Thumbnail string `json:"thumbnail" binding:"omitempty"`
}

// ReplaceGamesRequest представляет запрос на замену всего списка игр.
// Других примитивов изменения у формата нет: редактор присылает список
// целиком, отсутствующие в нем игры удаляются.
type ReplaceGamesRequest struct {
	Games []entity.Game `json:"games" binding:"required"`
}

// MutateRequest представляет запрос на мутацию жизненного цикла игры
type MutateRequest struct {
	MutationType string `json:"mutationType" binding:"required"`
}

// List возвращает все игры владельца
func (h *GameHandler) List(c *gin.Context) {
	games, err := h.gameService.List(c, contextEmail(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// Create создает новую пустую игру
func (h *GameHandler) Create(c *gin.Context) {
	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	game, err := h.gameService.Create(c, contextEmail(c), req.Name, req.Thumbnail)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, game)
}

// ReplaceAll транзакционно заменяет весь список игр владельца
// и возвращает его актуальное состояние
func (h *GameHandler) ReplaceAll(c *gin.Context) {
	var req ReplaceGamesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	owner := contextEmail(c)
	if err := h.gameService.ReplaceAll(c, owner, req.Games); err != nil {
		respondError(c, err)
		return
	}

	games, err := h.gameService.List(c, owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}

// Mutate выполняет мутацию жизненного цикла игры (START/ADVANCE/END)
func (h *GameHandler) Mutate(c *gin.Context) {
	var req MutateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	gameID := contextUint(c, "game_id")
	result, err := h.sessionService.Mutate(c, contextEmail(c), gameID, req.MutationType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
