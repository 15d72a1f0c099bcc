// Package client - SDK платформы викторин: типизированные вызовы REST API,
// контекст сессии со снапшотами вопросов и опросчик состояния для клиентов
// без пользовательского интерфейса.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
	"github.com/yourusername/quizgame-api/internal/score"
)

const defaultRequestTimeout = 10 * time.Second

// Client - типизированный клиент REST API платформы
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New создает клиент для данного адреса сервера
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

// NewWithHTTPClient создает клиент с заданным http.Client (для тестов
// и нестандартных транспортов)
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// APIError - ошибка, возвращенная сервером. Kind восстанавливается из
// поля code, а для старых серверов без него - по подстроке сообщения.
type APIError struct {
	StatusCode int
	Kind       apperrors.Kind
	Message    string
}

// Error реализует интерфейс error
func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d %s): %s", e.StatusCode, e.Kind, e.Message)
}

// KindOf возвращает класс ошибки API; для прочих ошибок - KindInternal
func KindOf(err error) apperrors.Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return apperrors.KindInternal
}

// SessionStatus - статус сессии из панели администратора
type SessionStatus struct {
	Active            bool                `json:"active"`
	Position          int                 `json:"position"`
	Questions         entity.QuestionList `json:"questions"`
	Players           []string            `json:"players"`
	QuestionStartedAt *time.Time          `json:"isoTimeLastQuestionStarted"`
}

// SessionResults - результаты завершенной сессии
type SessionResults struct {
	SessionID   uint                     `json:"sessionId"`
	Results     []PlayerResult           `json:"results"`
	Leaderboard []score.LeaderboardEntry `json:"leaderboard"`
	Summary     score.Summary            `json:"summary"`
}

// PlayerResult - итог одного игрока в результатах сессии
type PlayerResult struct {
	Name         string                `json:"name"`
	Answers      []entity.AnswerRecord `json:"answers"`
	Score        int                   `json:"score"`
	CorrectCount int                   `json:"correctCount"`
}

// Тела запросов и ответов; формы совпадают с обработчиками сервера

type tokenResponse struct {
	Token string `json:"token"`
}

type joinResponse struct {
	PlayerID uint `json:"playerId"`
}

// PlayerState - состояние сессии глазами игрока
type PlayerState struct {
	Started      bool `json:"started"`
	Active       bool `json:"active"`
	SessionEnded bool `json:"sessionEnded"`
	Position     int  `json:"position"`
}

// QuestionPayload - текущий вопрос вместе со временем его старта
type QuestionPayload struct {
	entity.Question
	QuestionStartedAt *time.Time `json:"isoTimeLastQuestionStarted"`
}

// CorrectAnswersPayload - правильные ответы закрытого вопроса
type CorrectAnswersPayload struct {
	QuestionID     int      `json:"questionId"`
	CorrectAnswers []string `json:"correctAnswers"`
}

// MutationResult - результат мутации жизненного цикла игры
type MutationResult struct {
	SessionID uint `json:"sessionId"`
	Position  int  `json:"position"`
}

type gamesResponse struct {
	Games []entity.Game `json:"games"`
}

type playerResultsResponse struct {
	Results []entity.AnswerRecord `json:"results"`
}

// Register регистрирует пользователя и возвращает токен
func (c *Client) Register(ctx context.Context, email, password, name string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/admin/auth/register", "",
		map[string]string{"email": email, "password": password, "name": name}, &resp)
	return resp.Token, err
}

// Login входит в систему и возвращает токен
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var resp tokenResponse
	err := c.do(ctx, http.MethodPost, "/admin/auth/login", "",
		map[string]string{"email": email, "password": password}, &resp)
	return resp.Token, err
}

// Logout отзывает все токены пользователя
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/admin/auth/logout", token, struct{}{}, nil)
}

// Games возвращает все игры владельца токена
func (c *Client) Games(ctx context.Context, token string) ([]entity.Game, error) {
	var resp gamesResponse
	err := c.do(ctx, http.MethodGet, "/admin/games", token, nil, &resp)
	return resp.Games, err
}

// CreateGame создает новую пустую игру
func (c *Client) CreateGame(ctx context.Context, token, name, thumbnail string) (*entity.Game, error) {
	var game entity.Game
	err := c.do(ctx, http.MethodPost, "/admin/games", token,
		map[string]string{"name": name, "thumbnail": thumbnail}, &game)
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// ReplaceGames заменяет весь список игр владельца и возвращает
// его актуальное состояние
func (c *Client) ReplaceGames(ctx context.Context, token string, games []entity.Game) ([]entity.Game, error) {
	var resp gamesResponse
	err := c.do(ctx, http.MethodPut, "/admin/games", token,
		map[string]interface{}{"games": games}, &resp)
	return resp.Games, err
}

// MutateGame выполняет мутацию жизненного цикла игры (START/ADVANCE/END)
func (c *Client) MutateGame(ctx context.Context, token string, gameID uint, mutation string) (*MutationResult, error) {
	var result MutationResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/admin/games/%d/mutate", gameID), token,
		map[string]string{"mutationType": mutation}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// SessionStatus возвращает статус сессии (панель администратора)
func (c *Client) SessionStatus(ctx context.Context, token string, sessionID uint) (*SessionStatus, error) {
	var status SessionStatus
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/session/%d/status", sessionID), token, nil, &status)
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// SessionResults возвращает результаты завершенной сессии
func (c *Client) SessionResults(ctx context.Context, token string, sessionID uint) (*SessionResults, error) {
	var results SessionResults
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/admin/session/%d/results", sessionID), token, nil, &results)
	if err != nil {
		return nil, err
	}
	return &results, nil
}

// ValidateSession проверяет, что сессия существует и принимает игроков.
// Используется зарезервированное имя: сервер отвечает, не создавая записи.
func (c *Client) ValidateSession(ctx context.Context, sessionID uint) error {
	_, err := c.Join(ctx, sessionID, entity.ProbeName)
	return err
}

// Join присоединяет игрока к сессии и возвращает его идентификатор
func (c *Client) Join(ctx context.Context, sessionID uint, name string) (uint, error) {
	var resp joinResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/play/join/%d", sessionID), "",
		map[string]string{"name": name}, &resp)
	return resp.PlayerID, err
}

// PlayerStatus возвращает состояние сессии глазами игрока
func (c *Client) PlayerStatus(ctx context.Context, playerID uint) (*PlayerState, error) {
	var state PlayerState
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/play/%d/status", playerID), "", nil, &state)
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// CurrentQuestion возвращает текущий вопрос без правильных ответов
func (c *Client) CurrentQuestion(ctx context.Context, playerID uint) (*QuestionPayload, error) {
	var q QuestionPayload
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/play/%d/question", playerID), "", nil, &q)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// SubmitAnswer отправляет ответ на текущий вопрос. Повторная отправка
// до окончания отсчета перезаписывает предыдущий выбор.
func (c *Client) SubmitAnswer(ctx context.Context, playerID uint, answers []string, timeRemaining int) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/play/%d/answer", playerID), "",
		map[string]interface{}{"answers": answers, "timeRemaining": timeRemaining}, nil)
}

// CorrectAnswers возвращает правильные ответы последнего закрытого вопроса
func (c *Client) CorrectAnswers(ctx context.Context, playerID uint) (*CorrectAnswersPayload, error) {
	var payload CorrectAnswersPayload
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/play/%d/answer", playerID), "", nil, &payload)
	if err != nil {
		return nil, err
	}
	return &payload, nil
}

// PlayerResults возвращает ответы игрока после завершения сессии
func (c *Client) PlayerResults(ctx context.Context, playerID uint) ([]entity.AnswerRecord, error) {
	var resp playerResultsResponse
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/play/%d/results", playerID), "", nil, &resp)
	return resp.Results, err
}

// do выполняет запрос и декодирует ответ. Ошибки сервера превращаются
// в *APIError с восстановленным классом.
func (c *Client) do(ctx context.Context, method, path, token string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp.StatusCode, data)
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// decodeAPIError восстанавливает класс ошибки из тела ответа.
// Сначала по полю code, затем по подстроке сообщения (серверы старых
// версий отдавали только текст), затем по HTTP-статусу.
func decodeAPIError(statusCode int, body []byte) *APIError {
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	_ = json.Unmarshal(body, &payload)

	apiErr := &APIError{
		StatusCode: statusCode,
		Message:    payload.Error,
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}

	if payload.Code != "" {
		apiErr.Kind = apperrors.Kind(payload.Code)
		return apiErr
	}

	lower := strings.ToLower(apiErr.Message)
	switch {
	case strings.Contains(lower, "has already begun"):
		apiErr.Kind = apperrors.KindConflict
	case strings.Contains(lower, "not an active session"):
		apiErr.Kind = apperrors.KindConflict
	case strings.Contains(lower, "not available yet"):
		apiErr.Kind = apperrors.KindNotReady
	case statusCode == http.StatusUnauthorized:
		apiErr.Kind = apperrors.KindUnauthorized
	case statusCode == http.StatusNotFound:
		apiErr.Kind = apperrors.KindNotFound
	case statusCode == http.StatusConflict:
		apiErr.Kind = apperrors.KindConflict
	case statusCode == http.StatusTooEarly:
		apiErr.Kind = apperrors.KindNotReady
	case statusCode == http.StatusBadRequest:
		apiErr.Kind = apperrors.KindValidation
	default:
		apiErr.Kind = apperrors.KindInternal
	}
	return apiErr
}
