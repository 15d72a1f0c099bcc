package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/quizgame-api/internal/service"
	"github.com/yourusername/quizgame-api/pkg/auth"
)

// Период отправки статуса в открытый сокет панели администратора
const statusStreamInterval = time.Second

// SessionStreamHandler отдает статус сессии потоком по WebSocket.
// Push-альтернатива опросу GET .../status для открытой панели.
type SessionStreamHandler struct {
	sessionService *service.SessionService
	jwtService     *auth.JWTService
	allowedOrigins map[string]bool
}

// NewSessionStreamHandler создает новый обработчик потока статуса
func NewSessionStreamHandler(sessionService *service.SessionService, jwtService *auth.JWTService, allowedOrigins []string) *SessionStreamHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &SessionStreamHandler{
		sessionService: sessionService,
		jwtService:     jwtService,
		allowedOrigins: origins,
	}
}

func (h *SessionStreamHandler) upgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Пустой Origin означает небраузерный клиент, такие подключения разрешены
			if origin == "" {
				return true
			}
			if h.allowedOrigins[origin] {
				return true
			}
			log.Printf("[SessionStream] Отклонен неразрешенный origin: %s", origin)
			return false
		},
		EnableCompression: true,
	}
}

// HandleConnection апгрейдит соединение и пишет статус сессии раз в секунду,
// пока сессия активна и клиент подключен. Токен передается параметром
// запроса: браузерный WebSocket API не умеет выставлять заголовки.
func (h *SessionStreamHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing token parameter"})
		return
	}

	claims, err := h.jwtService.ParseToken(c, token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	sessionID := contextUint(c, "session_id")

	// Право доступа проверяется до апгрейда, чтобы вернуть нормальный
	// HTTP-статус вместо обрыва сокета
	if _, err := h.sessionService.Status(c, claims.Email, sessionID); err != nil {
		respondError(c, err)
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[SessionStream] Ошибка апгрейда соединения: %v", err)
		return
	}
	defer conn.Close()

	log.Printf("[SessionStream] Панель %s подключилась к сессии #%d", claims.Email, sessionID)

	// Read pump нужен только для обнаружения закрытия со стороны клиента
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusStreamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			log.Printf("[SessionStream] Панель %s отключилась от сессии #%d", claims.Email, sessionID)
			return
		case <-ticker.C:
			status, err := h.sessionService.Status(c.Request.Context(), claims.Email, sessionID)
			if err != nil {
				log.Printf("[SessionStream] Ошибка получения статуса сессии #%d: %v", sessionID, err)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteJSON(status); err != nil {
				return
			}
			// Последнее состояние завершенной сессии уже отправлено
			if !status.Active {
				log.Printf("[SessionStream] Сессия #%d завершена, поток закрыт", sessionID)
				return
			}
		}
	}
}
