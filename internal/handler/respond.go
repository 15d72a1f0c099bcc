package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
)

// respondError переводит ошибку сервиса в HTTP-ответ. Текст сообщения
// зафиксирован на уровне ошибок границы: по его подстрокам ветвятся
// существующие клиенты, поле code добавлено для новых.
func respondError(c *gin.Context, err error) {
	kind := apperrors.KindOf(err)
	message := err.Error()
	if kind == apperrors.KindInternal {
		log.Printf("[Handler] Внутренняя ошибка на %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		message = "Internal server error"
	}
	c.JSON(statusFor(kind), gin.H{"error": message, "code": kind})
}

func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindUnauthorized:
		return http.StatusUnauthorized
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindConflict:
		return http.StatusConflict
	case apperrors.KindNotReady:
		return http.StatusTooEarly
	}
	return http.StatusInternalServerError
}

// contextEmail возвращает email аутентифицированного пользователя,
// установленный middleware
func contextEmail(c *gin.Context) string {
	return c.GetString("email")
}

// contextUint возвращает числовой параметр, извлеченный param-middleware
func contextUint(c *gin.Context, key string) uint {
	v, ok := c.Get(key)
	if !ok {
		return 0
	}
	id, _ := v.(uint)
	return id
}
