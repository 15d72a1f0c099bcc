package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestGinContext создает *gin.Context для тестов с JSON body
func newTestGinContext(method, path string, body interface{}) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()

	var req *http.Request
	if body != nil {
		bodyBytes, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, path, bytes.NewReader(bodyBytes))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

// parseJSONResponse парсит JSON ответ из *httptest.ResponseRecorder
func parseJSONResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	require.NoError(t, err, "Response body should be valid JSON: %s", w.Body.String())
	return resp
}

func TestStatusFor_KindMapping(t *testing.T) {
	tests := []struct {
		kind apperrors.Kind
		want int
	}{
		{apperrors.KindUnauthorized, http.StatusUnauthorized},
		{apperrors.KindValidation, http.StatusBadRequest},
		{apperrors.KindNotFound, http.StatusNotFound},
		{apperrors.KindConflict, http.StatusConflict},
		{apperrors.KindNotReady, http.StatusTooEarly},
		{apperrors.KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.kind), "kind %s", tt.kind)
	}
}

func TestRespondError_WireFormat(t *testing.T) {
	c, w := newTestGinContext("GET", "/play/7/results", nil)

	respondError(c, apperrors.ErrAnswersNotReady)

	assert.Equal(t, http.StatusTooEarly, w.Code)
	resp := parseJSONResponse(t, w)
	// Текст зафиксирован: по его подстрокам ветвятся существующие клиенты
	assert.Equal(t, "Question answers are not available yet", resp["error"])
	assert.Equal(t, "NOT_READY", resp["code"])
}

func TestRespondError_HidesInternalDetails(t *testing.T) {
	c, w := newTestGinContext("GET", "/admin/games", nil)

	respondError(c, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := parseJSONResponse(t, w)
	assert.Equal(t, "Internal server error", resp["error"], "Детали внутренних ошибок не утекают наружу")
}
