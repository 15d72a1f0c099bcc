package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ============================================================================
// Request validation tests — не требуют реального SessionService
// Handler возвращает 400 до вызова сервиса
// ============================================================================

func TestJoin_ValidationErrors(t *testing.T) {
	handler := &PlayerHandler{} // nil service — OK для validation tests

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "empty body",
			body:       nil,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing name",
			body:       map[string]string{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "name too long",
			body:       map[string]string{"name": string(make([]byte, 51))},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext("POST", "/play/join/123456", tt.body)
			handler.Join(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestSubmitAnswer_ValidationErrors(t *testing.T) {
	handler := &PlayerHandler{}

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "empty body",
			body:       nil,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing answers",
			body:       map[string]interface{}{"timeRemaining": 10},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty answers list",
			body:       map[string]interface{}{"answers": []string{}, "timeRemaining": 10},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestGinContext("PUT", "/play/7/answer", tt.body)
			handler.SubmitAnswer(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
