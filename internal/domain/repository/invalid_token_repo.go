package repository

import (
	"context"
	"time"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
)

// InvalidTokenRepository определяет операции над записями об
// инвалидированных токенах (используется при logout)
type InvalidTokenRepository interface {
	// AddInvalidToken фиксирует момент, раньше которого токены пользователя недействительны
	AddInvalidToken(ctx context.Context, userID uint, invalidationTime time.Time) error
	// GetInvalidationTime возвращает запись для пользователя или ErrNotFound
	GetInvalidationTime(ctx context.Context, userID uint) (*entity.InvalidToken, error)
	// RemoveInvalidToken снимает инвалидацию (при новом логине)
	RemoveInvalidToken(ctx context.Context, userID uint) error
}
