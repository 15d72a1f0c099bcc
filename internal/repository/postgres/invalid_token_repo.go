package postgres

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
)

// InvalidTokenRepo реализует repository.InvalidTokenRepository
type InvalidTokenRepo struct {
	db *gorm.DB
}

// NewInvalidTokenRepo создает новый репозиторий инвалидированных токенов
func NewInvalidTokenRepo(db *gorm.DB) *InvalidTokenRepo {
	return &InvalidTokenRepo{db: db}
}

// AddInvalidToken добавляет запись об инвалидированном токене.
// Upsert: если пользователь уже в черном списке, время обновляется.
func (r *InvalidTokenRepo) AddInvalidToken(ctx context.Context, userID uint, invalidationTime time.Time) error {
	err := r.db.WithContext(ctx).Exec(`
		INSERT INTO invalid_tokens (user_id, invalidation_time)
		VALUES (?, ?)
		ON CONFLICT (user_id)
		DO UPDATE SET invalidation_time = ?
	`, userID, invalidationTime, invalidationTime).Error

	if err != nil {
		log.Printf("[InvalidTokenRepo] Ошибка при добавлении записи: %v", err)
		return err
	}
	return nil
}

// GetInvalidationTime возвращает запись об инвалидации для пользователя
func (r *InvalidTokenRepo) GetInvalidationTime(ctx context.Context, userID uint) (*entity.InvalidToken, error) {
	var token entity.InvalidToken
	err := r.db.WithContext(ctx).First(&token, "user_id = ?", userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &token, nil
}

// RemoveInvalidToken удаляет запись об инвалидированном токене
func (r *InvalidTokenRepo) RemoveInvalidToken(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Delete(&entity.InvalidToken{}, userID).Error
}
