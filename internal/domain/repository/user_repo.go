package repository

import (
	"github.com/yourusername/quizgame-api/internal/domain/entity"
)

// UserRepository определяет операции над администраторами
type UserRepository interface {
	// Create создает пользователя; при занятом email возвращает ErrConflict
	Create(user *entity.User) error
	// GetByEmail возвращает пользователя по email или ErrNotFound
	GetByEmail(email string) (*entity.User, error)
	// GetByID возвращает пользователя по ID или ErrNotFound
	GetByID(id uint) (*entity.User, error)
}
