package repository

import (
	"github.com/yourusername/quizgame-api/internal/domain/entity"
)

// GameRepository определяет операции над играми
type GameRepository interface {
	Create(game *entity.Game) error
	// GetByID возвращает игру или ErrNotFound
	GetByID(id uint) (*entity.Game, error)
	// GetByOwner возвращает все игры владельца в порядке создания
	GetByOwner(owner string) ([]entity.Game, error)
	Update(game *entity.Game) error
	// ReplaceAll транзакционно заменяет весь список игр владельца:
	// отсутствующие в новом списке игры удаляются, остальные обновляются
	// или создаются. Частичных мутаций у формата нет.
	ReplaceAll(owner string, games []entity.Game) error
}
