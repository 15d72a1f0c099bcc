package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
)

// GameRepo реализует repository.GameRepository
type GameRepo struct {
	db *gorm.DB
}

// NewGameRepo создает новый репозиторий игр
func NewGameRepo(db *gorm.DB) *GameRepo {
	return &GameRepo{db: db}
}

// Create создает новую игру
func (r *GameRepo) Create(game *entity.Game) error {
	return r.db.Create(game).Error
}

// GetByID возвращает игру по ID
func (r *GameRepo) GetByID(id uint) (*entity.Game, error) {
	var game entity.Game
	err := r.db.First(&game, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &game, nil
}

// GetByOwner возвращает все игры владельца в порядке создания
func (r *GameRepo) GetByOwner(owner string) ([]entity.Game, error) {
	var games []entity.Game
	err := r.db.Where("owner = ?", owner).Order("id").Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

// Update сохраняет игру целиком
func (r *GameRepo) Update(game *entity.Game) error {
	return r.db.Save(game).Error
}

// ReplaceAll транзакционно заменяет весь список игр владельца.
// Формат редактора не знает частичных мутаций: клиент присылает полный
// список, игры вне списка считаются удаленными.
func (r *GameRepo) ReplaceAll(owner string, games []entity.Game) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		keep := make([]uint, 0, len(games))
		for i := range games {
			game := &games[i]
			game.Owner = owner // Владельца диктует токен, а не тело запроса

			if game.ID == 0 {
				if err := tx.Create(game).Error; err != nil {
					return fmt.Errorf("failed to create game: %w", err)
				}
			} else {
				res := tx.Model(&entity.Game{}).
					Where("id = ? AND owner = ?", game.ID, owner).
					Updates(map[string]interface{}{
						"name":      game.Name,
						"thumbnail": game.Thumbnail,
						"questions": game.Questions,
					})
				if res.Error != nil {
					return fmt.Errorf("failed to update game %d: %w", game.ID, res.Error)
				}
				if res.RowsAffected == 0 {
					return apperrors.ErrNotFound
				}
			}
			keep = append(keep, game.ID)
		}

		del := tx.Where("owner = ?", owner)
		if len(keep) > 0 {
			del = del.Where("id NOT IN ?", keep)
		}
		if err := del.Delete(&entity.Game{}).Error; err != nil {
			return fmt.Errorf("failed to delete removed games: %w", err)
		}
		return nil
	})
}
