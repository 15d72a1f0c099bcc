package service

import (
	"context"
	"log"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	"github.com/yourusername/quizgame-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
)

// GameService предоставляет методы для работы с играми.
// Формат редактора не знает частичных мутаций: любое изменение игр и
// вопросов приходит как полный список игр владельца.
type GameService struct {
	gameRepo repository.GameRepository
}

// NewGameService создает новый сервис игр
func NewGameService(gameRepo repository.GameRepository) *GameService {
	return &GameService{gameRepo: gameRepo}
}

// List возвращает все игры владельца
func (s *GameService) List(ctx context.Context, owner string) ([]entity.Game, error) {
	return s.gameRepo.GetByOwner(owner)
}

// Create создает новую пустую игру
func (s *GameService) Create(ctx context.Context, owner, name, thumbnail string) (*entity.Game, error) {
	if name == "" {
		return nil, apperrors.New(apperrors.KindValidation, "Game name is required")
	}

	game := &entity.Game{
		Owner:     owner,
		Name:      name,
		Thumbnail: thumbnail,
		Questions: entity.QuestionList{},
	}
	if err := s.gameRepo.Create(game); err != nil {
		return nil, err
	}

	log.Printf("[GameService] Создана игра #%d (%q) владельца %s", game.ID, game.Name, owner)
	return game, nil
}

// ReplaceAll заменяет весь список игр владельца. Перед сохранением каждому
// вопросу подставляются значения по умолчанию и проверяются инварианты;
// вопросам без идентификатора выдается следующий свободный внутри игры.
func (s *GameService) ReplaceAll(ctx context.Context, owner string, games []entity.Game) error {
	for i := range games {
		game := &games[i]
		if game.Name == "" {
			return apperrors.New(apperrors.KindValidation, "Game name is required")
		}
		for j := range game.Questions {
			q := &game.Questions[j]
			q.ApplyDefaults()
			if q.QuestionID == 0 {
				q.QuestionID = game.Questions.NextID()
			}
		}
		if err := game.Validate(); err != nil {
			return apperrors.New(apperrors.KindValidation, err.Error())
		}
	}

	if err := s.gameRepo.ReplaceAll(owner, games); err != nil {
		return err
	}

	log.Printf("[GameService] Список игр владельца %s заменен (%d игр)", owner, len(games))
	return nil
}
