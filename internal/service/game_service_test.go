package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
)

func TestCreateGame_RequiresName(t *testing.T) {
	gameRepo := new(MockGameRepository)
	svc := NewGameService(gameRepo)

	_, err := svc.Create(context.Background(), testOwner, "", "")

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	gameRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestCreateGame_StartsWithEmptyQuestionList(t *testing.T) {
	gameRepo := new(MockGameRepository)
	svc := NewGameService(gameRepo)

	gameRepo.On("Create", mock.AnythingOfType("*entity.Game")).
		Run(func(args mock.Arguments) {
			args.Get(0).(*entity.Game).ID = 1
		}).Return(nil)

	game, err := svc.Create(context.Background(), testOwner, "Новая игра", "thumb.png")

	require.NoError(t, err)
	assert.Equal(t, uint(1), game.ID)
	assert.NotNil(t, game.Questions, "Пустой список вопросов сериализуется как [], а не null")
	assert.Len(t, game.Questions, 0)
}

func TestReplaceAll_AppliesDefaultsAndAssignsIDs(t *testing.T) {
	// Arrange
	gameRepo := new(MockGameRepository)
	svc := NewGameService(gameRepo)

	games := []entity.Game{
		{
			Name: "Игра",
			Questions: entity.QuestionList{
				{
					// Идентификатор уже занят
					QuestionID:     5,
					Text:           "Вопрос с идентификатором",
					Type:           entity.QuestionTypeSingle,
					Duration:       30,
					Points:         100,
					Answers:        []entity.AnswerOption{{Answer: "A"}, {Answer: "B"}},
					CorrectAnswers: entity.StringArray{"A"},
				},
				{
					// Без идентификатора, типа, длительности и очков
					Text:           "Новый вопрос из редактора",
					Answers:        []entity.AnswerOption{{Answer: "C"}, {Answer: "D"}},
					CorrectAnswers: entity.StringArray{"C"},
				},
			},
		},
	}

	var saved []entity.Game
	gameRepo.On("ReplaceAll", testOwner, mock.Anything).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).([]entity.Game)
		}).Return(nil)

	// Act
	err := svc.ReplaceAll(context.Background(), testOwner, games)

	// Assert
	require.NoError(t, err)
	require.Len(t, saved, 1)
	q := saved[0].Questions[1]
	assert.Equal(t, 6, q.QuestionID, "Новому вопросу выдается следующий свободный идентификатор")
	assert.Equal(t, entity.QuestionTypeSingle, q.Type)
	assert.Equal(t, entity.DefaultQuestionDuration, q.Duration)
	assert.Equal(t, entity.DefaultQuestionPoints, q.Points)
}

func TestReplaceAll_FillsJudgementOptions(t *testing.T) {
	gameRepo := new(MockGameRepository)
	svc := NewGameService(gameRepo)

	games := []entity.Game{
		{
			Name: "Игра",
			Questions: entity.QuestionList{
				{
					Text:           "Верно или нет?",
					Type:           entity.QuestionTypeJudgement,
					CorrectAnswers: entity.StringArray{"Yes"},
				},
			},
		},
	}

	gameRepo.On("ReplaceAll", testOwner, mock.Anything).Return(nil)

	err := svc.ReplaceAll(context.Background(), testOwner, games)

	require.NoError(t, err)
	require.Len(t, games[0].Questions[0].Answers, 2)
	assert.Equal(t, "Yes", games[0].Questions[0].Answers[0].Answer)
	assert.Equal(t, "No", games[0].Questions[0].Answers[1].Answer)
}

func TestReplaceAll_RejectsInvalidQuestion(t *testing.T) {
	gameRepo := new(MockGameRepository)
	svc := NewGameService(gameRepo)

	games := []entity.Game{
		{
			Name: "Игра",
			Questions: entity.QuestionList{
				{
					Text:           "Правильный ответ не из вариантов",
					Type:           entity.QuestionTypeSingle,
					Answers:        []entity.AnswerOption{{Answer: "A"}, {Answer: "B"}},
					CorrectAnswers: entity.StringArray{"C"},
				},
			},
		},
	}

	err := svc.ReplaceAll(context.Background(), testOwner, games)

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	gameRepo.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
}

func TestReplaceAll_RequiresGameName(t *testing.T) {
	gameRepo := new(MockGameRepository)
	svc := NewGameService(gameRepo)

	err := svc.ReplaceAll(context.Background(), testOwner, []entity.Game{{Name: ""}})

	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	gameRepo.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
}

func TestList_PassesThrough(t *testing.T) {
	gameRepo := new(MockGameRepository)
	svc := NewGameService(gameRepo)

	expected := []entity.Game{{ID: 1, Name: "Игра"}}
	gameRepo.On("GetByOwner", testOwner).Return(expected, nil)

	games, err := svc.List(context.Background(), testOwner)

	require.NoError(t, err)
	assert.Equal(t, expected, games)
}
