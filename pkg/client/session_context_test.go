package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
)

func snapshotQuestion(id int, text string) entity.Question {
	return entity.Question{
		QuestionID: id,
		Text:       text,
		Type:       entity.QuestionTypeSingle,
		Duration:   30,
		Points:     100,
		Answers:    []entity.AnswerOption{{Answer: "A"}, {Answer: "B"}},
	}
}

func TestRecordQuestion_DeduplicatesByID(t *testing.T) {
	sc := NewSessionContext(123456)

	// Каждый цикл опроса приносит текущий вопрос заново
	sc.RecordQuestion(snapshotQuestion(1, "Вопрос"))
	sc.RecordQuestion(snapshotQuestion(1, "Вопрос (обновленный текст)"))
	sc.RecordQuestion(snapshotQuestion(2, "Второй"))

	questions := sc.Questions()
	require.Len(t, questions, 2)
	assert.Equal(t, "Вопрос (обновленный текст)", questions[0].Text)
	assert.Equal(t, 2, questions[1].QuestionID)
}

func TestRecordQuestion_KeepsPatchedAnswers(t *testing.T) {
	sc := NewSessionContext(123456)

	sc.RecordQuestion(snapshotQuestion(1, "Вопрос"))
	require.True(t, sc.PatchCorrectAnswers(1, []string{"A"}))

	// Повторная запись без правильных ответов не должна их затереть
	sc.RecordQuestion(snapshotQuestion(1, "Вопрос"))

	q := sc.Question(1)
	require.NotNil(t, q)
	assert.Equal(t, entity.StringArray{"A"}, q.CorrectAnswers)
}

func TestPatchCorrectAnswers_UnknownQuestion(t *testing.T) {
	sc := NewSessionContext(123456)

	assert.False(t, sc.PatchCorrectAnswers(99, []string{"A"}))
}

func TestScoreResults_MatchesServerFormula(t *testing.T) {
	sc := NewSessionContext(123456)

	q := snapshotQuestion(1, "Вопрос")
	sc.RecordQuestion(q)
	sc.PatchCorrectAnswers(1, []string{"A"})

	at := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	records := []entity.AnswerRecord{
		{
			QuestionID:        1,
			Answers:           entity.StringArray{"A"},
			Correct:           true,
			QuestionStartedAt: &at,
			AnsweredAt:        &at,
		},
	}

	rows, total := sc.ScoreResults(records)

	require.Len(t, rows, 1)
	assert.Equal(t, 200, total, "Мгновенный верный ответ дает удвоенные базовые очки")
}

func TestReset_ClearsState(t *testing.T) {
	sc := NewSessionContext(123456)
	sc.SetCredentials("token", "admin@test.com")
	sc.SetPlayerID(7)
	sc.RecordQuestion(snapshotQuestion(1, "Вопрос"))

	sc.Reset()

	assert.Empty(t, sc.Token())
	assert.Empty(t, sc.Email())
	assert.Equal(t, uint(0), sc.PlayerID())
	assert.Empty(t, sc.Questions())
	// Идентификатор сессии переживает сброс
	assert.Equal(t, uint(123456), sc.SessionID())
}
