package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
)

func question(qType string, points, duration int, options []string, correct []string) *entity.Question {
	q := &entity.Question{
		QuestionID:     1,
		Text:           "test",
		Type:           qType,
		Points:         points,
		Duration:       duration,
		CorrectAnswers: entity.StringArray(correct),
	}
	for _, opt := range options {
		q.Answers = append(q.Answers, entity.AnswerOption{Answer: opt})
	}
	return q
}

func recordAt(started time.Time, elapsed time.Duration, correct bool, answers ...string) entity.AnswerRecord {
	answeredAt := started.Add(elapsed)
	return entity.AnswerRecord{
		QuestionID:        1,
		Answers:           entity.StringArray(answers),
		Correct:           correct,
		QuestionStartedAt: &started,
		AnsweredAt:        &answeredAt,
	}
}

func TestComputeScore_SpeedCurve(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := question(entity.QuestionTypeSingle, 100, 30, []string{"A", "B"}, []string{"A"})

	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"мгновенный ответ дает удвоенные очки", 0, 200},
		{"ответ на исходе времени дает четверть очков", 30 * time.Second, 25},
		{"ответ на половине времени", 15 * time.Second, 71},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recordAt(started, tt.elapsed, true, "A")
			assert.Equal(t, tt.want, ComputeScore(rec, q), "Очки должны считаться по экспоненциальной кривой")
		})
	}
}

func TestComputeScore_RatioClamp(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := question(entity.QuestionTypeSingle, 100, 30, []string{"A", "B"}, []string{"A"})

	// Опоздавший ответ не опускается ниже минимального множителя
	late := recordAt(started, 45*time.Second, true, "A")
	assert.Equal(t, 25, ComputeScore(late, q), "Опоздание не должно давать меньше минимума")

	// Рассинхронизация часов (ответ раньше старта) не разгоняет множитель
	skewed := recordAt(started, -5*time.Second, true, "A")
	assert.Equal(t, 200, ComputeScore(skewed, q), "Отрицательное время не должно превышать максимум")
}

func TestComputeScore_IncorrectGivesZero(t *testing.T) {
	started := time.Now().UTC()
	q := question(entity.QuestionTypeSingle, 100, 30, []string{"A", "B"}, []string{"A"})

	rec := recordAt(started, time.Second, false, "B")
	assert.Equal(t, 0, ComputeScore(rec, q))
}

func TestComputeScore_MultipleRequiresExactSet(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	q := question(entity.QuestionTypeMultiple, 100, 30, []string{"A", "B", "C", "D"}, []string{"A", "B"})

	tests := []struct {
		name    string
		answers []string
		want    int
	}{
		{"точное совпадение набора", []string{"A", "B"}, 71},
		{"порядок не важен", []string{"B", "A"}, 71},
		{"подмножество не засчитывается", []string{"A"}, 0},
		{"надмножество не засчитывается", []string{"A", "B", "C"}, 0},
		{"непересекающийся набор", []string{"C", "D"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := recordAt(started, 15*time.Second, false, tt.answers...)
			assert.Equal(t, tt.want, ComputeScore(rec, q), "Частичное совпадение не приносит очков")
		})
	}
}

func TestComputeScore_MissingData(t *testing.T) {
	q := question(entity.QuestionTypeSingle, 100, 30, []string{"A", "B"}, []string{"A"})

	// Отсутствующий вопрос дает 0 без паники
	assert.Equal(t, 0, ComputeScore(entity.AnswerRecord{Correct: true}, nil))

	// Без таймстемпов считается, что потрачена вся длительность
	rec := entity.AnswerRecord{QuestionID: 1, Answers: entity.StringArray{"A"}, Correct: true}
	assert.Equal(t, 25, ComputeScore(rec, q), "Без таймстемпов должен применяться минимальный множитель")
}

func TestComputeScore_DefaultsApplied(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	// Нулевые points и duration заменяются значениями по умолчанию
	q := question(entity.QuestionTypeSingle, 0, 0, []string{"A", "B"}, []string{"A"})

	rec := recordAt(started, 0, true, "A")
	assert.Equal(t, 200, ComputeScore(rec, q))
}

func TestMaxScore(t *testing.T) {
	assert.Equal(t, 200, MaxScore(question(entity.QuestionTypeSingle, 100, 30, nil, nil)))
	assert.Equal(t, 500, MaxScore(question(entity.QuestionTypeSingle, 250, 30, nil, nil)))
	assert.Equal(t, 0, MaxScore(nil))
}

func TestTotalScore_ExplicitIDLookup(t *testing.T) {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	answeredAt := started

	q1 := *question(entity.QuestionTypeSingle, 100, 30, []string{"A", "B"}, []string{"A"})
	q2 := *question(entity.QuestionTypeSingle, 100, 30, []string{"C", "D"}, []string{"C"})
	q1.QuestionID = 10
	q2.QuestionID = 20

	// Записи в обратном порядке относительно снапшота: явный идентификатор
	// должен найти правильный вопрос
	records := []entity.AnswerRecord{
		{QuestionID: 20, Answers: entity.StringArray{"C"}, Correct: true, QuestionStartedAt: &started, AnsweredAt: &answeredAt},
		{QuestionID: 10, Answers: entity.StringArray{"A"}, Correct: true, QuestionStartedAt: &started, AnsweredAt: &answeredAt},
	}

	total := TotalScore(records, []entity.Question{q1, q2})
	assert.Equal(t, 400, total, "Переупорядоченные записи должны сопоставляться по идентификатору вопроса")
}

func TestResolveLabels(t *testing.T) {
	q := question(entity.QuestionTypeSingle, 100, 30, []string{"Paris", "London", "Berlin"}, []string{"Paris"})

	tests := []struct {
		name      string
		submitted []string
		want      []string
	}{
		{"числовой идентификатор трактуется как индекс", []string{"1"}, []string{"London"}},
		{"текст передается как есть", []string{"Paris"}, []string{"Paris"}},
		{"индекс вне диапазона остается литералом", []string{"7"}, []string{"7"}},
		{"смешанный ввод", []string{"0", "Berlin"}, []string{"Paris", "Berlin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveLabels(tt.submitted, q))
		})
	}
}
