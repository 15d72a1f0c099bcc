package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// Типы вопросов
const (
	QuestionTypeSingle    = "single"
	QuestionTypeMultiple  = "multiple"
	QuestionTypeJudgement = "judgement"
)

// Значения по умолчанию, которые подставляются при создании вопроса в редакторе
const (
	DefaultQuestionDuration = 30  // секунд
	DefaultQuestionPoints   = 100 // базовые очки
)

// Ограничения на количество вариантов ответа для single/multiple
const (
	MinAnswerOptions = 2
	MaxAnswerOptions = 6
)

// Фиксированная пара вариантов для вопросов типа judgement
var JudgementOptions = []string{"Yes", "No"}

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// AnswerOption представляет один вариант ответа.
// Имена JSON-полей ("Answers"/"Answer") сохранены в историческом виде —
// их ожидают существующие клиенты.
type AnswerOption struct {
	Answer string `json:"Answer"`
}

// Question представляет вопрос игры. Вопросы не имеют собственной таблицы:
// они хранятся внутри игры (и внутри снапшота сессии) как JSONB-список,
// потому что единственная операция изменения — замена всего списка игр.
type Question struct {
	QuestionID     int            `json:"questionId"`
	Text           string         `json:"text"`
	Type           string         `json:"type"`
	Duration       int            `json:"duration"`
	Points         int            `json:"points"`
	Media          string         `json:"media,omitempty"`
	Answers        []AnswerOption `json:"Answers"`
	CorrectAnswers StringArray    `json:"correctAnswers"`
}

// ApplyDefaults подставляет значения по умолчанию для незаполненных полей,
// как это делает интерфейс редактора при создании вопроса
func (q *Question) ApplyDefaults() {
	if q.Type == "" {
		q.Type = QuestionTypeSingle
	}
	if q.Duration <= 0 {
		q.Duration = DefaultQuestionDuration
	}
	if q.Points <= 0 {
		q.Points = DefaultQuestionPoints
	}
	if q.Type == QuestionTypeJudgement && len(q.Answers) == 0 {
		for _, opt := range JudgementOptions {
			q.Answers = append(q.Answers, AnswerOption{Answer: opt})
		}
	}
}

// Validate проверяет инварианты вопроса:
//   - тип из допустимого перечня;
//   - для single/multiple от 2 до 6 непустых вариантов;
//   - для judgement ровно пара "Yes"/"No";
//   - правильные ответы являются подмножеством вариантов.
func (q *Question) Validate() error {
	switch q.Type {
	case QuestionTypeSingle, QuestionTypeMultiple:
		if len(q.Answers) < MinAnswerOptions || len(q.Answers) > MaxAnswerOptions {
			return fmt.Errorf("question %d: expected %d-%d answer options, got %d",
				q.QuestionID, MinAnswerOptions, MaxAnswerOptions, len(q.Answers))
		}
		for i, a := range q.Answers {
			if a.Answer == "" {
				return fmt.Errorf("question %d: answer option %d is empty", q.QuestionID, i)
			}
		}
	case QuestionTypeJudgement:
		if len(q.Answers) != len(JudgementOptions) {
			return fmt.Errorf("question %d: judgement question must have exactly %d options",
				q.QuestionID, len(JudgementOptions))
		}
		for i, opt := range JudgementOptions {
			if q.Answers[i].Answer != opt {
				return fmt.Errorf("question %d: judgement options must be %v", q.QuestionID, JudgementOptions)
			}
		}
	default:
		return fmt.Errorf("question %d: unknown question type %q", q.QuestionID, q.Type)
	}

	if q.Duration <= 0 {
		return fmt.Errorf("question %d: duration must be positive", q.QuestionID)
	}
	if q.Points <= 0 {
		return fmt.Errorf("question %d: points must be positive", q.QuestionID)
	}

	for _, correct := range q.CorrectAnswers {
		if !q.HasOption(correct) {
			return fmt.Errorf("question %d: correct answer %q is not among the options", q.QuestionID, correct)
		}
	}
	return nil
}

// HasOption проверяет, есть ли вариант с данным текстом среди ответов
func (q *Question) HasOption(label string) bool {
	for _, a := range q.Answers {
		if a.Answer == label {
			return true
		}
	}
	return false
}

// OptionLabel возвращает текст варианта по индексу.
// Для индекса вне диапазона возвращается пустая строка.
func (q *Question) OptionLabel(idx int) string {
	if idx < 0 || idx >= len(q.Answers) {
		return ""
	}
	return q.Answers[idx].Answer
}

// IsCorrectSubmission проверяет, совпадает ли набор отправленных ответов
// с набором правильных точно (каждый правильный выбран, ни одного лишнего).
// Частичное совпадение не засчитывается.
func (q *Question) IsCorrectSubmission(submitted []string) bool {
	if len(q.CorrectAnswers) == 0 {
		return false
	}
	correct := make(map[string]struct{}, len(q.CorrectAnswers))
	for _, a := range q.CorrectAnswers {
		correct[a] = struct{}{}
	}
	seen := make(map[string]struct{}, len(submitted))
	for _, a := range submitted {
		if _, ok := correct[a]; !ok {
			return false
		}
		seen[a] = struct{}{}
	}
	return len(seen) == len(correct)
}

// WithoutCorrectAnswers возвращает копию вопроса без правильных ответов —
// в таком виде вопрос отдается игроку до окончания отсчета
func (q Question) WithoutCorrectAnswers() Question {
	q.CorrectAnswers = nil
	return q
}

// QuestionList - JSONB-список вопросов (внутри игры и снапшота сессии)
type QuestionList []Question

// Scan реализует интерфейс sql.Scanner для QuestionList
func (l *QuestionList) Scan(value interface{}) error {
	if value == nil {
		*l = QuestionList{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*l = QuestionList{}
		return nil
	}

	return json.Unmarshal(bytes, l)
}

// Value реализует интерфейс driver.Valuer для QuestionList
func (l QuestionList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// ByID возвращает вопрос с данным идентификатором или nil
func (l QuestionList) ByID(questionID int) *Question {
	for i := range l {
		if l[i].QuestionID == questionID {
			return &l[i]
		}
	}
	return nil
}

// NextID возвращает следующий свободный идентификатор вопроса внутри игры
func (l QuestionList) NextID() int {
	next := 1
	for _, q := range l {
		if q.QuestionID >= next {
			next = q.QuestionID + 1
		}
	}
	return next
}
