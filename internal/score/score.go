// Package score содержит чистую логику подсчета очков и сведения итогов
// сессии. Пакет не ходит ни в базу, ни в сеть: сервер использует его при
// выдаче результатов, клиент — для локального пересчета по снапшотам.
package score

import (
	"math"
	"strconv"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
)

// Параметры кривой скоростного бонуса. Множитель спадает экспоненциально
// от 2.0 при мгновенном ответе до 2.0/8 = 0.25 при ответе на исходе времени;
// крутизна ln(8) подобрана ровно под этот диапазон. Константы менять нельзя —
// исторические результаты пересчитываются по той же формуле.
const maxFactor = 2.0

var steepness = math.Log(8)

// ComputeScore возвращает очки за один ответ.
//
// Время ответа берется из таймстемпов записи; если какого-то из них нет,
// считается, что игрок потратил всю длительность вопроса (минимальный бонус).
// Отношение затраченного времени к длительности ограничивается отрезком
// [0, 1]: опоздавшие ответы и рассинхронизация часов не дают ни
// отрицательных, ни разогнанных множителей.
//
// single и judgement оцениваются по флагу Correct; multiple — только при
// точном совпадении набора отправленных ответов с набором правильных.
// Частичное совпадение очков не приносит.
//
// Отсутствующий вопрос (nil) дает 0 без ошибки: рассогласование индексов
// в данных не должно ронять подсчет итогов.
func ComputeScore(rec entity.AnswerRecord, q *entity.Question) int {
	if q == nil {
		return 0
	}

	points := q.Points
	if points <= 0 {
		points = entity.DefaultQuestionPoints
	}
	duration := q.Duration
	if duration <= 0 {
		duration = entity.DefaultQuestionDuration
	}

	timeUsed := float64(duration)
	if rec.AnsweredAt != nil && rec.QuestionStartedAt != nil {
		timeUsed = rec.AnsweredAt.Sub(*rec.QuestionStartedAt).Seconds()
	}

	ratio := math.Min(timeUsed/float64(duration), 1)
	if ratio < 0 {
		ratio = 0
	}
	multiplier := maxFactor * math.Exp(-steepness*ratio)

	switch q.Type {
	case entity.QuestionTypeSingle, entity.QuestionTypeJudgement:
		if rec.Correct {
			return int(math.Round(float64(points) * multiplier))
		}
		return 0
	case entity.QuestionTypeMultiple:
		if q.IsCorrectSubmission(rec.Answers) {
			return int(math.Round(float64(points) * multiplier))
		}
		return 0
	}

	return 0
}

// MaxScore возвращает верхнюю границу очков за вопрос (мгновенный ответ)
func MaxScore(q *entity.Question) int {
	if q == nil {
		return 0
	}
	points := q.Points
	if points <= 0 {
		points = entity.DefaultQuestionPoints
	}
	return int(math.Round(float64(points) * maxFactor))
}

// questionFor подбирает вопрос для записи ответа. Базовое соответствие —
// позиционное (i-я запись отвечает i-му вопросу), но если запись несет
// явный идентификатор и он расходится с вопросом на этой позиции, ищем
// вопрос по идентификатору: так переупорядочивание снапшота не портит счет.
func questionFor(rec entity.AnswerRecord, questions []entity.Question, i int) *entity.Question {
	var byIndex *entity.Question
	if i >= 0 && i < len(questions) {
		byIndex = &questions[i]
	}
	if rec.QuestionID == 0 {
		return byIndex
	}
	if byIndex != nil && byIndex.QuestionID == rec.QuestionID {
		return byIndex
	}
	for j := range questions {
		if questions[j].QuestionID == rec.QuestionID {
			return &questions[j]
		}
	}
	return byIndex
}

// TotalScore возвращает сумму очков по всем ответам игрока.
// Записи без подходящего вопроса дают 0 и пропускаются.
func TotalScore(answers []entity.AnswerRecord, questions []entity.Question) int {
	total := 0
	for i, rec := range answers {
		total += ComputeScore(rec, questionFor(rec, questions, i))
	}
	return total
}

// ResolveLabels переводит отправленные идентификаторы ответов в подписи
// вариантов: числовой идентификатор трактуется как индекс варианта,
// нечисловой — как готовая подпись.
func ResolveLabels(submitted []string, q *entity.Question) []string {
	labels := make([]string, 0, len(submitted))
	for _, id := range submitted {
		if q != nil {
			if idx, err := strconv.Atoi(id); err == nil {
				if label := q.OptionLabel(idx); label != "" {
					labels = append(labels, label)
					continue
				}
			}
		}
		labels = append(labels, id)
	}
	return labels
}
