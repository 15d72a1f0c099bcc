package score

import (
	"math"
	"sort"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
)

// LeaderboardSize - сколько игроков попадает в сводную таблицу лидеров
const LeaderboardSize = 5

// PlayerAnswers - ответы одного игрока за сессию (выровнены по вопросам)
type PlayerAnswers struct {
	Name    string
	Answers []entity.AnswerRecord
}

// ResultRow - строка таблицы результатов одного игрока по одному вопросу
type ResultRow struct {
	QuestionText string   `json:"question"`
	AnswerLabels []string `json:"answerLabels"`
	Correct      bool     `json:"correct"`
	// TimeUsedSec равен nil, когда таймстемпов нет: время недоступно, а не нулевое
	TimeUsedSec *int `json:"timeUsedSec"`
	Score       int  `json:"score"`
}

// LeaderboardEntry - позиция в таблице лидеров
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Summary - сводная статистика сессии
type Summary struct {
	Participants    int `json:"participants"`
	TotalQuestions  int `json:"totalQuestions"`
	AccuracyPercent int `json:"accuracyPercent"`
	// Повопросные ряды для графиков панели администратора
	QuestionAccuracy   []int `json:"questionAccuracy"`   // % ответивших верно, по вопросам
	QuestionAvgTimeSec []int `json:"questionAvgTimeSec"` // среднее время ответа, по вопросам
	// Количество правильных ответов по игрокам (в порядке входа)
	CorrectByPlayer []LeaderboardEntry `json:"correctByPlayer"`
}

// BuildRows строит отображаемые строки результатов игрока. Если ответов
// меньше, чем вопросов, недостающие строки добавляются пустыми ("ответ не
// отправлен"), чтобы таблица покрывала всю сессию.
func BuildRows(answers []entity.AnswerRecord, questions []entity.Question) []ResultRow {
	n := len(answers)
	if len(questions) > n {
		n = len(questions)
	}
	rows := make([]ResultRow, 0, n)
	for i := 0; i < n; i++ {
		var rec entity.AnswerRecord
		if i < len(answers) {
			rec = answers[i]
		}
		q := questionFor(rec, questions, i)

		row := ResultRow{
			Correct: rec.Correct,
			Score:   ComputeScore(rec, q),
		}
		if q != nil {
			row.QuestionText = q.Text
		}
		if rec.Answered() {
			row.AnswerLabels = ResolveLabels(rec.Answers, q)
			row.TimeUsedSec = rec.TimeUsedSeconds()
		}
		rows = append(rows, row)
	}
	return rows
}

// realPlayers отбрасывает служебные записи-проверки. Хранилище уже
// фильтрует их, но агрегатор — чистая функция и может получать сырые
// данные, поэтому контракт поддерживается и здесь.
func realPlayers(players []PlayerAnswers) []PlayerAnswers {
	filtered := make([]PlayerAnswers, 0, len(players))
	for _, p := range players {
		if p.Name == entity.ProbeName {
			continue
		}
		filtered = append(filtered, p)
	}
	return filtered
}

// Leaderboard возвращает до topN игроков, отсортированных по убыванию
// суммарного счета. Сортировка стабильная: при равенстве очков сохраняется
// исходный порядок игроков.
func Leaderboard(players []PlayerAnswers, questions []entity.Question, topN int) []LeaderboardEntry {
	filtered := realPlayers(players)

	entries := make([]LeaderboardEntry, 0, len(filtered))
	for _, p := range filtered {
		entries = append(entries, LeaderboardEntry{
			Name:  p.Name,
			Score: TotalScore(p.Answers, questions),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}

// Summarize считает сводную статистику сессии. Нулевое количество
// участников или вопросов дает нулевую точность, а не ошибку деления.
func Summarize(players []PlayerAnswers, questions []entity.Question) Summary {
	filtered := realPlayers(players)

	s := Summary{
		Participants:       len(filtered),
		TotalQuestions:     len(questions),
		QuestionAccuracy:   make([]int, len(questions)),
		QuestionAvgTimeSec: make([]int, len(questions)),
	}

	totalCorrect := 0
	for _, p := range filtered {
		playerCorrect := 0
		for _, rec := range p.Answers {
			if rec.Correct {
				playerCorrect++
			}
		}
		totalCorrect += playerCorrect
		s.CorrectByPlayer = append(s.CorrectByPlayer, LeaderboardEntry{
			Name:  p.Name,
			Score: playerCorrect,
		})
	}

	if s.Participants > 0 && s.TotalQuestions > 0 {
		rate := float64(totalCorrect) / float64(s.Participants*s.TotalQuestions)
		s.AccuracyPercent = int(math.Round(rate * 100))
	}

	for i := range questions {
		correct := 0
		timeSum := 0
		timeCount := 0
		for _, p := range filtered {
			if i >= len(p.Answers) {
				continue
			}
			rec := p.Answers[i]
			if rec.Correct {
				correct++
			}
			if t := rec.TimeUsedSeconds(); t != nil {
				timeSum += *t
				timeCount++
			}
		}
		if s.Participants > 0 {
			s.QuestionAccuracy[i] = int(math.Round(float64(correct) / float64(s.Participants) * 100))
		}
		if timeCount > 0 {
			s.QuestionAvgTimeSec[i] = int(math.Round(float64(timeSum) / float64(timeCount)))
		}
	}

	return s
}
