// Бот-игрок без пользовательского интерфейса: проверяет сессию,
// присоединяется, опрашивает состояние, отвечает на вопросы по выбранной
// стратегии и печатает таблицу результатов с очками.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	"github.com/yourusername/quizgame-api/internal/pkg/schedule"
	"github.com/yourusername/quizgame-api/pkg/client"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "адрес сервера")
	sessionID := flag.Uint("session", 0, "идентификатор сессии")
	name := flag.String("name", "bot", "имя игрока")
	strategy := flag.String("strategy", "first", "стратегия ответов: first или random")
	flag.Parse()

	if *sessionID == 0 {
		log.Println("Укажите идентификатор сессии: -session <id>")
		os.Exit(1)
	}
	if *strategy != "first" && *strategy != "random" {
		log.Printf("Неизвестная стратегия %q, допустимы first и random", *strategy)
		os.Exit(1)
	}
	pickRandom = *strategy == "random"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		cancel()
	}()

	api := client.New(*serverURL)

	// Проверяем сессию до входа: зарезервированное имя не создает записи
	if err := api.ValidateSession(ctx, uint(*sessionID)); err != nil {
		log.Printf("Сессия %d недоступна: %v", *sessionID, err)
		os.Exit(1)
	}

	session := client.NewSessionContext(uint(*sessionID))
	playerID, err := api.Join(ctx, uint(*sessionID), *name)
	if err != nil {
		log.Printf("Не удалось войти в сессию: %v", err)
		os.Exit(1)
	}
	session.SetPlayerID(playerID)
	log.Printf("Игрок %q вошел в сессию %d (id=%d)", *name, *sessionID, playerID)

	runner := schedule.NewRunner()
	defer runner.StopAll()

	var mu sync.Mutex
	answered := make(map[int]bool)
	ended := make(chan struct{})
	var endOnce sync.Once

	poller := client.NewPoller(api, session, runner, func(snap client.Snapshot) {
		switch snap.State {
		case client.StateLobby:
			log.Printf("Лобби: ждем старта")
		case client.StateInProgress:
			if snap.Question == nil || snap.CountdownSec == 0 {
				return
			}
			mu.Lock()
			done := answered[snap.Question.QuestionID]
			if !done {
				answered[snap.Question.QuestionID] = true
			}
			mu.Unlock()
			if done {
				return
			}
			answer(ctx, api, playerID, snap)
		case client.StateEnded:
			endOnce.Do(func() { close(ended) })
		}
	})
	poller.Start(ctx)

	select {
	case <-ctx.Done():
		log.Println("Остановлено по сигналу")
		return
	case <-ended:
	}

	log.Println("Сессия завершена, запрашиваем результаты")
	records, err := poller.WaitResults(ctx)
	if err != nil {
		log.Printf("Не удалось получить результаты: %v", err)
		os.Exit(1)
	}

	printResults(session, records)
}

// answer отправляет ответ на вопрос по выбранной стратегии
func answer(ctx context.Context, api *client.Client, playerID uint, snap client.Snapshot) {
	choice := answerFor(snap.Question)
	if choice == "" {
		return
	}
	if err := api.SubmitAnswer(ctx, playerID, []string{choice}, snap.CountdownSec); err != nil {
		log.Printf("Не удалось отправить ответ на вопрос #%d: %v", snap.Question.QuestionID, err)
		return
	}
	log.Printf("Вопрос #%d: отправлен ответ %q", snap.Question.QuestionID, choice)
}

var pickRandom bool

// answerFor выбирает вариант ответа: первый либо случайный
func answerFor(q *entity.Question) string {
	if len(q.Answers) == 0 {
		return ""
	}
	idx := 0
	if pickRandom {
		idx = rand.Intn(len(q.Answers))
	}
	return q.Answers[idx].Answer
}

// printResults печатает таблицу ответов с очками, пересчитанными локально
// по накопленному снапшоту
func printResults(session *client.SessionContext, records []entity.AnswerRecord) {
	rows, total := session.ScoreResults(records)

	fmt.Println()
	fmt.Printf("%-40s %-20s %8s %6s\n", "Вопрос", "Ответ", "Верно", "Очки")
	for _, row := range rows {
		verdict := "нет"
		if row.Correct {
			verdict = "да"
		}
		answerText := "-"
		if len(row.AnswerLabels) > 0 {
			answerText = row.AnswerLabels[0]
		}
		fmt.Printf("%-40s %-20s %8s %6d\n", truncate(row.QuestionText, 40), truncate(answerText, 20), verdict, row.Score)
	}
	fmt.Printf("\nИтого: %d очков\n", total)
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
