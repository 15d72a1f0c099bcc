// Package schedule предоставляет явную абстракцию повторяющихся задач
// с гарантированной отменой. Клиентские опросы и секундные отсчеты
// регистрируются здесь, чтобы снос представления детерминированно
// останавливал все тики и не оставлял таймеров на устаревших данных.
package schedule

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Runner управляет набором повторяющихся задач
type Runner struct {
	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	wg      sync.WaitGroup
}

// NewRunner создает новый пустой Runner
func NewRunner() *Runner {
	return &Runner{
		cancels: make(map[string]context.CancelFunc),
	}
}

// Every запускает задачу: fn вызывается сразу, затем на каждом тике
// интервала, пока задача не остановлена и родительский контекст жив.
// Вызовы одной задачи сериализованы; затянувшийся вызов не накапливает
// пропущенные тики. Возвращается идентификатор для Stop.
func (r *Runner) Every(ctx context.Context, name string, interval time.Duration, fn func(context.Context)) string {
	taskCtx, cancel := context.WithCancel(ctx)
	id := uuid.New().String()

	r.mu.Lock()
	r.cancels[id] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.remove(id)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn(taskCtx)
		for {
			select {
			case <-taskCtx.Done():
				log.Printf("[Schedule] Задача %q остановлена", name)
				return
			case <-ticker.C:
				fn(taskCtx)
			}
		}
	}()

	return id
}

// After выполняет fn один раз после задержки, если задача не отменена раньше
func (r *Runner) After(ctx context.Context, name string, delay time.Duration, fn func(context.Context)) string {
	taskCtx, cancel := context.WithCancel(ctx)
	id := uuid.New().String()

	r.mu.Lock()
	r.cancels[id] = cancel
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.remove(id)

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-taskCtx.Done():
			log.Printf("[Schedule] Отложенная задача %q отменена", name)
		case <-timer.C:
			fn(taskCtx)
		}
	}()

	return id
}

// Stop останавливает задачу по идентификатору. Остановка уже завершенной
// задачи безопасна.
func (r *Runner) Stop(id string) {
	r.mu.Lock()
	cancel, ok := r.cancels[id]
	r.mu.Unlock()
	if ok {
		cancel()
	}
}

// StopAll останавливает все задачи и дожидается завершения их горутин
func (r *Runner) StopAll() {
	r.mu.Lock()
	for _, cancel := range r.cancels {
		cancel()
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Runner) remove(id string) {
	r.mu.Lock()
	if cancel, ok := r.cancels[id]; ok {
		cancel()
		delete(r.cancels, id)
	}
	r.mu.Unlock()
}
