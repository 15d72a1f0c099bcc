package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_EveryCallsImmediately(t *testing.T) {
	runner := NewRunner()
	defer runner.StopAll()

	var calls int32
	done := make(chan struct{})
	runner.Every(context.Background(), "test", time.Hour, func(context.Context) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Первый вызов должен произойти сразу, без ожидания тика")
	}
}

func TestRunner_EveryTicks(t *testing.T) {
	runner := NewRunner()
	defer runner.StopAll()

	var calls int32
	runner.Every(context.Background(), "test", 10*time.Millisecond, func(context.Context) {
		atomic.AddInt32(&calls, 1)
	})

	time.Sleep(100 * time.Millisecond)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3), "Задача должна вызываться на каждом тике")
}

func TestRunner_Stop(t *testing.T) {
	runner := NewRunner()
	defer runner.StopAll()

	var calls int32
	id := runner.Every(context.Background(), "test", 10*time.Millisecond, func(context.Context) {
		atomic.AddInt32(&calls, 1)
	})

	time.Sleep(30 * time.Millisecond)
	runner.Stop(id)
	after := atomic.LoadInt32(&calls)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&calls), "После Stop новых вызовов быть не должно")

	// Повторная остановка безопасна
	runner.Stop(id)
}

func TestRunner_After(t *testing.T) {
	runner := NewRunner()
	defer runner.StopAll()

	done := make(chan struct{})
	runner.After(context.Background(), "delayed", 10*time.Millisecond, func(context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Отложенная задача должна выполниться после задержки")
	}
}

func TestRunner_AfterCancelled(t *testing.T) {
	runner := NewRunner()

	var calls int32
	id := runner.After(context.Background(), "delayed", 50*time.Millisecond, func(context.Context) {
		atomic.AddInt32(&calls, 1)
	})
	runner.Stop(id)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "Отмененная задача не должна выполниться")
	runner.StopAll()
}

func TestRunner_StopAllWaits(t *testing.T) {
	runner := NewRunner()

	var running int32
	for i := 0; i < 3; i++ {
		runner.Every(context.Background(), "task", 5*time.Millisecond, func(context.Context) {
			atomic.StoreInt32(&running, 1)
		})
	}

	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&running))

	// StopAll дожидается завершения горутин: после возврата тиков больше нет
	runner.StopAll()
	atomic.StoreInt32(&running, 0)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&running))
}

func TestRunner_ParentContextCancels(t *testing.T) {
	runner := NewRunner()
	defer runner.StopAll()

	ctx, cancel := context.WithCancel(context.Background())

	var calls int32
	runner.Every(ctx, "test", 10*time.Millisecond, func(context.Context) {
		atomic.AddInt32(&calls, 1)
	})

	time.Sleep(30 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	after := atomic.LoadInt32(&calls)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&calls), "Отмена родительского контекста останавливает задачу")
}
