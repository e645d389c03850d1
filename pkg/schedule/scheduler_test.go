package schedule

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskTiming(t *testing.T) {
	task := Task{ID: 1, ScheduledAt: time.Now(), Delay: 60 * time.Second}

	remaining := task.Remaining()
	if remaining < 59*time.Second || remaining > 60*time.Second {
		t.Errorf("Remaining() = %v, expected ~60s", remaining)
	}
	if task.DueAt() != task.ScheduledAt.Add(task.Delay) {
		t.Errorf("DueAt() = %v, want %v", task.DueAt(), task.ScheduledAt.Add(task.Delay))
	}

	past := Task{ID: 2, ScheduledAt: time.Now().Add(-2 * time.Second), Delay: time.Second}
	if past.Remaining() != 0 {
		t.Errorf("Remaining() = %v, want 0 for overdue task", past.Remaining())
	}
}

func TestAfterRunsOnceAfterDelay(t *testing.T) {
	s := New()

	start := time.Now()
	ran := make(chan time.Time, 2)
	id, err := s.After(50*time.Millisecond, func() { ran <- time.Now() })
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
	assert.Equal(t, 1, s.Count())

	select {
	case at := <-ran:
		if elapsed := at.Sub(start); elapsed < 50*time.Millisecond {
			t.Errorf("task ran after %v, want >= 50ms", elapsed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}

	require.NoError(t, s.Wait(context.Background()))
	assert.Equal(t, 0, s.Count())

	select {
	case <-ran:
		t.Error("task ran twice")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestAfterNegativeDelay(t *testing.T) {
	s := New()
	done := make(chan struct{})
	_, err := s.After(-time.Second, func() { close(done) })
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task with negative delay did not run")
	}
}

func TestPendingReportsScheduledTasks(t *testing.T) {
	s := New()
	id1, _ := s.After(time.Hour, func() {})
	id2, _ := s.After(time.Hour, func() {})

	pending := s.Pending()
	require.Len(t, pending, 2)
	ids := map[uint64]bool{pending[0].ID: true, pending[1].ID: true}
	assert.True(t, ids[id1])
	assert.True(t, ids[id2])
	assert.Equal(t, time.Hour, pending[0].Delay)
}

func TestWaitReturnsImmediatelyWhenIdle(t *testing.T) {
	s := New()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.NoError(t, s.Wait(ctx))
}

func TestWaitHonoursContext(t *testing.T) {
	s := New()
	_, err := s.After(time.Hour, func() {})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)
}

func TestWaitBlocksUntilAllTasksRun(t *testing.T) {
	s := New()
	var count atomic.Int32
	for i := range 5 {
		_, err := s.After(time.Duration(i*10)*time.Millisecond, func() { count.Add(1) })
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	assert.Equal(t, int32(5), count.Load())
}

func TestCloseRejectsNewTasksButRunsPending(t *testing.T) {
	s := New()
	done := make(chan struct{})
	_, err := s.After(20*time.Millisecond, func() { close(done) })
	require.NoError(t, err)

	s.Close()
	_, err = s.After(0, func() { t.Error("task scheduled after Close ran") })
	assert.ErrorIs(t, err, ErrClosed)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pending task did not run after Close")
	}
}

func TestOnRunCallback(t *testing.T) {
	s := New()
	var mu sync.Mutex
	var seen []uint64
	s.OnRun(func(task Task) {
		mu.Lock()
		seen = append(seen, task.ID)
		mu.Unlock()
	})

	id, _ := s.After(0, func() {})
	require.NoError(t, s.Wait(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{id}, seen)
}

func TestConcurrentScheduling(t *testing.T) {
	s := New()
	var count atomic.Int32
	var wg sync.WaitGroup

	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 10 {
				_, _ = s.After(time.Millisecond, func() { count.Add(1) })
			}
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
	assert.Equal(t, int32(200), count.Load())
}
