package schedule

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when scheduling on a closed Scheduler.
var ErrClosed = errors.New("scheduler closed")

// Task is a deferred task as reported by Pending.
type Task struct {
	// ID is assigned in scheduling order, starting at 1.
	ID uint64

	// ScheduledAt is when After was called.
	ScheduledAt time.Time

	// Delay is how long after ScheduledAt the task runs.
	Delay time.Duration
}

// DueAt returns when the task will run.
func (t Task) DueAt() time.Time {
	return t.ScheduledAt.Add(t.Delay)
}

// Remaining returns the time until the task runs.
func (t Task) Remaining() time.Duration {
	remaining := t.Delay - time.Since(t.ScheduledAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

type entry struct {
	task  Task
	timer *time.Timer
}

// Scheduler runs functions after a delay. It is safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*entry
	closed  bool

	// idle is closed and replaced whenever pending drops to zero.
	idle chan struct{}

	onRun func(Task)
}

// New creates a scheduler.
func New() *Scheduler {
	idle := make(chan struct{})
	close(idle)
	return &Scheduler{
		pending: make(map[uint64]*entry),
		idle:    idle,
	}
}

// After runs fn once after delay. A negative delay is treated as zero.
// The returned ID identifies the task in Pending.
func (s *Scheduler) After(delay time.Duration, fn func()) (uint64, error) {
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}

	if len(s.pending) == 0 {
		s.idle = make(chan struct{})
	}

	s.nextID++
	id := s.nextID
	e := &entry{task: Task{ID: id, ScheduledAt: time.Now(), Delay: delay}}
	s.pending[id] = e

	e.timer = time.AfterFunc(delay, func() {
		s.run(id, fn)
	})
	return id, nil
}

// run executes a due task and removes it from the pending set.
func (s *Scheduler) run(id uint64, fn func()) {
	s.mu.Lock()
	e, ok := s.pending[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	onRun := s.onRun
	s.mu.Unlock()

	// Call outside lock
	fn()
	if onRun != nil {
		onRun(e.task)
	}

	s.mu.Lock()
	delete(s.pending, id)
	if len(s.pending) == 0 {
		close(s.idle)
	}
	s.mu.Unlock()
}

// Pending returns the tasks that have not yet completed.
func (s *Scheduler) Pending() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Task, 0, len(s.pending))
	for _, e := range s.pending {
		result = append(result, e.task)
	}
	return result
}

// Count returns the number of tasks that have not yet completed.
func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// OnRun sets a callback invoked after each task function returns.
func (s *Scheduler) OnRun(fn func(Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onRun = fn
}

// Wait blocks until no tasks are pending or ctx is done, returning ctx.Err()
// in the latter case.
func (s *Scheduler) Wait(ctx context.Context) error {
	s.mu.Lock()
	idle := s.idle
	s.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting new tasks. Tasks already scheduled still run.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}
