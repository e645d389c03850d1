package log

import (
	"sync"
	"testing"
)

// recordingLogger collects events for assertions.
type recordingLogger struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingLogger) Log(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingLogger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func TestNoopLoggerIsSafe(t *testing.T) {
	var l NoopLogger
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Log(Event{RelayID: "r"})
		}()
	}
	wg.Wait()
}

func TestOrNoop(t *testing.T) {
	if _, ok := OrNoop(nil).(NoopLogger); !ok {
		t.Error("OrNoop(nil) should return NoopLogger")
	}
	rec := &recordingLogger{}
	if OrNoop(rec) != Logger(rec) {
		t.Error("OrNoop should return a non-nil logger unchanged")
	}
}

func TestMultiLoggerFansOut(t *testing.T) {
	a, b := &recordingLogger{}, &recordingLogger{}
	m := NewMultiLogger(a, nil, b)

	m.Log(Event{RelayID: "r1"})
	m.Log(Event{RelayID: "r2"})

	if a.count() != 2 || b.count() != 2 {
		t.Errorf("counts = %d, %d, want 2, 2", a.count(), b.count())
	}
	if a.events[1].RelayID != "r2" {
		t.Errorf("second event RelayID = %q, want r2", a.events[1].RelayID)
	}
}

func TestMultiLoggerEmpty(t *testing.T) {
	NewMultiLogger().Log(Event{})
}
