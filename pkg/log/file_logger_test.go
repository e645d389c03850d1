package log

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestFileLoggerCreatesFileAndDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "relay.splog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	defer logger.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("capture file was not created")
	}
}

func TestFileLoggerWritesCBOR(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.splog")

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	logger.Log(Event{
		Timestamp: time.Now(),
		RelayID:   "relay-123",
		Layer:     LayerDatagram,
		Datagram:  &DatagramEvent{Size: 3, Data: []byte{1, 2, 3}},
	})
	if logger.Written() != 1 {
		t.Errorf("Written() = %d, want 1", logger.Written())
	}
	logger.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read capture file: %v", err)
	}
	event, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if event.RelayID != "relay-123" {
		t.Errorf("RelayID = %q, want relay-123", event.RelayID)
	}
	if event.Datagram == nil || event.Datagram.Size != 3 {
		t.Errorf("Datagram = %+v, want size 3", event.Datagram)
	}
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.splog")

	for i := range 2 {
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("NewFileLogger #%d failed: %v", i, err)
		}
		logger.Log(Event{RelayID: "r"})
		logger.Close()
	}

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if n := len(readAll(t, reader)); n != 2 {
		t.Errorf("got %d events, want 2", n)
	}
}

func TestFileLoggerCloseIsIdempotent(t *testing.T) {
	logger, err := NewFileLogger(filepath.Join(t.TempDir(), "relay.splog"))
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("first Close: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	logger.Log(Event{RelayID: "after-close"})
	if logger.Written() != 0 {
		t.Errorf("Written() = %d after close, want 0", logger.Written())
	}
}

func TestFileLoggerConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.splog")
	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("NewFileLogger failed: %v", err)
	}

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 25 {
				logger.Log(Event{RelayID: "r", Command: &CommandEvent{Verb: "PUB", Recipients: g*100 + i}})
			}
		}()
	}
	wg.Wait()
	logger.Close()

	reader, err := NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	if n := len(readAll(t, reader)); n != 200 {
		t.Errorf("got %d events, want 200", n)
	}
}

func TestNewFileLoggerFailsOnDirectory(t *testing.T) {
	if _, err := NewFileLogger(t.TempDir()); err == nil {
		t.Error("expected error opening a directory as capture file")
	}
}
