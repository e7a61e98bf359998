package log

import (
	"sync"
	"testing"
)

// captureLogger records events for test inspection.
type captureLogger struct {
	mu     sync.Mutex
	events []Event
}

func (c *captureLogger) Log(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureLogger) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestMultiLogger_FansOut(t *testing.T) {
	a := &captureLogger{}
	b := &captureLogger{}
	m := NewMultiLogger(a, b)

	m.Log(testEvent("Lamp", ActionSet))
	m.Log(testEvent("Lamp", ActionConfirmed))

	if a.count() != 2 {
		t.Errorf("logger a: expected 2 events, got %d", a.count())
	}
	if b.count() != 2 {
		t.Errorf("logger b: expected 2 events, got %d", b.count())
	}
}

func TestMultiLogger_Empty(t *testing.T) {
	m := NewMultiLogger()
	// Must not panic.
	m.Log(testEvent("Lamp", ActionSet))
}
