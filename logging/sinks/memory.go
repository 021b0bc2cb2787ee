package sinks

import (
	"context"
	"sync"

	"mech-arena/server/logging"
)

// MemorySink records events for test assertions.
type MemorySink struct {
	mu     sync.Mutex
	events []logging.Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write satisfies logging.Sink. Mutable event fields are copied so later
// caller mutations cannot leak into recorded history.
func (s *MemorySink) Write(event logging.Event) error {
	copied := event
	if len(event.Targets) > 0 {
		copied.Targets = append([]logging.EntityRef(nil), event.Targets...)
	}
	if len(event.Extra) > 0 {
		extra := make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			extra[k] = v
		}
		copied.Extra = extra
	}

	s.mu.Lock()
	s.events = append(s.events, copied)
	s.mu.Unlock()
	return nil
}

// Events returns a snapshot of everything recorded so far.
func (s *MemorySink) Events() []logging.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logging.Event(nil), s.events...)
}

// TypeCount reports how many recorded events carry the given type.
func (s *MemorySink) TypeCount(eventType logging.EventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, event := range s.events {
		if event.Type == eventType {
			count++
		}
	}
	return count
}

// Reset clears the recorded history.
func (s *MemorySink) Reset() {
	s.mu.Lock()
	s.events = s.events[:0]
	s.mu.Unlock()
}

func (s *MemorySink) Close(context.Context) error {
	return nil
}
