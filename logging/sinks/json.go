package sinks

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"mech-arena/server/logging"
)

// JSON writes one event per line as NDJSON, buffered and flushed on an
// interval. A zero interval flushes after every write.
type JSON struct {
	mu     sync.Mutex
	out    *bufio.Writer
	eager  bool
	ticker *time.Ticker
	done   chan struct{}
}

// jsonEvent fixes the wire field order and drops zero-value noise.
type jsonEvent struct {
	Type      logging.EventType   `json:"type"`
	Tick      uint64              `json:"tick"`
	Time      string              `json:"time"`
	Severity  string              `json:"severity"`
	Category  string              `json:"category,omitempty"`
	Actor     logging.EntityRef   `json:"actor,omitempty"`
	Targets   []logging.EntityRef `json:"targets,omitempty"`
	Payload   any                 `json:"payload,omitempty"`
	Extra     map[string]any      `json:"extra,omitempty"`
	TraceID   string              `json:"traceId,omitempty"`
	CommandID string              `json:"commandId,omitempty"`
}

// NewJSON constructs a JSON sink writing to w.
func NewJSON(w io.Writer, flushInterval time.Duration) *JSON {
	if w == nil {
		w = io.Discard
	}
	sink := &JSON{
		out:   bufio.NewWriter(w),
		eager: flushInterval <= 0,
		done:  make(chan struct{}),
	}
	if !sink.eager {
		sink.ticker = time.NewTicker(flushInterval)
		go sink.flushLoop()
	}
	return sink
}

// Write satisfies logging.Sink.
func (s *JSON) Write(event logging.Event) error {
	line, err := json.Marshal(jsonEvent{
		Type:      event.Type,
		Tick:      event.Tick,
		Time:      event.Time.Format(time.RFC3339Nano),
		Severity:  event.Severity.String(),
		Category:  event.Category,
		Actor:     event.Actor,
		Targets:   event.Targets,
		Payload:   event.Payload,
		Extra:     event.Extra,
		TraceID:   event.TraceID,
		CommandID: event.CommandID,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.out.Write(append(line, '\n')); err != nil {
		return err
	}
	if s.eager {
		return s.out.Flush()
	}
	return nil
}

// Close stops the flush loop and drains the buffer.
func (s *JSON) Close(context.Context) error {
	if s.ticker != nil {
		s.ticker.Stop()
		close(s.done)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Flush()
}

func (s *JSON) flushLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.mu.Lock()
			s.out.Flush()
			s.mu.Unlock()
		}
	}
}
