package logging

import (
	"context"
	"testing"
	"time"
)

type captureSink struct {
	events []Event
}

func (s *captureSink) Write(event Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *captureSink) Close(context.Context) error { return nil }

func newCaptureRouter(t *testing.T, cfg Config) (*Router, *captureSink) {
	t.Helper()
	sink := &captureSink{}
	clock := ClockFunc(func() time.Time { return time.Unix(100, 0) })
	router, err := NewRouter(clock, cfg, []NamedSink{{Name: "capture", Sink: sink}})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	return router, sink
}

func TestRouterDeliversAndStampsTime(t *testing.T) {
	router, sink := newCaptureRouter(t, DefaultConfig())

	router.Publish(context.Background(), Event{Type: "test.event", Tick: 7, Severity: SeverityInfo})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("delivered %d events, want 1", len(sink.events))
	}
	got := sink.events[0]
	if got.Tick != 7 || !got.Time.Equal(time.Unix(100, 0)) {
		t.Fatalf("unexpected event: %+v", got)
	}

	stats := router.Stats()
	if stats.EventsTotal != 1 || stats.DroppedTotal != 0 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinimumSeverity = SeverityWarn
	router, sink := newCaptureRouter(t, cfg)

	router.Publish(context.Background(), Event{Type: "test.debug", Severity: SeverityDebug})
	router.Publish(context.Background(), Event{Type: "test.info", Severity: SeverityInfo})
	router.Publish(context.Background(), Event{Type: "test.warn", Severity: SeverityWarn})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(sink.events) != 1 || sink.events[0].Type != "test.warn" {
		t.Fatalf("filter passed wrong events: %+v", sink.events)
	}
}

func TestRouterAttachesAmbientFields(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fields = map[string]any{"service": "arena"}
	router, sink := newCaptureRouter(t, cfg)

	router.Publish(context.Background(), Event{Type: "test.event", Severity: SeverityInfo})
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(sink.events) != 1 {
		t.Fatalf("delivered %d events, want 1", len(sink.events))
	}
	if got := sink.events[0].Extra["service"]; got != "arena" {
		t.Fatalf("ambient field = %v, want arena", got)
	}
}

func TestRouterIgnoresPublishAfterClose(t *testing.T) {
	router, sink := newCaptureRouter(t, DefaultConfig())
	if err := router.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	router.Publish(context.Background(), Event{Type: "test.late", Severity: SeverityInfo})

	if len(sink.events) != 0 {
		t.Fatalf("event delivered after close: %+v", sink.events)
	}
}

func TestParseSeverity(t *testing.T) {
	cases := map[string]Severity{
		"debug":   SeverityDebug,
		"info":    SeverityInfo,
		"WARN":    SeverityWarn,
		"warning": SeverityWarn,
		"error":   SeverityError,
		"bogus":   SeverityInfo,
		"":        SeverityInfo,
	}
	for input, want := range cases {
		if got := ParseSeverity(input); got != want {
			t.Fatalf("ParseSeverity(%q) = %v, want %v", input, got, want)
		}
	}
}
