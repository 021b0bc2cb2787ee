package sinks

import (
	"testing"

	"mech-arena/server/logging"
)

func TestMemorySinkRecordsAndResets(t *testing.T) {
	sink := NewMemorySink()

	events := []logging.Event{
		{Type: "world.dangling_reference", Tick: 1},
		{Type: "network.client_slow", Tick: 2},
		{Type: "network.client_slow", Tick: 3},
	}
	for _, event := range events {
		if err := sink.Write(event); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	if got := len(sink.Events()); got != 3 {
		t.Fatalf("recorded %d events, want 3", got)
	}
	if got := sink.TypeCount("network.client_slow"); got != 2 {
		t.Fatalf("TypeCount = %d, want 2", got)
	}

	sink.Reset()
	if got := len(sink.Events()); got != 0 {
		t.Fatalf("events survive reset: %d", got)
	}
}

func TestMemorySinkCopiesMutableFields(t *testing.T) {
	sink := NewMemorySink()

	extra := map[string]any{"key": "before"}
	if err := sink.Write(logging.Event{Type: "test.event", Extra: extra}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	extra["key"] = "after"

	recorded := sink.Events()
	if got := recorded[0].Extra["key"]; got != "before" {
		t.Fatalf("recorded extra mutated: %v", got)
	}
}
