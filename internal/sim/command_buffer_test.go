package sim

import (
	"testing"

	"github.com/google/uuid"
)

type recordingMetrics struct {
	counters map[string]uint64
	gauges   map[string]uint64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counters: map[string]uint64{}, gauges: map[string]uint64{}}
}

func (m *recordingMetrics) Add(key string, delta uint64) { m.counters[key] += delta }
func (m *recordingMetrics) Store(key string, value uint64) { m.gauges[key] = value }

func fillBuffer(t *testing.T, buffer *CommandBuffer, n int) []Command {
	t.Helper()
	cmds := make([]Command, 0, n)
	for i := 0; i < n; i++ {
		cmd := Command{ActorID: uuid.New()}
		if !buffer.Push(cmd) {
			t.Fatalf("push %d of %d failed", i+1, n)
		}
		cmds = append(cmds, cmd)
	}
	return cmds
}

func TestCommandBufferDrainPreservesOrder(t *testing.T) {
	buffer := NewCommandBuffer(4, nil)
	want := fillBuffer(t, buffer, 3)

	got := buffer.Drain()
	if len(got) != len(want) {
		t.Fatalf("drained %d commands, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ActorID != want[i].ActorID {
			t.Fatalf("command %d out of order", i)
		}
	}
	if buffer.Len() != 0 {
		t.Fatalf("expected empty buffer after drain, have %d", buffer.Len())
	}
	if buffer.Drain() != nil {
		t.Fatal("second drain should yield nil")
	}
}

func TestCommandBufferWrapsAfterDrain(t *testing.T) {
	buffer := NewCommandBuffer(3, nil)
	fillBuffer(t, buffer, 3)
	buffer.Drain()

	// The write cursor sits mid-ring now; new pushes must still drain in order.
	want := fillBuffer(t, buffer, 2)
	got := buffer.Drain()
	if len(got) != 2 || got[0].ActorID != want[0].ActorID || got[1].ActorID != want[1].ActorID {
		t.Fatalf("unexpected commands after wraparound: %+v", got)
	}
}

func TestCommandBufferRejectsWhenFull(t *testing.T) {
	metrics := newRecordingMetrics()
	buffer := NewCommandBuffer(2, metrics)
	kept := fillBuffer(t, buffer, 2)

	if buffer.Push(Command{ActorID: uuid.New()}) {
		t.Fatal("push into a full buffer should fail")
	}
	if got := metrics.counters[commandBufferOverflowMetricKey]; got != 1 {
		t.Fatalf("overflow counter = %d, want 1", got)
	}
	if got := metrics.gauges[commandBufferOccupancyMetricKey]; got != 2 {
		t.Fatalf("occupancy gauge = %d, want 2", got)
	}

	got := buffer.Drain()
	if len(got) != 2 || got[0].ActorID != kept[0].ActorID {
		t.Fatalf("overflow must not displace staged commands: %+v", got)
	}
	if got := metrics.gauges[commandBufferOccupancyMetricKey]; got != 0 {
		t.Fatalf("occupancy gauge after drain = %d, want 0", got)
	}
}

func TestCommandBufferCapacityClamp(t *testing.T) {
	if got := NewCommandBuffer(0, nil).Capacity(); got != 1 {
		t.Fatalf("capacity = %d, want 1", got)
	}
	if got := NewCommandBuffer(8, nil).Capacity(); got != 8 {
		t.Fatalf("capacity = %d, want 8", got)
	}
}
