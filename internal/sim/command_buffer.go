package sim

import "sync"

const (
	commandBufferOccupancyMetricKey = "sim_command_buffer_occupancy"
	commandBufferOverflowMetricKey  = "sim_command_buffer_overflow_total"
)

type telemetryMetrics interface {
	Add(string, uint64)
	Store(string, uint64)
}

// CommandBuffer is a bounded FIFO staging area for commands awaiting the
// next tick. Multiple producers may push concurrently; Drain is expected
// to run on the simulation goroutine only.
type CommandBuffer struct {
	mu      sync.Mutex
	ring    []Command
	start   int
	size    int
	metrics telemetryMetrics
}

// NewCommandBuffer allocates a buffer holding at most capacity commands.
// Capacities below one are clamped to one.
func NewCommandBuffer(capacity int, metrics telemetryMetrics) *CommandBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &CommandBuffer{ring: make([]Command, capacity), metrics: metrics}
}

// Push appends a command. A full buffer rejects the command, bumps the
// overflow counter, and returns false.
func (b *CommandBuffer) Push(cmd Command) bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.size == len(b.ring) {
		if b.metrics != nil {
			b.metrics.Add(commandBufferOverflowMetricKey, 1)
		}
		return false
	}
	b.ring[(b.start+b.size)%len(b.ring)] = cmd
	b.size++
	b.publishOccupancy()
	return true
}

// Drain removes every staged command and returns them oldest first.
// An empty buffer yields nil.
func (b *CommandBuffer) Drain() []Command {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.size == 0 {
		return nil
	}
	out := make([]Command, b.size)
	// The occupied region spans at most two contiguous runs of the ring.
	first := copy(out, b.ring[b.start:min(b.start+b.size, len(b.ring))])
	copy(out[first:], b.ring[:b.size-first])
	b.start = 0
	b.size = 0
	b.publishOccupancy()
	return out
}

// Len reports how many commands are currently staged.
func (b *CommandBuffer) Len() int {
	if b == nil {
		return 0
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Capacity reports the fixed size of the ring.
func (b *CommandBuffer) Capacity() int {
	if b == nil {
		return 0
	}
	return len(b.ring)
}

func (b *CommandBuffer) publishOccupancy() {
	if b.metrics == nil {
		return
	}
	b.metrics.Store(commandBufferOccupancyMetricKey, uint64(b.size))
}
