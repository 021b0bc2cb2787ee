package logging

import (
	"context"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into a Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// Sink receives routed events. Write must be safe for a single dedicated
// goroutine; the router never calls it concurrently.
type Sink interface {
	Write(Event) error
	Close(context.Context) error
}

// NamedSink pairs a sink with the name used in diagnostics output.
type NamedSink struct {
	Name string
	Sink Sink
}

// Router fans events out to sinks without blocking publishers. Each sink
// gets its own queue and goroutine so one stalled sink cannot starve the
// rest. Events below the configured severity are discarded at intake.
type Router struct {
	cfg      Config
	clock    Clock
	fallback *log.Logger
	lanes    []*sinkLane
	fields   map[string]any

	// laneMu serializes Close against in-flight Publish calls so a lane
	// queue is never closed mid-send.
	laneMu sync.RWMutex
	closed atomic.Bool
	wg     sync.WaitGroup

	published atomic.Uint64
	dropped   atomic.Uint64
	nextWarn  atomic.Int64
}

// RouterStats summarizes router throughput for diagnostics.
type RouterStats struct {
	EventsTotal  uint64
	DroppedTotal uint64
}

// NewRouter starts one delivery goroutine per sink. A nil clock falls back
// to wall time.
func NewRouter(clock Clock, cfg Config, namedSinks []NamedSink) (*Router, error) {
	if clock == nil {
		clock = SystemClock{}
	}
	laneDepth := cfg.BufferSize
	if laneDepth <= 0 {
		laneDepth = 512
	}

	r := &Router{
		cfg:      cfg,
		clock:    clock,
		fallback: log.New(os.Stderr, "[logging] ", log.LstdFlags),
		fields:   cfg.CloneFields(),
	}

	for _, named := range namedSinks {
		if named.Sink == nil {
			continue
		}
		lane := &sinkLane{
			name:     named.Name,
			sink:     named.Sink,
			queue:    make(chan Event, laneDepth),
			fallback: r.fallback,
		}
		r.lanes = append(r.lanes, lane)
		r.wg.Add(1)
		go func(l *sinkLane) {
			defer r.wg.Done()
			l.run()
		}(lane)
	}

	return r, nil
}

// Publish routes one event. It never blocks: a saturated sink queue drops
// the event and the drop is counted and rate-limit logged.
func (r *Router) Publish(ctx context.Context, event Event) {
	if event.Type == "" || r.closed.Load() {
		return
	}
	if event.Severity < r.cfg.MinimumSeverity {
		return
	}
	if event.Time.IsZero() {
		event.Time = r.clock.Now()
	}
	if len(r.fields) > 0 {
		event = cloneEvent(event)
		if event.Extra == nil {
			event.Extra = make(map[string]any, len(r.fields))
		}
		for k, v := range r.fields {
			if _, exists := event.Extra[k]; !exists {
				event.Extra[k] = v
			}
		}
	}

	r.laneMu.RLock()
	defer r.laneMu.RUnlock()
	if r.closed.Load() {
		return
	}
	r.published.Add(1)
	for _, lane := range r.lanes {
		select {
		case lane.queue <- cloneEvent(event):
		default:
			r.recordDrop(lane.name, event)
		}
	}
}

func (r *Router) recordDrop(lane string, event Event) {
	r.dropped.Add(1)
	interval := r.cfg.DropWarnInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := time.Now().UnixNano()
	next := r.nextWarn.Load()
	if now >= next && r.nextWarn.CompareAndSwap(next, now+interval.Nanoseconds()) {
		r.fallback.Printf("sink %s full, dropping event type=%s tick=%d", lane, event.Type, event.Tick)
	}
}

// Close stops intake, waits for queued events to drain, and closes every
// sink. Draining is bounded by the context.
func (r *Router) Close(ctx context.Context) error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	r.laneMu.Lock()
	for _, lane := range r.lanes {
		close(lane.queue)
	}
	r.laneMu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var firstErr error
	for _, lane := range r.lanes {
		if err := lane.sink.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Stats reports publish and drop totals.
func (r *Router) Stats() RouterStats {
	return RouterStats{
		EventsTotal:  r.published.Load(),
		DroppedTotal: r.dropped.Load(),
	}
}

// Sink returns a registered sink by name, or nil.
func (r *Router) Sink(name string) Sink {
	for _, lane := range r.lanes {
		if lane.name == name {
			return lane.sink
		}
	}
	return nil
}

// sinkLane is one sink's queue plus delivery state. Write failures back
// off exponentially so a broken sink does not spin, capped at 32 seconds.
type sinkLane struct {
	name     string
	sink     Sink
	queue    chan Event
	fallback *log.Logger
	failures int
}

func (l *sinkLane) run() {
	for event := range l.queue {
		if l.failures > 0 {
			time.Sleep(time.Duration(1<<min(l.failures, 5)) * time.Second)
		}
		if err := l.sink.Write(event); err != nil {
			l.failures++
			l.fallback.Printf("sink %s write failed: %v", l.name, err)
			continue
		}
		l.failures = 0
	}
}
