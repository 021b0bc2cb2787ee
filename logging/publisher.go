// Package logging defines the structured event model shared by the hub,
// world, and simulation packages, plus the router that fans events out to
// sinks.
package logging

import (
	"context"
	"time"
)

// EventType names a structured event, namespaced as "<area>.<event>".
type EventType string

// EventDanglingReference is emitted when a tile slot references an
// entity record that no longer exists. The slot is healed in place.
const EventDanglingReference EventType = "world.dangling_reference"

// Severity orders events from chattiest to most urgent.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarn
	SeverityError
)

// Category groups related event types for sink-side filtering.
const (
	CategoryLifecycle  = "lifecycle"
	CategoryNetwork    = "network"
	CategorySimulation = "simulation"
	CategorySystem     = "system"
)

// EntityKind identifies what an EntityRef points at.
type EntityKind string

const (
	EntityKindUnknown   EntityKind = "unknown"
	EntityKindPlayer    EntityKind = "player"
	EntityKindObject    EntityKind = "object"
	EntityKindContainer EntityKind = "container"
	EntityKindWorld     EntityKind = "world"
)

// EntityRef ties an event to a simulation entity.
type EntityRef struct {
	ID   string     `json:"id"`
	Kind EntityKind `json:"kind"`
}

// Event is the unit the router accepts and sinks persist. Time is stamped
// by the router; producers fill everything else they know.
type Event struct {
	Type      EventType      `json:"type"`
	Tick      uint64         `json:"tick"`
	Time      time.Time      `json:"time"`
	Actor     EntityRef      `json:"actor"`
	Targets   []EntityRef    `json:"targets,omitempty"`
	Severity  Severity       `json:"severity"`
	Category  string         `json:"category,omitempty"`
	Payload   any            `json:"payload,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
	TraceID   string         `json:"traceId,omitempty"`
	CommandID string         `json:"commandId,omitempty"`
}

// Publisher accepts events for delivery. Implementations must not block
// the caller.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, Event) {}

// NopPublisher returns a Publisher that discards everything.
func NopPublisher() Publisher {
	return nopPublisher{}
}

// cloneEvent deep-copies the mutable parts of an event so lanes and
// ambient-field stamping never share Targets or Extra with the producer.
func cloneEvent(event Event) Event {
	cloned := event
	if len(event.Targets) > 0 {
		cloned.Targets = append([]EntityRef(nil), event.Targets...)
	}
	if event.Extra != nil {
		copied := make(map[string]any, len(event.Extra))
		for k, v := range event.Extra {
			copied[k] = v
		}
		cloned.Extra = copied
	}
	return cloned
}
