// Package lifecycle publishes session events: joins, disconnects, and
// frame transitions across container boundaries.
package lifecycle

import (
	"context"

	"mech-arena/server/logging"
)

const (
	// EventPlayerJoined is emitted when a player joins the arena.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerDisconnected is emitted when a player leaves the arena.
	EventPlayerDisconnected logging.EventType = "lifecycle.player_disconnected"
	// EventFrameChanged is emitted when a player crosses a container boundary.
	EventFrameChanged logging.EventType = "lifecycle.frame_changed"
)

// PlayerJoinedPayload captures spawn metadata for a new player.
type PlayerJoinedPayload struct {
	SpawnX float64 `json:"spawnX"`
	SpawnY float64 `json:"spawnY"`
}

// PlayerDisconnectedPayload captures the reason a player left.
type PlayerDisconnectedPayload struct {
	Reason string `json:"reason"`
}

// FrameChangedPayload records a boundary crossing between world space and
// a container interior.
type FrameChangedPayload struct {
	Inside    bool   `json:"inside"`
	Container string `json:"container,omitempty"`
	Floor     int    `json:"floor"`
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerJoined, logging.SeverityInfo, tick, actor, payload, extra)
}

// PlayerDisconnected publishes a player disconnect event.
func PlayerDisconnected(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerDisconnectedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerDisconnected, logging.SeverityInfo, tick, actor, payload, extra)
}

// FrameChanged publishes a frame transition event. Transitions are routine,
// so they log at debug.
func FrameChanged(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload FrameChangedPayload, extra map[string]any) {
	publish(ctx, pub, EventFrameChanged, logging.SeverityDebug, tick, actor, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, tick uint64, actor logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Tick:     tick,
		Actor:    actor,
		Severity: severity,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
