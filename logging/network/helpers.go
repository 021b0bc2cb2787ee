package network

import (
	"context"

	"mech-arena/server/logging"
)

const (
	// EventClientSlow is emitted when a client's send queue overflows and
	// a state frame is dropped for that client.
	EventClientSlow logging.EventType = "network.client_slow"
	// EventClientError is emitted when a websocket read or write fails.
	EventClientError logging.EventType = "network.client_error"
)

// ClientSlowPayload records how far behind a slow client has fallen.
type ClientSlowPayload struct {
	DroppedFrames uint64 `json:"droppedFrames"`
	QueueDepth    int    `json:"queueDepth"`
}

// ClientErrorPayload carries the failing operation and error text.
type ClientErrorPayload struct {
	Op    string `json:"op"`
	Error string `json:"error"`
}

// ClientSlow publishes a warning for a client that cannot keep up with broadcasts.
func ClientSlow(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ClientSlowPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventClientSlow,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}

// ClientError publishes a debug event for a failed socket operation.
func ClientError(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ClientErrorPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	event := logging.Event{
		Type:     EventClientError,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	}
	pub.Publish(ctx, event)
}
