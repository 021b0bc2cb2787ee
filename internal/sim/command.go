package sim

import (
	"time"

	"github.com/google/uuid"

	"mech-arena/server/internal/grid"
)

// CommandType enumerates the supported simulation commands.
type CommandType string

const (
	CommandMove      CommandType = "Move"
	CommandAction    CommandType = "Action"
	CommandEnter     CommandType = "EnterContainer"
	CommandExit      CommandType = "ExitContainer"
	CommandHeartbeat CommandType = "Heartbeat"
)

// MoveCommand carries the desired movement intent and facing. DX/DY form a
// direction vector; the engine normalizes and integrates it per tick.
type MoveCommand struct {
	DX     float64        `json:"dx"`
	DY     float64        `json:"dy"`
	Facing grid.Direction `json:"facing"`
}

// ActionCommand identifies an interaction trigger, typically toggling the
// station in front of the actor.
type ActionCommand struct {
	Name string `json:"name"`
}

// EnterCommand names the container and floor an actor wants to board.
type EnterCommand struct {
	Container uuid.UUID       `json:"container"`
	Floor     grid.FloorIndex `json:"floor"`
}

// HeartbeatCommand updates connectivity metadata for an actor.
type HeartbeatCommand struct {
	ReceivedAt time.Time     `json:"receivedAt"`
	ClientSent int64         `json:"clientSent"`
	RTT        time.Duration `json:"rtt"`
}

// Command represents an intent captured for processing on the next tick.
type Command struct {
	OriginTick uint64            `json:"originTick"`
	ActorID    uuid.UUID         `json:"actorId"`
	Type       CommandType       `json:"type"`
	IssuedAt   time.Time         `json:"issuedAt"`
	Move       *MoveCommand      `json:"move,omitempty"`
	Action     *ActionCommand    `json:"action,omitempty"`
	Enter      *EnterCommand     `json:"enter,omitempty"`
	Heartbeat  *HeartbeatCommand `json:"heartbeat,omitempty"`
}
