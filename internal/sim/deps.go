package sim

import (
	"math/rand"

	"mech-arena/server/internal/telemetry"
	"mech-arena/server/logging"
)

// Deps carries shared infrastructure dependencies required by the
// simulation engine.
type Deps struct {
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Clock     logging.Clock
	Publisher logging.Publisher
	RNG       *rand.Rand
}
