package sim

// EngineCore is the mutable simulation state behind the loop. Apply and
// Step run only on the loop goroutine; Snapshot captures a consistent view
// for read-only consumers.
type EngineCore interface {
	Deps() Deps
	Apply(cmds []Command) error
	Step(dt float64)
	Snapshot() Snapshot
}

// Engine defines the surface area exposed to non-simulation callers.
type Engine interface {
	Apply([]Command) error
	Snapshot() Snapshot
	Enqueue(Command) (bool, string)
	Pending() int
}
