package sim

import "github.com/chainsim/chainsim/sim/store"

// Unit is the capability every simulated entity exposes to the engine.
// The engine steps units generically and never depends on concrete types.
//
// Tick contract:
//   - PreStep zeroes the unit's transient per-tick counters and clears any
//     action recorded on the previous tick. It never touches durable state.
//   - Step advances the unit's state machine by one tick.
//   - FlushStates commits the unit's current state to the attribute store.
//     The store is a mirror, never the source of truth during a tick.
//   - Reset restores the unit to its topology-build state so a world can be
//     reused across episodes.
type Unit interface {
	// EntityID returns the unit's id in the world arena. Ids are 1-based;
	// 0 means invalid.
	EntityID() int

	PreStep(tick int64)
	Step(tick int64)
	FlushStates(st *store.Store)
	Reset()
}
