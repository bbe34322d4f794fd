package sim

import (
	"sort"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chainsim/chainsim/sim/store"
)

// BusinessEngine orchestrates one simulation run: it applies the external
// caller's per-tick actions and advances every unit exactly once per tick in
// a fixed order.
//
// The fixed per-tick order is load-bearing, not an optimization:
//
//	PreStep all → apply actions → Distribution.Step → Vehicle.Step →
//	Manufacture.Step → Seller.Step → FlushStates all → store commit → clock++
//
// An order placed by an action at tick T can be dispatched to a vehicle at T
// (same tick), but the vehicle only begins moving at T+1. Every shared
// resource is touched by at most one unit-step per tick by construction, so
// a single instance needs no locking; independent instances share no state.
type BusinessEngine struct {
	// RunID identifies this run in logs and flushed snapshots.
	RunID string

	world   *World
	store   *store.Store
	metrics *Metrics

	clock     int64
	durations int64
}

// NewBusinessEngine creates an engine over a built world. The store is the
// external attribute mirror the engine commits each tick; pass a fresh one
// per run.
func NewBusinessEngine(world *World, st *store.Store) *BusinessEngine {
	return &BusinessEngine{
		RunID:     uuid.NewString(),
		world:     world,
		store:     st,
		metrics:   NewMetrics(),
		durations: world.Durations(),
	}
}

// World returns the entity arena the engine steps.
func (be *BusinessEngine) World() *World { return be.world }

// Store returns the attribute store the engine commits into.
func (be *BusinessEngine) Store() *store.Store { return be.store }

// Metrics returns the run-wide totals accumulated so far.
func (be *BusinessEngine) Metrics() *Metrics { return be.metrics }

// Tick returns the tick the next Step will simulate.
func (be *BusinessEngine) Tick() int64 { return be.clock }

// Done reports whether the configured run length has been reached.
func (be *BusinessEngine) Done() bool { return be.clock >= be.durations }

// Step advances the simulation by exactly one tick, applying the given
// action batch. It returns true when the run is complete. Calling Step on a
// finished engine is a no-op returning true.
func (be *BusinessEngine) Step(actions ActionBatch) bool {
	if be.Done() {
		return true
	}
	tick := be.clock
	logrus.Debugf("engine %s: tick %d begin (%d actions)", be.RunID, tick, len(actions))

	units := be.world.Units()
	for _, u := range units {
		u.PreStep(tick)
	}

	be.applyActions(actions, tick)

	for _, d := range be.world.Distributions() {
		d.Step(tick)
	}
	for _, v := range be.world.Vehicles() {
		v.Step(tick)
	}
	for _, m := range be.world.Manufactures() {
		m.Step(tick)
	}
	for _, s := range be.world.Sellers() {
		s.Step(tick)
	}

	be.metrics.record(be.world)

	for _, u := range units {
		u.FlushStates(be.store)
	}
	be.store.Commit(tick)

	be.clock++
	return be.Done()
}

// applyActions routes each action to its unit, in ascending entity id order
// so queue contents stay deterministic. Actions addressed to unknown units
// or of a type the unit cannot take are silently dropped.
func (be *BusinessEngine) applyActions(actions ActionBatch, tick int64) {
	ids := make([]int, 0, len(actions))
	for id := range actions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, entityID := range ids {
		action := actions[entityID]
		unit := be.world.Unit(entityID)
		if unit == nil {
			continue
		}
		switch a := action.(type) {
		case ConsumerAction:
			if c, ok := unit.(*ConsumerUnit); ok {
				c.ProcessActions([]ConsumerAction{a}, tick)
			}
		case ManufactureAction:
			if m, ok := unit.(*ManufactureUnit); ok {
				m.ProcessAction(a, tick)
			}
		}
	}
}

// Reset rewinds the engine, world, and store for another episode.
func (be *BusinessEngine) Reset() {
	be.world.Reset()
	be.store.Reset()
	be.metrics = NewMetrics()
	be.clock = 0
}
