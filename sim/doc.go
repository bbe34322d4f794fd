// Package sim provides the core tick-stepped simulation kernel for a
// multi-echelon supply chain.
//
// # Reading Guide
//
// Start with these three files to understand the kernel:
//   - storage.go: the per-facility inventory ledger and its allocation strategies
//   - vehicle.go: the transport state machine (idle → loading → transit → unloading)
//   - engine.go: the fixed per-tick stepping order that makes runs reproducible
//
// # Architecture
//
// The sim package holds the entity state machines; supporting concerns live
// in sub-packages:
//   - sim/demand/: demand samplers for seller units
//   - sim/store/: the tick-indexed attribute store units flush into
//   - sim/policy/: scripted baseline policies used by the CLI driver
//
// A World is built once from a TopologyConfig and persists for the run; only
// the transient per-tick fields of each unit mutate afterwards. Orders and
// vehicle assignments are the only dynamically created state.
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - Unit: generic stepping (PreStep, Step, FlushStates, Reset)
//   - demand.Sampler: per-tick demand draws for seller units
//   - policy.Policy: produces the per-tick action batch
package sim
