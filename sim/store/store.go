// Implements the attribute store, the durable per-tick mirror of unit state.
// Units write via FlushStates; observers read back committed frames.

package store

import "sort"

// attrKey addresses one value in a frame: (entity id, attribute name).
type attrKey struct {
	entity int
	attr   string
}

// Frame is one committed tick's snapshot of every flushed attribute.
type Frame struct {
	Tick   int64
	values map[attrKey]float64
}

// Get returns the value flushed for (entity, attr) in this frame.
// Missing attributes read as zero, matching unflushed unit state.
func (f *Frame) Get(entity int, attr string) float64 {
	return f.values[attrKey{entity, attr}]
}

// Store is a time-indexed per-entity key/value store. During a tick the
// kernel only writes to the current (uncommitted) frame; Commit seals it.
// The store is never read by the kernel mid-tick; units keep their own
// authoritative in-memory copies.
//
// Thread-safety: NOT thread-safe. One Store belongs to one simulation
// instance, stepped from a single goroutine.
type Store struct {
	current map[attrKey]float64
	frames  []*Frame
}

// New creates an empty Store.
func New() *Store {
	return &Store{current: make(map[attrKey]float64)}
}

// Set writes an attribute value into the current frame.
func (s *Store) Set(entity int, attr string, value float64) {
	s.current[attrKey{entity, attr}] = value
}

// Get reads an attribute from the current (uncommitted) frame.
func (s *Store) Get(entity int, attr string) float64 {
	return s.current[attrKey{entity, attr}]
}

// Commit seals the current frame as the snapshot for the given tick.
// Values persist across frames until overwritten, so an attribute flushed
// once remains visible at later ticks: the store mirrors last-known state.
func (s *Store) Commit(tick int64) {
	snapshot := make(map[attrKey]float64, len(s.current))
	for k, v := range s.current {
		snapshot[k] = v
	}
	s.frames = append(s.frames, &Frame{Tick: tick, values: snapshot})
}

// NumFrames returns the number of committed frames.
func (s *Store) NumFrames() int {
	return len(s.frames)
}

// Frame returns the committed frame for the given tick, or nil if that tick
// was never committed.
func (s *Store) Frame(tick int64) *Frame {
	i := sort.Search(len(s.frames), func(i int) bool { return s.frames[i].Tick >= tick })
	if i < len(s.frames) && s.frames[i].Tick == tick {
		return s.frames[i]
	}
	return nil
}

// Query reads historical values for the half-open tick range [start, end).
// The result has one row per committed tick in range; each row holds the
// requested (entity, attr) pairs in order: for each entity, every attr.
// Used by observers and accounting, never by the kernel itself.
func (s *Store) Query(start, end int64, entities []int, attrs []string) [][]float64 {
	var rows [][]float64
	for _, f := range s.frames {
		if f.Tick < start || f.Tick >= end {
			continue
		}
		row := make([]float64, 0, len(entities)*len(attrs))
		for _, e := range entities {
			for _, a := range attrs {
				row = append(row, f.Get(e, a))
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// Reset drops all frames and current values, for reuse across episodes.
func (s *Store) Reset() {
	s.current = make(map[attrKey]float64)
	s.frames = nil
}
