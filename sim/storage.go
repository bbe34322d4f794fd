package sim

import (
	"fmt"

	"github.com/chainsim/chainsim/sim/store"
)

// AddStrategy selects how TryAddProducts shares remaining space among the
// SKUs being added in one call.
type AddStrategy string

const (
	// AddAllOrNothing adds every requested quantity in full, or nothing at
	// all when the combined request exceeds remaining space.
	AddAllOrNothing AddStrategy = "all-or-nothing"
	// AddSequential processes SKUs in caller order, giving each as much as
	// still fits; later SKUs get whatever space is left.
	AddSequential AddStrategy = "sequential"
	// AddProportional splits remaining space across SKUs pro rata to their
	// requested quantities, with integer truncation.
	AddProportional AddStrategy = "proportional"
	// AddLimitedByUpperBound caps each SKU at its per-SKU ceiling (default:
	// an equal share of capacity), then at overall remaining space. Used by
	// manufacturing facilities to keep one SKU from starving shared space.
	AddLimitedByUpperBound AddStrategy = "upper-bound"
)

// Attribute names flushed by StorageUnit.
const (
	AttrCapacity       = "capacity"
	AttrRemainingSpace = "remaining_space"
)

// ProductLevelAttr names the flushed on-hand level attribute for one SKU.
func ProductLevelAttr(skuID int) string {
	return fmt.Sprintf("product_level_%d", skuID)
}

// ProductQuantity pairs a SKU with a quantity. TryAddProducts takes an
// ordered slice of these so the sequential strategy honors caller order.
type ProductQuantity struct {
	SKUID    int
	Quantity int
}

// StorageUnit is a per-facility inventory ledger. Capacity is SKU-agnostic
// total units of space. Invariant: the sum of on-hand quantities never
// exceeds capacity and no quantity is ever negative; a violation is a
// kernel bug and panics.
type StorageUnit struct {
	id       int
	capacity int
	// levels maps SKU id to quantity on hand. A SKU keeps its key once seen,
	// even at level zero: the distinct-SKU count feeds the default per-SKU
	// upper bound.
	levels      map[int]int
	upperBounds map[int]int
	initLevels  map[int]int
}

// NewStorageUnit builds a storage unit with the given capacity and initial
// stock. upperBounds optionally overrides the default per-SKU ceiling used
// by AddLimitedByUpperBound.
func NewStorageUnit(id int, capacity int, initLevels map[int]int, upperBounds map[int]int) *StorageUnit {
	s := &StorageUnit{
		id:          id,
		capacity:    capacity,
		levels:      make(map[int]int, len(initLevels)),
		upperBounds: upperBounds,
		initLevels:  make(map[int]int, len(initLevels)),
	}
	for sku, qty := range initLevels {
		if qty < 0 {
			panic(fmt.Sprintf("storage %d: negative initial level %d for sku %d", id, qty, sku))
		}
		s.levels[sku] = qty
		s.initLevels[sku] = qty
	}
	if s.usedSpace() > capacity {
		panic(fmt.Sprintf("storage %d: initial stock %d exceeds capacity %d", id, s.usedSpace(), capacity))
	}
	return s
}

func (s *StorageUnit) EntityID() int { return s.id }

// Capacity returns the total units of space.
func (s *StorageUnit) Capacity() int { return s.capacity }

func (s *StorageUnit) usedSpace() int {
	used := 0
	for _, qty := range s.levels {
		used += qty
	}
	return used
}

// RemainingSpace returns capacity minus total on-hand quantity.
func (s *StorageUnit) RemainingSpace() int {
	return s.capacity - s.usedSpace()
}

// ProductLevel returns the on-hand quantity of one SKU.
func (s *StorageUnit) ProductLevel(skuID int) int {
	return s.levels[skuID]
}

// ProductLevels returns a copy of the full SKU→quantity mapping.
func (s *StorageUnit) ProductLevels() map[int]int {
	out := make(map[int]int, len(s.levels))
	for sku, qty := range s.levels {
		out[sku] = qty
	}
	return out
}

// DistinctSKUCount returns how many SKUs this storage has ever held.
func (s *StorageUnit) DistinctSKUCount() int {
	return len(s.levels)
}

// AverageUpperBound is the default per-SKU ceiling: an equal share of
// capacity across the current distinct SKU set, floor division. It is
// recomputed from the live SKU set on every call, so the bound tightens
// as new SKUs appear in the facility.
func (s *StorageUnit) AverageUpperBound() int {
	n := len(s.levels)
	if n == 0 {
		return s.capacity
	}
	return s.capacity / n
}

func (s *StorageUnit) skuUpperBound(skuID int) int {
	if bound, ok := s.upperBounds[skuID]; ok {
		return bound
	}
	return s.AverageUpperBound()
}

// TakeAvailable removes min(requested, on-hand) of one SKU and returns the
// quantity actually removed. A partial or zero result is an expected
// outcome, never an error.
func (s *StorageUnit) TakeAvailable(skuID int, requested int) int {
	if requested <= 0 {
		return 0
	}
	actual := requested
	if level := s.levels[skuID]; level < actual {
		actual = level
	}
	s.levels[skuID] -= actual
	return actual
}

// TryTakeProducts atomically removes the requested quantities, all or
// nothing. It fails without mutation if any SKU's request exceeds its
// on-hand quantity.
func (s *StorageUnit) TryTakeProducts(requests map[int]int) bool {
	for sku, qty := range requests {
		if qty < 0 || qty > s.levels[sku] {
			return false
		}
	}
	for sku, qty := range requests {
		s.levels[sku] -= qty
	}
	return true
}

// TryAddProducts adds the requested quantities according to the given
// strategy, never exceeding total capacity. The result maps each SKU to the
// quantity actually added; an empty result signals total failure for the
// all-or-nothing strategy.
func (s *StorageUnit) TryAddProducts(requests []ProductQuantity, strategy AddStrategy) map[int]int {
	added := make(map[int]int, len(requests))
	remaining := s.RemainingSpace()

	switch strategy {
	case AddAllOrNothing:
		total := 0
		for _, req := range requests {
			total += req.Quantity
		}
		if total > remaining {
			return added
		}
		for _, req := range requests {
			s.addProduct(req.SKUID, req.Quantity)
			added[req.SKUID] = req.Quantity
		}

	case AddSequential:
		for _, req := range requests {
			qty := min(req.Quantity, remaining)
			s.addProduct(req.SKUID, qty)
			added[req.SKUID] = qty
			remaining -= qty
		}

	case AddProportional:
		total := 0
		for _, req := range requests {
			total += req.Quantity
		}
		if total <= remaining {
			for _, req := range requests {
				s.addProduct(req.SKUID, req.Quantity)
				added[req.SKUID] = req.Quantity
			}
			break
		}
		// Integer truncation: remaining space is not guaranteed to reach
		// exactly zero.
		for _, req := range requests {
			qty := req.Quantity * remaining / total
			s.addProduct(req.SKUID, qty)
			added[req.SKUID] = qty
		}

	case AddLimitedByUpperBound:
		for _, req := range requests {
			headroom := s.skuUpperBound(req.SKUID) - s.levels[req.SKUID]
			qty := min(req.Quantity, headroom, remaining)
			if qty < 0 {
				qty = 0
			}
			s.addProduct(req.SKUID, qty)
			added[req.SKUID] = qty
			remaining -= qty
		}

	default:
		panic(fmt.Sprintf("storage %d: unknown add strategy %q", s.id, strategy))
	}

	return added
}

// AddProduct adds one SKU directly, bypassing allocation strategies.
// Manufacturing uses it after pre-checking its capacity bound. Exceeding
// capacity here is an invariant violation and panics.
func (s *StorageUnit) AddProduct(skuID int, quantity int) {
	s.addProduct(skuID, quantity)
}

func (s *StorageUnit) addProduct(skuID int, quantity int) {
	if quantity < 0 {
		panic(fmt.Sprintf("storage %d: negative add %d for sku %d", s.id, quantity, skuID))
	}
	if quantity > s.RemainingSpace() {
		panic(fmt.Sprintf("storage %d: adding %d of sku %d exceeds capacity %d", s.id, quantity, skuID, s.capacity))
	}
	s.levels[skuID] += quantity
}

func (s *StorageUnit) PreStep(tick int64) {}

func (s *StorageUnit) Step(tick int64) {}

func (s *StorageUnit) FlushStates(st *store.Store) {
	st.Set(s.id, AttrCapacity, float64(s.capacity))
	st.Set(s.id, AttrRemainingSpace, float64(s.RemainingSpace()))
	for sku, qty := range s.levels {
		st.Set(s.id, ProductLevelAttr(sku), float64(qty))
	}
}

func (s *StorageUnit) Reset() {
	s.levels = make(map[int]int, len(s.initLevels))
	for sku, qty := range s.initLevels {
		s.levels[sku] = qty
	}
}
