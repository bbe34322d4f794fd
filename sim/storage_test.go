package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTakeAvailable_PartialResultIsNotAnError(t *testing.T) {
	s := NewStorageUnit(1, 100, map[int]int{7: 30}, nil)

	assert.Equal(t, 30, s.TakeAvailable(7, 50))
	assert.Equal(t, 0, s.ProductLevel(7))
	// Emptied SKUs keep their key: the distinct count still sees them.
	assert.Equal(t, 1, s.DistinctSKUCount())

	assert.Equal(t, 0, s.TakeAvailable(7, 10))
	assert.Equal(t, 0, s.TakeAvailable(7, -5))
}

func TestTryTakeProducts_AtomicAllOrNothing(t *testing.T) {
	s := NewStorageUnit(1, 100, map[int]int{1: 10, 2: 20}, nil)

	// One SKU short: nothing moves.
	require.False(t, s.TryTakeProducts(map[int]int{1: 5, 2: 25}))
	assert.Equal(t, 10, s.ProductLevel(1))
	assert.Equal(t, 20, s.ProductLevel(2))

	// All covered: everything deducts.
	require.True(t, s.TryTakeProducts(map[int]int{1: 5, 2: 20}))
	assert.Equal(t, 5, s.ProductLevel(1))
	assert.Equal(t, 0, s.ProductLevel(2))
}

func TestTryAddProducts_AllOrNothing(t *testing.T) {
	s := NewStorageUnit(1, 100, map[int]int{1: 50}, nil)

	// Combined request exceeds the 50 units of remaining space: storage is
	// left completely unchanged and the result is empty.
	added := s.TryAddProducts([]ProductQuantity{{2, 30}, {3, 30}}, AddAllOrNothing)
	assert.Empty(t, added)
	assert.Equal(t, 50, s.RemainingSpace())
	assert.Equal(t, 0, s.ProductLevel(2))

	added = s.TryAddProducts([]ProductQuantity{{2, 30}, {3, 20}}, AddAllOrNothing)
	assert.Equal(t, map[int]int{2: 30, 3: 20}, added)
	assert.Equal(t, 0, s.RemainingSpace())
}

func TestTryAddProducts_SequentialHonorsCallerOrder(t *testing.T) {
	s := NewStorageUnit(1, 100, nil, nil)

	added := s.TryAddProducts([]ProductQuantity{{1, 51}, {2, 51}}, AddSequential)

	assert.Equal(t, 51, added[1])
	assert.Equal(t, 49, added[2])
	assert.Equal(t, 0, s.RemainingSpace())
}

func TestTryAddProducts_ProportionalTruncates(t *testing.T) {
	s := NewStorageUnit(1, 100, nil, nil)

	added := s.TryAddProducts([]ProductQuantity{{1, 50}, {2, 150}}, AddProportional)

	assert.Equal(t, 25, added[1])
	assert.Equal(t, 75, added[2])

	// Under remaining space, everything lands in full.
	s2 := NewStorageUnit(2, 100, nil, nil)
	added = s2.TryAddProducts([]ProductQuantity{{1, 30}, {2, 40}}, AddProportional)
	assert.Equal(t, map[int]int{1: 30, 2: 40}, added)
}

func TestTryAddProducts_UpperBoundCapsPerSKU(t *testing.T) {
	bounds := map[int]int{1: 100, 2: 100}
	s := NewStorageUnit(1, 200, map[int]int{1: 50, 2: 50}, bounds)

	added := s.TryAddProducts([]ProductQuantity{{1, 60}, {2, 40}}, AddLimitedByUpperBound)

	assert.Equal(t, 50, added[1]) // capped by bound 100 - level 50
	assert.Equal(t, 40, added[2])
	assert.Equal(t, 100, s.ProductLevel(1))
	assert.Equal(t, 90, s.ProductLevel(2))
	assert.Equal(t, 10, s.RemainingSpace())
}

func TestTryAddProducts_UpperBoundDefaultRecomputes(t *testing.T) {
	// Default bound is capacity over the live distinct SKU count: 90/1 = 90
	// with one SKU, 90/2 = 45 once a second SKU appears.
	s := NewStorageUnit(1, 90, map[int]int{1: 10}, nil)
	assert.Equal(t, 90, s.AverageUpperBound())

	added := s.TryAddProducts([]ProductQuantity{{2, 60}}, AddLimitedByUpperBound)
	assert.Equal(t, 60, added[2])

	assert.Equal(t, 45, s.AverageUpperBound())
	added = s.TryAddProducts([]ProductQuantity{{1, 60}}, AddLimitedByUpperBound)
	assert.Equal(t, 20, added[1]) // headroom is 45 - 10, then space caps at 20
}

func TestTryAddProducts_UpperBoundRespectsRemainingSpace(t *testing.T) {
	bounds := map[int]int{1: 100}
	s := NewStorageUnit(1, 100, map[int]int{2: 95}, bounds)

	added := s.TryAddProducts([]ProductQuantity{{1, 50}}, AddLimitedByUpperBound)
	assert.Equal(t, 5, added[1])
	assert.Equal(t, 0, s.RemainingSpace())
}

func TestAddProduct_ExceedingCapacityPanics(t *testing.T) {
	s := NewStorageUnit(1, 10, map[int]int{1: 8}, nil)
	assert.Panics(t, func() { s.AddProduct(1, 5) })
	assert.NotPanics(t, func() { s.AddProduct(1, 2) })
}

func TestStorage_CapacityInvariantUnderRandomOps(t *testing.T) {
	// GIVEN a small storage hammered with random adds and takes
	s := NewStorageUnit(1, 60, map[int]int{1: 10, 2: 10}, nil)
	rng := rand.New(rand.NewSource(7))
	strategies := []AddStrategy{AddAllOrNothing, AddSequential, AddProportional, AddLimitedByUpperBound}

	for i := 0; i < 2000; i++ {
		sku := 1 + rng.Intn(3)
		qty := rng.Intn(40)
		if rng.Intn(2) == 0 {
			s.TryAddProducts([]ProductQuantity{{sku, qty}}, strategies[rng.Intn(len(strategies))])
		} else {
			s.TakeAvailable(sku, qty)
		}

		// THEN the ledger never exceeds capacity and never goes negative
		used := 0
		for skuID, level := range s.ProductLevels() {
			require.GreaterOrEqual(t, level, 0, "sku %d negative at op %d", skuID, i)
			used += level
		}
		require.LessOrEqual(t, used, s.Capacity(), "capacity exceeded at op %d", i)
	}
}

func TestStorage_FlushAndReset(t *testing.T) {
	s := NewStorageUnit(1, 100, map[int]int{1: 40}, nil)
	s.TakeAvailable(1, 15)
	assert.Equal(t, 25, s.ProductLevel(1))

	s.Reset()
	assert.Equal(t, 40, s.ProductLevel(1))
	assert.Equal(t, 60, s.RemainingSpace())
}
