package sim

import (
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/chainsim/chainsim/sim/demand"
	"github.com/chainsim/chainsim/sim/store"
)

// Attribute names flushed by SellerUnit.
const (
	AttrDemand    = "demand"
	AttrSold      = "sold"
	AttrTotalSold = "total_sold"
)

// SellerUnit is a per-facility-SKU external-demand sink. Each tick it draws
// a demand quantity from its sampler and sells whatever storage can cover;
// unmet demand is lost, not backlogged.
type SellerUnit struct {
	id       int
	facility *Facility
	skuID    int

	sampler demand.Sampler
	rng     *rand.Rand

	// Per-tick transients.
	demand int
	sold   int
	// totalSold only ever grows; it survives PreStep.
	totalSold int
}

// NewSellerUnit builds a seller for one facility-SKU. The rng must be the
// unit's own partitioned stream so runs stay reproducible.
func NewSellerUnit(id int, facility *Facility, skuID int, sampler demand.Sampler, rng *rand.Rand) *SellerUnit {
	return &SellerUnit{
		id:       id,
		facility: facility,
		skuID:    skuID,
		sampler:  sampler,
		rng:      rng,
	}
}

func (s *SellerUnit) EntityID() int { return s.id }

// SKUID returns the SKU this seller sells.
func (s *SellerUnit) SKUID() int { return s.skuID }

// Facility returns the owning facility.
func (s *SellerUnit) Facility() *Facility { return s.facility }

// Demand returns this tick's drawn demand.
func (s *SellerUnit) Demand() int { return s.demand }

// Sold returns this tick's sold quantity.
func (s *SellerUnit) Sold() int { return s.sold }

// TotalSold returns the cumulative sold quantity across the run.
func (s *SellerUnit) TotalSold() int { return s.totalSold }

func (s *SellerUnit) PreStep(tick int64) {
	s.demand = 0
	s.sold = 0
}

func (s *SellerUnit) Step(tick int64) {
	// Demand is always attempted, even against empty storage: sold may be 0
	// while demand is positive.
	s.demand = s.sampler.Sample(s.rng)
	s.sold = s.facility.Storage.TakeAvailable(s.skuID, s.demand)
	s.totalSold += s.sold
	if s.demand > 0 {
		logrus.Debugf("seller %d: demand %d, sold %d of sku %d", s.id, s.demand, s.sold, s.skuID)
	}
}

func (s *SellerUnit) FlushStates(st *store.Store) {
	st.Set(s.id, AttrDemand, float64(s.demand))
	st.Set(s.id, AttrSold, float64(s.sold))
	st.Set(s.id, AttrTotalSold, float64(s.totalSold))
}

func (s *SellerUnit) Reset() {
	s.demand = 0
	s.sold = 0
	s.totalSold = 0
}
