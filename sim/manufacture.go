package sim

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chainsim/chainsim/sim/store"
)

// Attribute names flushed by ManufactureUnit.
const (
	AttrManufactureQuantity = "manufacture_quantity"
	AttrProductionRate      = "production_rate"
)

// ManufactureUnit converts input SKUs into its output SKU under two
// constraints: the output SKU's share of facility storage, and the
// availability of every BOM input. Any violated constraint silently clamps
// production downward; unmet demand never carries over to the next tick.
type ManufactureUnit struct {
	id       int
	facility *Facility
	skuID    int
	// bom maps input SKU id to units consumed per unit produced.
	bom map[int]int
	// UnitProductCost is the monetary cost per produced unit, carried for
	// external accounting.
	UnitProductCost decimal.Decimal

	// Per-tick transients.
	rate         int
	manufactured int
}

// NewManufactureUnit builds a manufacture unit for one facility-SKU.
func NewManufactureUnit(id int, facility *Facility, skuID int, bom map[int]int, unitProductCost decimal.Decimal) *ManufactureUnit {
	copied := make(map[int]int, len(bom))
	for in, ratio := range bom {
		copied[in] = ratio
	}
	return &ManufactureUnit{
		id:              id,
		facility:        facility,
		skuID:           skuID,
		bom:             copied,
		UnitProductCost: unitProductCost,
	}
}

func (m *ManufactureUnit) EntityID() int { return m.id }

// SKUID returns the output SKU.
func (m *ManufactureUnit) SKUID() int { return m.skuID }

// Facility returns the owning facility.
func (m *ManufactureUnit) Facility() *Facility { return m.facility }

// Manufactured returns the quantity actually produced this tick.
func (m *ManufactureUnit) Manufactured() int { return m.manufactured }

// ProcessAction records this tick's requested production rate. A
// non-positive rate is an ordinary "produce nothing" request.
func (m *ManufactureUnit) ProcessAction(action ManufactureAction, tick int64) {
	m.rate = action.Rate
}

func (m *ManufactureUnit) PreStep(tick int64) {
	// The rate does not persist: a tick without an action produces nothing.
	m.rate = 0
	m.manufactured = 0
}

func (m *ManufactureUnit) Step(tick int64) {
	m.manufactured = 0
	if m.rate <= 0 {
		return
	}
	storage := m.facility.Storage

	// Capacity bound: the output SKU's equal share of facility storage,
	// recomputed from the current distinct SKU set, minus current level.
	actual := min(m.rate, storage.AverageUpperBound()-storage.ProductLevel(m.skuID))

	// Material bound: the scarcest input divided by its consumption ratio.
	for input, ratio := range m.bom {
		if limit := storage.ProductLevel(input) / ratio; limit < actual {
			actual = limit
		}
	}

	// Without a BOM nothing is deducted before the output lands, so the
	// direct add must also fit overall remaining space. With a BOM the
	// deducted inputs free at least one unit of space per unit produced
	// (consumption ratios are >= 1).
	if len(m.bom) == 0 {
		actual = min(actual, storage.RemainingSpace())
	}
	if actual <= 0 {
		return
	}

	if len(m.bom) > 0 {
		inputs := make(map[int]int, len(m.bom))
		for input, ratio := range m.bom {
			inputs[input] = ratio * actual
		}
		// Atomic: a failed take produces 0, never a partial batch.
		if !storage.TryTakeProducts(inputs) {
			return
		}
	}

	// The capacity bound was pre-checked, so the output bypasses the
	// general allocation strategies.
	storage.AddProduct(m.skuID, actual)
	m.manufactured = actual
	logrus.Debugf("manufacture %d: produced %d of sku %d (requested rate %d)", m.id, actual, m.skuID, m.rate)
}

func (m *ManufactureUnit) FlushStates(st *store.Store) {
	st.Set(m.id, AttrManufactureQuantity, float64(m.manufactured))
	st.Set(m.id, AttrProductionRate, float64(m.rate))
}

func (m *ManufactureUnit) Reset() {
	m.rate = 0
	m.manufactured = 0
}
