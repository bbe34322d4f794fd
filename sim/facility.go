package sim

import "github.com/shopspring/decimal"

// leadTimeKey addresses one downstream shipping lane of a facility.
type leadTimeKey struct {
	skuID       int
	destID      int
	vehicleType string
}

// Facility is a node in the supply network. It owns exactly one StorageUnit,
// one ProductUnit per stocked SKU, and at most one DistributionUnit.
// Facilities form a directed upstream/downstream graph: upstream sources are
// recorded per SKU on the buying side, lead times per lane on the selling side.
type Facility struct {
	ID   int
	Name string

	Storage      *StorageUnit
	Products     map[int]*ProductUnit
	Distribution *DistributionUnit

	// UnloadStrategy is how inbound vehicle payloads are added to storage.
	UnloadStrategy AddStrategy

	skus      map[int]*FacilitySKU
	upstreams map[int][]int
	leadTimes map[leadTimeKey]int64
}

func newFacility(id int, name string, unloadStrategy AddStrategy) *Facility {
	return &Facility{
		ID:             id,
		Name:           name,
		Products:       make(map[int]*ProductUnit),
		UnloadStrategy: unloadStrategy,
		skus:           make(map[int]*FacilitySKU),
		upstreams:      make(map[int][]int),
		leadTimes:      make(map[leadTimeKey]int64),
	}
}

// SKUConfig returns this facility's settings for one SKU, or nil when the
// SKU is not stocked here.
func (f *Facility) SKUConfig(skuID int) *FacilitySKU {
	return f.skus[skuID]
}

// Price returns the unit sale price of one SKU at this facility.
// Unstocked SKUs price at zero.
func (f *Facility) Price(skuID int) decimal.Decimal {
	if cfg, ok := f.skus[skuID]; ok {
		return cfg.Price
	}
	return decimal.Zero
}

// Product returns the ProductUnit for one SKU, or nil.
func (f *Facility) Product(skuID int) *ProductUnit {
	return f.Products[skuID]
}

// UpstreamSources returns the facility ids this facility may buy the given
// SKU from, in topology order.
func (f *Facility) UpstreamSources(skuID int) []int {
	return f.upstreams[skuID]
}

// LeadTime returns the configured lead time in ticks for shipping one SKU
// from this facility to the given destination with the given vehicle type.
func (f *Facility) LeadTime(skuID, destID int, vehicleType string) (int64, bool) {
	vlt, ok := f.leadTimes[leadTimeKey{skuID, destID, vehicleType}]
	return vlt, ok
}

func (f *Facility) addSKU(cfg *FacilitySKU) {
	f.skus[cfg.SKUID] = cfg
}

func (f *Facility) addUpstream(skuID, sourceID int) {
	f.upstreams[skuID] = append(f.upstreams[skuID], sourceID)
}

func (f *Facility) addLeadTime(skuID, destID int, vehicleType string, vlt int64) {
	f.leadTimes[leadTimeKey{skuID, destID, vehicleType}] = vlt
}
