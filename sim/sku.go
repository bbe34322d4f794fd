package sim

import "github.com/shopspring/decimal"

// SKU describes one stock-keeping unit tracked by the simulation.
// SKUs are immutable for the whole run.
type SKU struct {
	ID              int
	Name            string
	UnitOrderCost   decimal.Decimal
	UnitStorageCost decimal.Decimal
	// ServiceLevel is the target in-stock probability used by replenishment
	// policies; the kernel itself only carries it.
	ServiceLevel float64
	// VendorLeadTime is the default lead time in ticks when no edge-specific
	// lead time applies.
	VendorLeadTime int64
	// BOM maps input SKU id to units consumed per unit produced.
	// Empty for SKUs that are not manufactured from inputs.
	BOM map[int]int
}

// HasBOM reports whether manufacturing this SKU consumes input SKUs.
func (s *SKU) HasBOM() bool {
	return len(s.BOM) > 0
}

// FacilitySKU holds the per-facility settings of one stocked SKU.
type FacilitySKU struct {
	SKUID int
	// Price is the unit sale price at this facility; upstream facilities use
	// it to bill downstream orders.
	Price decimal.Decimal
	// InitStock is the on-hand quantity at topology build time.
	InitStock int
}
