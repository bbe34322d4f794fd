package sim

// ProductUnit groups the optional per-SKU capabilities of one facility:
// a ConsumerUnit that replenishes from upstream, a ManufactureUnit that
// produces, and a SellerUnit that serves external demand. Any subset may
// be present. The engine steps the member units directly; the ProductUnit
// itself is a structural grouping created once at topology build time.
type ProductUnit struct {
	id       int
	facility *Facility
	skuID    int

	Consumer    *ConsumerUnit
	Manufacture *ManufactureUnit
	Seller      *SellerUnit
}

func newProductUnit(id int, facility *Facility, skuID int) *ProductUnit {
	return &ProductUnit{id: id, facility: facility, skuID: skuID}
}

func (p *ProductUnit) EntityID() int { return p.id }

// SKUID returns the SKU this product unit stocks.
func (p *ProductUnit) SKUID() int { return p.skuID }

// Facility returns the owning facility.
func (p *ProductUnit) Facility() *Facility { return p.facility }
