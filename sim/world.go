package sim

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/chainsim/chainsim/sim/demand"
)

// World is the arena of all simulated entities, built once from a
// TopologyConfig and persistent for the run. Facilities take their ids from
// the topology; every unit gets a world-unique entity id above them. All
// slices keep topology order so iteration is deterministic.
type World struct {
	SKUs map[int]*SKU

	facilities     []*Facility
	facilitiesByID map[int]*Facility

	storages      []*StorageUnit
	products      []*ProductUnit
	consumers     []*ConsumerUnit
	manufactures  []*ManufactureUnit
	sellers       []*SellerUnit
	distributions []*DistributionUnit
	vehicles      []*VehicleUnit

	unitsByID map[int]Unit

	rng       *PartitionedRNG
	durations int64
	nextID    int
}

// BuildWorld validates the topology and constructs the full entity arena.
// The seed drives every stochastic element (seller demand) through
// partitioned per-unit RNG streams.
func BuildWorld(cfg *TopologyConfig, seed int64) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	w := &World{
		SKUs:           make(map[int]*SKU, len(cfg.SKUs)),
		facilitiesByID: make(map[int]*Facility, len(cfg.Facilities)),
		unitsByID:      make(map[int]Unit),
		rng:            NewPartitionedRNG(NewSimulationKey(seed)),
		durations:      cfg.Durations,
		nextID:         1,
	}

	for _, sc := range cfg.SKUs {
		bom := make(map[int]int, len(sc.BOM))
		for input, ratio := range sc.BOM {
			bom[input] = ratio
		}
		w.SKUs[sc.ID] = &SKU{
			ID:              sc.ID,
			Name:            sc.Name,
			UnitOrderCost:   decimal.NewFromFloat(sc.UnitOrderCost),
			UnitStorageCost: decimal.NewFromFloat(sc.UnitStorageCost),
			ServiceLevel:    sc.ServiceLevel,
			VendorLeadTime:  sc.VendorLeadTime,
			BOM:             bom,
		}
		if sc.ID >= w.nextID {
			w.nextID = sc.ID + 1
		}
	}
	for _, fc := range cfg.Facilities {
		if fc.ID >= w.nextID {
			w.nextID = fc.ID + 1
		}
	}

	// Pass 1: facilities with storage, fleets, products and their
	// manufacture/seller units.
	for i := range cfg.Facilities {
		if err := w.buildFacility(&cfg.Facilities[i]); err != nil {
			return nil, err
		}
	}

	// Pass 2: wire the upstream/downstream graph.
	for _, e := range cfg.Edges {
		src := w.facilitiesByID[e.Source]
		dest := w.facilitiesByID[e.Dest]
		src.addLeadTime(e.SKUID, e.Dest, e.VehicleType, e.LeadTime)
		dest.addUpstream(e.SKUID, e.Source)
	}

	// Pass 3: consumers, which need the wired upstream lists.
	for i := range cfg.Facilities {
		fc := &cfg.Facilities[i]
		f := w.facilitiesByID[fc.ID]
		for _, pc := range fc.Products {
			if !pc.Consumer {
				continue
			}
			sources := append([]int(nil), f.UpstreamSources(pc.SKUID)...)
			c := NewConsumerUnit(w.allocID(), w, f, pc.SKUID, sources, w.SKUs[pc.SKUID].UnitOrderCost)
			f.Products[pc.SKUID].Consumer = c
			w.consumers = append(w.consumers, c)
			w.unitsByID[c.EntityID()] = c
		}
	}

	return w, nil
}

func (w *World) buildFacility(fc *FacilityConfig) error {
	f := newFacility(fc.ID, fc.Name, fc.unloadStrategy())

	initLevels := make(map[int]int, len(fc.Products))
	for _, pc := range fc.Products {
		initLevels[pc.SKUID] = pc.InitStock
	}
	f.Storage = NewStorageUnit(w.allocID(), fc.Storage.Capacity, initLevels, fc.Storage.UpperBounds)
	w.storages = append(w.storages, f.Storage)
	w.unitsByID[f.Storage.EntityID()] = f.Storage

	if len(fc.Vehicles) > 0 {
		d := NewDistributionUnit(w.allocID(), f)
		f.Distribution = d
		w.distributions = append(w.distributions, d)
		w.unitsByID[d.EntityID()] = d
		for _, fleet := range fc.Vehicles {
			cost := decimal.NewFromFloat(fleet.UnitTransportCost)
			for i := 0; i < fleet.Number; i++ {
				v := NewVehicleUnit(w.allocID(), f, fleet.Type, fleet.Capacity, fleet.Patience, cost)
				d.AddVehicle(v)
				w.vehicles = append(w.vehicles, v)
				w.unitsByID[v.EntityID()] = v
			}
		}
	}

	for _, pc := range fc.Products {
		sku := w.SKUs[pc.SKUID]
		f.addSKU(&FacilitySKU{
			SKUID:     pc.SKUID,
			Price:     decimal.NewFromFloat(pc.Price),
			InitStock: pc.InitStock,
		})
		p := newProductUnit(w.allocID(), f, pc.SKUID)
		f.Products[pc.SKUID] = p
		w.products = append(w.products, p)

		if pc.Manufacture != nil {
			m := NewManufactureUnit(w.allocID(), f, pc.SKUID, sku.BOM, decimal.NewFromFloat(pc.Manufacture.UnitProductCost))
			p.Manufacture = m
			w.manufactures = append(w.manufactures, m)
			w.unitsByID[m.EntityID()] = m
		}
		if pc.Seller != nil {
			dc := pc.Seller.Demand
			sampler, err := demand.New(dc.Distribution, dc.Mean, dc.StdDev, dc.Min, dc.Max, dc.Value)
			if err != nil {
				return fmt.Errorf("facility %d sku %d: %w", fc.ID, pc.SKUID, err)
			}
			id := w.allocID()
			s := NewSellerUnit(id, f, pc.SKUID, sampler, w.rng.ForSubsystem(SubsystemSeller(id)))
			p.Seller = s
			w.sellers = append(w.sellers, s)
			w.unitsByID[id] = s
		}
	}

	w.facilities = append(w.facilities, f)
	w.facilitiesByID[f.ID] = f
	return nil
}

func (w *World) allocID() int {
	id := w.nextID
	w.nextID++
	return id
}

// Durations returns the configured run length in ticks.
func (w *World) Durations() int64 { return w.durations }

// Facility returns the facility with the given id, or nil.
func (w *World) Facility(id int) *Facility { return w.facilitiesByID[id] }

// Facilities returns all facilities in topology order.
func (w *World) Facilities() []*Facility { return w.facilities }

// Unit returns the unit with the given entity id, or nil.
func (w *World) Unit(id int) Unit { return w.unitsByID[id] }

// Consumers returns all consumer units in build order.
func (w *World) Consumers() []*ConsumerUnit { return w.consumers }

// Manufactures returns all manufacture units in build order.
func (w *World) Manufactures() []*ManufactureUnit { return w.manufactures }

// Sellers returns all seller units in build order.
func (w *World) Sellers() []*SellerUnit { return w.sellers }

// Distributions returns all distribution units in build order.
func (w *World) Distributions() []*DistributionUnit { return w.distributions }

// Vehicles returns all vehicle units in build order.
func (w *World) Vehicles() []*VehicleUnit { return w.vehicles }

// Storages returns all storage units in build order.
func (w *World) Storages() []*StorageUnit { return w.storages }

// Units returns every steppable unit in the engine's fixed iteration order.
func (w *World) Units() []Unit {
	units := make([]Unit, 0,
		len(w.storages)+len(w.consumers)+len(w.distributions)+len(w.vehicles)+len(w.manufactures)+len(w.sellers))
	for _, u := range w.storages {
		units = append(units, u)
	}
	for _, u := range w.consumers {
		units = append(units, u)
	}
	for _, u := range w.distributions {
		units = append(units, u)
	}
	for _, u := range w.vehicles {
		units = append(units, u)
	}
	for _, u := range w.manufactures {
		units = append(units, u)
	}
	for _, u := range w.sellers {
		units = append(units, u)
	}
	return units
}

// Reset restores every unit to its build state so the world can run another
// episode. RNG streams are not re-derived; rebuild the world for bit-for-bit
// episode reproduction.
func (w *World) Reset() {
	for _, u := range w.Units() {
		u.Reset()
	}
}
