package sim

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// TopologyConfig is the pre-parsed configuration a world is built from:
// SKUs, facilities with their storage/products/fleets, and the directed
// upstream/downstream edges with per-lane vehicle type and lead time.
type TopologyConfig struct {
	// Durations is the configured run length in ticks.
	Durations  int64            `yaml:"durations" validate:"gt=0"`
	SKUs       []SKUConfig      `yaml:"skus" validate:"required,min=1,dive"`
	Facilities []FacilityConfig `yaml:"facilities" validate:"required,min=1,dive"`
	Edges      []EdgeConfig     `yaml:"edges" validate:"dive"`
}

type SKUConfig struct {
	ID              int     `yaml:"id" validate:"gt=0"`
	Name            string  `yaml:"name" validate:"required"`
	UnitOrderCost   float64 `yaml:"unit_order_cost" validate:"gte=0"`
	UnitStorageCost float64 `yaml:"unit_storage_cost" validate:"gte=0"`
	ServiceLevel    float64 `yaml:"service_level" validate:"gte=0,lte=1"`
	VendorLeadTime  int64   `yaml:"vendor_lead_time" validate:"gte=0"`
	// BOM maps input SKU id to units consumed per unit produced.
	BOM map[int]int `yaml:"bom" validate:"omitempty,dive,gt=0"`
}

type FacilityConfig struct {
	ID   int    `yaml:"id" validate:"gt=0"`
	Name string `yaml:"name" validate:"required"`
	// UnloadStrategy selects how inbound payloads are added to storage.
	// Defaults to sequential.
	UnloadStrategy string               `yaml:"unload_strategy" validate:"omitempty,oneof=all-or-nothing sequential proportional upper-bound"`
	Storage        StorageConfig        `yaml:"storage"`
	Products       []ProductConfig      `yaml:"products" validate:"dive"`
	Vehicles       []VehicleFleetConfig `yaml:"vehicles" validate:"dive"`
}

type StorageConfig struct {
	Capacity int `yaml:"capacity" validate:"gt=0"`
	// UpperBounds optionally overrides the default per-SKU ceiling used by
	// the upper-bound add strategy.
	UpperBounds map[int]int `yaml:"upper_bounds" validate:"omitempty,dive,gt=0"`
}

type ProductConfig struct {
	SKUID     int     `yaml:"sku_id" validate:"gt=0"`
	Price     float64 `yaml:"price" validate:"gte=0"`
	InitStock int     `yaml:"init_stock" validate:"gte=0"`
	// Consumer enables upstream replenishment for this SKU.
	Consumer    bool               `yaml:"consumer"`
	Manufacture *ManufactureConfig `yaml:"manufacture"`
	Seller      *SellerConfig      `yaml:"seller"`
}

type ManufactureConfig struct {
	UnitProductCost float64 `yaml:"unit_product_cost" validate:"gte=0"`
}

type SellerConfig struct {
	Demand DemandConfig `yaml:"demand"`
}

type DemandConfig struct {
	Distribution string  `yaml:"distribution" validate:"oneof=gaussian uniform poisson constant"`
	Mean         float64 `yaml:"mean" validate:"gte=0"`
	StdDev       float64 `yaml:"std_dev" validate:"gte=0"`
	Min          int     `yaml:"min" validate:"gte=0"`
	Max          int     `yaml:"max" validate:"gte=0"`
	Value        int     `yaml:"value" validate:"gte=0"`
}

type VehicleFleetConfig struct {
	Type              string  `yaml:"type" validate:"required"`
	Number            int     `yaml:"number" validate:"gt=0"`
	Capacity          int     `yaml:"capacity" validate:"gt=0"`
	Patience          int     `yaml:"patience" validate:"gt=0"`
	UnitTransportCost float64 `yaml:"unit_transport_cost" validate:"gte=0"`
}

// EdgeConfig declares that Dest may buy SKUID from Source with the given
// vehicle type and lead time.
type EdgeConfig struct {
	Source      int    `yaml:"source" validate:"gt=0"`
	Dest        int    `yaml:"dest" validate:"gt=0"`
	SKUID       int    `yaml:"sku_id" validate:"gt=0"`
	VehicleType string `yaml:"vehicle_type" validate:"required"`
	LeadTime    int64  `yaml:"lead_time" validate:"gte=0"`
}

// LoadTopologyConfig reads and validates a YAML topology file.
func LoadTopologyConfig(path string) (*TopologyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topology file: %w", err)
	}
	var cfg TopologyConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse topology file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct tags plus the cross-entity references the tags
// cannot express: unique ids, no dangling SKU or facility references, and
// every edge backed by a fleet of its vehicle type at the source.
func (c *TopologyConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("topology validation: %w", err)
	}

	skus := make(map[int]bool, len(c.SKUs))
	for _, sku := range c.SKUs {
		if skus[sku.ID] {
			return fmt.Errorf("topology validation: duplicate sku id %d", sku.ID)
		}
		skus[sku.ID] = true
	}
	for _, sku := range c.SKUs {
		for input := range sku.BOM {
			if !skus[input] {
				return fmt.Errorf("topology validation: sku %d bom references unknown sku %d", sku.ID, input)
			}
		}
	}

	facilities := make(map[int]*FacilityConfig, len(c.Facilities))
	for i := range c.Facilities {
		f := &c.Facilities[i]
		if _, ok := facilities[f.ID]; ok {
			return fmt.Errorf("topology validation: duplicate facility id %d", f.ID)
		}
		facilities[f.ID] = f

		stocked := make(map[int]bool, len(f.Products))
		for _, p := range f.Products {
			if !skus[p.SKUID] {
				return fmt.Errorf("topology validation: facility %d stocks unknown sku %d", f.ID, p.SKUID)
			}
			if stocked[p.SKUID] {
				return fmt.Errorf("topology validation: facility %d stocks sku %d twice", f.ID, p.SKUID)
			}
			stocked[p.SKUID] = true
		}
	}

	for _, e := range c.Edges {
		src, ok := facilities[e.Source]
		if !ok {
			return fmt.Errorf("topology validation: edge references unknown source facility %d", e.Source)
		}
		if _, ok := facilities[e.Dest]; !ok {
			return fmt.Errorf("topology validation: edge references unknown dest facility %d", e.Dest)
		}
		if !skus[e.SKUID] {
			return fmt.Errorf("topology validation: edge references unknown sku %d", e.SKUID)
		}
		hasFleet := false
		for _, fleet := range src.Vehicles {
			if fleet.Type == e.VehicleType {
				hasFleet = true
				break
			}
		}
		if !hasFleet {
			return fmt.Errorf("topology validation: facility %d has no %q fleet for edge to facility %d",
				e.Source, e.VehicleType, e.Dest)
		}
	}
	return nil
}

// unloadStrategy maps the configured name to an AddStrategy, defaulting to
// sequential.
func (f *FacilityConfig) unloadStrategy() AddStrategy {
	if f.UnloadStrategy == "" {
		return AddSequential
	}
	return AddStrategy(f.UnloadStrategy)
}
