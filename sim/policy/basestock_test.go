package policy

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsim/chainsim/sim"
	"github.com/chainsim/chainsim/sim/store"
)

// baseStockTopology mirrors the kernel's two-echelon fixture: a supplier
// manufacturing a finished SKU from a raw one, a retailer consuming and
// selling it with constant demand.
func baseStockTopology(demandValue int) *sim.TopologyConfig {
	return &sim.TopologyConfig{
		Durations: 100,
		SKUs: []sim.SKUConfig{
			{ID: 1, Name: "raw", UnitOrderCost: 1, ServiceLevel: 0.95},
			{ID: 2, Name: "finished", UnitOrderCost: 2, ServiceLevel: 0.95, BOM: map[int]int{1: 2}},
		},
		Facilities: []sim.FacilityConfig{
			{
				ID: 10, Name: "supplier",
				Storage: sim.StorageConfig{Capacity: 1000},
				Products: []sim.ProductConfig{
					{SKUID: 1, Price: 5, InitStock: 400},
					{SKUID: 2, Price: 20, InitStock: 100, Manufacture: &sim.ManufactureConfig{}},
				},
				Vehicles: []sim.VehicleFleetConfig{
					{Type: "truck", Number: 2, Capacity: 100, Patience: 5},
				},
			},
			{
				ID: 20, Name: "retailer",
				Storage: sim.StorageConfig{Capacity: 500},
				Products: []sim.ProductConfig{
					{SKUID: 2, Price: 30, InitStock: 80, Consumer: true,
						Seller: &sim.SellerConfig{Demand: sim.DemandConfig{Distribution: "constant", Value: demandValue}}},
				},
			},
		},
		Edges: []sim.EdgeConfig{
			{Source: 10, Dest: 20, SKUID: 2, VehicleType: "truck", LeadTime: 3},
		},
	}
}

func TestBaseStock_DerivesOnePlanPerWiredConsumer(t *testing.T) {
	cfg := baseStockTopology(10)
	w, err := sim.BuildWorld(cfg, 42)
	require.NoError(t, err)

	p := NewBaseStock(cfg, w)
	require.Len(t, p.plans, 1)
	plan := p.plans[0]
	assert.Equal(t, 10, plan.sourceID)
	assert.Equal(t, "truck", plan.vehicleType)
	assert.Equal(t, int64(3), plan.leadTime)
	assert.Equal(t, float64(10), plan.demandMean)
	assert.Equal(t, float64(0), plan.demandStd)
	assert.Equal(t, 0.95, plan.serviceLevel)
}

func TestBaseStock_OrdersUpToReorderPoint(t *testing.T) {
	cfg := baseStockTopology(10)
	w, err := sim.BuildWorld(cfg, 42)
	require.NoError(t, err)
	p := NewBaseStock(cfg, w)
	c := w.Consumers()[0]

	actions := p.Decide(w, 0)

	// Cover is max(3*1.3, 2) + 3 = 6.9 ticks of mean-10 demand, so the
	// reorder point is 69 against a position of 80: nothing ordered yet.
	_, ordered := actions[c.EntityID()]
	assert.False(t, ordered)

	// Drain the retailer below the reorder point.
	w.Facility(20).Storage.TakeAvailable(2, 40)
	actions = p.Decide(w, 1)
	action, ordered := actions[c.EntityID()]
	require.True(t, ordered)
	ca, ok := action.(sim.ConsumerAction)
	require.True(t, ok)
	assert.Equal(t, 10, ca.SourceID)
	assert.Equal(t, 2, ca.SKUID)
	assert.Equal(t, "truck", ca.VehicleType)
	assert.Equal(t, 29, ca.Quantity) // ceil(69 - 40)
}

func TestBaseStock_CapsAtVehicleCapacity(t *testing.T) {
	cfg := baseStockTopology(60)
	w, err := sim.BuildWorld(cfg, 42)
	require.NoError(t, err)
	p := NewBaseStock(cfg, w)
	c := w.Consumers()[0]

	// Mean 60 over 6.9 cover ticks wants 414 - 80 = 334, far beyond a truck.
	actions := p.Decide(w, 0)
	action, ordered := actions[c.EntityID()]
	require.True(t, ordered)
	assert.Equal(t, 100, action.(sim.ConsumerAction).Quantity)
}

func TestBaseStock_ManufacturersFillStorageShare(t *testing.T) {
	cfg := baseStockTopology(10)
	w, err := sim.BuildWorld(cfg, 42)
	require.NoError(t, err)
	p := NewBaseStock(cfg, w)
	m := w.Manufactures()[0]

	actions := p.Decide(w, 0)
	action, ok := actions[m.EntityID()]
	require.True(t, ok)
	// Supplier share is 1000/2 = 500 minus the 100 on hand.
	assert.Equal(t, 400, action.(sim.ManufactureAction).Rate)
}

func TestBaseStock_DrivesFullRunWithoutStockout(t *testing.T) {
	// GIVEN steady constant demand well within transport capacity, and
	// enough raw material at the supplier to cover the whole run
	cfg := baseStockTopology(10)
	cfg.Durations = 60
	cfg.Facilities[0].Storage.Capacity = 2000
	cfg.Facilities[0].Products[0].InitStock = 1400
	// The policy places roughly one small order per tick and a truck's
	// round trip takes five ticks, so the fleet needs headroom to keep up.
	cfg.Facilities[0].Vehicles[0].Number = 8
	w, err := sim.BuildWorld(cfg, 42)
	require.NoError(t, err)
	engine := sim.NewBusinessEngine(w, store.New())
	p := NewBaseStock(cfg, w)

	// WHEN the policy drives the whole run
	for !engine.Done() {
		engine.Step(p.Decide(w, engine.Tick()))
	}

	// THEN replenishment keeps pace after the initial lead time
	m := engine.Metrics()
	assert.Equal(t, int64(60), engine.Tick())
	assert.Greater(t, m.OrdersDelivered, 0)
	assert.Zero(t, m.OrdersCancelled)
	assert.Equal(t, 600, m.TotalDemand)
	assert.GreaterOrEqual(t, m.TotalSold, m.TotalDemand*9/10)
}

func TestDemandMoments(t *testing.T) {
	tests := []struct {
		name     string
		dc       sim.DemandConfig
		wantMean float64
		wantStd  float64
	}{
		{"gaussian", sim.DemandConfig{Distribution: "gaussian", Mean: 30, StdDev: 5}, 30, 5},
		{"poisson", sim.DemandConfig{Distribution: "poisson", Mean: 9}, 9, 3},
		{"uniform", sim.DemandConfig{Distribution: "uniform", Min: 0, Max: 12}, 6, 12 / math.Sqrt(12)},
		{"constant", sim.DemandConfig{Distribution: "constant", Value: 7}, 7, 0},
		{"unknown", sim.DemandConfig{Distribution: "weibull"}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, std := demandMoments(tt.dc)
			assert.InDelta(t, tt.wantMean, mean, 1e-9)
			assert.InDelta(t, tt.wantStd, std, 1e-9)
		})
	}
}

func TestNormQuantile(t *testing.T) {
	assert.InDelta(t, 0, normQuantile(0.5), 1e-9)
	assert.InDelta(t, 1.6449, normQuantile(0.95), 1e-3)
	assert.Equal(t, 0.0, normQuantile(0))
	assert.Equal(t, 0.0, normQuantile(1))
}
