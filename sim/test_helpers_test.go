package sim

import (
	"testing"
)

const (
	testSupplierID = 10
	testRetailerID = 20

	testRawSKU      = 1
	testFinishedSKU = 2
)

// testTopology builds the standard two-echelon fixture: a supplier
// (id 10) manufacturing sku 2 from raw sku 1 with a two-truck fleet, and a
// retailer (id 20) consuming and selling sku 2. Demand is a constant so
// trajectories are exact.
func testTopology(demandValue int) *TopologyConfig {
	return &TopologyConfig{
		Durations: 100,
		SKUs: []SKUConfig{
			{ID: testRawSKU, Name: "raw", UnitOrderCost: 1, UnitStorageCost: 0.1, ServiceLevel: 0.95},
			{ID: testFinishedSKU, Name: "finished", UnitOrderCost: 2, UnitStorageCost: 0.2, ServiceLevel: 0.95,
				BOM: map[int]int{testRawSKU: 2}},
		},
		Facilities: []FacilityConfig{
			{
				ID: testSupplierID, Name: "supplier",
				Storage: StorageConfig{Capacity: 1000},
				Products: []ProductConfig{
					{SKUID: testRawSKU, Price: 5, InitStock: 400},
					{SKUID: testFinishedSKU, Price: 20, InitStock: 100,
						Manufacture: &ManufactureConfig{UnitProductCost: 1}},
				},
				Vehicles: []VehicleFleetConfig{
					{Type: "truck", Number: 2, Capacity: 100, Patience: 5, UnitTransportCost: 1},
				},
			},
			{
				ID: testRetailerID, Name: "retailer",
				Storage: StorageConfig{Capacity: 500},
				Products: []ProductConfig{
					{SKUID: testFinishedSKU, Price: 30, InitStock: 80, Consumer: true,
						Seller: &SellerConfig{Demand: DemandConfig{Distribution: "constant", Value: demandValue}}},
				},
			},
		},
		Edges: []EdgeConfig{
			{Source: testSupplierID, Dest: testRetailerID, SKUID: testFinishedSKU, VehicleType: "truck", LeadTime: 3},
		},
	}
}

// buildTestWorld builds the standard fixture world, failing the test on any
// topology error.
func buildTestWorld(t *testing.T, demandValue int) *World {
	t.Helper()
	w, err := BuildWorld(testTopology(demandValue), 42)
	if err != nil {
		t.Fatalf("BuildWorld failed: %v", err)
	}
	return w
}

// retailerConsumer returns the fixture's single consumer unit.
func retailerConsumer(t *testing.T, w *World) *ConsumerUnit {
	t.Helper()
	c := w.Facility(testRetailerID).Product(testFinishedSKU).Consumer
	if c == nil {
		t.Fatal("fixture retailer has no consumer")
	}
	return c
}

// supplierManufacture returns the fixture's single manufacture unit.
func supplierManufacture(t *testing.T, w *World) *ManufactureUnit {
	t.Helper()
	m := w.Facility(testSupplierID).Product(testFinishedSKU).Manufacture
	if m == nil {
		t.Fatal("fixture supplier has no manufacture unit")
	}
	return m
}
