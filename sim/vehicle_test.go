package sim

import (
	"testing"

	"github.com/shopspring/decimal"
)

// newTestLane builds a source facility with stock and a destination with
// bounded space, plus one truck, without going through a full world.
func newTestLane(srcStock, destCapacity, destStock int) (*Facility, *Facility, *VehicleUnit) {
	src := newFacility(1, "src", AddSequential)
	src.Storage = NewStorageUnit(100, 1000, map[int]int{7: srcStock}, nil)

	dest := newFacility(2, "dest", AddSequential)
	dest.Storage = NewStorageUnit(101, destCapacity, map[int]int{7: destStock}, nil)

	v := NewVehicleUnit(102, src, "truck", 100, 3, decimal.Zero)
	return src, dest, v
}

func TestVehicle_FullDeliveryCycle(t *testing.T) {
	// GIVEN a truck scheduled for 40 units with lead time 2 and full stock
	src, dest, v := newTestLane(40, 500, 0)
	order := NewOrder(src, dest, 7, 40, "truck", 0, 2, 0)
	if !v.Schedule(order, 2) {
		t.Fatal("schedule from idle should succeed")
	}
	if v.State() != VehicleLoading {
		t.Fatalf("expected loading, got %s", v.State())
	}

	// WHEN it steps through load, transit, and unload
	v.Step(0) // loads 40, enters transit
	if v.State() != VehicleTransit || v.Payload() != 40 {
		t.Fatalf("expected transit with payload 40, got %s payload %d", v.State(), v.Payload())
	}
	if src.Storage.ProductLevel(7) != 0 {
		t.Fatalf("source stock should be drained, got %d", src.Storage.ProductLevel(7))
	}

	v.Step(1) // steps 2 -> 1
	v.Step(2) // steps 1 -> 0, enters unloading
	if v.State() != VehicleUnloading {
		t.Fatalf("expected unloading, got %s", v.State())
	}

	v.Step(3)

	// THEN the order is fully received and the vehicle is clean idle
	if v.State() != VehicleIdle {
		t.Fatalf("expected idle, got %s", v.State())
	}
	if order.State() != OrderDone || order.ReceivedQuantity() != 40 {
		t.Fatalf("expected done order with 40 received, got %s / %d", order.State(), order.ReceivedQuantity())
	}
	if dest.Storage.ProductLevel(7) != 40 {
		t.Fatalf("destination should hold 40, got %d", dest.Storage.ProductLevel(7))
	}
	if v.Payload() != 0 || v.RequestedQuantity() != 0 || v.Order() != nil {
		t.Fatal("idle vehicle should have cleared assignment fields")
	}
}

func TestVehicle_PatienceExhaustionWithZeroPayloadCancels(t *testing.T) {
	// GIVEN a truck scheduled against an empty source (patience 3)
	src, dest, v := newTestLane(0, 500, 0)
	order := NewOrder(src, dest, 7, 40, "truck", 0, 2, 0)
	v.Schedule(order, 2)

	// WHEN every load attempt comes up empty
	v.Step(0)
	v.Step(1)
	if v.State() != VehicleLoading {
		t.Fatalf("patience not yet exhausted, expected loading, got %s", v.State())
	}
	v.Step(2)

	// THEN the vehicle resets to idle without ever entering transit and the
	// order is terminally cancelled
	if v.State() != VehicleIdle {
		t.Fatalf("expected idle after exhausted patience, got %s", v.State())
	}
	if order.State() != OrderCancelled {
		t.Fatalf("expected cancelled order, got %s", order.State())
	}
	if order.ReceivedQuantity() != 0 {
		t.Fatalf("cancelled order must deliver nothing, got %d", order.ReceivedQuantity())
	}
}

func TestVehicle_PatienceExhaustionWithPartialPayloadDeparts(t *testing.T) {
	// GIVEN a source holding only 15 of the 40 requested units
	src, dest, v := newTestLane(15, 500, 0)
	order := NewOrder(src, dest, 7, 40, "truck", 0, 1, 0)
	v.Schedule(order, 1)

	v.Step(0) // loads 15, patience 3 -> 2
	v.Step(1) // nothing left, patience 2 -> 1
	v.Step(2) // patience 1 -> 0: departs with the partial load

	if v.State() != VehicleTransit {
		t.Fatalf("expected partial departure into transit, got %s", v.State())
	}
	if v.Payload() != 15 {
		t.Fatalf("expected payload 15, got %d", v.Payload())
	}

	v.Step(3) // steps 1 -> 0, unloading
	v.Step(4) // unload 15

	if v.State() != VehicleIdle {
		t.Fatalf("expected idle, got %s", v.State())
	}
	if order.State() != OrderDone || order.ReceivedQuantity() != 15 {
		t.Fatalf("expected done order with 15 received, got %s / %d", order.State(), order.ReceivedQuantity())
	}
}

func TestVehicle_BlockedUnloadWaitsForSpace(t *testing.T) {
	// GIVEN a destination with only 25 units of space for a 40-unit payload
	src, dest, v := newTestLane(40, 25, 0)
	order := NewOrder(src, dest, 7, 40, "truck", 0, 1, 0)
	v.Schedule(order, 1)

	v.Step(0) // full load, transit
	v.Step(1) // steps 1 -> 0, unloading
	v.Step(2) // unloads 25, blocked with 15 left

	if v.State() != VehicleUnloading {
		t.Fatalf("expected blocked vehicle to stay unloading, got %s", v.State())
	}
	if v.Payload() != 15 {
		t.Fatalf("expected 15 still aboard, got %d", v.Payload())
	}
	if order.ReceivedQuantity() != 25 {
		t.Fatalf("expected 25 received so far, got %d", order.ReceivedQuantity())
	}

	// No timeout applies: it stays blocked while the destination is full.
	v.Step(3)
	if v.State() != VehicleUnloading || v.Payload() != 15 {
		t.Fatalf("expected still blocked, got %s payload %d", v.State(), v.Payload())
	}

	// WHEN the destination frees space
	dest.Storage.TakeAvailable(7, 20)
	v.Step(4)

	// THEN the remaining payload lands and the vehicle goes idle
	if v.State() != VehicleIdle {
		t.Fatalf("expected idle after final unload, got %s", v.State())
	}
	if order.State() != OrderDone || order.ReceivedQuantity() != 40 {
		t.Fatalf("expected fully received order, got %s / %d", order.State(), order.ReceivedQuantity())
	}
}

func TestVehicle_ScheduleValidation(t *testing.T) {
	src, dest, v := newTestLane(40, 500, 0)

	over := NewOrder(src, dest, 7, 150, "truck", 0, 2, 0)
	if v.Schedule(over, 2) {
		t.Fatal("schedule above capacity must be dropped")
	}
	if v.State() != VehicleIdle {
		t.Fatalf("dropped schedule must not change state, got %s", v.State())
	}

	order := NewOrder(src, dest, 7, 40, "truck", 0, 2, 0)
	if !v.Schedule(order, 2) {
		t.Fatal("valid schedule should succeed")
	}
	second := NewOrder(src, dest, 7, 10, "truck", 0, 2, 0)
	if v.Schedule(second, 2) {
		t.Fatal("vehicle is reassignable only from idle")
	}
}
