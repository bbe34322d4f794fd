package sim

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chainsim/chainsim/sim/store"
)

// Attribute names flushed by DistributionUnit.
const (
	AttrPendingOrderNumber   = "pending_order_number"
	AttrPendingOrderQuantity = "pending_order_quantity"
)

// DistributionUnit owns a facility's outbound side: a pool of vehicles
// partitioned by type and one FIFO order queue per type. Each tick it
// dispatches queued orders onto idle vehicles, oldest first.
type DistributionUnit struct {
	id       int
	facility *Facility

	// vehicleTypes is kept sorted so dispatch iterates types in a
	// deterministic order regardless of map iteration.
	vehicleTypes []string
	vehicles     map[string][]*VehicleUnit
	queues       map[string]*OrderQueue

	// Per-tick transient read by engine metrics.
	placedOrders int
}

// NewDistributionUnit builds a distribution unit with an empty vehicle pool.
func NewDistributionUnit(id int, facility *Facility) *DistributionUnit {
	return &DistributionUnit{
		id:       id,
		facility: facility,
		vehicles: make(map[string][]*VehicleUnit),
		queues:   make(map[string]*OrderQueue),
	}
}

func (d *DistributionUnit) EntityID() int { return d.id }

// AddVehicle appends a vehicle to its type's pool. Pool order is fixed at
// build time; dispatch always scans it front to back.
func (d *DistributionUnit) AddVehicle(v *VehicleUnit) {
	vt := v.VehicleType()
	if _, ok := d.vehicles[vt]; !ok {
		d.vehicleTypes = append(d.vehicleTypes, vt)
		sort.Strings(d.vehicleTypes)
		d.queues[vt] = &OrderQueue{}
	}
	d.vehicles[vt] = append(d.vehicles[vt], v)
}

// Vehicles returns the pool for one vehicle type.
func (d *DistributionUnit) Vehicles(vehicleType string) []*VehicleUnit {
	return d.vehicles[vehicleType]
}

// VehicleTypes returns the fleet types this unit operates, sorted.
func (d *DistributionUnit) VehicleTypes() []string {
	return d.vehicleTypes
}

// MaxVehicleCapacity returns the largest single-vehicle capacity of one
// type, or 0 when the type is not operated here. Consumers use it to
// validate action quantities.
func (d *DistributionUnit) MaxVehicleCapacity(vehicleType string) int {
	maxCap := 0
	for _, v := range d.vehicles[vehicleType] {
		if v.Capacity() > maxCap {
			maxCap = v.Capacity()
		}
	}
	return maxCap
}

// PlaceOrder enqueues an order onto the FIFO queue for its vehicle type and
// returns the order's product cost: quantity times this facility's sale
// price for the SKU. Queueing is O(1); no reordering.
func (d *DistributionUnit) PlaceOrder(order *Order) decimal.Decimal {
	q, ok := d.queues[order.VehicleType]
	if !ok {
		// Vehicle type not operated here; the order can never dispatch.
		// Callers validate before placing, so this is an invariant breach.
		logrus.Warnf("distribution %d: order %s placed for unknown vehicle type %q", d.id, order.ID, order.VehicleType)
		q = &OrderQueue{}
		d.queues[order.VehicleType] = q
	}
	q.Enqueue(order)
	d.placedOrders++
	return d.facility.Price(order.SKUID).Mul(decimal.NewFromInt(int64(order.Quantity)))
}

// PendingProductQuantities sums quantities across all queued, not yet
// dispatched orders, per SKU, across all vehicle-type queues.
func (d *DistributionUnit) PendingProductQuantities() map[int]int {
	pending := make(map[int]int)
	for _, q := range d.queues {
		for _, o := range q.Items() {
			pending[o.SKUID] += o.Quantity
		}
	}
	return pending
}

func (d *DistributionUnit) pendingOrderCount() int {
	n := 0
	for _, q := range d.queues {
		n += q.Len()
	}
	return n
}

func (d *DistributionUnit) PreStep(tick int64) {
	d.placedOrders = 0
}

// Step dispatches queued orders to idle vehicles: per vehicle type, while
// there is a queued order and an idle vehicle, pop the oldest order and
// assign it to the first idle vehicle in facility-fixed pool order.
func (d *DistributionUnit) Step(tick int64) {
	for _, vt := range d.vehicleTypes {
		q := d.queues[vt]
		for q.Len() > 0 {
			order := q.Peek()
			v := d.firstIdleVehicle(vt, order.Quantity)
			if v == nil {
				break
			}
			vlt, ok := d.facility.LeadTime(order.SKUID, order.Dest.ID, vt)
			if !ok {
				vlt = order.ExpectedFinishTick - order.CreationTick
			}
			if !v.Schedule(order, vlt) {
				break
			}
			q.Dequeue()
			logrus.Debugf("distribution %d: dispatched order %s to vehicle %d", d.id, order.ID, v.EntityID())
		}
	}
}

// firstIdleVehicle scans the fixed pool order for an idle vehicle that can
// carry the given quantity.
func (d *DistributionUnit) firstIdleVehicle(vehicleType string, quantity int) *VehicleUnit {
	for _, v := range d.vehicles[vehicleType] {
		if v.Idle() && v.Capacity() >= quantity {
			return v
		}
	}
	return nil
}

func (d *DistributionUnit) FlushStates(st *store.Store) {
	pendingQty := 0
	for _, qty := range d.PendingProductQuantities() {
		pendingQty += qty
	}
	st.Set(d.id, AttrPendingOrderNumber, float64(d.pendingOrderCount()))
	st.Set(d.id, AttrPendingOrderQuantity, float64(pendingQty))
}

func (d *DistributionUnit) Reset() {
	for vt := range d.queues {
		d.queues[vt] = &OrderQueue{}
	}
	d.placedOrders = 0
}
