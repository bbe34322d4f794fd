package sim

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chainsim/chainsim/sim/store"
)

// VehicleState is the phase of a vehicle's delivery cycle.
type VehicleState string

const (
	// VehicleIdle means no destination is assigned; the vehicle is
	// reassignable only from this state.
	VehicleIdle VehicleState = "idle"
	// VehicleLoading means the vehicle is drawing stock from its source
	// storage, with bounded patience.
	VehicleLoading VehicleState = "loading"
	// VehicleTransit means the vehicle is en route, counting down steps.
	VehicleTransit VehicleState = "transit"
	// VehicleUnloading means the vehicle is depositing payload at the
	// destination. No timeout applies: a blocked vehicle stays here until
	// the destination frees space.
	VehicleUnloading VehicleState = "unloading"
)

// Attribute names flushed by VehicleUnit.
const (
	AttrPayload           = "payload"
	AttrRequestedQuantity = "requested_quantity"
	AttrRemainingSteps    = "remaining_steps"
	AttrRemainingPatience = "remaining_patience"
)

// VehicleUnit is a single transport resource. It loads at its owning
// facility, travels a fixed number of ticks, and unloads at the order's
// destination. Invariant: payload ≤ requested quantity ≤ capacity.
type VehicleUnit struct {
	id          int
	facility    *Facility
	vehicleType string
	capacity    int
	maxPatience int
	// UnitTransportCost is the per-unit-payload per-tick cost charged by
	// external accounting; the kernel only carries and flushes it.
	UnitTransportCost decimal.Decimal

	state VehicleState
	order *Order

	skuID             int
	requestedQuantity int
	payload           int
	remainingSteps    int64
	remainingPatience int

	// Per-tick transients read by engine metrics.
	deliveredOrders int
	cancelledOrders int
}

// NewVehicleUnit builds an idle vehicle owned by the given source facility.
func NewVehicleUnit(id int, facility *Facility, vehicleType string, capacity, maxPatience int, unitTransportCost decimal.Decimal) *VehicleUnit {
	return &VehicleUnit{
		id:                id,
		facility:          facility,
		vehicleType:       vehicleType,
		capacity:          capacity,
		maxPatience:       maxPatience,
		UnitTransportCost: unitTransportCost,
		state:             VehicleIdle,
	}
}

func (v *VehicleUnit) EntityID() int { return v.id }

// State returns the vehicle's current phase.
func (v *VehicleUnit) State() VehicleState { return v.state }

// Idle reports whether the vehicle can accept a schedule.
func (v *VehicleUnit) Idle() bool { return v.state == VehicleIdle }

// VehicleType returns the fleet type this vehicle belongs to.
func (v *VehicleUnit) VehicleType() string { return v.vehicleType }

// Capacity returns the maximum load this vehicle accepts in one schedule.
func (v *VehicleUnit) Capacity() int { return v.capacity }

// Payload returns the currently loaded quantity.
func (v *VehicleUnit) Payload() int { return v.payload }

// RequestedQuantity returns the scheduled quantity.
func (v *VehicleUnit) RequestedQuantity() int { return v.requestedQuantity }

// Order returns the order currently assigned, or nil when idle.
func (v *VehicleUnit) Order() *Order { return v.order }

// Schedule assigns an order to the vehicle. Only valid from Idle and for
// quantities within capacity; an invalid schedule is dropped and reported
// false, without state change.
func (v *VehicleUnit) Schedule(order *Order, leadTime int64) bool {
	if v.state != VehicleIdle {
		return false
	}
	if order.Quantity <= 0 || order.Quantity > v.capacity {
		return false
	}
	v.order = order
	v.skuID = order.SKUID
	v.requestedQuantity = order.Quantity
	v.remainingSteps = leadTime
	v.remainingPatience = v.maxPatience
	v.state = VehicleLoading
	order.markDispatched()
	logrus.Debugf("vehicle %d: scheduled order %s (%d of sku %d to facility %d, vlt %d)",
		v.id, order.ID, order.Quantity, order.SKUID, order.Dest.ID, leadTime)
	return true
}

func (v *VehicleUnit) PreStep(tick int64) {
	v.deliveredOrders = 0
	v.cancelledOrders = 0
}

func (v *VehicleUnit) Step(tick int64) {
	switch v.state {
	case VehicleIdle:
	case VehicleLoading:
		v.load(tick)
	case VehicleTransit:
		if v.remainingSteps > 0 {
			v.remainingSteps--
		}
		if v.remainingSteps == 0 {
			v.state = VehicleUnloading
		}
	case VehicleUnloading:
		v.unload(tick)
	}
}

// load draws stock from the source storage. A tick that fails to complete
// the load burns one unit of patience; exhaustion departs with a partial
// payload or, with nothing loaded, cancels the schedule for good.
func (v *VehicleUnit) load(tick int64) {
	taken := v.facility.Storage.TakeAvailable(v.skuID, v.requestedQuantity-v.payload)
	v.payload += taken
	if v.payload == v.requestedQuantity {
		v.state = VehicleTransit
		return
	}
	v.remainingPatience--
	if v.remainingPatience > 0 {
		return
	}
	if v.payload > 0 {
		logrus.Debugf("vehicle %d: patience exhausted, departing with partial payload %d/%d",
			v.id, v.payload, v.requestedQuantity)
		v.state = VehicleTransit
		return
	}
	logrus.Debugf("vehicle %d: patience exhausted with empty payload, cancelling order %s", v.id, v.order.ID)
	v.order.cancel(tick)
	v.notifyTerminated()
	v.cancelledOrders++
	v.resetAssignment()
}

// unload deposits payload at the destination under its unload strategy.
// A partially blocked vehicle stays in Unloading until cumulative unloads
// drain the payload.
func (v *VehicleUnit) unload(tick int64) {
	dest := v.order.Dest
	added := dest.Storage.TryAddProducts([]ProductQuantity{{SKUID: v.skuID, Quantity: v.payload}}, dest.UnloadStrategy)
	if qty := added[v.skuID]; qty > 0 {
		v.payload -= qty
		if product := dest.Product(v.skuID); product != nil && product.Consumer != nil {
			product.Consumer.OnOrderReception(v.order, qty, tick)
		} else {
			v.order.Receive(tick, qty)
		}
	}
	if v.payload == 0 {
		if v.order.State() != OrderDone {
			v.order.complete(tick)
		}
		v.notifyTerminated()
		v.deliveredOrders++
		logrus.Debugf("vehicle %d: order %s delivered (%d/%d received)",
			v.id, v.order.ID, v.order.ReceivedQuantity(), v.order.Quantity)
		v.resetAssignment()
	}
}

// notifyTerminated releases the order's undelivered remainder from the
// destination consumer's open-order tracking.
func (v *VehicleUnit) notifyTerminated() {
	if product := v.order.Dest.Product(v.order.SKUID); product != nil && product.Consumer != nil {
		product.Consumer.OnOrderTerminated(v.order)
	}
}

func (v *VehicleUnit) resetAssignment() {
	v.order = nil
	v.skuID = 0
	v.requestedQuantity = 0
	v.payload = 0
	v.remainingSteps = 0
	v.remainingPatience = 0
	v.state = VehicleIdle
}

func (v *VehicleUnit) FlushStates(st *store.Store) {
	st.Set(v.id, AttrPayload, float64(v.payload))
	st.Set(v.id, AttrRequestedQuantity, float64(v.requestedQuantity))
	st.Set(v.id, AttrRemainingSteps, float64(v.remainingSteps))
	st.Set(v.id, AttrRemainingPatience, float64(v.remainingPatience))
}

func (v *VehicleUnit) Reset() {
	v.resetAssignment()
	v.deliveredOrders = 0
	v.cancelledOrders = 0
}
