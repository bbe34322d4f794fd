package sim

import "github.com/google/uuid"

// OrderState tracks where an order is in its lifecycle.
type OrderState string

const (
	// OrderPending means the order sits in a distribution queue awaiting a
	// vehicle.
	OrderPending OrderState = "pending"
	// OrderDispatched means a vehicle carries (or is loading) the order.
	OrderDispatched OrderState = "dispatched"
	// OrderDone means delivery finished; ReceivedQuantity may be below
	// Quantity if the vehicle departed with a partial load.
	OrderDone OrderState = "done"
	// OrderCancelled means the carrying vehicle exhausted its loading
	// patience with nothing loaded. Cancellation is final.
	OrderCancelled OrderState = "cancelled"
)

// Order is an immutable-once-created record of a requested shipment.
// It is created by a ConsumerUnit action, owned by the source facility's
// DistributionUnit queue, then by the VehicleUnit carrying it.
type Order struct {
	ID          string
	Src         *Facility
	Dest        *Facility
	SKUID       int
	Quantity    int
	VehicleType string

	CreationTick       int64
	ExpectedFinishTick int64
	// ExpirationBuffer is the slack in ticks past the expected finish before
	// external accounting treats the order as late. The kernel only carries it.
	ExpirationBuffer int64

	state            OrderState
	receivedQuantity int
	finishTick       int64
}

// NewOrder creates a pending order. All identity fields are fixed for life.
func NewOrder(src, dest *Facility, skuID, quantity int, vehicleType string, creationTick, expectedFinishTick, expirationBuffer int64) *Order {
	return &Order{
		ID:                 uuid.NewString(),
		Src:                src,
		Dest:               dest,
		SKUID:              skuID,
		Quantity:           quantity,
		VehicleType:        vehicleType,
		CreationTick:       creationTick,
		ExpectedFinishTick: expectedFinishTick,
		ExpirationBuffer:   expirationBuffer,
		state:              OrderPending,
		finishTick:         -1,
	}
}

// State returns the order's lifecycle state.
func (o *Order) State() OrderState { return o.state }

// ReceivedQuantity returns the total quantity delivered so far, across all
// unload attempts.
func (o *Order) ReceivedQuantity() int { return o.receivedQuantity }

// FinishTick returns the tick the order reached a terminal state, or -1.
func (o *Order) FinishTick() int64 { return o.finishTick }

func (o *Order) markDispatched() {
	o.state = OrderDispatched
}

// Receive records a (possibly partial) delivery at the given tick.
func (o *Order) Receive(tick int64, quantity int) {
	o.receivedQuantity += quantity
	if o.receivedQuantity >= o.Quantity {
		o.complete(tick)
	}
}

// complete marks the order terminally delivered. The carrying vehicle also
// calls this when it finishes unloading a partial load.
func (o *Order) complete(tick int64) {
	o.state = OrderDone
	o.finishTick = tick
}

// cancel marks the order terminally undelivered.
func (o *Order) cancel(tick int64) {
	o.state = OrderCancelled
	o.finishTick = tick
}
