package sim

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/chainsim/chainsim/sim/store"
)

// Attribute names flushed by ConsumerUnit.
const (
	AttrPurchased         = "purchased"
	AttrReceived          = "received"
	AttrOrderProductCost  = "order_product_cost"
	AttrOrderBaseCost     = "order_base_cost"
	AttrInTransitQuantity = "in_transit_quantity"
)

// ConsumerUnit is a per-facility-SKU demand-generation point: it turns
// actions into orders against upstream facilities and tracks the open
// (placed, unreceived) quantity per source.
type ConsumerUnit struct {
	id       int
	world    *World
	facility *Facility
	skuID    int

	sources       []int
	unitOrderCost decimal.Decimal

	openOrders        map[int]int
	inTransitQuantity int
	// pendingArrivals maps arrival tick to the quantity expected then,
	// keyed by the order's expected finish tick.
	pendingArrivals map[int64]int

	// Per-tick transients.
	purchased        int
	received         int
	orderProductCost decimal.Decimal
	orderBaseCost    decimal.Decimal
}

// NewConsumerUnit builds a consumer for one facility-SKU. sources lists the
// valid upstream facility ids in topology order.
func NewConsumerUnit(id int, world *World, facility *Facility, skuID int, sources []int, unitOrderCost decimal.Decimal) *ConsumerUnit {
	return &ConsumerUnit{
		id:               id,
		world:            world,
		facility:         facility,
		skuID:            skuID,
		sources:          sources,
		unitOrderCost:    unitOrderCost,
		openOrders:       make(map[int]int),
		pendingArrivals:  make(map[int64]int),
		orderProductCost: decimal.Zero,
		orderBaseCost:    decimal.Zero,
	}
}

func (c *ConsumerUnit) EntityID() int { return c.id }

// SKUID returns the SKU this consumer replenishes.
func (c *ConsumerUnit) SKUID() int { return c.skuID }

// Facility returns the owning (destination) facility.
func (c *ConsumerUnit) Facility() *Facility { return c.facility }

// Sources returns the valid upstream facility ids.
func (c *ConsumerUnit) Sources() []int { return c.sources }

// InTransitQuantity returns the total open-order quantity across sources.
func (c *ConsumerUnit) InTransitQuantity() int { return c.inTransitQuantity }

// OpenOrderQuantity returns the open quantity against one source.
func (c *ConsumerUnit) OpenOrderQuantity(sourceID int) int { return c.openOrders[sourceID] }

// Purchased returns this tick's ordered quantity.
func (c *ConsumerUnit) Purchased() int { return c.purchased }

// Received returns this tick's delivered quantity.
func (c *ConsumerUnit) Received() int { return c.received }

// OrderProductCost returns this tick's accumulated product cost.
func (c *ConsumerUnit) OrderProductCost() decimal.Decimal { return c.orderProductCost }

// OrderBaseCost returns this tick's accumulated base order cost.
func (c *ConsumerUnit) OrderBaseCost() decimal.Decimal { return c.orderBaseCost }

// GetPendingOrderDaily returns the quantities expected to arrive at each of
// the next horizon ticks, starting at tick. Entries older than tick are
// dropped to bound memory.
func (c *ConsumerUnit) GetPendingOrderDaily(tick int64, horizon int) []int {
	out := make([]int, horizon)
	for i := 0; i < horizon; i++ {
		out[i] = c.pendingArrivals[tick+int64(i)]
	}
	delete(c.pendingArrivals, tick)
	return out
}

// ProcessActions applies this tick's actions. Each action is validated
// independently; invalid actions are silently dropped, never errors.
func (c *ConsumerUnit) ProcessActions(actions []ConsumerAction, tick int64) {
	c.purchased = 0
	c.orderProductCost = decimal.Zero
	c.orderBaseCost = decimal.Zero
	for _, action := range actions {
		c.processAction(action, tick)
	}
}

func (c *ConsumerUnit) processAction(action ConsumerAction, tick int64) {
	if !c.validSource(action.SourceID) || action.SKUID != c.skuID || action.Quantity <= 0 {
		return
	}

	source := c.world.Facility(action.SourceID)
	if source == nil || source.Distribution == nil {
		return
	}
	vlt, ok := source.LeadTime(c.skuID, c.facility.ID, action.VehicleType)
	if !ok {
		return
	}
	// Quantities beyond what any vehicle of the type can carry would wedge
	// the dispatch queue; such actions are invalid and dropped.
	if action.Quantity > source.Distribution.MaxVehicleCapacity(action.VehicleType) {
		return
	}

	c.updateOpenOrders(action.SourceID, action.Quantity)

	order := NewOrder(source, c.facility, c.skuID, action.Quantity, action.VehicleType, tick, tick+vlt, action.ExpirationBuffer)
	c.pendingArrivals[order.ExpectedFinishTick] += action.Quantity

	c.orderProductCost = c.orderProductCost.Add(source.Distribution.PlaceOrder(order))
	c.orderBaseCost = c.orderBaseCost.Add(c.unitOrderCost.Mul(decimal.NewFromInt(int64(action.Quantity))))
	c.purchased += action.Quantity

	logrus.Debugf("consumer %d: ordered %d of sku %d from facility %d (order %s, eta %d)",
		c.id, action.Quantity, c.skuID, action.SourceID, order.ID, order.ExpectedFinishTick)
}

func (c *ConsumerUnit) validSource(sourceID int) bool {
	for _, id := range c.sources {
		if id == sourceID {
			return true
		}
	}
	return false
}

// OnOrderReception is called by a vehicle on (partial) delivery.
func (c *ConsumerUnit) OnOrderReception(order *Order, receivedQuantity int, tick int64) {
	if order.SKUID != c.skuID {
		panic(fmt.Sprintf("consumer %d: received sku %d, expected %d", c.id, order.SKUID, c.skuID))
	}
	c.received += receivedQuantity
	order.Receive(tick, receivedQuantity)
	c.updateOpenOrders(order.Src.ID, -receivedQuantity)
}

// OnOrderTerminated releases the undelivered remainder of a terminal order
// from open-order tracking. Called by the carrying vehicle on cancellation
// and on completion of a partial delivery.
func (c *ConsumerUnit) OnOrderTerminated(order *Order) {
	shortfall := order.Quantity - order.ReceivedQuantity()
	if shortfall > 0 {
		c.updateOpenOrders(order.Src.ID, -shortfall)
	}
}

func (c *ConsumerUnit) updateOpenOrders(sourceID int, additionalQuantity int) {
	c.openOrders[sourceID] += additionalQuantity
	c.inTransitQuantity += additionalQuantity
}

func (c *ConsumerUnit) PreStep(tick int64) {
	c.purchased = 0
	c.received = 0
	c.orderProductCost = decimal.Zero
	c.orderBaseCost = decimal.Zero
}

func (c *ConsumerUnit) Step(tick int64) {}

func (c *ConsumerUnit) FlushStates(st *store.Store) {
	st.Set(c.id, AttrPurchased, float64(c.purchased))
	st.Set(c.id, AttrReceived, float64(c.received))
	st.Set(c.id, AttrOrderProductCost, c.orderProductCost.InexactFloat64())
	st.Set(c.id, AttrOrderBaseCost, c.orderBaseCost.InexactFloat64())
	st.Set(c.id, AttrInTransitQuantity, float64(c.inTransitQuantity))
}

func (c *ConsumerUnit) Reset() {
	c.openOrders = make(map[int]int)
	c.pendingArrivals = make(map[int64]int)
	c.inTransitQuantity = 0
	c.purchased = 0
	c.received = 0
	c.orderProductCost = decimal.Zero
	c.orderBaseCost = decimal.Zero
}
