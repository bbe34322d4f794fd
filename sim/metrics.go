// Tracks run-wide totals across ticks for final reporting.

package sim

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Metrics aggregates statistics about the simulation for final reporting.
// Useful for evaluating replenishment behavior and debugging topologies.
type Metrics struct {
	OrdersPlaced    int // Orders enqueued at distribution units
	OrdersDelivered int // Orders that reached a terminal delivered state
	OrdersCancelled int // Orders cancelled by patience exhaustion

	TotalPurchased    int // Units ordered by consumers
	TotalReceived     int // Units delivered to consumers
	TotalManufactured int // Units produced
	TotalDemand       int // Units of external demand drawn
	TotalSold         int // Units sold to external demand

	TotalOrderProductCost decimal.Decimal // Sum of order product costs
	TotalOrderBaseCost    decimal.Decimal // Sum of order base costs
}

// NewMetrics creates zeroed metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		TotalOrderProductCost: decimal.Zero,
		TotalOrderBaseCost:    decimal.Zero,
	}
}

// record accumulates one tick's unit transients after stepping.
func (m *Metrics) record(w *World) {
	for _, c := range w.Consumers() {
		m.TotalPurchased += c.Purchased()
		m.TotalReceived += c.Received()
		m.TotalOrderProductCost = m.TotalOrderProductCost.Add(c.OrderProductCost())
		m.TotalOrderBaseCost = m.TotalOrderBaseCost.Add(c.OrderBaseCost())
	}
	for _, d := range w.Distributions() {
		m.OrdersPlaced += d.placedOrders
	}
	for _, v := range w.Vehicles() {
		m.OrdersDelivered += v.deliveredOrders
		m.OrdersCancelled += v.cancelledOrders
	}
	for _, mu := range w.Manufactures() {
		m.TotalManufactured += mu.Manufactured()
	}
	for _, s := range w.Sellers() {
		m.TotalDemand += s.Demand()
		m.TotalSold += s.Sold()
	}
}

// Print displays aggregated metrics at the end of the simulation.
func (m *Metrics) Print(ticks int64) {
	fmt.Println("=== Simulation Metrics ===")
	fmt.Printf("Ticks                : %d\n", ticks)
	fmt.Printf("Orders Placed        : %d\n", m.OrdersPlaced)
	fmt.Printf("Orders Delivered     : %d\n", m.OrdersDelivered)
	fmt.Printf("Orders Cancelled     : %d\n", m.OrdersCancelled)
	fmt.Printf("Units Purchased      : %d\n", m.TotalPurchased)
	fmt.Printf("Units Received       : %d\n", m.TotalReceived)
	fmt.Printf("Units Manufactured   : %d\n", m.TotalManufactured)
	fmt.Printf("Demand / Sold        : %d / %d\n", m.TotalDemand, m.TotalSold)
	if m.TotalDemand > 0 {
		fmt.Printf("Fill Rate            : %.2f%%\n", 100*float64(m.TotalSold)/float64(m.TotalDemand))
	}
	fmt.Printf("Order Product Cost   : %s\n", m.TotalOrderProductCost.StringFixed(2))
	fmt.Printf("Order Base Cost      : %s\n", m.TotalOrderBaseCost.StringFixed(2))
}
