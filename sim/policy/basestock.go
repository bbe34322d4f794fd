// Package policy provides scripted baseline policies that drive a world
// without an external agent. They exist so a topology can be simulated end
// to end from the CLI; they are deliberately simple order-point rules, not
// a learning framework.
package policy

import (
	"math"
	"sort"

	"github.com/chainsim/chainsim/sim"
)

// Policy produces the action batch for one tick.
type Policy interface {
	Decide(w *sim.World, tick int64) sim.ActionBatch
}

// consumerPlan is the per-consumer data a BaseStock decision needs.
type consumerPlan struct {
	consumer     *sim.ConsumerUnit
	sourceID     int
	vehicleType  string
	leadTime     int64
	demandMean   float64
	demandStd    float64
	serviceLevel float64
}

// BaseStock is a reorder-point replenishment rule: when a consumer's
// inventory position (on hand + in transit − pending outbound) falls to its
// reorder point, order the shortfall from its first upstream source. The
// reorder point covers lead-time demand plus a service-level safety stock.
// Manufacture units greedily fill their storage share.
type BaseStock struct {
	plans []consumerPlan
}

// NewBaseStock derives per-consumer plans from the topology: demand mean and
// deviation from the facility's seller config (falling back to downstream
// sellers of the SKU), lead time from the first upstream edge, service level
// from the SKU.
func NewBaseStock(cfg *sim.TopologyConfig, w *sim.World) *BaseStock {
	demandByFacilitySKU := make(map[[2]int]sim.DemandConfig)
	for _, fc := range cfg.Facilities {
		for _, pc := range fc.Products {
			if pc.Seller != nil {
				demandByFacilitySKU[[2]int{fc.ID, pc.SKUID}] = pc.Seller.Demand
			}
		}
	}

	b := &BaseStock{}
	for _, c := range w.Consumers() {
		sources := c.Sources()
		if len(sources) == 0 {
			continue
		}
		sourceID := sources[0]
		source := w.Facility(sourceID)
		if source == nil || source.Distribution == nil {
			continue
		}

		plan := consumerPlan{
			consumer: c,
			sourceID: sourceID,
		}
		for _, vt := range source.Distribution.VehicleTypes() {
			if vlt, ok := source.LeadTime(c.SKUID(), c.Facility().ID, vt); ok {
				plan.vehicleType = vt
				plan.leadTime = vlt
				break
			}
		}
		if plan.vehicleType == "" {
			continue
		}

		if dc, ok := demandByFacilitySKU[[2]int{c.Facility().ID, c.SKUID()}]; ok {
			plan.demandMean, plan.demandStd = demandMoments(dc)
		} else {
			// No local seller: cover the combined demand of downstream
			// facilities buying this SKU from here.
			for key, dc := range demandByFacilitySKU {
				if key[1] != c.SKUID() {
					continue
				}
				mean, std := demandMoments(dc)
				plan.demandMean += mean
				plan.demandStd += std
			}
		}
		if sku := w.SKUs[c.SKUID()]; sku != nil {
			plan.serviceLevel = sku.ServiceLevel
		}
		b.plans = append(b.plans, plan)
	}
	sort.Slice(b.plans, func(i, j int) bool {
		return b.plans[i].consumer.EntityID() < b.plans[j].consumer.EntityID()
	})
	return b
}

// Decide builds the per-tick action batch.
func (b *BaseStock) Decide(w *sim.World, tick int64) sim.ActionBatch {
	actions := make(sim.ActionBatch)

	for _, plan := range b.plans {
		c := plan.consumer
		f := c.Facility()

		position := f.Storage.ProductLevel(c.SKUID()) + c.InTransitQuantity()
		if f.Distribution != nil {
			position -= f.Distribution.PendingProductQuantities()[c.SKUID()]
		}

		coverTicks := float64(plan.leadTime) * 1.3
		if coverTicks < 2 {
			coverTicks = 2
		}
		coverTicks += float64(plan.leadTime)
		rop := coverTicks*plan.demandMean + math.Sqrt(coverTicks)*plan.demandStd*normQuantile(plan.serviceLevel)
		if float64(position) > rop {
			continue
		}

		qty := int(math.Ceil(rop - float64(position)))
		source := w.Facility(plan.sourceID)
		if maxCap := source.Distribution.MaxVehicleCapacity(plan.vehicleType); qty > maxCap {
			qty = maxCap
		}
		if qty <= 0 {
			continue
		}
		actions[c.EntityID()] = sim.ConsumerAction{
			SourceID:    plan.sourceID,
			SKUID:       c.SKUID(),
			Quantity:    qty,
			VehicleType: plan.vehicleType,
		}
	}

	// Manufacturers greedily fill their storage share; the unit clamps to
	// its capacity and material bounds anyway.
	for _, m := range w.Manufactures() {
		storage := m.Facility().Storage
		rate := storage.AverageUpperBound() - storage.ProductLevel(m.SKUID())
		if rate > 0 {
			actions[m.EntityID()] = sim.ManufactureAction{Rate: rate}
		}
	}

	return actions
}

// demandMoments returns the mean and standard deviation of a configured
// demand distribution.
func demandMoments(dc sim.DemandConfig) (float64, float64) {
	switch dc.Distribution {
	case "gaussian":
		return dc.Mean, dc.StdDev
	case "poisson":
		return dc.Mean, math.Sqrt(dc.Mean)
	case "uniform":
		mean := float64(dc.Min+dc.Max) / 2
		std := float64(dc.Max-dc.Min) / math.Sqrt(12)
		return mean, std
	case "constant":
		return float64(dc.Value), 0
	default:
		return 0, 0
	}
}

// normQuantile is the standard normal quantile, for service-level safety
// stock. Out-of-range probabilities clamp to zero safety stock.
func normQuantile(p float64) float64 {
	if p <= 0 || p >= 1 {
		return 0
	}
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
