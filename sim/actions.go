package sim

// Action is a per-tick decision submitted by the external caller for one
// unit. Absent entries in a batch mean "no action this tick".
type Action interface {
	isAction()
}

// ConsumerAction asks a ConsumerUnit to order a quantity of its SKU from an
// upstream source facility using the given vehicle type.
type ConsumerAction struct {
	SourceID    int
	SKUID       int
	Quantity    int
	VehicleType string
	// ExpirationBuffer is carried onto the created order.
	ExpirationBuffer int64
}

func (ConsumerAction) isAction() {}

// ManufactureAction asks a ManufactureUnit to target a production rate for
// this tick. The actual production may clamp below it.
type ManufactureAction struct {
	Rate int
}

func (ManufactureAction) isAction() {}

// ActionBatch maps unit entity id to the action for one tick.
type ActionBatch map[int]Action
