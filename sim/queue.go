// Implements the OrderQueue, which holds placed orders waiting for an idle
// vehicle of their type. Orders are enqueued on placement.

package sim

import (
	"fmt"
	"strings"
)

// OrderQueue is a FIFO queue of orders awaiting dispatch. It is the sole
// queueing/backpressure point in the kernel: an order that finds no idle
// vehicle simply stays queued for the next tick.
type OrderQueue struct {
	queue []*Order
}

// Enqueue adds an order to the back of the queue.
func (oq *OrderQueue) Enqueue(o *Order) {
	oq.queue = append(oq.queue, o)
}

// Dequeue removes and returns the oldest order, or nil when empty.
func (oq *OrderQueue) Dequeue() *Order {
	if len(oq.queue) == 0 {
		return nil
	}
	o := oq.queue[0]
	oq.queue = oq.queue[1:]
	return o
}

// Peek returns the oldest order without removing it, or nil when empty.
func (oq *OrderQueue) Peek() *Order {
	if len(oq.queue) == 0 {
		return nil
	}
	return oq.queue[0]
}

// Len returns the number of queued orders.
func (oq *OrderQueue) Len() int {
	return len(oq.queue)
}

// Items returns the queue contents for iteration. The returned slice is the
// queue's internal storage -- callers within the sim package may iterate
// over it but MUST NOT append to or reslice it.
func (oq *OrderQueue) Items() []*Order {
	return oq.queue
}

func (oq *OrderQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, o := range oq.queue {
		sb.WriteString(fmt.Sprintf("%s:%d", o.ID, o.Quantity))
		if i < len(oq.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
