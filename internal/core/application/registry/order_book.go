package registry

import (
	"cmp"
	"slices"
	"sync"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/errs"
)

// OrderBook is the in-memory owner of orders. Like the Registry it stores
// originals and hands out clones; callers mutate a clone and Put it back.
type OrderBook struct {
	mu     sync.RWMutex
	orders map[kernel.UUID]*order.Order
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		orders: make(map[kernel.UUID]*order.Order),
	}
}

// Load replaces the whole content with orders read from the store.
func (b *OrderBook) Load(orders []*order.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()

	clear(b.orders)
	for _, o := range orders {
		b.orders[o.ID()] = o.Clone()
	}
}

// Add stores a new order.
func (b *OrderBook) Add(o *order.Order) error {
	if err := o.Validate(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.orders[o.ID()]; exists {
		return errs.NewConflictError("order " + o.ID().String() + " already exists")
	}
	b.orders[o.ID()] = o.Clone()
	return nil
}

// Get returns a copy of the order.
func (b *OrderBook) Get(id kernel.UUID) (*order.Order, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	o, ok := b.orders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("orderID", id)
	}
	return o.Clone(), nil
}

// Put replaces the stored order with o. It is used both to publish a change
// and to roll one back.
func (b *OrderBook) Put(o *order.Order) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders[o.ID()] = o.Clone()
}

// Remove forgets an order.
func (b *OrderBook) Remove(id kernel.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.orders, id)
}

// List returns copies of the orders in the given status, or of all orders
// for order.Unknown, ordered by id.
func (b *OrderBook) List(status order.Status) []*order.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	result := make([]*order.Order, 0, len(b.orders))
	for _, o := range b.orders {
		if status == order.Unknown || o.Status() == status {
			result = append(result, o.Clone())
		}
	}
	slices.SortFunc(result, func(x, y *order.Order) int {
		return cmp.Compare(x.ID().String(), y.ID().String())
	})
	return result
}

// Active returns copies of the assigned and in-progress orders, ordered by id.
func (b *OrderBook) Active() []*order.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []*order.Order
	for _, o := range b.orders {
		if o.Status().IsActive() {
			result = append(result, o.Clone())
		}
	}
	slices.SortFunc(result, func(x, y *order.Order) int {
		return cmp.Compare(x.ID().String(), y.ID().String())
	})
	return result
}

// ForDriver returns copies of the orders assigned to the driver.
func (b *OrderBook) ForDriver(driverID kernel.UUID) []*order.Order {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var result []*order.Order
	for _, o := range b.orders {
		if o.AssignedDriver().IsEqual(driverID) {
			result = append(result, o.Clone())
		}
	}
	return result
}
