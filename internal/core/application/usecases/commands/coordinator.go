package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"dispatch/internal/core/application/notifier"
	"dispatch/internal/core/application/registry"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/exclusion"
	"dispatch/internal/pkg/errs"
)

const (
	DefaultPersistTimeout = 5 * time.Second

	// maxLockAttempts bounds how often lockOrder chases an assignment that
	// keeps changing while it waits.
	maxLockAttempts = 3
)

var errAssignmentMoving = errors.New("order assignment changed while waiting for it")

// Coordinator is the single writer of orders, vehicles and drivers.
//
// Every operation follows the same protocol:
//  1. acquire the exclusions of every entity it will touch (sorted, see exclusion.Manager)
//  2. validate and mutate clones, then put them into the Registry and the OrderBook
//  3. write all changed snapshots in one unit of work
//  4. on a failed write, put the previous snapshots back, in reverse order
//  5. enqueue change events and release the exclusions
//
// Because the rollback happens before the exclusions are released, no other
// operation can observe a change that does not become durable.
type Coordinator struct {
	registry       *registry.Registry
	orders         *registry.OrderBook
	locks          *exclusion.Manager
	uowFactory     UoWFactory
	publisher      Publisher
	lifecycle      services.OrderLifecycle
	persistTimeout time.Duration
	metrics        ports.Metrics
	logger         *slog.Logger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithPersistTimeout bounds each unit of work.
func WithPersistTimeout(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.persistTimeout = d
		}
	}
}

func WithMetrics(m ports.Metrics) CoordinatorOption {
	return func(c *Coordinator) {
		if m != nil {
			c.metrics = m
		}
	}
}

func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCoordinator wires the coordinator to the in-memory state, the exclusion
// manager, the persistence gateway and the notifier.
func NewCoordinator(
	reg *registry.Registry,
	orders *registry.OrderBook,
	locks *exclusion.Manager,
	uowFactory UoWFactory,
	publisher Publisher,
	opts ...CoordinatorOption,
) *Coordinator {
	c := &Coordinator{
		registry:       reg,
		orders:         orders,
		locks:          locks,
		uowFactory:     uowFactory,
		publisher:      publisher,
		lifecycle:      services.NewOrderLifecycle(),
		persistTimeout: DefaultPersistTimeout,
		metrics:        ports.NopMetrics{},
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "Coordinator")
	return c
}

// Load replaces the in-memory state with the content of the store. It is
// called once at startup, before any operation is accepted.
func (c *Coordinator) Load(ctx context.Context) error {
	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	vehicles, err := uow.VehicleRepository().GetAll(ctx)
	if err != nil {
		return err
	}
	drivers, err := uow.DriverRepository().GetAll(ctx)
	if err != nil {
		return err
	}
	orders, err := uow.OrderRepository().GetAll(ctx)
	if err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	c.registry.Load(vehicles, drivers)
	c.orders.Load(orders)

	c.logger.InfoContext(ctx, "state loaded",
		"vehicles", len(vehicles),
		"drivers", len(drivers),
		"orders", len(orders),
	)
	return nil
}

// lockOrder acquires the order, the vehicle and driver it is assigned to and
// any extra keys, and returns the order as read under the lease. The
// assignment can change while waiting, so it is re-read once held and the
// acquisition repeated if it moved.
func (c *Coordinator) lockOrder(
	ctx context.Context,
	orderID kernel.UUID,
	extra ...string,
) (*exclusion.Lease, *order.Order, error) {
	for range maxLockAttempts {
		seen, err := c.orders.Get(orderID)
		if err != nil {
			return nil, nil, err
		}

		keys := append(orderKeys(seen), extra...)
		lease, err := c.locks.Acquire(ctx, keys...)
		if err != nil {
			return nil, nil, err
		}

		current, err := c.orders.Get(orderID)
		if err != nil {
			lease.Release()
			return nil, nil, err
		}
		if sameAssignment(seen, current) {
			return lease, current, nil
		}
		lease.Release()
	}
	return nil, nil, errs.NewBusyError(exclusion.Key("order", orderID), errAssignmentMoving)
}

func orderKeys(o *order.Order) []string {
	keys := []string{exclusion.Key("order", o.ID())}
	if o.HasAssignment() {
		keys = append(keys,
			exclusion.Key("vehicle", o.AssignedVehicle()),
			exclusion.Key("driver", o.AssignedDriver()),
		)
	}
	return keys
}

func sameAssignment(a, b *order.Order) bool {
	return a.AssignedVehicle().IsEqual(b.AssignedVehicle()) && a.AssignedDriver().IsEqual(b.AssignedDriver())
}

// snapshots is the set of entities one operation writes.
type snapshots struct {
	orders   []*order.Order
	deleted  []kernel.UUID
	vehicles []*vehicle.Vehicle
	drivers  []*driver.Driver
}

// persist writes the snapshots in a single unit of work. The caller's
// cancellation does not interrupt a write once started; only the persist
// timeout does.
func (c *Coordinator) persist(ctx context.Context, operation string, s snapshots) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.persistTimeout)
	defer cancel()

	uow := c.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return errs.NewPersistenceFailedError(operation, err)
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	for _, o := range s.orders {
		if err := uow.OrderRepository().Save(ctx, o); err != nil {
			return errs.NewPersistenceFailedError(operation, err)
		}
	}
	for _, id := range s.deleted {
		if err := uow.OrderRepository().Delete(ctx, id); err != nil {
			return errs.NewPersistenceFailedError(operation, err)
		}
	}
	for _, v := range s.vehicles {
		if err := uow.VehicleRepository().Save(ctx, v); err != nil {
			return errs.NewPersistenceFailedError(operation, err)
		}
	}
	for _, d := range s.drivers {
		if err := uow.DriverRepository().Save(ctx, d); err != nil {
			return errs.NewPersistenceFailedError(operation, err)
		}
	}

	if err := uow.Commit(ctx); err != nil {
		return errs.NewPersistenceFailedError(operation, err)
	}
	return nil
}

// rolledBack logs a persistence failure whose in-memory change has been undone.
func (c *Coordinator) rolledBack(ctx context.Context, operation string, entityID kernel.UUID, err error) {
	c.logger.ErrorContext(ctx, "write failed, in-memory change rolled back",
		"operation", operation,
		"entity", entityID.String(),
		"error", err,
	)
}

// observe records the outcome of an operation. It is deferred with a pointer
// to the handler's named error.
func (c *Coordinator) observe(operation string, start time.Time, err *error) {
	c.metrics.ObserveOperation(operation, Outcome(*err), time.Since(start))
}

// Outcome classifies an operation result for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrBusy):
		return "busy"
	case errors.Is(err, errs.ErrResourceUnavailable):
		return "unavailable"
	case errors.Is(err, errs.ErrObjectNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, errs.ErrForbidden):
		return "forbidden"
	case errors.Is(err, errs.ErrConflict):
		return "conflict"
	case errors.Is(err, errs.ErrPersistenceFailed):
		return "persistence_failed"
	default:
		return "invalid"
	}
}

func (c *Coordinator) publishOrder(o *order.Order, before *order.Order) {
	parties := []string{idString(o.AssignedDriver())}
	if before != nil {
		parties = append(parties, idString(before.AssignedDriver()))
	}
	c.publisher.Publish(notifier.NewEvent(notifier.KindOrder, o.ID().String(), o.Version(), o, parties...))
}

func (c *Coordinator) publishVehicle(v *vehicle.Vehicle, before *vehicle.Vehicle) {
	parties := []string{idString(v.AssignedDriver())}
	if before != nil {
		parties = append(parties, idString(before.AssignedDriver()))
	}
	c.publisher.Publish(notifier.NewEvent(notifier.KindVehicle, v.ID().String(), v.Version(), v, parties...))
}

func (c *Coordinator) publishDriver(d *driver.Driver) {
	c.publisher.Publish(notifier.NewEvent(notifier.KindDriver, d.ID().String(), d.Version(), d))
}

func idString(id kernel.UUID) string {
	if id.IsZero() {
		return ""
	}
	return id.String()
}

// release is the outcome of freeing an order's vehicle and driver: their new
// snapshots and the previous ones, for rollback.
type release struct {
	c             *Coordinator
	vehicle       *vehicle.Vehicle
	driver        *driver.Driver
	vehicleBefore *vehicle.Vehicle
	driverBefore  *driver.Driver
}

// releaseResources returns the vehicle and driver of an active order to
// available. The caller holds the exclusions of all three.
func (c *Coordinator) releaseResources(o *order.Order) (*release, error) {
	vehicleBefore, err := c.registry.Vehicle(o.AssignedVehicle())
	if err != nil {
		return nil, err
	}
	driverBefore, err := c.registry.Driver(o.AssignedDriver())
	if err != nil {
		return nil, err
	}

	if err = c.registry.Release(o.AssignedVehicle(), o.AssignedDriver()); err != nil {
		return nil, err
	}

	r := &release{c: c, vehicleBefore: vehicleBefore, driverBefore: driverBefore}
	if r.vehicle, err = c.registry.Vehicle(o.AssignedVehicle()); err != nil {
		r.undo()
		return nil, err
	}
	if r.driver, err = c.registry.Driver(o.AssignedDriver()); err != nil {
		r.undo()
		return nil, err
	}
	return r, nil
}

func (r *release) undo() {
	r.c.registry.RestoreDriver(r.driverBefore)
	r.c.registry.RestoreVehicle(r.vehicleBefore)
}

// publish announces the resources that actually changed.
func (r *release) publish() {
	if r.vehicle.Version() != r.vehicleBefore.Version() {
		r.c.publishVehicle(r.vehicle, r.vehicleBefore)
	}
	if r.driver.Version() != r.driverBefore.Version() {
		r.c.publishDriver(r.driver)
	}
}
