package commands

import (
	"context"
	"errors"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/exclusion"
)

// Violation is one broken assignment invariant.
type Violation struct {
	Kind     string `json:"kind"`
	EntityID string `json:"entityId"`
	Problem  string `json:"problem"`
}

// AuditReport is the result of one audit run.
type AuditReport struct {
	Orders     int         `json:"orders"`
	Violations []Violation `json:"violations"`
}

// AuditAssignmentsCommandHandler verifies that
//   - no vehicle or driver serves more than one active order
//   - every active order's vehicle and driver point back at it and at each other
//   - no vehicle or driver is busy without an active order pointing at it
//
// Each order is checked under the exclusions of the order and its resources,
// so a check never sees an operation half way.
type AuditAssignmentsCommandHandler struct {
	coordinator *Coordinator
}

func NewAuditAssignmentsCommandHandler(coordinator *Coordinator) AuditAssignmentsCommandHandler {
	return AuditAssignmentsCommandHandler{
		coordinator: coordinator,
	}
}

func (h AuditAssignmentsCommandHandler) Handle(ctx context.Context, cmd AuditAssignmentsCommand) (AuditReport, error) {
	if err := cmd.Validate(); err != nil {
		return AuditReport{}, err
	}

	c := h.coordinator
	report := AuditReport{}
	vehicleOrders := make(map[kernel.UUID]kernel.UUID)
	driverOrders := make(map[kernel.UUID]kernel.UUID)

	for _, active := range c.orders.Active() {
		problems, o, err := h.checkOrder(ctx, active.ID())
		if errors.Is(err, errs.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return AuditReport{}, err
		}
		if o == nil {
			continue
		}

		report.Orders++
		report.Violations = append(report.Violations, problems...)

		if other, taken := vehicleOrders[o.AssignedVehicle()]; taken {
			problem, err := h.checkDoubleBooking(ctx, "vehicle", o.AssignedVehicle(), other, o.ID(), func(served *order.Order) kernel.UUID {
				return served.AssignedVehicle()
			})
			if err != nil {
				return AuditReport{}, err
			}
			if problem != nil {
				report.Violations = append(report.Violations, *problem)
			}
		}
		vehicleOrders[o.AssignedVehicle()] = o.ID()

		if other, taken := driverOrders[o.AssignedDriver()]; taken {
			problem, err := h.checkDoubleBooking(ctx, "driver", o.AssignedDriver(), other, o.ID(), func(served *order.Order) kernel.UUID {
				return served.AssignedDriver()
			})
			if err != nil {
				return AuditReport{}, err
			}
			if problem != nil {
				report.Violations = append(report.Violations, *problem)
			}
		}
		driverOrders[o.AssignedDriver()] = o.ID()
	}

	for _, v := range c.registry.Vehicles(vehicle.InUse) {
		if _, checked := vehicleOrders[v.ID()]; checked {
			continue
		}
		problem, err := h.checkOrphan(ctx, "vehicle", v.ID(), v.ActiveOrder(), func() (bool, kernel.UUID) {
			current, err := c.registry.Vehicle(v.ID())
			if err != nil || current.Status() != vehicle.InUse {
				return false, kernel.UUID{}
			}
			return true, current.ActiveOrder()
		}, func(o *order.Order) bool {
			return o.AssignedVehicle().IsEqual(v.ID())
		})
		if err != nil {
			return AuditReport{}, err
		}
		if problem != nil {
			report.Violations = append(report.Violations, *problem)
		}
	}

	for _, d := range c.registry.Drivers(driver.OnDuty) {
		if _, checked := driverOrders[d.ID()]; checked {
			continue
		}
		problem, err := h.checkOrphan(ctx, "driver", d.ID(), d.ActiveOrder(), func() (bool, kernel.UUID) {
			current, err := c.registry.Driver(d.ID())
			if err != nil || current.Status() != driver.OnDuty {
				return false, kernel.UUID{}
			}
			return true, current.ActiveOrder()
		}, func(o *order.Order) bool {
			return o.AssignedDriver().IsEqual(d.ID())
		})
		if err != nil {
			return AuditReport{}, err
		}
		if problem != nil {
			report.Violations = append(report.Violations, *problem)
		}
	}

	c.metrics.SetAuditViolations(len(report.Violations))
	for _, v := range report.Violations {
		c.logger.WarnContext(ctx, "assignment invariant violated",
			"kind", v.Kind,
			"entity", v.EntityID,
			"problem", v.Problem,
		)
	}

	return report, nil
}

// checkOrder verifies one order's back-references under its exclusions. It
// returns a nil order when the order stopped being active in the meantime.
func (h AuditAssignmentsCommandHandler) checkOrder(
	ctx context.Context,
	orderID kernel.UUID,
) ([]Violation, *order.Order, error) {
	c := h.coordinator

	lease, o, err := c.lockOrder(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	defer lease.Release()

	if !o.Status().IsActive() {
		return nil, nil, nil
	}

	var problems []Violation

	v, err := c.registry.Vehicle(o.AssignedVehicle())
	switch {
	case err != nil:
		problems = append(problems, violation("order", o.ID(), "vehicle "+o.AssignedVehicle().String()+" is unknown"))
	case v.Status() != vehicle.InUse:
		problems = append(problems, violation("vehicle", v.ID(), "is "+v.Status().String()+" but serves order "+o.ID().String()))
	case !v.ActiveOrder().IsEqual(o.ID()):
		problems = append(problems, violation("vehicle", v.ID(), "points at order "+v.ActiveOrder().String()+", not "+o.ID().String()))
	case !v.AssignedDriver().IsEqual(o.AssignedDriver()):
		problems = append(problems, violation("vehicle", v.ID(), "driver "+v.AssignedDriver().String()+" differs from order driver "+o.AssignedDriver().String()))
	}

	d, err := c.registry.Driver(o.AssignedDriver())
	switch {
	case err != nil:
		problems = append(problems, violation("order", o.ID(), "driver "+o.AssignedDriver().String()+" is unknown"))
	case d.Status() != driver.OnDuty:
		problems = append(problems, violation("driver", d.ID(), "is "+d.Status().String()+" but serves order "+o.ID().String()))
	case !d.ActiveOrder().IsEqual(o.ID()):
		problems = append(problems, violation("driver", d.ID(), "points at order "+d.ActiveOrder().String()+", not "+o.ID().String()))
	case !d.CurrentVehicle().IsEqual(o.AssignedVehicle()):
		problems = append(problems, violation("driver", d.ID(), "vehicle "+d.CurrentVehicle().String()+" differs from order vehicle "+o.AssignedVehicle().String()))
	}

	return problems, o, nil
}

// checkOrphan verifies that a busy resource not seen through any active order
// really has none. busy re-reads the resource under the exclusions; servedBy
// reports whether an order points at it.
func (h AuditAssignmentsCommandHandler) checkOrphan(
	ctx context.Context,
	kind string,
	id kernel.UUID,
	orderID kernel.UUID,
	busy func() (bool, kernel.UUID),
	servedBy func(*order.Order) bool,
) (*Violation, error) {
	c := h.coordinator

	keys := []string{exclusion.Key(kind, id)}
	if !orderID.IsZero() {
		keys = append(keys, exclusion.Key("order", orderID))
	}
	lease, err := c.locks.Acquire(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	stillBusy, current := busy()
	if !stillBusy || !current.IsEqual(orderID) {
		return nil, nil
	}

	o, err := c.orders.Get(orderID)
	if err != nil || !o.Status().IsActive() || !servedBy(o) {
		problem := violation(kind, id, "is busy without an active order pointing at it")
		return &problem, nil
	}
	return nil, nil
}

// checkDoubleBooking re-reads two orders seen serving the same resource, under
// the exclusions of both orders and the resource. The first order may have been
// completed and its resource handed to the second since it was checked.
func (h AuditAssignmentsCommandHandler) checkDoubleBooking(
	ctx context.Context,
	kind string,
	id kernel.UUID,
	first, second kernel.UUID,
	resourceOf func(*order.Order) kernel.UUID,
) (*Violation, error) {
	c := h.coordinator

	lease, err := c.locks.Acquire(ctx,
		exclusion.Key(kind, id),
		exclusion.Key("order", first),
		exclusion.Key("order", second),
	)
	if err != nil {
		return nil, err
	}
	defer lease.Release()

	for _, orderID := range []kernel.UUID{first, second} {
		o, err := c.orders.Get(orderID)
		if err != nil || !o.Status().IsActive() || !resourceOf(o).IsEqual(id) {
			return nil, nil
		}
	}

	problem := violation(kind, id, "serves orders "+first.String()+" and "+second.String())
	return &problem, nil
}

func violation(kind string, id kernel.UUID, problem string) Violation {
	return Violation{Kind: kind, EntityID: id.String(), Problem: problem}
}
