package commands_test

import (
	"errors"
	"sync"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// TestCoordinator_DispatchDay walks one order through the scenarios a
// dispatcher and a driver go through on a normal day.
func TestCoordinator_DispatchDay(t *testing.T) {
	f := newFixture(t)
	f.acceptWrites()

	o1, o2 := f.addOrder(t), f.addOrder(t)
	v1 := f.addVehicle(t, "DD-001")
	d1 := f.addDriver(t, "Dana", "DL-D1")
	d2 := f.addDriver(t, "Eli", "DL-D2")
	driver1 := newActor(t, d1.ID(), kernel.RoleDriver)

	assignHandler := commands.NewAssignOrderCommandHandler(f.coordinator)
	advanceHandler := commands.NewAdvanceOrderCommandHandler(f.coordinator)

	assignO2 := func() error {
		cmd, err := commands.NewAssignOrderCommand(o2.ID(), v1.ID(), d2.ID(), f.dispatcher)
		require.NoError(t, err)
		_, err = assignHandler.Handle(t.Context(), cmd)
		return err
	}
	advance := func(id kernel.UUID, status order.Status, actor kernel.Actor) (*order.Order, error) {
		cmd, err := commands.NewAdvanceOrderCommand(id, status, actor)
		require.NoError(t, err)
		return advanceHandler.Handle(t.Context(), cmd)
	}

	t.Run("assigning a busy vehicle to a second order is unavailable", func(t *testing.T) {
		assigned := f.assign(t, o1, v1, d1)

		assert.Equal(t, order.Assigned, assigned.Status())
		assert.Equal(t, vehicle.InUse, f.vehicle(t, v1.ID()).Status())
		assert.Equal(t, driver.OnDuty, f.driver(t, d1.ID()).Status())

		require.ErrorIs(t, assignO2(), errs.ErrResourceUnavailable)
		assert.Equal(t, order.Pending, f.order(t, o2.ID()).Status())
		assert.Equal(t, driver.Available, f.driver(t, d2.ID()).Status())
	})

	t.Run("starting twice is an invalid transition", func(t *testing.T) {
		started, err := advance(o1.ID(), order.InProgress, driver1)
		require.NoError(t, err)
		assert.Equal(t, order.InProgress, started.Status())

		_, err = advance(o1.ID(), order.InProgress, driver1)
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("completing frees the resources for the next order", func(t *testing.T) {
		completed, err := advance(o1.ID(), order.Completed, driver1)
		require.NoError(t, err)

		assert.Equal(t, order.Completed, completed.Status())
		assert.True(t, completed.AssignedVehicle().IsZero())
		assert.Equal(t, vehicle.Available, f.vehicle(t, v1.ID()).Status())
		assert.Equal(t, driver.Available, f.driver(t, d1.ID()).Status())

		require.NoError(t, assignO2())
		assert.Equal(t, order.Assigned, f.order(t, o2.ID()).Status())
	})

	t.Run("an assigned order is deleted only after unassign", func(t *testing.T) {
		deleteHandler := commands.NewDeleteOrderCommandHandler(f.coordinator)
		deleteCmd, err := commands.NewDeleteOrderCommand(o2.ID(), f.dispatcher)
		require.NoError(t, err)

		require.ErrorIs(t, deleteHandler.Handle(t.Context(), deleteCmd), errs.ErrConflict)

		unassignCmd, err := commands.NewUnassignOrderCommand(o2.ID(), f.dispatcher)
		require.NoError(t, err)
		_, err = commands.NewUnassignOrderCommandHandler(f.coordinator).Handle(t.Context(), unassignCmd)
		require.NoError(t, err)

		require.NoError(t, deleteHandler.Handle(t.Context(), deleteCmd))
		_, err = f.orders.Get(o2.ID())
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		assert.Equal(t, vehicle.Available, f.vehicle(t, v1.ID()).Status())
		assert.Equal(t, driver.Available, f.driver(t, d2.ID()).Status())
	})
}

func TestCoordinator_EventSequencesFollowVersions(t *testing.T) {
	f := newFixture(t)
	f.acceptWrites()
	o := f.addOrder(t)
	v := f.addVehicle(t, "SQ-001")
	d := f.addDriver(t, "Kim", "DL-SQ")
	driverActor := newActor(t, d.ID(), kernel.RoleDriver)

	f.assign(t, o, v, d)
	for _, status := range []order.Status{order.InProgress, order.Completed} {
		cmd, err := commands.NewAdvanceOrderCommand(o.ID(), status, driverActor)
		require.NoError(t, err)
		_, err = commands.NewAdvanceOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)
		require.NoError(t, err)
	}

	sequences := map[string][]int64{}
	for _, e := range f.publisher.Events() {
		sequences[e.EntityID] = append(sequences[e.EntityID], e.Sequence)
	}
	assert.Equal(t, []int64{2, 3, 4}, sequences[o.ID().String()])
	assert.Equal(t, []int64{2, 3}, sequences[v.ID().String()])
	assert.Equal(t, []int64{2, 3}, sequences[d.ID().String()])
}

func TestCoordinator_ConcurrentOperationsKeepBackReferences(t *testing.T) {
	f := newFixture(t)
	f.acceptWrites()

	const pairs = 4
	vehicles := make([]*vehicle.Vehicle, pairs)
	drivers := make([]*driver.Driver, pairs)
	for i := range pairs {
		vehicles[i] = f.addVehicle(t, "CC-00"+string(rune('0'+i)))
		drivers[i] = f.addDriver(t, "Driver", "DL-CC"+string(rune('0'+i)))
	}
	orders := make([]*order.Order, 3*pairs)
	for i := range orders {
		orders[i] = f.addOrder(t)
	}

	assignHandler := commands.NewAssignOrderCommandHandler(f.coordinator)
	unassignHandler := commands.NewUnassignOrderCommandHandler(f.coordinator)

	var wg sync.WaitGroup
	for i, o := range orders {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for round := range 5 {
				k := (i + round) % pairs
				cmd, err := commands.NewAssignOrderCommand(o.ID(), vehicles[k].ID(), drivers[(k+1)%pairs].ID(), f.dispatcher)
				if !assert.NoError(t, err) {
					return
				}
				if _, err = assignHandler.Handle(t.Context(), cmd); err != nil {
					assert.ErrorIs(t, err, errs.ErrResourceUnavailable)
					continue
				}
				unassign, err := commands.NewUnassignOrderCommand(o.ID(), f.dispatcher)
				if !assert.NoError(t, err) {
					return
				}
				_, err = unassignHandler.Handle(t.Context(), unassign)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	report, err := commands.NewAuditAssignmentsCommandHandler(f.coordinator).Handle(t.Context(), commands.NewAuditAssignmentsCommand())
	require.NoError(t, err)
	assert.Empty(t, report.Violations)
	assert.Empty(t, f.orders.Active())
	assert.Len(t, f.registry.Vehicles(vehicle.Available), pairs)
	assert.Len(t, f.registry.Drivers(driver.Available), pairs)
}

func TestCoordinator_Load(t *testing.T) {
	t.Run("replaces in-memory state with the store content", func(t *testing.T) {
		f := newFixture(t)
		stale := f.addOrder(t)

		v, err := vehicle.NewVehicle(kernel.NewUUID(), vehicle.Specs{
			PlateNumber: "LD-001", Make: "DAF", Model: "XF", Year: 2019, Capacity: 9000,
		})
		require.NoError(t, err)
		o, err := order.NewOrder(kernel.NewUUID(), validDetails())
		require.NoError(t, err)

		mock.InOrder(
			f.uow.On("Begin", mock.Anything).Return(nil).Once(),
			f.vehicleRepo.On("GetAll", mock.Anything).Return([]*vehicle.Vehicle{v}, nil).Once(),
			f.driverRepo.On("GetAll", mock.Anything).Return([]*driver.Driver{}, nil).Once(),
			f.orderRepo.On("GetAll", mock.Anything).Return([]*order.Order{o}, nil).Once(),
			f.uow.On("Commit", mock.Anything).Return(nil).Once(),
			f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
		)

		require.NoError(t, f.coordinator.Load(t.Context()))

		_, err = f.orders.Get(stale.ID())
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
		assert.Equal(t, o, f.order(t, o.ID()))
		assert.Equal(t, v, f.vehicle(t, v.ID()))
		f.uow.AssertExpectations(t)
	})

	t.Run("keeps the state when the store cannot be read", func(t *testing.T) {
		f := newFixture(t)
		kept := f.addOrder(t)

		f.uow.On("Begin", mock.Anything).Return(nil)
		f.uow.On("Rollback", mock.Anything).Return(nil)
		f.vehicleRepo.On("GetAll", mock.Anything).Return(nil, errors.New("no route to host"))

		err := f.coordinator.Load(t.Context())

		require.Error(t, err)
		assert.Equal(t, kept, f.order(t, kept.ID()))
		f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	})
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{errs.NewBusyError("order:1", nil), "busy"},
		{errs.NewResourceUnavailableError("vehicle", "v1", "in-use"), "unavailable"},
		{errs.NewObjectNotFoundError("orderID", "o1"), "not_found"},
		{errs.NewInvalidTransitionError("pending", "completed"), "invalid_transition"},
		{errs.NewForbiddenError("driver", "assign orders"), "forbidden"},
		{errs.NewConflictError("order is assigned"), "conflict"},
		{errs.NewPersistenceFailedError("assign", nil), "persistence_failed"},
		{errs.NewValueIsRequiredError("customer.name"), "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, commands.Outcome(tt.err))
		})
	}
}
