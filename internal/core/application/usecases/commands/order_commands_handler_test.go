package commands_test

import (
	"errors"
	"testing"

	"dispatch/internal/core/application/notifier"
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

func TestUnassignOrderCommandHandler_Handle(t *testing.T) {
	t.Run("returns an in-progress order to pending and frees its resources", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		o := f.addOrder(t)
		v := f.addVehicle(t, "UN-001")
		d := f.addDriver(t, "Noor", "DL-U1")
		f.assign(t, o, v, d)

		start, err := commands.NewAdvanceOrderCommand(o.ID(), order.InProgress, f.admin)
		require.NoError(t, err)
		_, err = commands.NewAdvanceOrderCommandHandler(f.coordinator).Handle(t.Context(), start)
		require.NoError(t, err)

		cmd, err := commands.NewUnassignOrderCommand(o.ID(), f.dispatcher)
		require.NoError(t, err)

		pending, err := commands.NewUnassignOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Pending, pending.Status())
		assert.False(t, pending.HasAssignment())
		assert.Equal(t, vehicle.Available, f.vehicle(t, v.ID()).Status())
		assert.True(t, f.vehicle(t, v.ID()).ActiveOrder().IsZero())
		assert.Equal(t, driver.Available, f.driver(t, d.ID()).Status())
		assert.True(t, f.driver(t, d.ID()).CurrentVehicle().IsZero())

		last := f.publisher.Events()
		orderEvent := last[len(last)-3]
		assert.Equal(t, notifier.KindOrder, orderEvent.Kind)
		assert.True(t, orderEvent.Concerns(d.ID().String()), "the released driver is told about the change")
	})

	t.Run("pending order is a conflict", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t)

		cmd, err := commands.NewUnassignOrderCommand(o.ID(), f.dispatcher)
		require.NoError(t, err)

		_, err = commands.NewUnassignOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("driver may not unassign", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		o := f.addOrder(t)
		v := f.addVehicle(t, "UN-002")
		d := f.addDriver(t, "Noor", "DL-U2")
		f.assign(t, o, v, d)

		cmd, err := commands.NewUnassignOrderCommand(o.ID(), newActor(t, d.ID(), kernel.RoleDriver))
		require.NoError(t, err)

		_, err = commands.NewUnassignOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.Equal(t, order.Assigned, f.order(t, o.ID()).Status())
	})

	t.Run("failed write keeps the assignment", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t)
		v := f.addVehicle(t, "UN-003")
		d := f.addDriver(t, "Noor", "DL-U3")

		f.uow.On("Begin", mock.Anything).Return(nil)
		f.uow.On("Commit", mock.Anything).Return(nil).Once()
		f.uow.On("Rollback", mock.Anything).Return(nil)
		f.orderRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.vehicleRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.driverRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		f.driverRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("deadlock detected"))

		assigned := f.assign(t, o, v, d)
		vehicleBefore, driverBefore := f.vehicle(t, v.ID()), f.driver(t, d.ID())

		cmd, err := commands.NewUnassignOrderCommand(o.ID(), f.dispatcher)
		require.NoError(t, err)

		_, err = commands.NewUnassignOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrPersistenceFailed)
		assert.Equal(t, assigned, f.order(t, o.ID()))
		assert.Equal(t, vehicleBefore, f.vehicle(t, v.ID()))
		assert.Equal(t, driverBefore, f.driver(t, d.ID()))
	})
}

func TestAdvanceOrderCommandHandler_Handle(t *testing.T) {
	t.Run("cancelling an assigned order frees its resources", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		o := f.addOrder(t)
		v := f.addVehicle(t, "AD-001")
		d := f.addDriver(t, "Tom", "DL-A1")
		f.assign(t, o, v, d)

		cmd, err := commands.NewAdvanceOrderCommand(o.ID(), order.Cancelled, f.dispatcher)
		require.NoError(t, err)

		cancelled, err := commands.NewAdvanceOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Cancelled, cancelled.Status())
		assert.Equal(t, vehicle.Available, f.vehicle(t, v.ID()).Status())
		assert.Equal(t, driver.Available, f.driver(t, d.ID()).Status())
	})

	t.Run("cancelling a pending order writes only the order", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		o := f.addOrder(t)

		cmd, err := commands.NewAdvanceOrderCommand(o.ID(), order.Cancelled, f.admin)
		require.NoError(t, err)

		_, err = commands.NewAdvanceOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.NoError(t, err)
		f.vehicleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		assert.Equal(t, []notifier.Kind{notifier.KindOrder}, f.publisher.Kinds())
	})

	t.Run("another driver may not start the order", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		o := f.addOrder(t)
		v := f.addVehicle(t, "AD-002")
		d := f.addDriver(t, "Tom", "DL-A2")
		f.assign(t, o, v, d)

		cmd, err := commands.NewAdvanceOrderCommand(o.ID(), order.InProgress, newActor(t, kernel.NewUUID(), kernel.RoleDriver))
		require.NoError(t, err)

		_, err = commands.NewAdvanceOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
		assert.Equal(t, order.Assigned, f.order(t, o.ID()).Status())
	})

	t.Run("advancing to assigned is a conflict", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t)

		cmd, err := commands.NewAdvanceOrderCommand(o.ID(), order.Assigned, f.dispatcher)
		require.NoError(t, err)

		_, err = commands.NewAdvanceOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("completing a pending order is an invalid transition", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t)

		cmd, err := commands.NewAdvanceOrderCommand(o.ID(), order.Completed, f.admin)
		require.NoError(t, err)

		_, err = commands.NewAdvanceOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("failed write on completion keeps the order running", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t)
		v := f.addVehicle(t, "AD-003")
		d := f.addDriver(t, "Tom", "DL-A3")

		f.uow.On("Begin", mock.Anything).Return(nil)
		f.uow.On("Rollback", mock.Anything).Return(nil)
		f.uow.On("Commit", mock.Anything).Return(nil).Twice()
		f.uow.On("Commit", mock.Anything).Return(errors.New("serialization failure"))
		f.orderRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.vehicleRepo.On("Save", mock.Anything, mock.Anything).Return(nil)
		f.driverRepo.On("Save", mock.Anything, mock.Anything).Return(nil)

		f.assign(t, o, v, d)
		driverActor := newActor(t, d.ID(), kernel.RoleDriver)
		start, err := commands.NewAdvanceOrderCommand(o.ID(), order.InProgress, driverActor)
		require.NoError(t, err)
		started, err := commands.NewAdvanceOrderCommandHandler(f.coordinator).Handle(t.Context(), start)
		require.NoError(t, err)

		complete, err := commands.NewAdvanceOrderCommand(o.ID(), order.Completed, driverActor)
		require.NoError(t, err)
		_, err = commands.NewAdvanceOrderCommandHandler(f.coordinator).Handle(t.Context(), complete)

		require.ErrorIs(t, err, errs.ErrPersistenceFailed)
		assert.Equal(t, started, f.order(t, o.ID()))
		assert.Equal(t, vehicle.InUse, f.vehicle(t, v.ID()).Status())
		assert.Equal(t, driver.OnDuty, f.driver(t, d.ID()).Status())
	})
}

func TestDeleteOrderCommandHandler_Handle(t *testing.T) {
	t.Run("publishes a deletion event after the last version", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		o := f.addOrder(t)

		cmd, err := commands.NewDeleteOrderCommand(o.ID(), f.dispatcher)
		require.NoError(t, err)

		require.NoError(t, commands.NewDeleteOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd))

		events := f.publisher.Events()
		require.Len(t, events, 1)
		assert.True(t, events[0].Deleted)
		assert.Equal(t, o.Version()+1, events[0].Sequence)
		f.orderRepo.AssertCalled(t, "Delete", mock.Anything, o.ID())
	})

	t.Run("driver may not delete", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t)

		cmd, err := commands.NewDeleteOrderCommand(o.ID(), newActor(t, kernel.NewUUID(), kernel.RoleDriver))
		require.NoError(t, err)

		require.ErrorIs(t, commands.NewDeleteOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd), errs.ErrForbidden)
	})

	t.Run("failed delete keeps the order", func(t *testing.T) {
		f := newFixture(t)
		o := f.addOrder(t)
		f.uow.On("Begin", mock.Anything).Return(nil)
		f.uow.On("Rollback", mock.Anything).Return(nil)
		f.orderRepo.On("Delete", mock.Anything, o.ID()).Return(errs.NewObjectNotFoundError("orderID", o.ID()))

		cmd, err := commands.NewDeleteOrderCommand(o.ID(), f.dispatcher)
		require.NoError(t, err)

		err = commands.NewDeleteOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrPersistenceFailed)
		assert.Equal(t, o, f.order(t, o.ID()))
		assert.Empty(t, f.publisher.Events())
	})
}

func TestCreateOrderCommandHandler_Handle(t *testing.T) {
	t.Run("books a pending order", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		id := kernel.NewUUID()
		details := validDetails()
		details.Priority = ""

		cmd, err := commands.NewCreateOrderCommand(id, details, f.dispatcher)
		require.NoError(t, err)

		created, err := commands.NewCreateOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, order.Pending, created.Status())
		assert.Equal(t, order.PriorityMedium, created.Details().Priority)
		assert.Equal(t, int64(1), created.Version())
		assert.Equal(t, created, f.order(t, id))
		assert.Equal(t, []notifier.Kind{notifier.KindOrder}, f.publisher.Kinds())
	})

	t.Run("duplicate id is a conflict", func(t *testing.T) {
		f := newFixture(t)
		existing := f.addOrder(t)

		cmd, err := commands.NewCreateOrderCommand(existing.ID(), validDetails(), f.dispatcher)
		require.NoError(t, err)

		_, err = commands.NewCreateOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("driver may not book", func(t *testing.T) {
		f := newFixture(t)

		cmd, err := commands.NewCreateOrderCommand(kernel.NewUUID(), validDetails(), newActor(t, kernel.NewUUID(), kernel.RoleDriver))
		require.NoError(t, err)

		_, err = commands.NewCreateOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("failed write forgets the order", func(t *testing.T) {
		f := newFixture(t)
		f.uow.On("Begin", mock.Anything).Return(errors.New("too many connections"))
		id := kernel.NewUUID()

		cmd, err := commands.NewCreateOrderCommand(id, validDetails(), f.dispatcher)
		require.NoError(t, err)

		_, err = commands.NewCreateOrderCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrPersistenceFailed)
		_, err = f.orders.Get(id)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}

func TestNewCreateOrderCommand_InvalidDetails(t *testing.T) {
	_, err := commands.NewCreateOrderCommand(kernel.NewUUID(), order.Details{}, kernel.Actor{})

	require.Error(t, err)
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
	require.ErrorIs(t, err, kernel.ErrActorIsNotConstructed)
	assert.Contains(t, err.Error(), "customer.name")
}
