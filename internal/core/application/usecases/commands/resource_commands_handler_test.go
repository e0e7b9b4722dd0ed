package commands_test

import (
	"errors"
	"testing"
	"time"

	"dispatch/internal/core/application/notifier"
	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRegisterVehicleCommandHandler_Handle(t *testing.T) {
	specs := vehicle.Specs{PlateNumber: "ab-123-cd", Make: "Scania", Model: "R450", Year: 2022, Capacity: 20}

	t.Run("registers an available vehicle", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		id := kernel.NewUUID()

		cmd, err := commands.NewRegisterVehicleCommand(id, specs, f.dispatcher)
		require.NoError(t, err)

		created, err := commands.NewRegisterVehicleCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, vehicle.Available, created.Status())
		assert.Equal(t, "AB-123-CD", created.Specs().PlateNumber)
		assert.Equal(t, created, f.vehicle(t, id))
		assert.Equal(t, []notifier.Kind{notifier.KindVehicle}, f.publisher.Kinds())
	})

	t.Run("duplicate plate is a conflict", func(t *testing.T) {
		f := newFixture(t)
		f.addVehicle(t, "AB-123-CD")

		cmd, err := commands.NewRegisterVehicleCommand(kernel.NewUUID(), specs, f.admin)
		require.NoError(t, err)

		_, err = commands.NewRegisterVehicleCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("failed write forgets the vehicle", func(t *testing.T) {
		f := newFixture(t)
		f.uow.On("Begin", mock.Anything).Return(nil)
		f.uow.On("Rollback", mock.Anything).Return(nil)
		f.vehicleRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("unique violation"))
		id := kernel.NewUUID()

		cmd, err := commands.NewRegisterVehicleCommand(id, specs, f.dispatcher)
		require.NoError(t, err)

		_, err = commands.NewRegisterVehicleCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrPersistenceFailed)
		_, err = f.registry.Vehicle(id)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("driver may not register vehicles", func(t *testing.T) {
		f := newFixture(t)

		cmd, err := commands.NewRegisterVehicleCommand(kernel.NewUUID(), specs, newActor(t, kernel.NewUUID(), kernel.RoleDriver))
		require.NoError(t, err)

		_, err = commands.NewRegisterVehicleCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
	})
}

func TestRegisterDriverCommandHandler_Handle(t *testing.T) {
	profile := driver.Profile{
		Name:    "Sam Reyes",
		Phone:   "+1 555 0199",
		License: driver.License{Number: "CDL-77", Type: "CE", Expiry: time.Now().AddDate(3, 0, 0)},
		Rating:  4.5,
	}

	t.Run("registers an available driver", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		id := kernel.NewUUID()

		cmd, err := commands.NewRegisterDriverCommand(id, profile, f.admin)
		require.NoError(t, err)

		created, err := commands.NewRegisterDriverCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, driver.Available, created.Status())
		assert.Equal(t, created, f.driver(t, id))
		assert.Equal(t, []notifier.Kind{notifier.KindDriver}, f.publisher.Kinds())
	})

	t.Run("duplicate licence is a conflict", func(t *testing.T) {
		f := newFixture(t)
		f.addDriver(t, "Other", "CDL-77")

		cmd, err := commands.NewRegisterDriverCommand(kernel.NewUUID(), profile, f.dispatcher)
		require.NoError(t, err)

		_, err = commands.NewRegisterDriverCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
	})
}

func TestChangeVehicleStatusCommandHandler_Handle(t *testing.T) {
	t.Run("sends an idle vehicle to maintenance", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		v := f.addVehicle(t, "ST-001")

		cmd, err := commands.NewChangeVehicleStatusCommand(v.ID(), vehicle.Maintenance, f.dispatcher)
		require.NoError(t, err)

		updated, err := commands.NewChangeVehicleStatusCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, vehicle.Maintenance, updated.Status())
		assert.Equal(t, v.Version()+1, updated.Version())
		assert.Len(t, f.publisher.Events(), 1)
	})

	t.Run("same status writes nothing", func(t *testing.T) {
		f := newFixture(t)
		v := f.addVehicle(t, "ST-002")

		cmd, err := commands.NewChangeVehicleStatusCommand(v.ID(), vehicle.Available, f.dispatcher)
		require.NoError(t, err)

		updated, err := commands.NewChangeVehicleStatusCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, v.Version(), updated.Version())
		f.uow.AssertNotCalled(t, "Begin", mock.Anything)
		assert.Empty(t, f.publisher.Events())
	})

	t.Run("vehicle serving an order is a conflict", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		o := f.addOrder(t)
		v := f.addVehicle(t, "ST-003")
		d := f.addDriver(t, "Ana", "DL-S3")
		f.assign(t, o, v, d)

		cmd, err := commands.NewChangeVehicleStatusCommand(v.ID(), vehicle.OutOfService, f.admin)
		require.NoError(t, err)

		_, err = commands.NewChangeVehicleStatusCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
		assert.Equal(t, vehicle.InUse, f.vehicle(t, v.ID()).Status())
	})

	t.Run("in-use cannot be set directly", func(t *testing.T) {
		f := newFixture(t)
		v := f.addVehicle(t, "ST-004")

		cmd, err := commands.NewChangeVehicleStatusCommand(v.ID(), vehicle.InUse, f.admin)
		require.NoError(t, err)

		_, err = commands.NewChangeVehicleStatusCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrConflict)
	})

	t.Run("failed write restores the status", func(t *testing.T) {
		f := newFixture(t)
		v := f.addVehicle(t, "ST-005")
		f.uow.On("Begin", mock.Anything).Return(nil)
		f.uow.On("Rollback", mock.Anything).Return(nil)
		f.vehicleRepo.On("Save", mock.Anything, mock.Anything).Return(errors.New("read-only transaction"))

		cmd, err := commands.NewChangeVehicleStatusCommand(v.ID(), vehicle.Maintenance, f.admin)
		require.NoError(t, err)

		_, err = commands.NewChangeVehicleStatusCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrPersistenceFailed)
		assert.Equal(t, v, f.vehicle(t, v.ID()))
	})
}

func TestChangeDriverStatusCommandHandler_Handle(t *testing.T) {
	t.Run("driver goes off duty", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		d := f.addDriver(t, "Ravi", "DL-R1")

		cmd, err := commands.NewChangeDriverStatusCommand(d.ID(), driver.OffDuty, newActor(t, d.ID(), kernel.RoleDriver))
		require.NoError(t, err)

		updated, err := commands.NewChangeDriverStatusCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.NoError(t, err)
		assert.Equal(t, driver.OffDuty, updated.Status())
		assert.Equal(t, []notifier.Kind{notifier.KindDriver}, f.publisher.Kinds())
	})

	t.Run("off-duty driver cannot be assigned", func(t *testing.T) {
		f := newFixture(t)
		f.acceptWrites()
		o := f.addOrder(t)
		v := f.addVehicle(t, "DR-001")
		d := f.addDriver(t, "Ravi", "DL-R2")

		cmd, err := commands.NewChangeDriverStatusCommand(d.ID(), driver.OnLeave, f.dispatcher)
		require.NoError(t, err)
		_, err = commands.NewChangeDriverStatusCommandHandler(f.coordinator).Handle(t.Context(), cmd)
		require.NoError(t, err)

		assign, err := commands.NewAssignOrderCommand(o.ID(), v.ID(), d.ID(), f.dispatcher)
		require.NoError(t, err)
		_, err = commands.NewAssignOrderCommandHandler(f.coordinator).Handle(t.Context(), assign)

		require.ErrorIs(t, err, errs.ErrResourceUnavailable)
		assert.Contains(t, err.Error(), "on-leave")
	})

	t.Run("driver may not change another driver", func(t *testing.T) {
		f := newFixture(t)
		d := f.addDriver(t, "Ravi", "DL-R3")

		cmd, err := commands.NewChangeDriverStatusCommand(d.ID(), driver.OffDuty, newActor(t, kernel.NewUUID(), kernel.RoleDriver))
		require.NoError(t, err)

		_, err = commands.NewChangeDriverStatusCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrForbidden)
	})

	t.Run("unknown driver", func(t *testing.T) {
		f := newFixture(t)

		cmd, err := commands.NewChangeDriverStatusCommand(kernel.NewUUID(), driver.OffDuty, f.admin)
		require.NoError(t, err)

		_, err = commands.NewChangeDriverStatusCommandHandler(f.coordinator).Handle(t.Context(), cmd)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})
}
