package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	testCases := []struct {
		input    string
		expected kernel.Role
	}{
		{input: "admin", expected: kernel.RoleAdmin},
		{input: "Dispatcher", expected: kernel.RoleDispatcher},
		{input: " driver ", expected: kernel.RoleDriver},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			role, err := kernel.ParseRole(tc.input)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, role)
		})
	}

	t.Run("unknown role", func(t *testing.T) {
		_, err := kernel.ParseRole("customer")

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestRole_CanDispatch(t *testing.T) {
	assert.True(t, kernel.RoleAdmin.CanDispatch())
	assert.True(t, kernel.RoleDispatcher.CanDispatch())
	assert.False(t, kernel.RoleDriver.CanDispatch())
}

func TestNewActor(t *testing.T) {
	t.Run("valid actor", func(t *testing.T) {
		id := kernel.NewUUID()

		actor, err := kernel.NewActor(id, kernel.RoleDriver)

		require.NoError(t, err)
		require.NoError(t, actor.Validate())
		assert.True(t, actor.ID().IsEqual(id))
		assert.True(t, actor.IsDriver(id))
		assert.False(t, actor.IsDriver(kernel.NewUUID()))
		assert.False(t, actor.IsAdmin())
	})

	t.Run("aggregates validation errors", func(t *testing.T) {
		_, err := kernel.NewActor(kernel.UUID{}, kernel.Role("guest"))

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value actor is rejected", func(t *testing.T) {
		var actor kernel.Actor

		require.ErrorIs(t, actor.Validate(), kernel.ErrActorIsNotConstructed)
	})

	t.Run("admin is never a driver", func(t *testing.T) {
		id := kernel.NewUUID()
		actor, err := kernel.NewActor(id, kernel.RoleAdmin)
		require.NoError(t, err)

		assert.True(t, actor.IsAdmin())
		assert.False(t, actor.IsDriver(id))
	})
}
