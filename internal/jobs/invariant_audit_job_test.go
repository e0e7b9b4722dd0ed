package jobs_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuditHandler struct {
	mock.Mock
}

func (m *MockAuditHandler) Handle(ctx context.Context, cmd commands.AuditAssignmentsCommand) (commands.AuditReport, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.AuditReport), args.Error(1)
}

func TestInvariantAuditJob_Run(t *testing.T) {
	t.Run("runs the audit", func(t *testing.T) {
		handler := new(MockAuditHandler)
		handler.On("Handle", mock.Anything, mock.AnythingOfType("commands.AuditAssignmentsCommand")).
			Return(commands.AuditReport{Orders: 2}, nil).Once()

		jobs.NewInvariantAuditJob(handler, "", slog.New(slog.DiscardHandler)).Run()

		handler.AssertExpectations(t)
	})

	t.Run("survives failures", func(t *testing.T) {
		handler := new(MockAuditHandler)
		handler.On("Handle", mock.Anything, mock.Anything).Return(commands.AuditReport{}, errors.New("resource is busy")).Once()

		assert.NotPanics(t, jobs.NewInvariantAuditJob(handler, "", slog.New(slog.DiscardHandler)).Run)
		handler.AssertExpectations(t)
	})
}

func TestInvariantAuditJob_StartRejectsBadSchedule(t *testing.T) {
	job := jobs.NewInvariantAuditJob(new(MockAuditHandler), "every minute", slog.New(slog.DiscardHandler))

	require.Error(t, job.Start())
}

func TestJobManager_StartStop(t *testing.T) {
	handler := new(MockAuditHandler)
	handler.On("Handle", mock.Anything, mock.Anything).Return(commands.AuditReport{}, nil).Maybe()

	manager := jobs.NewJobManager(handler, "0 0 0 1 1 *", slog.New(slog.DiscardHandler))

	require.NoError(t, manager.StartAll())
	manager.StopAll()
}
