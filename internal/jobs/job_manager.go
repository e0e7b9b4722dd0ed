package jobs

import (
	"fmt"
	"log/slog"
)

// JobManager starts and stops the scheduled jobs together.
type JobManager struct {
	auditJob *InvariantAuditJob
}

func NewJobManager(auditHandler AuditHandler, auditSchedule string, logger *slog.Logger) *JobManager {
	return &JobManager{
		auditJob: NewInvariantAuditJob(auditHandler, auditSchedule, logger),
	}
}

// StartAll starts all scheduled jobs.
func (jm *JobManager) StartAll() error {
	if err := jm.auditJob.Start(); err != nil {
		return fmt.Errorf("failed to start invariant audit job: %w", err)
	}
	return nil
}

// StopAll stops all jobs and waits for running ones to finish.
func (jm *JobManager) StopAll() {
	jm.auditJob.Stop()
}
