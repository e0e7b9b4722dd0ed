package jobs

import (
	"context"
	"log/slog"
	"time"

	"dispatch/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// DefaultAuditSchedule runs the audit once a minute, at second zero.
const DefaultAuditSchedule = "0 * * * * *"

// auditTimeout bounds one audit run, exclusion waits included.
const auditTimeout = 30 * time.Second

// AuditHandler runs one assignment audit.
type AuditHandler interface {
	Handle(ctx context.Context, cmd commands.AuditAssignmentsCommand) (commands.AuditReport, error)
}

// InvariantAuditJob periodically checks that every active order, vehicle and
// driver agree about their assignment. Findings go to the log and to the
// audit violations gauge; the job never repairs anything.
type InvariantAuditJob struct {
	handler  AuditHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewInvariantAuditJob creates the job. schedule is a cron expression with
// seconds; an empty one means DefaultAuditSchedule.
func NewInvariantAuditJob(handler AuditHandler, schedule string, logger *slog.Logger) *InvariantAuditJob {
	if schedule == "" {
		schedule = DefaultAuditSchedule
	}
	return &InvariantAuditJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "invariant_audit_job"),
	}
}

func (j *InvariantAuditJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.Run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Invariant audit job started", "schedule", j.schedule)
	return nil
}

// Run performs one audit. Overlapping runs are skipped by the scheduler.
func (j *InvariantAuditJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	report, err := j.handler.Handle(ctx, commands.NewAuditAssignmentsCommand())
	if err != nil {
		j.logger.ErrorContext(ctx, "Invariant audit failed", "error", err)
		return
	}

	if len(report.Violations) > 0 {
		j.logger.ErrorContext(ctx, "Invariant audit found violations",
			"orders", report.Orders,
			"violations", len(report.Violations),
		)
		return
	}
	j.logger.DebugContext(ctx, "Invariant audit passed", "orders", report.Orders)
}

func (j *InvariantAuditJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Invariant audit job stopped")
}
