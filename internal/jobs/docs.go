// Package jobs provides scheduled background tasks for the dispatch service.
//
// Jobs use github.com/robfig/cron/v3 with a seconds field.
//
// # Available Jobs
//
// InvariantAuditJob re-checks, under the same exclusions the coordinator
// uses, that no vehicle or driver serves two active orders and that orders,
// vehicles and drivers reference each other consistently. It reports and
// never repairs.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(auditHandler, cfg.AuditSchedule, logger)
//	if err := jobManager.StartAll(); err != nil {
//		return err
//	}
//	defer jobManager.StopAll()
package jobs
