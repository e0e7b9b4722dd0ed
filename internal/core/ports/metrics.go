package ports

import "time"

// Metrics receives operational measurements from the coordinator, the
// exclusion manager, the notifier and the audit job.
type Metrics interface {
	ObserveOperation(operation, outcome string, duration time.Duration)
	ObserveExclusionWait(wait time.Duration, acquired bool)
	SetSubscribers(n int)
	SubscriberDropped()
	EventPublished(kind string)
	SetAuditViolations(n int)
}

// NopMetrics discards every measurement.
type NopMetrics struct{}

func (NopMetrics) ObserveOperation(string, string, time.Duration) {}
func (NopMetrics) ObserveExclusionWait(time.Duration, bool)       {}
func (NopMetrics) SetSubscribers(int)                             {}
func (NopMetrics) SubscriberDropped()                             {}
func (NopMetrics) EventPublished(string)                          {}
func (NopMetrics) SetAuditViolations(int)                         {}
