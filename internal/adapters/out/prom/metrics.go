// Package prom records dispatch metrics in Prometheus collectors.
package prom

import (
	"errors"
	"strconv"
	"time"

	"dispatch/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
)

var _ ports.Metrics = (*Metrics)(nil)

// Metrics implements ports.Metrics, exclusion.Observer and notifier.Observer.
type Metrics struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	exclusionWait     *prometheus.HistogramVec
	subscribers       prometheus.Gauge
	droppedSubs       prometheus.Counter
	events            *prometheus.CounterVec
	auditViolations   prometheus.Gauge
}

// NewMetrics registers the collectors on reg, or on the default registerer
// when reg is nil. Registering twice reuses the collectors already present.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_operations_total",
			Help: "Coordinator operations by outcome",
		}, []string{"operation", "outcome"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_operation_duration_seconds",
			Help:    "Time spent in coordinator operations, persistence included",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		exclusionWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "dispatch_exclusion_wait_seconds",
			Help:    "Time spent waiting for entity exclusions",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 2.5, 5},
		}, []string{"acquired"}),
		subscribers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_notifier_subscribers",
			Help: "Live notifier subscriptions",
		}),
		droppedSubs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "dispatch_notifier_dropped_subscribers_total",
			Help: "Subscribers disconnected because their queue overflowed",
		}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_notifier_events_total",
			Help: "Events fanned out by the notifier",
		}, []string{"kind"}),
		auditViolations: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dispatch_audit_violations",
			Help: "Invariant violations found by the last assignment audit",
		}),
	}

	var err error
	if m.operations, err = register(reg, m.operations); err != nil {
		return nil, err
	}
	if m.operationDuration, err = register(reg, m.operationDuration); err != nil {
		return nil, err
	}
	if m.exclusionWait, err = register(reg, m.exclusionWait); err != nil {
		return nil, err
	}
	if m.subscribers, err = register(reg, m.subscribers); err != nil {
		return nil, err
	}
	if m.droppedSubs, err = register(reg, m.droppedSubs); err != nil {
		return nil, err
	}
	if m.events, err = register(reg, m.events); err != nil {
		return nil, err
	}
	if m.auditViolations, err = register(reg, m.auditViolations); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) ObserveOperation(operation, outcome string, duration time.Duration) {
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) ObserveExclusionWait(wait time.Duration, acquired bool) {
	m.exclusionWait.WithLabelValues(strconv.FormatBool(acquired)).Observe(wait.Seconds())
}

func (m *Metrics) SetSubscribers(n int) {
	m.subscribers.Set(float64(n))
}

func (m *Metrics) SubscriberDropped() {
	m.droppedSubs.Inc()
}

func (m *Metrics) EventPublished(kind string) {
	m.events.WithLabelValues(kind).Inc()
}

func (m *Metrics) SetAuditViolations(n int) {
	m.auditViolations.Set(float64(n))
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}
