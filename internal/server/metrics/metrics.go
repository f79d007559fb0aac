// Package metrics collects auth service counters and serves them to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeError   = "error"
)

// Recorder is what the services report to.
type Recorder interface {
	RecordOperation(operation, outcome string, elapsed time.Duration)
	RecordNotificationFailure(kind string)
	RecordTokensRevoked(count int)
}

// Collector is the Prometheus implementation of Recorder.
type Collector struct {
	operations    *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	notifyFailed  *prometheus.CounterVec
	tokensRevoked prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_operations_total",
			Help: "Auth operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gophauth_operation_duration_seconds",
			Help:    "Auth operation latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		notifyFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gophauth_notification_failures_total",
			Help: "Emails that could not be handed off, by kind.",
		}, []string{"kind"}),
		tokensRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gophauth_refresh_tokens_revoked_total",
			Help: "Refresh tokens revoked in bulk by password reset.",
		}),
	}

	reg.MustRegister(c.operations, c.latency, c.notifyFailed, c.tokensRevoked)

	return c
}

func (c *Collector) RecordOperation(operation, outcome string, elapsed time.Duration) {
	c.operations.WithLabelValues(operation, outcome).Inc()
	c.latency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

func (c *Collector) RecordNotificationFailure(kind string) {
	c.notifyFailed.WithLabelValues(kind).Inc()
}

func (c *Collector) RecordTokensRevoked(count int) {
	c.tokensRevoked.Add(float64(count))
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordOperation(string, string, time.Duration) {}
func (Nop) RecordNotificationFailure(string)              {}
func (Nop) RecordTokensRevoked(int)                       {}
