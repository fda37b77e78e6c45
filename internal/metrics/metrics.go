package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics groups all Prometheus instruments for one run. The process is a
// batch job, so instead of exposing a scrape endpoint the counters are
// pushed to a Pushgateway when the run ends.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
type Metrics struct {
	registry *prometheus.Registry

	ItemsProcessed *prometheus.CounterVec
	TasksCreated   prometheus.Counter
	RunTimestamp   prometheus.Gauge
}

// New registers all instruments with a fresh registry and returns the
// populated Metrics struct.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		ItemsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "grant_reminder_items_processed_total",
			Help: "Total number of work items processed, by outcome.",
		}, []string{"outcome"}),

		TasksCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "grant_reminder_tasks_created_total",
			Help: "Total number of follow-up tasks created this run.",
		}),

		RunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "grant_reminder_run_timestamp_seconds",
			Help: "Unix time at which the run finished.",
		}),
	}

	reg.MustRegister(m.ItemsProcessed, m.TasksCreated, m.RunTimestamp)
	return m
}

// OutcomeHook returns the callback the processor invokes once per item.
// Centralises the prometheus observation calls so the processor stays
// metrics-agnostic.
func (m *Metrics) OutcomeHook() func(outcome string) {
	return func(outcome string) {
		m.ItemsProcessed.WithLabelValues(outcome).Inc()
		if outcome == "created" {
			m.TasksCreated.Inc()
		}
	}
}

// Push stamps the run timestamp and pushes the registry to the Pushgateway.
func (m *Metrics) Push(gatewayURL, job string) error {
	m.RunTimestamp.Set(float64(time.Now().Unix()))
	return push.New(gatewayURL, job).Gatherer(m.registry).Push()
}
