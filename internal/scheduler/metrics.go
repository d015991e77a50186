package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "typedctx"

// metrics holds the executor's Prometheus collectors.
type metrics struct {
	spawned     prometheus.Counter
	resumptions prometheus.Counter
	completed   prometheus.Counter
	cancelled   prometheus.Counter
	panicked    prometheus.Counter
	queued      prometheus.Gauge
}

// newMetrics registers the collectors on reg. A nil reg keeps them
// unregistered.
func newMetrics(reg prometheus.Registerer) *metrics {
	factory := promauto.With(reg)

	return &metrics{
		spawned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "tasks_spawned_total",
			Help:      "Tasks accepted by Spawn.",
		}),
		resumptions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "resumptions_total",
			Help:      "Individual resumption steps driven by workers.",
		}),
		completed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "tasks_completed_total",
			Help:      "Tasks that ran to completion.",
		}),
		cancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "tasks_cancelled_total",
			Help:      "Tasks dropped after Cancel without another resumption.",
		}),
		panicked: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "tasks_panicked_total",
			Help:      "Tasks whose step panicked.",
		}),
		queued: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "scheduler",
			Name:      "tasks_queued",
			Help:      "Tasks waiting in the run queue.",
		}),
	}
}
