package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"reminder_notifier/internal/domain/notification"
)

// Collector records engine metrics in Prometheus.
type Collector struct {
	deliveries    *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	stageFailures *prometheus.CounterVec
	overdue       prometheus.Counter
	cyclesSkipped prometheus.Counter
}

// New registers the engine metrics on reg.
func New(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		// deliveries counts channel attempts by kind, channel and outcome
		deliveries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_deliveries_total",
			Help: "Total delivery attempts by kind, channel and outcome",
		}, []string{"kind", "channel", "outcome"}),

		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "notifier_cycle_duration_seconds",
			Help:    "Review cycle duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		}),

		stageFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "notifier_stage_failures_total",
			Help: "Total review stage failures by stage",
		}, []string{"stage"}),

		overdue: f.NewCounter(prometheus.CounterOpts{
			Name: "notifier_obligations_overdue_total",
			Help: "Total obligations moved to OVERDUE",
		}),

		cyclesSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "notifier_cycles_skipped_total",
			Help: "Review cycle triggers skipped because a cycle was already running",
		}),
	}
}

func (c *Collector) DeliveryAttempted(kind notification.Kind, channel notification.Channel, outcome notification.Outcome) {
	c.deliveries.WithLabelValues(string(kind), string(channel), string(outcome)).Inc()
}

func (c *Collector) StageFailed(stage string) {
	c.stageFailures.WithLabelValues(stage).Inc()
}

func (c *Collector) CycleCompleted(d time.Duration) {
	c.cycleDuration.Observe(d.Seconds())
}

func (c *Collector) CycleSkipped() {
	c.cyclesSkipped.Inc()
}

func (c *Collector) ObligationsOverdue(n int64) {
	c.overdue.Add(float64(n))
}
