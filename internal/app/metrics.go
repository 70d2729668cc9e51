package app

import (
	"time"

	"reminder_notifier/internal/domain/notification"
)

// Metrics receives engine counters. A nil Metrics is replaced with a no-op.
type Metrics interface {
	DeliveryAttempted(kind notification.Kind, channel notification.Channel, outcome notification.Outcome)
	StageFailed(stage string)
	CycleCompleted(d time.Duration)
	CycleSkipped()
	ObligationsOverdue(n int64)
}

type nopMetrics struct{}

func (nopMetrics) DeliveryAttempted(notification.Kind, notification.Channel, notification.Outcome) {}
func (nopMetrics) StageFailed(string)                                                             {}
func (nopMetrics) CycleCompleted(time.Duration)                                                   {}
func (nopMetrics) CycleSkipped()                                                                  {}
func (nopMetrics) ObligationsOverdue(int64)                                                       {}

func metricsOrNop(m Metrics) Metrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
