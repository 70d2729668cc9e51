package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"reminder_notifier/internal/domain/obligation"
)

// OverdueTransitioner moves pending obligations past their due date to OVERDUE.
// It never dispatches anything.
type OverdueTransitioner struct {
	obligations obligation.Repository
	clock       Clock
	metrics     Metrics
	logger      *logrus.Entry
}

func NewOverdueTransitioner(obligations obligation.Repository, clock Clock, metrics Metrics, logger *logrus.Entry) *OverdueTransitioner {
	return &OverdueTransitioner{
		obligations: obligations,
		clock:       clock,
		metrics:     metricsOrNop(metrics),
		logger:      logger.WithField("component", "overdue_transitioner"),
	}
}

// Run returns the number of obligations changed to OVERDUE.
func (t *OverdueTransitioner) Run(ctx context.Context) (int64, error) {
	today := t.clock.today()
	n, err := t.obligations.MarkOverdueBefore(ctx, today)
	if err != nil {
		return 0, fmt.Errorf("failed to mark overdue obligations: %w", err)
	}
	if n > 0 {
		t.logger.WithField("before", today.Format(time.DateOnly)).Warnf("%d obligation(s) marked as overdue", n)
		t.metrics.ObligationsOverdue(n)
	}
	return n, nil
}
