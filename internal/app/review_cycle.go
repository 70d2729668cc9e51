package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"

	"reminder_notifier/internal/domain/notification"
)

// ErrCycleInProgress is returned when a review cycle is triggered while another
// one is still running in this process.
var ErrCycleInProgress = errors.New("review cycle already in progress")

// Stage names used in logs and metrics.
const (
	StageBirthdays = "birthdays"
	StagePayments  = "payments"
	StageOverdue   = "overdue"
)

type BirthdayStage interface {
	Run(ctx context.Context) (notification.BirthdayReport, error)
}

type PaymentStage interface {
	Run(ctx context.Context) (notification.PaymentReport, error)
}

type OverdueStage interface {
	Run(ctx context.Context) (int64, error)
}

// CycleRunner is the manual and scheduled entry point into a review cycle.
type CycleRunner interface {
	Run(ctx context.Context) (*notification.CycleReport, error)
}

// ReviewCycle runs birthdays, payments and the overdue transition in that order.
// A failing stage is reported in the aggregate and the next stage still runs.
// Only one cycle runs at a time; overlapping triggers are skipped.
type ReviewCycle struct {
	birthdays BirthdayStage
	payments  PaymentStage
	overdue   OverdueStage
	lock      *semaphore.Weighted
	clock     Clock
	metrics   Metrics
	logger    *logrus.Entry
}

func NewReviewCycle(birthdays BirthdayStage, payments PaymentStage, overdue OverdueStage, clock Clock, metrics Metrics, logger *logrus.Entry) *ReviewCycle {
	return &ReviewCycle{
		birthdays: birthdays,
		payments:  payments,
		overdue:   overdue,
		lock:      semaphore.NewWeighted(1),
		clock:     clock,
		metrics:   metricsOrNop(metrics),
		logger:    logger.WithField("component", "review_cycle"),
	}
}

func (r *ReviewCycle) Run(ctx context.Context) (*notification.CycleReport, error) {
	if !r.lock.TryAcquire(1) {
		r.metrics.CycleSkipped()
		r.logger.Warn("Review cycle already running, skipping trigger")
		return nil, ErrCycleInProgress
	}
	defer r.lock.Release(1)

	started := time.Now()
	report := &notification.CycleReport{
		RunID:     uuid.NewString(),
		Timestamp: r.clock.now(),
	}
	log := r.logger.WithField("run_id", report.RunID)

	ctx, span := tracer.Start(ctx, "ReviewCycle.Run")
	defer span.End()
	span.SetAttributes(attribute.String("cycle.run_id", report.RunID))

	log.Info("===== Running review cycle =====")

	if err := r.runStage(ctx, StageBirthdays, log, func(ctx context.Context) error {
		res, err := r.birthdays.Run(ctx)
		report.Birthdays = res
		return err
	}); err != nil {
		report.Birthdays = notification.BirthdayReport{Success: false, Error: err.Error()}
	}

	if err := r.runStage(ctx, StagePayments, log, func(ctx context.Context) error {
		res, err := r.payments.Run(ctx)
		report.Payments = res
		return err
	}); err != nil {
		report.Payments = notification.PaymentReport{Success: false, Error: err.Error()}
	}

	_ = r.runStage(ctx, StageOverdue, log, func(ctx context.Context) error {
		_, err := r.overdue.Run(ctx)
		return err
	})

	elapsed := time.Since(started)
	r.metrics.CycleCompleted(elapsed)
	span.SetAttributes(
		attribute.Int("cycle.birthdays", report.Birthdays.Count),
		attribute.Int("cycle.payments", report.Payments.Count),
	)
	log.WithField("duration", elapsed.String()).Info("===== Review cycle finished =====")
	return report, nil
}

// runStage executes fn, converting a returned error or a panic into the stage's
// failure without affecting sibling stages.
func (r *ReviewCycle) runStage(ctx context.Context, name string, log *logrus.Entry, fn func(ctx context.Context) error) (err error) {
	ctx, span := tracer.Start(ctx, "ReviewCycle."+name)
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("stage %s panicked: %v", name, p)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			r.metrics.StageFailed(name)
			log.WithError(err).WithField("stage", name).Error("Review stage failed")
		}
	}()

	return fn(ctx)
}
