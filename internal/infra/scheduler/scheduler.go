package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"reminder_notifier/internal/app"
	"reminder_notifier/internal/domain/notification"
)

const (
	cycleJobTimeout   = 30 * time.Minute
	overdueJobTimeout = 5 * time.Minute
)

// Config holds the two cron expressions and the start-up delay.
type Config struct {
	NotificationSchedule string // e.g., "0 8 * * *" (08:00 daily)
	OverdueSchedule      string // e.g., "0 0 * * *" (midnight daily)
	InitialRunDelay      time.Duration
	Location             *time.Location
}

// NotificationScheduler owns every scheduled task it registers. Stop cancels all
// of them; no tick runs a job after Stop has begun.
type NotificationScheduler struct {
	cronEngine *cron.Cron
	cycle      app.CycleRunner
	overdue    app.OverdueStage
	cfg        Config
	logger     *logrus.Entry

	mu           sync.Mutex
	entries      map[cron.EntryID]string
	initialTimer *time.Timer
	started      bool
	stopped      bool
}

func NewNotificationScheduler(cycle app.CycleRunner, overdue app.OverdueStage, cfg Config, logger *logrus.Entry) *NotificationScheduler {
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}
	logger = logger.WithField("component", "scheduler")
	return &NotificationScheduler{
		cronEngine: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger})),
		),
		cycle:   cycle,
		overdue: overdue,
		cfg:     cfg,
		logger:  logger,
		entries: make(map[cron.EntryID]string),
	}
}

// Start registers the review-cycle and overdue jobs, starts the cron engine and
// arms the start-up run.
func (s *NotificationScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return fmt.Errorf("scheduler already started")
	}

	s.logger.Info("Starting notification scheduler...")

	if err := s.addJob("review_cycle", s.cfg.NotificationSchedule, s.runCycle); err != nil {
		return err
	}
	if err := s.addJob("overdue", s.cfg.OverdueSchedule, s.runOverdue); err != nil {
		s.removeEntries()
		return err
	}

	s.cronEngine.Start()
	s.initialTimer = time.AfterFunc(s.cfg.InitialRunDelay, func() {
		s.logger.Info("Running start-up review cycle")
		s.runCycle()
	})
	s.started = true

	s.logger.WithFields(logrus.Fields{
		"review_cycle": s.cfg.NotificationSchedule,
		"overdue":      s.cfg.OverdueSchedule,
		"initial_run":  s.cfg.InitialRunDelay.String(),
	}).Info("Notification scheduler started with jobs.")
	return nil
}

// addJob must be called with s.mu held.
func (s *NotificationScheduler) addJob(name, spec string, fn func()) error {
	id, err := s.cronEngine.AddFunc(spec, func() {
		s.logger.WithField("job", name).Info("Cron job triggered")
		fn()
	})
	if err != nil {
		return fmt.Errorf("could not add %s cron job (%q): %w", name, spec, err)
	}
	s.entries[id] = name
	return nil
}

// removeEntries must be called with s.mu held.
func (s *NotificationScheduler) removeEntries() {
	for id := range s.entries {
		s.cronEngine.Remove(id)
		delete(s.entries, id)
	}
}

func (s *NotificationScheduler) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *NotificationScheduler) runCycle() {
	if s.isStopped() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), cycleJobTimeout)
	defer cancel()

	report, err := s.cycle.Run(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Scheduled review cycle did not run")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"birthdays": report.Birthdays.Count,
		"payments":  report.Payments.Count,
	}).Info("Scheduled review cycle completed")
}

func (s *NotificationScheduler) runOverdue() {
	if s.isStopped() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), overdueJobTimeout)
	defer cancel()

	if _, err := s.overdue.Run(ctx); err != nil {
		s.logger.WithError(err).Error("Error during overdue transition")
	}
}

// RunNow runs a review cycle immediately, outside the cron cadence.
func (s *NotificationScheduler) RunNow(ctx context.Context) (*notification.CycleReport, error) {
	return s.cycle.Run(ctx)
}

// Stop cancels every registered task and waits for running jobs to finish.
func (s *NotificationScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.logger.Info("Stopping notification scheduler...")
	if s.initialTimer != nil {
		s.initialTimer.Stop()
	}
	s.removeEntries()
	s.mu.Unlock()

	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Notification scheduler gracefully stopped.")
}

// Entries returns the number of registered cron tasks.
func (s *NotificationScheduler) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// cronLogger adapts logrus to cron.Logger.
type cronLogger struct {
	entry *logrus.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(fields(keysAndValues)).Error(msg)
}

func fields(keysAndValues []interface{}) logrus.Fields {
	f := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
