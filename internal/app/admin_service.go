package app

import (
	"context"
	"fmt"
	"time"

	"reminder_notifier/internal/domain/notification"
	"reminder_notifier/internal/domain/person"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrInvalidMonth = fmt.Errorf("month must be between 1 and 12")

// ChannelStatus is the readiness snapshot exposed by /status and /health.
type ChannelStatus struct {
	Channels    map[notification.Channel]bool `json:"channels"`
	SinkEnabled bool                          `json:"webhook"`
}

// StatusReporter reports channel driver readiness.
type StatusReporter interface {
	Ready() map[notification.Channel]bool
	SinkEnabled() bool
}

// AdminService backs the admin chat commands: manual checks, channel status and
// birthday listings.
type AdminService struct {
	personRepo      person.Repository
	cycle           CycleRunner
	status          StatusReporter
	adminTelegramID int64
}

func NewAdminService(pr person.Repository, cycle CycleRunner, status StatusReporter, adminID int64) *AdminService {
	return &AdminService{
		personRepo:      pr,
		cycle:           cycle,
		status:          status,
		adminTelegramID: adminID,
	}
}

func (s *AdminService) authorize(performingAdminID int64) error {
	if s.adminTelegramID == 0 || performingAdminID != s.adminTelegramID {
		return ErrAdminNotAuthorized
	}
	return nil
}

// CheckNow runs a review cycle synchronously on behalf of the admin.
func (s *AdminService) CheckNow(ctx context.Context, performingAdminID int64) (*notification.CycleReport, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	return s.cycle.Run(ctx)
}

// Status returns whether each channel driver reports itself ready.
func (s *AdminService) Status(performingAdminID int64) (*ChannelStatus, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	return &ChannelStatus{Channels: s.status.Ready(), SinkEnabled: s.status.SinkEnabled()}, nil
}

// BirthdaysInMonth lists persons whose birthday falls in month (1-12).
func (s *AdminService) BirthdaysInMonth(ctx context.Context, performingAdminID int64, month int) ([]*person.Person, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, ErrInvalidMonth
	}
	people, err := s.personRepo.ListByBirthMonth(ctx, time.Month(month))
	if err != nil {
		return nil, fmt.Errorf("failed to list birthdays for month %d: %w", month, err)
	}
	return people, nil
}
