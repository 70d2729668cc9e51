// internal/domain/notification/cycle.go
package notification

import "time"

// PersonSummary identifies a birthday match in a cycle report.
type PersonSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PaymentSummary identifies a reminded obligation in a cycle report.
type PaymentSummary struct {
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	DueDate     time.Time `json:"dueDate"`
	Person      string    `json:"user"`
}

// BirthdayReport is the outcome of the birthday stage of one review cycle.
type BirthdayReport struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Count   int             `json:"count"`
	People  []PersonSummary `json:"users,omitempty"`
}

// PaymentReport is the outcome of the payment stage of one review cycle.
type PaymentReport struct {
	Success  bool             `json:"success"`
	Error    string           `json:"error,omitempty"`
	Count    int              `json:"count"`
	Payments []PaymentSummary `json:"payments,omitempty"`
}

// CycleReport is the aggregate returned by a scheduled or manual review cycle.
// The overdue transition runs in the same cycle but is not part of the report.
type CycleReport struct {
	RunID     string         `json:"runId"`
	Timestamp time.Time      `json:"timestamp"`
	Birthdays BirthdayReport `json:"birthdays"`
	Payments  PaymentReport  `json:"payments"`
}
