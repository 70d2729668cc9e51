// internal/domain/notification/record.go
package notification

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// DeliveryRecord is one audited channel attempt. Records are immutable once written.
// Corresponds to the 'delivery_records' table.
type DeliveryRecord struct {
	ID           uuid.UUID
	PersonID     int64
	Kind         Kind
	Channel      Channel
	Outcome      Outcome
	Message      string
	ErrorMessage sql.NullString
	ObligationID sql.NullInt64
	SentAt       time.Time
}
