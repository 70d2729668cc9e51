// internal/domain/notification/shared_types.go
package notification

// Kind identifies what a delivery was about.
type Kind string

const (
	KindBirthday           Kind = "BIRTHDAY"
	KindPayableReminder    Kind = "PAYABLE_REMINDER"
	KindReceivableReminder Kind = "RECEIVABLE_REMINDER"
)

// Channel is the medium a delivery was attempted over.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelChat  Channel = "CHAT"
)

// Outcome of a single channel attempt.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailed  Outcome = "FAILED"
)

// IsPaymentKind reports whether k is one of the obligation reminder kinds.
func (k Kind) IsPaymentKind() bool {
	return k == KindPayableReminder || k == KindReceivableReminder
}
