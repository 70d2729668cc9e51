// internal/domain/notification/repository.go
package notification

import (
	"context"
	"time"
)

// Filter narrows a history query. Zero values mean "any".
type Filter struct {
	PersonID int64
	Kind     Kind
	Channel  Channel
	Outcome  Outcome
	Limit    int
}

// GroupCount is the number of records sharing a kind, channel and outcome.
type GroupCount struct {
	Kind    Kind    `json:"kind"`
	Channel Channel `json:"channel"`
	Outcome Outcome `json:"outcome"`
	Count   int64   `json:"count"`
}

// Stats summarises the delivery ledger.
type Stats struct {
	Detailed    []GroupCount      `json:"detailed"`
	Last24Hours int64             `json:"last24Hours"`
	ByOutcome   map[Outcome]int64 `json:"byOutcome"`
}

// Repository is the append-only store behind the delivery ledger.
// It has no update or delete method.
type Repository interface {
	Create(ctx context.Context, rec *DeliveryRecord) error
	// List returns records matching f, newest first.
	List(ctx context.Context, f Filter) ([]*DeliveryRecord, error)
	// Stats aggregates all records; Last24Hours counts records sent at or after since.
	Stats(ctx context.Context, since time.Time) (*Stats, error)
}
