// internal/infra/database/postgres_notification_repository.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"reminder_notifier/internal/domain/notification"
)

// Custom errors specific to notification repository
var ErrDuplicateDeliveryRecord = fmt.Errorf("delivery record with this ID already exists")
var ErrUnknownRecordReference = fmt.Errorf("delivery record references an unknown person or obligation")

const (
	defaultListLimit = 50
	maxListLimit     = 500

	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, rec *notification.DeliveryRecord) error {
	query := `INSERT INTO delivery_records (id, person_id, kind, channel, outcome, message, error_message, obligation_id, sent_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, query, rec.ID, rec.PersonID, rec.Kind, rec.Channel, rec.Outcome,
		rec.Message, rec.ErrorMessage, rec.ObligationID, rec.SentAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch pqErr.Code {
			case pqUniqueViolation:
				return ErrDuplicateDeliveryRecord
			case pqForeignKeyViolation:
				return ErrUnknownRecordReference
			}
		}
		return fmt.Errorf("error creating delivery record: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) List(ctx context.Context, f notification.Filter) ([]*notification.DeliveryRecord, error) {
	query, args := buildListQuery(f)
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing delivery records: %w", err)
	}
	defer rows.Close()

	var records []*notification.DeliveryRecord
	for rows.Next() {
		rec := &notification.DeliveryRecord{}
		if err := rows.Scan(&rec.ID, &rec.PersonID, &rec.Kind, &rec.Channel, &rec.Outcome,
			&rec.Message, &rec.ErrorMessage, &rec.ObligationID, &rec.SentAt); err != nil {
			return nil, fmt.Errorf("error scanning delivery record: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery records: %w", err)
	}
	return records, nil
}

// buildListQuery turns f into a parameterised SELECT, newest first.
func buildListQuery(f notification.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.PersonID != 0 {
		add("person_id = $%d", f.PersonID)
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.Channel != "" {
		add("channel = $%d", f.Channel)
	}
	if f.Outcome != "" {
		add("outcome = $%d", f.Outcome)
	}

	var b strings.Builder
	b.WriteString(`SELECT id, person_id, kind, channel, outcome, message, error_message, obligation_id, sent_at
               FROM delivery_records`)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&b, " ORDER BY sent_at DESC, id LIMIT $%d", len(args))
	return b.String(), args
}

func (r *PostgresNotificationRepository) Stats(ctx context.Context, since time.Time) (*notification.Stats, error) {
	stats := &notification.Stats{
		Detailed:  []notification.GroupCount{},
		ByOutcome: map[notification.Outcome]int64{},
	}

	query := `SELECT kind, channel, outcome, COUNT(*)
               FROM delivery_records
               GROUP BY kind, channel, outcome
               ORDER BY kind, channel, outcome`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error aggregating delivery records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var g notification.GroupCount
		if err := rows.Scan(&g.Kind, &g.Channel, &g.Outcome, &g.Count); err != nil {
			return nil, fmt.Errorf("error scanning delivery record group: %w", err)
		}
		stats.Detailed = append(stats.Detailed, g)
		stats.ByOutcome[g.Outcome] += g.Count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery record groups: %w", err)
	}

	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM delivery_records WHERE sent_at >= $1`, since).
		Scan(&stats.Last24Hours)
	if err != nil {
		return nil, fmt.Errorf("error counting recent delivery records: %w", err)
	}
	return stats, nil
}
