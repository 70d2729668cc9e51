package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reminder_notifier/internal/domain/obligation"
	"reminder_notifier/internal/domain/person"
)

var ErrObligationNotFound = fmt.Errorf("obligation not found")

type PostgresObligationRepository struct {
	db  *sql.DB
	loc *time.Location
}

func NewPostgresObligationRepository(db *sql.DB, loc *time.Location) *PostgresObligationRepository {
	if loc == nil {
		loc = time.Local
	}
	return &PostgresObligationRepository{db: db, loc: loc}
}

func (r *PostgresObligationRepository) ListPendingDueBetween(ctx context.Context, from, to time.Time) ([]*obligation.Obligation, error) {
	query := `SELECT o.id, o.person_id, o.direction, o.description, o.amount, o.due_date, o.status,
                     o.category, o.notes, o.last_notified_at, o.created_at, o.updated_at,
                     p.id, p.name, p.email, p.phone, p.telegram_chat_id, p.birthday, p.is_active,
                     p.notify_email, p.notify_chat, p.created_at, p.updated_at
               FROM obligations o
               JOIN persons p ON p.id = o.person_id
               WHERE o.status = $1
                 AND o.due_date BETWEEN $2::date AND $3::date
                 AND p.is_active = TRUE
               ORDER BY o.due_date, o.id`

	rows, err := r.db.QueryContext(ctx, query, obligation.StatusPending,
		from.In(r.loc).Format(dateLayout), to.In(r.loc).Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("error listing pending obligations: %w", err)
	}
	defer rows.Close()

	var result []*obligation.Obligation
	for rows.Next() {
		o := &obligation.Obligation{}
		p := &person.Person{}
		err := rows.Scan(
			&o.ID, &o.PersonID, &o.Direction, &o.Description, &o.Amount, &o.DueDate, &o.Status,
			&o.Category, &o.Notes, &o.LastNotifiedAt, &o.CreatedAt, &o.UpdatedAt,
			&p.ID, &p.Name, &p.Email, &p.Phone, &p.TelegramChatID, &p.Birthday, &p.IsActive,
			&p.Preferences.Email, &p.Preferences.Chat, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning obligation row: %w", err)
		}
		o.DueDate = calendarDate(o.DueDate, r.loc)
		if p.Birthday.Valid {
			p.Birthday.Time = calendarDate(p.Birthday.Time, r.loc)
		}
		o.Owner = p
		result = append(result, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating obligation rows: %w", err)
	}
	return result, nil
}

func (r *PostgresObligationRepository) UpdateLastNotified(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE obligations SET last_notified_at = $1, updated_at = NOW() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("error updating last notified date: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking rows affected for obligation update: %w", err)
	}
	if n == 0 {
		return ErrObligationNotFound
	}
	return nil
}

func (r *PostgresObligationRepository) MarkOverdueBefore(ctx context.Context, day time.Time) (int64, error) {
	query := `UPDATE obligations
               SET status = $1, updated_at = NOW()
               WHERE status = $2 AND due_date < $3::date`
	res, err := r.db.ExecContext(ctx, query, obligation.StatusOverdue, obligation.StatusPending,
		day.In(r.loc).Format(dateLayout))
	if err != nil {
		return 0, fmt.Errorf("error marking obligations overdue: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error checking rows affected for overdue update: %w", err)
	}
	return n, nil
}
