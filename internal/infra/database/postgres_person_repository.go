package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reminder_notifier/internal/domain/person"
)

// Custom errors
var ErrPersonNotFound = fmt.Errorf("person not found")

const personColumns = `id, name, email, phone, telegram_chat_id, birthday, is_active,
	notify_email, notify_chat, created_at, updated_at`

type PostgresPersonRepository struct {
	db  *sql.DB
	loc *time.Location
}

func NewPostgresPersonRepository(db *sql.DB, loc *time.Location) *PostgresPersonRepository {
	if loc == nil {
		loc = time.Local
	}
	return &PostgresPersonRepository{db: db, loc: loc}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresPersonRepository) scan(row rowScanner) (*person.Person, error) {
	p := &person.Person{}
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.TelegramChatID, &p.Birthday, &p.IsActive,
		&p.Preferences.Email, &p.Preferences.Chat, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Birthday.Valid {
		p.Birthday.Time = calendarDate(p.Birthday.Time, r.loc)
	}
	return p, nil
}

func (r *PostgresPersonRepository) GetByID(ctx context.Context, id int64) (*person.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE id = $1`
	p, err := r.scan(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("error getting person by ID: %w", err)
	}
	return p, nil
}

func (r *PostgresPersonRepository) GetByTelegramChatID(ctx context.Context, chatID int64) (*person.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons WHERE telegram_chat_id = $1`
	p, err := r.scan(r.db.QueryRowContext(ctx, query, chatID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("error getting person by Telegram chat ID: %w", err)
	}
	return p, nil
}

func (r *PostgresPersonRepository) ListActiveWithBirthday(ctx context.Context) ([]*person.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons
               WHERE is_active = TRUE AND birthday IS NOT NULL
               ORDER BY name`
	return r.list(ctx, query)
}

func (r *PostgresPersonRepository) ListByBirthMonth(ctx context.Context, month time.Month) ([]*person.Person, error) {
	query := `SELECT ` + personColumns + ` FROM persons
               WHERE birthday IS NOT NULL AND EXTRACT(MONTH FROM birthday) = $1
               ORDER BY EXTRACT(DAY FROM birthday), name`
	return r.list(ctx, query, int(month))
}

func (r *PostgresPersonRepository) list(ctx context.Context, query string, args ...any) ([]*person.Person, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing persons: %w", err)
	}
	defer rows.Close()

	var people []*person.Person
	for rows.Next() {
		p, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning person row: %w", err)
		}
		people = append(people, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating person rows: %w", err)
	}
	return people, nil
}
