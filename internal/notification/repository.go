package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brisapay/brisapay/internal/fault"
)

// Repository persists outbound notifications.
type Repository interface {
	Insert(ctx context.Context, n Notification) error
	Get(ctx context.Context, id string) (Notification, error)
	// ListDue returns Pending notifications whose NextAttemptAt has passed.
	ListDue(ctx context.Context, now time.Time) ([]Notification, error)
	Update(ctx context.Context, n Notification) error
}

// PostgresRepository stores notifications in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert appends a notification.
func (r *PostgresRepository) Insert(ctx context.Context, n Notification) error {
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid notification id", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO notifications
        (id, source_event_id, callback_url, payload, status, attempt_count, next_attempt_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, n.SourceEventID, n.CallbackURL, n.Payload, string(n.Status),
		n.AttemptCount, n.NextAttemptAt.UTC(), n.CreatedAt.UTC())
	return err
}

// Get fetches a notification by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Notification, error) {
	notifID, err := uuid.Parse(id)
	if err != nil {
		return Notification{}, fault.Wrap(fault.Validation, "invalid notification id", err)
	}
	row := r.db.QueryRow(ctx, selectNotification+` WHERE id = $1`, notifID)
	return scanNotification(row)
}

// ListDue returns the pending notifications ready for another attempt.
func (r *PostgresRepository) ListDue(ctx context.Context, now time.Time) ([]Notification, error) {
	rows, err := r.db.Query(ctx, selectNotification+
		` WHERE status = 'pending' AND next_attempt_at <= $1 ORDER BY next_attempt_at`, now.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var due []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		due = append(due, n)
	}
	return due, rows.Err()
}

// Update writes the delivery state after an attempt.
func (r *PostgresRepository) Update(ctx context.Context, n Notification) error {
	notifID, err := uuid.Parse(n.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid notification id", err)
	}
	tag, err := r.db.Exec(ctx, `UPDATE notifications
        SET status = $2, attempt_count = $3, last_attempt_at = $4, next_attempt_at = $5
        WHERE id = $1`,
		notifID, string(n.Status), n.AttemptCount, n.LastAttemptAt.UTC(), n.NextAttemptAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "notification not found")
	}
	return nil
}

const selectNotification = `SELECT id, source_event_id, callback_url, payload, status, attempt_count,
    COALESCE(last_attempt_at, 'epoch'::timestamptz), next_attempt_at, created_at
    FROM notifications`

func scanNotification(row pgx.Row) (Notification, error) {
	var (
		n      Notification
		id     uuid.UUID
		status string
	)
	if err := row.Scan(&id, &n.SourceEventID, &n.CallbackURL, &n.Payload, &status,
		&n.AttemptCount, &n.LastAttemptAt, &n.NextAttemptAt, &n.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notification{}, fault.New(fault.NotFound, "notification not found")
		}
		return Notification{}, err
	}
	n.ID = id.String()
	n.Status = Status(status)
	n.LastAttemptAt = n.LastAttemptAt.UTC()
	n.NextAttemptAt = n.NextAttemptAt.UTC()
	n.CreatedAt = n.CreatedAt.UTC()
	return n, nil
}
