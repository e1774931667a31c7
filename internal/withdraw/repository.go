package withdraw

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/movement"
)

// Repository persists withdrawals.
type Repository interface {
	Create(ctx context.Context, w Withdrawal) error
	Get(ctx context.Context, id string) (Withdrawal, error)
	ListByOwner(ctx context.Context, ownerID string, page movement.Page) ([]Withdrawal, error)
	Update(ctx context.Context, w Withdrawal) error
}

// PostgresRepository stores withdrawals in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a withdrawal record.
func (r *PostgresRepository) Create(ctx context.Context, w Withdrawal) error {
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid withdrawal id", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO withdrawals
        (id, owner_id, wallet_id, amount, payee_key, external_reference, entry_id, status, requested_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, w.OwnerID, w.WalletID, w.Amount, w.PayeeKey, w.ExternalReference,
		w.EntryID, string(w.Status), w.RequestedAt.UTC())
	return err
}

// Get fetches a withdrawal by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Withdrawal, error) {
	withdrawalID, err := uuid.Parse(id)
	if err != nil {
		return Withdrawal{}, fault.Wrap(fault.Validation, "invalid withdrawal id", err)
	}
	row := r.db.QueryRow(ctx, selectWithdrawal+` WHERE id = $1`, withdrawalID)
	return scanWithdrawal(row)
}

// ListByOwner pages through an owner's withdrawals, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, page movement.Page) ([]Withdrawal, error) {
	page = page.Normalize()
	rows, err := r.db.Query(ctx, selectWithdrawal+
		` WHERE owner_id = $1 ORDER BY requested_at DESC LIMIT $2 OFFSET $3`,
		ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var withdrawals []Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, err
		}
		withdrawals = append(withdrawals, w)
	}
	return withdrawals, rows.Err()
}

// Update writes the withdrawal's terminal state.
func (r *PostgresRepository) Update(ctx context.Context, w Withdrawal) error {
	withdrawalID, err := uuid.Parse(w.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid withdrawal id", err)
	}
	tag, err := r.db.Exec(ctx, `UPDATE withdrawals
        SET status = $2, rejection_reason = $3, processed_at = $4
        WHERE id = $1`,
		withdrawalID, string(w.Status), w.RejectionReason, w.ProcessedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "withdrawal not found")
	}
	return nil
}

const selectWithdrawal = `SELECT id, owner_id, wallet_id, amount, payee_key, external_reference,
    entry_id, status, COALESCE(rejection_reason, ''), requested_at, COALESCE(processed_at, 'epoch'::timestamptz)
    FROM withdrawals`

func scanWithdrawal(row pgx.Row) (Withdrawal, error) {
	var (
		w      Withdrawal
		id     uuid.UUID
		status string
	)
	if err := row.Scan(&id, &w.OwnerID, &w.WalletID, &w.Amount, &w.PayeeKey, &w.ExternalReference,
		&w.EntryID, &status, &w.RejectionReason, &w.RequestedAt, &w.ProcessedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Withdrawal{}, fault.New(fault.NotFound, "withdrawal not found")
		}
		return Withdrawal{}, err
	}
	w.ID = id.String()
	w.Status = Status(status)
	w.RequestedAt = w.RequestedAt.UTC()
	w.ProcessedAt = w.ProcessedAt.UTC()
	return w, nil
}
