package payout

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/movement"
)

// Repository persists payouts.
type Repository interface {
	Create(ctx context.Context, p Payout) error
	Get(ctx context.Context, id string) (Payout, error)
	ListByOwner(ctx context.Context, ownerID string, page movement.Page) ([]Payout, error)
	Update(ctx context.Context, p Payout) error
}

// PostgresRepository stores payouts in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a payout record.
func (r *PostgresRepository) Create(ctx context.Context, p Payout) error {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid payout id", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO payouts
        (id, owner_id, wallet_id, amount, payee_key, description, external_reference, entry_id, status, requested_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, p.OwnerID, p.WalletID, p.Amount, p.PayeeKey, p.Description,
		p.ExternalReference, p.EntryID, string(p.Status), p.RequestedAt.UTC())
	return err
}

// Get fetches a payout by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Payout, error) {
	payoutID, err := uuid.Parse(id)
	if err != nil {
		return Payout{}, fault.Wrap(fault.Validation, "invalid payout id", err)
	}
	row := r.db.QueryRow(ctx, selectPayout+` WHERE id = $1`, payoutID)
	return scanPayout(row)
}

// ListByOwner pages through an owner's payouts, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, page movement.Page) ([]Payout, error) {
	page = page.Normalize()
	rows, err := r.db.Query(ctx, selectPayout+
		` WHERE owner_id = $1 ORDER BY requested_at DESC LIMIT $2 OFFSET $3`,
		ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []Payout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}

// Update writes the payout's state transition.
func (r *PostgresRepository) Update(ctx context.Context, p Payout) error {
	payoutID, err := uuid.Parse(p.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid payout id", err)
	}
	tag, err := r.db.Exec(ctx, `UPDATE payouts
        SET status = $2, rejection_reason = $3, processed_at = $4
        WHERE id = $1`,
		payoutID, string(p.Status), p.RejectionReason, p.ProcessedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "payout not found")
	}
	return nil
}

const selectPayout = `SELECT id, owner_id, wallet_id, amount, payee_key, COALESCE(description, ''),
    COALESCE(external_reference, ''), entry_id, status, COALESCE(rejection_reason, ''),
    requested_at, COALESCE(processed_at, 'epoch'::timestamptz)
    FROM payouts`

func scanPayout(row pgx.Row) (Payout, error) {
	var (
		p      Payout
		id     uuid.UUID
		status string
	)
	if err := row.Scan(&id, &p.OwnerID, &p.WalletID, &p.Amount, &p.PayeeKey, &p.Description,
		&p.ExternalReference, &p.EntryID, &status, &p.RejectionReason,
		&p.RequestedAt, &p.ProcessedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Payout{}, fault.New(fault.NotFound, "payout not found")
		}
		return Payout{}, err
	}
	p.ID = id.String()
	p.Status = Status(status)
	p.RequestedAt = p.RequestedAt.UTC()
	p.ProcessedAt = p.ProcessedAt.UTC()
	return p, nil
}
