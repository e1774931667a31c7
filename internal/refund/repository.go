package refund

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/movement"
)

// Repository persists refunds.
type Repository interface {
	Create(ctx context.Context, rf Refund) error
	Get(ctx context.Context, id string) (Refund, error)
	ListByOwner(ctx context.Context, ownerID string, page movement.Page) ([]Refund, error)
	Update(ctx context.Context, rf Refund) error
}

// PostgresRepository stores refunds in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a refund record.
func (r *PostgresRepository) Create(ctx context.Context, rf Refund) error {
	id, err := uuid.Parse(rf.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid refund id", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO refunds
        (id, owner_id, wallet_id, amount, original_transaction_id, original_amount, entry_id, status, requested_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, rf.OwnerID, rf.WalletID, rf.Amount, rf.OriginalTransactionID, rf.OriginalAmount,
		rf.EntryID, string(rf.Status), rf.RequestedAt.UTC())
	return err
}

// Get fetches a refund by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Refund, error) {
	refundID, err := uuid.Parse(id)
	if err != nil {
		return Refund{}, fault.Wrap(fault.Validation, "invalid refund id", err)
	}
	row := r.db.QueryRow(ctx, selectRefund+` WHERE id = $1`, refundID)
	return scanRefund(row)
}

// ListByOwner pages through an owner's refunds, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, page movement.Page) ([]Refund, error) {
	page = page.Normalize()
	rows, err := r.db.Query(ctx, selectRefund+
		` WHERE owner_id = $1 ORDER BY requested_at DESC LIMIT $2 OFFSET $3`,
		ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refunds []Refund
	for rows.Next() {
		rf, err := scanRefund(rows)
		if err != nil {
			return nil, err
		}
		refunds = append(refunds, rf)
	}
	return refunds, rows.Err()
}

// Update writes the refund's state transition.
func (r *PostgresRepository) Update(ctx context.Context, rf Refund) error {
	refundID, err := uuid.Parse(rf.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid refund id", err)
	}
	tag, err := r.db.Exec(ctx, `UPDATE refunds
        SET status = $2, receipt = $3, rejection_reason = $4, processed_at = $5
        WHERE id = $1`,
		refundID, string(rf.Status), rf.Receipt, rf.RejectionReason, rf.ProcessedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "refund not found")
	}
	return nil
}

const selectRefund = `SELECT id, owner_id, wallet_id, amount, original_transaction_id, original_amount,
    entry_id, COALESCE(receipt, ''), status, COALESCE(rejection_reason, ''),
    requested_at, COALESCE(processed_at, 'epoch'::timestamptz)
    FROM refunds`

func scanRefund(row pgx.Row) (Refund, error) {
	var (
		rf     Refund
		id     uuid.UUID
		status string
	)
	if err := row.Scan(&id, &rf.OwnerID, &rf.WalletID, &rf.Amount, &rf.OriginalTransactionID,
		&rf.OriginalAmount, &rf.EntryID, &rf.Receipt, &status, &rf.RejectionReason,
		&rf.RequestedAt, &rf.ProcessedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Refund{}, fault.New(fault.NotFound, "refund not found")
		}
		return Refund{}, err
	}
	rf.ID = id.String()
	rf.Status = Status(status)
	rf.RequestedAt = rf.RequestedAt.UTC()
	rf.ProcessedAt = rf.ProcessedAt.UTC()
	return rf, nil
}
