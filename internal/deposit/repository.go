package deposit

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/gateway"
	"github.com/brisapay/brisapay/internal/movement"
)

// Repository persists deposits.
type Repository interface {
	Create(ctx context.Context, d Deposit) error
	Get(ctx context.Context, id string) (Deposit, error)
	GetByTransactionID(ctx context.Context, transactionID string) (Deposit, error)
	ListByOwner(ctx context.Context, ownerID string, page movement.Page) ([]Deposit, error)
	Update(ctx context.Context, d Deposit) error
}

// PostgresRepository stores deposits in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a deposit record.
func (r *PostgresRepository) Create(ctx context.Context, d Deposit) error {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid deposit id", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO deposits
        (id, owner_id, wallet_id, amount, payment_type, external_reference, transaction_id,
         entry_id, status, qr_code, digitable_line, barcode, authorization_code, failure_reason, requested_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		id, d.OwnerID, d.WalletID, d.Amount, string(d.PaymentType), d.ExternalReference,
		d.TransactionID, d.EntryID, string(d.Status), d.QRCode, d.DigitableLine,
		d.Barcode, d.AuthorizationCode, d.FailureReason, d.RequestedAt.UTC())
	return err
}

// Get fetches a deposit by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Deposit, error) {
	depositID, err := uuid.Parse(id)
	if err != nil {
		return Deposit{}, fault.Wrap(fault.Validation, "invalid deposit id", err)
	}
	row := r.db.QueryRow(ctx, selectDeposit+` WHERE id = $1`, depositID)
	return scanDeposit(row)
}

// GetByTransactionID fetches the deposit a provider confirmation refers to.
func (r *PostgresRepository) GetByTransactionID(ctx context.Context, transactionID string) (Deposit, error) {
	row := r.db.QueryRow(ctx, selectDeposit+` WHERE transaction_id = $1`, transactionID)
	return scanDeposit(row)
}

// ListByOwner pages through an owner's deposits, newest first.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string, page movement.Page) ([]Deposit, error) {
	page = page.Normalize()
	rows, err := r.db.Query(ctx, selectDeposit+
		` WHERE owner_id = $1 ORDER BY requested_at DESC LIMIT $2 OFFSET $3`,
		ownerID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deposits []Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		deposits = append(deposits, d)
	}
	return deposits, rows.Err()
}

// Update writes the deposit's terminal state.
func (r *PostgresRepository) Update(ctx context.Context, d Deposit) error {
	depositID, err := uuid.Parse(d.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid deposit id", err)
	}
	tag, err := r.db.Exec(ctx, `UPDATE deposits
        SET status = $2, failure_reason = $3, processed_at = $4
        WHERE id = $1`,
		depositID, string(d.Status), d.FailureReason, d.ProcessedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "deposit not found")
	}
	return nil
}

const selectDeposit = `SELECT id, owner_id, wallet_id, amount, payment_type, external_reference,
    transaction_id, entry_id, status, qr_code, digitable_line, barcode, authorization_code,
    COALESCE(failure_reason, ''), requested_at, COALESCE(processed_at, 'epoch'::timestamptz)
    FROM deposits`

func scanDeposit(row pgx.Row) (Deposit, error) {
	var (
		d           Deposit
		id          uuid.UUID
		paymentType string
		status      string
	)
	if err := row.Scan(&id, &d.OwnerID, &d.WalletID, &d.Amount, &paymentType, &d.ExternalReference,
		&d.TransactionID, &d.EntryID, &status, &d.QRCode, &d.DigitableLine, &d.Barcode,
		&d.AuthorizationCode, &d.FailureReason, &d.RequestedAt, &d.ProcessedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deposit{}, fault.New(fault.NotFound, "deposit not found")
		}
		return Deposit{}, err
	}
	d.ID = id.String()
	d.PaymentType = gateway.PaymentType(paymentType)
	d.Status = Status(status)
	d.RequestedAt = d.RequestedAt.UTC()
	d.ProcessedAt = d.ProcessedAt.UTC()
	return d, nil
}
