package ledger

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brisapay/brisapay/internal/fault"
	"github.com/brisapay/brisapay/internal/movement"
)

// Repository persists ledger entries. Entries are append-only: Update only
// ever moves a Pending entry to a terminal status and fills the completion
// snapshot fields.
type Repository interface {
	Insert(ctx context.Context, e Entry) error
	Get(ctx context.Context, id string) (Entry, error)
	Update(ctx context.Context, e Entry) error
	ListByWallet(ctx context.Context, walletID string) ([]Entry, error)
}

// PostgresRepository stores ledger entries in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds an entry repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert appends a new entry.
func (r *PostgresRepository) Insert(ctx context.Context, e Entry) error {
	entryID, err := uuid.Parse(e.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid entry id", err)
	}
	walletID, err := uuid.Parse(e.WalletID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid wallet id", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO ledger_entries
        (id, wallet_id, amount, kind, status, movement_id, movement_type, reason, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		entryID, walletID, e.Amount, string(e.Kind), string(e.Status),
		e.Movement.ID, string(e.Movement.Type), e.Reason, e.CreatedAt.UTC())
	return err
}

// Get fetches an entry by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Entry, error) {
	entryID, err := uuid.Parse(id)
	if err != nil {
		return Entry{}, fault.Wrap(fault.Validation, "invalid entry id", err)
	}
	row := r.db.QueryRow(ctx, selectEntry+` WHERE id = $1`, entryID)
	return scanEntry(row)
}

// Update writes the terminal status and completion snapshot. The status
// guard in the WHERE clause keeps completed and cancelled entries immutable.
func (r *PostgresRepository) Update(ctx context.Context, e Entry) error {
	entryID, err := uuid.Parse(e.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid entry id", err)
	}
	tag, err := r.db.Exec(ctx, `UPDATE ledger_entries
        SET status = $2, previous_balance = $3, new_balance = $4, reason = $5, processed_at = $6
        WHERE id = $1 AND status = 'pending'`,
		entryID, string(e.Status), e.PreviousBalance, e.NewBalance, e.Reason, e.ProcessedAt.UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.Newf(fault.Validation, "entry %s is not pending", e.ID)
	}
	return nil
}

// ListByWallet returns all entries for a wallet, oldest first.
func (r *PostgresRepository) ListByWallet(ctx context.Context, walletID string) ([]Entry, error) {
	walletUUID, err := uuid.Parse(walletID)
	if err != nil {
		return nil, fault.Wrap(fault.Validation, "invalid wallet id", err)
	}
	rows, err := r.db.Query(ctx, selectEntry+` WHERE wallet_id = $1 ORDER BY created_at`, walletUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

const selectEntry = `SELECT id, wallet_id, amount, kind, status, movement_id, movement_type,
    COALESCE(previous_balance, 0), COALESCE(new_balance, 0), COALESCE(reason, ''),
    created_at, COALESCE(processed_at, 'epoch'::timestamptz)
    FROM ledger_entries`

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e        Entry
		id       uuid.UUID
		walletID uuid.UUID
		kind     string
		status   string
		mvType   string
	)
	if err := row.Scan(&id, &walletID, &e.Amount, &kind, &status, &e.Movement.ID, &mvType,
		&e.PreviousBalance, &e.NewBalance, &e.Reason, &e.CreatedAt, &e.ProcessedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, fault.New(fault.NotFound, "ledger entry not found")
		}
		return Entry{}, err
	}
	e.ID = id.String()
	e.WalletID = walletID.String()
	e.Kind = Kind(kind)
	e.Status = Status(status)
	e.Movement.Type = movement.Type(mvType)
	e.CreatedAt = e.CreatedAt.UTC()
	e.ProcessedAt = e.ProcessedAt.UTC()
	return e, nil
}
