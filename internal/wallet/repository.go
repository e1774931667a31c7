package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brisapay/brisapay/internal/fault"
)

// Repository persists wallet snapshots.
type Repository interface {
	Create(ctx context.Context, w Wallet) error
	Get(ctx context.Context, id string) (Wallet, error)
	GetByOwnerPurpose(ctx context.Context, ownerID string, purpose Purpose) (Wallet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Wallet, error)
	// UpdateBalances writes the snapshot if and only if the stored version
	// still equals w.Version, bumping it by one. A lost race yields a
	// Conflict fault so the caller can reload and retry.
	UpdateBalances(ctx context.Context, w Wallet) error
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const uniqueViolation = "23505"

// Create inserts a wallet record. A second wallet for the same
// (owner, purpose) pair yields a Conflict fault.
func (r *PostgresRepository) Create(ctx context.Context, w Wallet) error {
	walletID, err := uuid.Parse(w.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid wallet id", err)
	}
	ownerID, err := uuid.Parse(w.OwnerID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid owner id", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, owner_id, purpose, available, pending, version, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		walletID, ownerID, string(w.Purpose), w.Available, w.Pending, w.Version, w.CreatedAt.UTC(), w.UpdatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fault.Newf(fault.Conflict, "wallet already exists for owner %s purpose %s", w.OwnerID, w.Purpose)
	}
	return err
}

// Get fetches a wallet snapshot by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Wallet, error) {
	walletUUID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, fault.Wrap(fault.Validation, "invalid wallet id", err)
	}
	row := r.db.QueryRow(ctx, selectWallet+` WHERE id = $1`, walletUUID)
	return scanWallet(row)
}

// GetByOwnerPurpose fetches the owner's wallet for the given purpose.
func (r *PostgresRepository) GetByOwnerPurpose(ctx context.Context, ownerID string, purpose Purpose) (Wallet, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return Wallet{}, fault.Wrap(fault.Validation, "invalid owner id", err)
	}
	row := r.db.QueryRow(ctx, selectWallet+` WHERE owner_id = $1 AND purpose = $2`, ownerUUID, string(purpose))
	return scanWallet(row)
}

// ListByOwner returns every wallet belonging to the owner.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID string) ([]Wallet, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, fault.Wrap(fault.Validation, "invalid owner id", err)
	}
	rows, err := r.db.Query(ctx, selectWallet+` WHERE owner_id = $1 ORDER BY created_at`, ownerUUID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var wallets []Wallet
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, err
		}
		wallets = append(wallets, w)
	}
	return wallets, rows.Err()
}

// UpdateBalances performs the versioned compare-and-swap snapshot write.
func (r *PostgresRepository) UpdateBalances(ctx context.Context, w Wallet) error {
	walletUUID, err := uuid.Parse(w.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid wallet id", err)
	}
	tag, err := r.db.Exec(ctx, `UPDATE wallets
        SET available = $3, pending = $4, version = version + 1, updated_at = $5
        WHERE id = $1 AND version = $2`,
		walletUUID, w.Version, w.Available, w.Pending, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.Newf(fault.Conflict, "wallet %s changed concurrently", w.ID)
	}
	return nil
}

const selectWallet = `SELECT id, owner_id, purpose, available, pending, version, created_at, updated_at FROM wallets`

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w       Wallet
		id      uuid.UUID
		ownerID uuid.UUID
		purpose string
	)
	if err := row.Scan(&id, &ownerID, &purpose, &w.Available, &w.Pending, &w.Version, &w.CreatedAt, &w.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, fault.New(fault.NotFound, "wallet not found")
		}
		return Wallet{}, err
	}
	w.ID = id.String()
	w.OwnerID = ownerID.String()
	w.Purpose = Purpose(purpose)
	w.CreatedAt = w.CreatedAt.UTC()
	w.UpdatedAt = w.UpdatedAt.UTC()
	return w, nil
}
