package owner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brisapay/brisapay/internal/fault"
)

// Repository persists owner accounts.
type Repository interface {
	Create(ctx context.Context, o Owner) error
	Get(ctx context.Context, id string) (Owner, error)
	GetByEmail(ctx context.Context, email string) (Owner, error)
	UpdateCallbackURL(ctx context.Context, id, callbackURL string) error
}

// PostgresRepository stores owners in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an owner record. A duplicate email yields a Conflict fault.
func (r *PostgresRepository) Create(ctx context.Context, o Owner) error {
	ownerID, err := uuid.Parse(o.ID)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid owner id", err)
	}
	_, err = r.db.Exec(ctx, `INSERT INTO owners (id, name, email, callback_url, secret_hash, is_admin, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		ownerID, o.Name, o.Email, o.CallbackURL, o.SecretHash, o.Admin, o.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fault.Newf(fault.Conflict, "owner with email %s already exists", o.Email)
	}
	return err
}

// Get fetches an owner by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Owner, error) {
	ownerID, err := uuid.Parse(id)
	if err != nil {
		return Owner{}, fault.Wrap(fault.Validation, "invalid owner id", err)
	}
	row := r.db.QueryRow(ctx, selectOwner+` WHERE id = $1`, ownerID)
	return scanOwner(row)
}

// GetByEmail fetches an owner by email.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (Owner, error) {
	row := r.db.QueryRow(ctx, selectOwner+` WHERE email = $1`, email)
	return scanOwner(row)
}

// UpdateCallbackURL changes where the owner's notifications are delivered.
func (r *PostgresRepository) UpdateCallbackURL(ctx context.Context, id, callbackURL string) error {
	ownerID, err := uuid.Parse(id)
	if err != nil {
		return fault.Wrap(fault.Validation, "invalid owner id", err)
	}
	tag, err := r.db.Exec(ctx, `UPDATE owners SET callback_url = $2 WHERE id = $1`, ownerID, callbackURL)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fault.New(fault.NotFound, "owner not found")
	}
	return nil
}

const selectOwner = `SELECT id, name, email, callback_url, secret_hash, is_admin, created_at FROM owners`

func scanOwner(row pgx.Row) (Owner, error) {
	var (
		o  Owner
		id uuid.UUID
	)
	if err := row.Scan(&id, &o.Name, &o.Email, &o.CallbackURL, &o.SecretHash, &o.Admin, &o.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Owner{}, fault.New(fault.NotFound, "owner not found")
		}
		return Owner{}, err
	}
	o.ID = id.String()
	o.CreatedAt = o.CreatedAt.UTC()
	return o, nil
}
