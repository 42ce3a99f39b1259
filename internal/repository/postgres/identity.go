package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/authcore/internal/model"
)

var _ model.IdentityStore = (*IdentityRepository)(nil)

const identityColumns = `id, email, username, password_hash, is_banned, reset_token_hash, reset_requested_at, created_at, updated_at`

type IdentityRepository struct {
	db  DB
	now func() time.Time
}

func NewIdentityRepository(db DB) *IdentityRepository {
	return &IdentityRepository{
		db:  db,
		now: time.Now,
	}
}

// FindByEmail expects an already normalized email.
func (r *IdentityRepository) FindByEmail(ctx context.Context, email string) (model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE email = $1`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by email: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by id: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (model.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE reset_token_hash = $1`

	identity, err := scanIdentity(r.db.QueryRow(ctx, query, tokenHash))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Identity{}, model.ErrNotFound
		}
		return model.Identity{}, fmt.Errorf("failed to get identity by reset token: %w", err)
	}

	return identity, nil
}

func (r *IdentityRepository) Create(ctx context.Context, identity model.Identity) (model.Identity, error) {
	query := `INSERT INTO identities (id, email, username, password_hash, is_banned, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + identityColumns

	if identity.ID == uuid.Nil {
		identity.ID = uuid.New()
	}
	now := r.now().UTC()

	saved, err := scanIdentity(r.db.QueryRow(ctx, query,
		identity.ID, model.NormalizeEmail(identity.Email), identity.Username, identity.PasswordHash,
		identity.IsBanned, now, now,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Identity{}, model.ErrAlreadyExists
		}
		return model.Identity{}, fmt.Errorf("failed to create identity: %w", err)
	}

	return saved, nil
}

// SetReset writes only the reset columns, so a password changed since the
// identity was read is never overwritten.
func (r *IdentityRepository) SetReset(ctx context.Context, id uuid.UUID, tokenHash string, requestedAt time.Time) error {
	query := `UPDATE identities
			  SET reset_token_hash = $2, reset_requested_at = $3, updated_at = $4
			  WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, tokenHash, requestedAt, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

// ConsumeReset matches on the pending digest inside the UPDATE, so of two
// concurrent consumers of one token only the first affects a row.
func (r *IdentityRepository) ConsumeReset(ctx context.Context, id uuid.UUID, tokenHash, passwordHash string) error {
	query := `UPDATE identities
			  SET password_hash = $3, reset_token_hash = NULL, reset_requested_at = NULL, updated_at = $4
			  WHERE id = $1 AND reset_token_hash = $2 AND NOT is_banned`

	tag, err := r.db.Exec(ctx, query, id, tokenHash, passwordHash, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *IdentityRepository) ClearReset(ctx context.Context, id uuid.UUID, tokenHash string) error {
	query := `UPDATE identities
			  SET reset_token_hash = NULL, reset_requested_at = NULL, updated_at = $3
			  WHERE id = $1 AND reset_token_hash = $2`

	tag, err := r.db.Exec(ctx, query, id, tokenHash, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}

	return nil
}

func scanIdentity(row pgx.Row) (model.Identity, error) {
	var identity model.Identity
	err := row.Scan(
		&identity.ID, &identity.Email, &identity.Username, &identity.PasswordHash, &identity.IsBanned,
		&identity.ResetTokenHash, &identity.ResetRequestedAt, &identity.CreatedAt, &identity.UpdatedAt,
	)
	return identity, err
}
