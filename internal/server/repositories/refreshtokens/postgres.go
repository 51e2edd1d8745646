package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avolkov/authkeeper/internal/common"
	"github.com/avolkov/authkeeper/internal/dbx"
	"github.com/avolkov/authkeeper/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) (*models.RefreshToken, error) {
	// issued_at and expires_at both come from the database clock, so the
	// stored lifetime equals the configured one regardless of app-host skew.
	query := `
		INSERT INTO refresh_tokens (id, user_id, token, expires_at)
		VALUES ($1, $2, $3, now() + make_interval(secs => $4))
		RETURNING issued_at, expires_at
	`
	row := &models.RefreshToken{
		ID:     uuid.NewString(),
		UserID: userID,
		Token:  token,
	}
	if err := r.db.QueryRowContext(ctx, query, row.ID, row.UserID, row.Token, validity.Seconds()).Scan(&row.IssuedAt, &row.Expires); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return row, nil
}

func (r *PostgresRepository) GetValid(ctx context.Context, userID string) (*models.RefreshToken, error) {
	// Per-user serialization comes from the caller's lock on the owner's
	// user row; FOR UPDATE here only pins the matched token row.
	query := `
		SELECT id, user_id, token, issued_at, expires_at, is_revoked, is_deleted
		FROM refresh_tokens
		WHERE user_id = $1 AND NOT is_revoked AND NOT is_deleted AND expires_at > now()
		FOR UPDATE
	`
	return r.scanToken(r.db.QueryRowContext(ctx, query, userID))
}

func (r *PostgresRepository) FindByValue(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := `
		SELECT id, user_id, token, issued_at, expires_at, is_revoked, is_deleted
		FROM refresh_tokens
		WHERE token = $1 AND NOT is_deleted
		FOR UPDATE
	`
	return r.scanToken(r.db.QueryRowContext(ctx, query, token))
}

func (r *PostgresRepository) Revoke(ctx context.Context, id string) error {
	query := `
		UPDATE refresh_tokens
		SET is_revoked = true
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, id string) error {
	query := `
		UPDATE refresh_tokens
		SET is_deleted = true
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanToken(row *sql.Row) (*models.RefreshToken, error) {
	token := &models.RefreshToken{}
	err := row.Scan(&token.ID, &token.UserID, &token.Token, &token.IssuedAt,
		&token.Expires, &token.IsRevoked, &token.IsDeleted)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return token, nil
}
