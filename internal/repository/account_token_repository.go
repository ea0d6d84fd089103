package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/dealer-service/internal/domain"
)

// AccountToken is a one-time token for account activation or password reset.
type AccountToken struct {
	ID        string
	UserID    string
	Token     string
	Purpose   domain.AccountTokenPurpose
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// AccountTokenRepository persists activation and password-reset tokens.
type AccountTokenRepository interface {
	Create(ctx context.Context, token *AccountToken) error
	GetByToken(ctx context.Context, token string, purpose domain.AccountTokenPurpose) (*AccountToken, error)
	MarkUsed(ctx context.Context, id string) error
}

type accountTokenRepository struct {
	pool *pgxpool.Pool
}

// NewAccountTokenRepository returns a Postgres-backed implementation.
func NewAccountTokenRepository(pool *pgxpool.Pool) AccountTokenRepository {
	return &accountTokenRepository{pool: pool}
}

func (r *accountTokenRepository) Create(ctx context.Context, token *AccountToken) error {
	const query = `
        INSERT INTO account_tokens (user_id, token, purpose, expires_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		token.UserID,
		token.Token,
		token.Purpose,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *accountTokenRepository) GetByToken(ctx context.Context, tokenStr string, purpose domain.AccountTokenPurpose) (*AccountToken, error) {
	const query = `
        SELECT id, user_id, token, purpose, expires_at, used_at, created_at
        FROM account_tokens WHERE token=$1 AND purpose=$2`

	var token AccountToken
	if err := r.pool.QueryRow(ctx, query, tokenStr, purpose).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.Purpose,
		&token.ExpiresAt,
		&token.UsedAt,
		&token.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *accountTokenRepository) MarkUsed(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE account_tokens SET used_at=NOW() WHERE id=$1 AND used_at IS NULL`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
