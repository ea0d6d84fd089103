package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRefreshTokenNotFound indicates a missing, expired, or revoked refresh token.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// StoredRefreshToken is the rotation record kept per issued refresh token.
type StoredRefreshToken struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RefreshTokenRepository stores refresh tokens with automatic expiry.
type RefreshTokenRepository interface {
	Save(ctx context.Context, token *StoredRefreshToken) error
	Get(ctx context.Context, token string) (*StoredRefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID string) error
}

type refreshTokenRepository struct {
	client *redis.Client
}

// NewRefreshTokenRepository returns a Redis-backed implementation. Keys expire
// with the token itself so revocation lists never need sweeping.
func NewRefreshTokenRepository(client *redis.Client) RefreshTokenRepository {
	return &refreshTokenRepository{client: client}
}

func tokenKey(token string) string { return "refresh_token:" + token }
func userKey(userID string) string { return "refresh_user:" + userID }

func (r *refreshTokenRepository) Save(ctx context.Context, token *StoredRefreshToken) error {
	payload, err := json.Marshal(token)
	if err != nil {
		return err
	}
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return errors.New("refresh token already expired")
	}

	// One refresh token per user: drop the previous one before storing.
	if prev, err := r.client.Get(ctx, userKey(token.UserID)).Result(); err == nil && prev != "" {
		_ = r.client.Del(ctx, tokenKey(prev)).Err()
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, tokenKey(token.Token), payload, ttl)
	pipe.Set(ctx, userKey(token.UserID), token.Token, ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *refreshTokenRepository) Get(ctx context.Context, token string) (*StoredRefreshToken, error) {
	payload, err := r.client.Get(ctx, tokenKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrRefreshTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	var stored StoredRefreshToken
	if err := json.Unmarshal(payload, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *refreshTokenRepository) Delete(ctx context.Context, token string) error {
	stored, err := r.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return nil
		}
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, tokenKey(token))
	pipe.Del(ctx, userKey(stored.UserID))
	_, err = pipe.Exec(ctx)
	return err
}

func (r *refreshTokenRepository) DeleteForUser(ctx context.Context, userID string) error {
	token, err := r.client.Get(ctx, userKey(userID)).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, tokenKey(token))
	pipe.Del(ctx, userKey(userID))
	_, err = pipe.Exec(ctx)
	return err
}
