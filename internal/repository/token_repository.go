package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/tourism-portal/internal/model"
)

// ErrTokenInvalid is returned for unknown, revoked or expired refresh tokens.
var ErrTokenInvalid = errors.New("refresh token invalid")

// TokenRepo persists and validates refresh tokens (only the hash is stored).
type TokenRepo struct{ db *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{db: db} }

// StoreRefresh inserts a refresh token hash row.
func (r *TokenRepo) StoreRefresh(ctx context.Context, userID uint64, tokenHash string, remember bool, exp time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (user_id, token_hash, remember, expires_at) VALUES (?,?,?,?)",
		userID, tokenHash, remember, exp)
	return err
}

// ValidateRefresh returns the token row if it exists, is not revoked and has
// not expired.
func (r *TokenRepo) ValidateRefresh(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	var (
		t         model.RefreshToken
		revokedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, token_hash, remember, expires_at, revoked_at, created_at FROM refresh_tokens WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&t.ID, &t.UserID, &t.TokenHash, &t.Remember, &t.ExpiresAt, &revokedAt, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTokenInvalid
	}
	if err != nil {
		return nil, err
	}
	if revokedAt.Valid || time.Now().UTC().After(t.ExpiresAt) {
		return nil, ErrTokenInvalid
	}
	return &t, nil
}

// RevokeByHash marks a token as revoked.
func (r *TokenRepo) RevokeByHash(ctx context.Context, tokenHash string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE token_hash=? AND revoked_at IS NULL",
		tokenHash)
	return err
}

// RevokeAllForUser revokes all of a user's active tokens.
func (r *TokenRepo) RevokeAllForUser(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP() WHERE user_id=? AND revoked_at IS NULL",
		userID)
	return err
}
