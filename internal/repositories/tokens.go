package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/mixradio/internal/auth"
)

// DefaultProfile is the token row used when no profile is named.
const DefaultProfile = "default"

// TokenRepository implements [auth.TokenStore] on SQLite.
type TokenRepository struct {
	db      *sql.DB
	profile string
}

var _ auth.TokenStore = (*TokenRepository)(nil)

// NewTokenRepository creates a [TokenRepository] for profile ("" uses [DefaultProfile]).
func NewTokenRepository(db *sql.DB, profile string) *TokenRepository {
	if profile == "" {
		profile = DefaultProfile
	}
	return &TokenRepository{db: db, profile: profile}
}

// Load returns the stored token, or (nil, nil) when there is none.
func (r *TokenRepository) Load(ctx context.Context) (*auth.TokenState, error) {
	query := `
		SELECT access_token, refresh_token, expires_at, user_id, territory
		FROM tokens
		WHERE profile = ?
	`

	var tok auth.TokenState
	err := r.db.QueryRowContext(ctx, query, r.profile).Scan(&tok.AccessToken, &tok.RefreshToken, &tok.ExpiresAt, &tok.UserID, &tok.Territory)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}
	tok.ExpiresAt = tok.ExpiresAt.UTC()
	return &tok, nil
}

// Save inserts or replaces the profile's token.
func (r *TokenRepository) Save(ctx context.Context, tok *auth.TokenState) error {
	if tok == nil || tok.AccessToken == "" {
		return fmt.Errorf("refusing to save an empty token")
	}

	query := `
		INSERT INTO tokens (profile, access_token, refresh_token, expires_at, user_id, territory, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (profile) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			user_id = excluded.user_id,
			territory = excluded.territory,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, r.profile, tok.AccessToken, tok.RefreshToken, tok.ExpiresAt.UTC(), tok.UserID, tok.Territory, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// Clear deletes the profile's token. Clearing an empty store is not an error.
func (r *TokenRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM tokens WHERE profile = ?", r.profile); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
