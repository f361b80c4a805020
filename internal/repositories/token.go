package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"golang.org/x/oauth2"
)

// TokenRepository caches OAuth tokens per service in SQLite so refreshed
// tokens survive between runs without re-running the authorization flow.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a TokenRepository with the given database connection.
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Save upserts the token for a service.
func (r *TokenRepository) Save(service string, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("cannot save empty token for %s", service)
	}

	query := `
		INSERT INTO tokens (service, access_token, refresh_token, token_type, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(service) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token != '' THEN excluded.refresh_token ELSE tokens.refresh_token END,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	_, err := r.db.Exec(query,
		service,
		token.AccessToken,
		token.RefreshToken,
		tokenType,
		token.Expiry,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	return nil
}

// Get retrieves the cached token for a service. Returns sql.ErrNoRows
// wrapped when no token has been cached.
func (r *TokenRepository) Get(service string) (*oauth2.Token, error) {
	query := `
		SELECT access_token, refresh_token, token_type, expiry
		FROM tokens
		WHERE service = ?
	`

	var token oauth2.Token
	var refreshToken sql.NullString
	var expiry sql.NullTime

	err := r.db.QueryRow(query, service).Scan(&token.AccessToken, &refreshToken, &token.TokenType, &expiry)
	if err != nil {
		return nil, fmt.Errorf("failed to load token for %s: %w", service, err)
	}

	if refreshToken.Valid {
		token.RefreshToken = refreshToken.String
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}

	return &token, nil
}

// Delete removes the cached token for a service.
func (r *TokenRepository) Delete(service string) error {
	if _, err := r.db.Exec("DELETE FROM tokens WHERE service = ?", service); err != nil {
		return fmt.Errorf("failed to delete token for %s: %w", service, err)
	}
	return nil
}
