package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/spx/internal/models"
	"github.com/desertthunder/spx/internal/shared"
)

const selectTokens = `
	SELECT id, sequence, account, access_token, refresh_token, token_type, expiry, created_at, updated_at
	FROM cached_tokens
`

// TokenRepository implements [models.Repository] for [models.CachedToken] rows.
//
// It also satisfies the token store the Spotify session layer reads from:
// lookups by account label, a most-recently-authorized fallback, and an
// upsert that keeps one row per account.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Create inserts a new token row into the database with generated ID and sequence
func (r *TokenRepository) Create(token *models.CachedToken) error {
	sequence, err := NextSequence(r.db, "cached_tokens")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	token.RowID = shared.GenerateID()
	token.Sequence = sequence

	if err := token.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO cached_tokens (id, sequence, account, access_token, refresh_token, token_type, expiry, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, token.RowID, sequence, token.Account, token.AccessToken,
		token.RefreshToken, token.TokenType, token.Expiry, token.Created, token.Updated)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}

	return nil
}

// Get retrieves a token row by ID
func (r *TokenRepository) Get(id string) (*models.CachedToken, error) {
	token, err := scanToken(r.db.QueryRow(selectTokens+"WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: id %s", shared.ErrTokenNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	return token, nil
}

// GetByAccount retrieves the token row stored for an account label
func (r *TokenRepository) GetByAccount(account string) (*models.CachedToken, error) {
	token, err := scanToken(r.db.QueryRow(selectTokens+"WHERE account = ?", account))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: account %s", shared.ErrTokenNotFound, account)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	return token, nil
}

// Latest retrieves the most recently stored or refreshed token row.
//
// Used as the default account when the caller names none.
func (r *TokenRepository) Latest() (*models.CachedToken, error) {
	token, err := scanToken(r.db.QueryRow(selectTokens + "ORDER BY updated_at DESC, sequence DESC LIMIT 1"))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: no accounts stored", shared.ErrTokenNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	return token, nil
}

// Update modifies an existing token row in the database
func (r *TokenRepository) Update(token *models.CachedToken) error {
	if err := token.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	token.Updated = time.Now().UTC()

	query := `
		UPDATE cached_tokens
		SET account = ?, access_token = ?, refresh_token = ?, token_type = ?, expiry = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query, token.Account, token.AccessToken, token.RefreshToken,
		token.TokenType, token.Expiry, token.Updated, token.RowID)
	if err != nil {
		return fmt.Errorf("failed to update token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id %s", shared.ErrTokenNotFound, token.RowID)
	}

	return nil
}

// Upsert stores the token under its account label, replacing any existing row
// for that account in place.
func (r *TokenRepository) Upsert(token *models.CachedToken) error {
	existing, err := r.GetByAccount(token.Account)
	if errors.Is(err, shared.ErrTokenNotFound) {
		return r.Create(token)
	}
	if err != nil {
		return err
	}

	token.RowID = existing.RowID
	token.Sequence = existing.Sequence
	token.Created = existing.Created
	return r.Update(token)
}

// Delete removes a token row by ID. Revoked credentials are dropped outright
// rather than soft-deleted.
func (r *TokenRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM cached_tokens WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: id %s", shared.ErrTokenNotFound, id)
	}

	return nil
}

// List retrieves all token rows matching the given criteria
func (r *TokenRepository) List(criteria map[string]any) ([]*models.CachedToken, error) {
	query := selectTokens + "WHERE 1 = 1"
	args := []any{}

	if account, ok := criteria["account"].(string); ok && account != "" {
		query += " AND account = ?"
		args = append(args, account)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*models.CachedToken
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		tokens = append(tokens, token)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tokens, nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanToken reads one cached_tokens row in selectTokens column order.
func scanToken(row rowScanner) (*models.CachedToken, error) {
	var (
		token  models.CachedToken
		expiry sql.NullTime
	)

	err := row.Scan(&token.RowID, &token.Sequence, &token.Account, &token.AccessToken,
		&token.RefreshToken, &token.TokenType, &expiry, &token.Created, &token.Updated)
	if err != nil {
		return nil, err
	}

	if expiry.Valid {
		token.Expiry = expiry.Time
	}

	return &token, nil
}

var _ models.Repository[*models.CachedToken] = (*TokenRepository)(nil)
