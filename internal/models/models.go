package models

import (
	"errors"
	"time"

	"golang.org/x/oauth2"
)

// Model defines the base interface for all persistent models.
// Implementations include [CachedToken].
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// CachedToken is a stored OAuth token keyed by account label. One row per
// account; refreshed tokens overwrite the row in place.
type CachedToken struct {
	RowID        string
	Sequence     int
	Account      string
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time
	Created      time.Time
	Updated      time.Time
}

// NewCachedToken builds an unsaved token row for the given account label.
func NewCachedToken(account, accessToken, refreshToken, tokenType string, expiry time.Time) *CachedToken {
	now := time.Now().UTC()
	return &CachedToken{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
		Expiry:       expiry,
		Created:      now,
		Updated:      now,
	}
}

// TokenFromOAuth builds a token row for account from the oauth2 representation.
func TokenFromOAuth(account string, token *oauth2.Token) *CachedToken {
	return NewCachedToken(account, token.AccessToken, token.RefreshToken, token.TokenType, token.Expiry)
}

func (t *CachedToken) ID() string           { return t.RowID }
func (t *CachedToken) CreatedAt() time.Time { return t.Created }
func (t *CachedToken) UpdatedAt() time.Time { return t.Updated }

// OAuthToken converts the row back to the oauth2 representation.
func (t *CachedToken) OAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

// Validate checks that the row identifies an account and carries at least one
// usable credential.
func (t *CachedToken) Validate() error {
	if t.Account == "" {
		return errors.New("cached token requires an account label")
	}
	if t.AccessToken == "" && t.RefreshToken == "" {
		return errors.New("cached token requires an access or refresh token")
	}
	return nil
}
