package auth

import "context"

// Account is the credential-bearing view of a principal record.
type Account struct {
	ID            string
	Email         string
	PasswordHash  string
	Enabled       bool
	Image         string
	APIKey        string
	APISecretHash string
}

// Store describes persistence operations required by the auth subsystem.
// Credential writes are idempotent overwrites on the principal record; the
// last issued pair wins.
type Store interface {
	FindAccountByEmail(ctx context.Context, email string) (Account, error)
	FindAccountByAPIKey(ctx context.Context, apiKey string) (Account, error)
	SaveCredentials(ctx context.Context, principalID, apiKey, secretHash string) error
}
