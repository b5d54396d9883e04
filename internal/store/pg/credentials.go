package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/unitedhq/partner-api/internal/auth"
)

var _ auth.Store = (*Store)(nil)

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx, `
		select id, email, password_hash, enabled, image,
		       coalesce(api_key, ''), coalesce(api_secret_hash, '')
		from principals where email = $1
	`, email))
}

func (s *Store) FindAccountByAPIKey(ctx context.Context, apiKey string) (auth.Account, error) {
	return s.scanAccount(s.db.QueryRowContext(ctx, `
		select id, email, password_hash, enabled, image,
		       coalesce(api_key, ''), coalesce(api_secret_hash, '')
		from principals where api_key = $1
	`, apiKey))
}

// SaveCredentials overwrites the principal's API credential pair. The write
// commits before returning so the caller never renders a pair that is not
// durable. Concurrent reissues are last-write-wins.
func (s *Store) SaveCredentials(ctx context.Context, principalID, apiKey, secretHash string) error {
	res, err := s.db.ExecContext(ctx, `
		update principals
		set api_key = $2, api_secret_hash = $3, updated_at = now()
		where id = $1
	`, principalID, apiKey, secretHash)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return auth.ErrNotFound
	}
	return nil
}

func (s *Store) scanAccount(row *sql.Row) (auth.Account, error) {
	var a auth.Account
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Enabled, &a.Image, &a.APIKey, &a.APISecretHash)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Account{}, auth.ErrNotFound
	}
	if err != nil {
		return auth.Account{}, err
	}
	return a, nil
}
