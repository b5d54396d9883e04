package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeStore struct {
	accounts map[string]*Account // keyed by id
}

func newFakeStore() *fakeStore {
	return &fakeStore{accounts: make(map[string]*Account)}
}

func (f *fakeStore) FindAccountByEmail(ctx context.Context, email string) (Account, error) {
	for _, a := range f.accounts {
		if a.Email == email {
			return *a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (f *fakeStore) FindAccountByAPIKey(ctx context.Context, apiKey string) (Account, error) {
	for _, a := range f.accounts {
		if a.APIKey != "" && a.APIKey == apiKey {
			return *a, nil
		}
	}
	return Account{}, ErrNotFound
}

func (f *fakeStore) SaveCredentials(ctx context.Context, principalID, apiKey, secretHash string) error {
	a, ok := f.accounts[principalID]
	if !ok {
		return ErrNotFound
	}
	a.APIKey = apiKey
	a.APISecretHash = secretHash
	return nil
}

func newTestService(t *testing.T, store Store, opts ...ServiceOption) *Service {
	t.Helper()
	svc, err := NewService(store, "test-secret", opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestAuthenticate(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	store := newFakeStore()
	store.accounts["u-1"] = &Account{ID: "u-1", Email: "jane@example.com", PasswordHash: hash, Enabled: true}
	svc := newTestService(t, store)

	account, err := svc.Authenticate(context.Background(), "Jane@Example.com", "s3cret")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if account.ID != "u-1" {
		t.Fatalf("unexpected account: %+v", account)
	}

	if _, err := svc.Authenticate(context.Background(), "jane@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nobody@example.com", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials for unknown user, got %v", err)
	}
}

func TestIssueCredentialsLastWriteWins(t *testing.T) {
	store := newFakeStore()
	store.accounts["u-1"] = &Account{ID: "u-1", Email: "jane@example.com", Enabled: true}
	svc := newTestService(t, store)
	ctx := context.Background()

	first, err := svc.IssueCredentials(ctx, "u-1")
	if err != nil {
		t.Fatalf("IssueCredentials: %v", err)
	}
	if _, err := svc.VerifyAPIToken(ctx, first.Key+":"+first.Secret); err != nil {
		t.Fatalf("first pair should authenticate: %v", err)
	}

	second, err := svc.IssueCredentials(ctx, "u-1")
	if err != nil {
		t.Fatalf("IssueCredentials (reissue): %v", err)
	}
	if second.Key == first.Key && second.Secret == first.Secret {
		t.Fatalf("reissue returned identical pair")
	}

	if _, err := svc.VerifyAPIToken(ctx, first.Key+":"+first.Secret); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("stale pair must stop authenticating, got %v", err)
	}
	account, err := svc.VerifyAPIToken(ctx, second.Key+":"+second.Secret)
	if err != nil {
		t.Fatalf("fresh pair should authenticate: %v", err)
	}
	if account.ID != "u-1" {
		t.Fatalf("unexpected account: %+v", account)
	}

	if !strings.HasPrefix(second.Token(), "Token ") || !strings.Contains(second.Token(), ":") {
		t.Fatalf("unexpected token rendering: %q", second.Token())
	}
}

func TestVerifyAPITokenRejectsMalformed(t *testing.T) {
	svc := newTestService(t, newFakeStore())
	for _, raw := range []string{"", "nocolon", ":", "key:", ":secret"} {
		if _, err := svc.VerifyAPIToken(context.Background(), raw); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("VerifyAPIToken(%q): expected invalid token, got %v", raw, err)
		}
	}
}

func TestSessionRoundTrip(t *testing.T) {
	svc := newTestService(t, newFakeStore(), WithIssuer("test-issuer"), WithSessionTTL(time.Hour))

	token, exp, err := svc.IssueSession(Account{ID: "u-42"})
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expected future expiration, got %v", exp)
	}
	subject, err := svc.VerifySession(token)
	if err != nil {
		t.Fatalf("VerifySession: %v", err)
	}
	if subject != "u-42" {
		t.Fatalf("unexpected subject: %s", subject)
	}

	if _, err := svc.VerifySession("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestVerifySessionExpired(t *testing.T) {
	current := time.Now()
	svc := newTestService(t, newFakeStore(),
		WithSessionTTL(time.Minute),
		WithClock(func() time.Time { return current }),
	)
	token, _, err := svc.IssueSession(Account{ID: "u-1"})
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := svc.VerifySession(token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected session expired, got %v", err)
	}
}
