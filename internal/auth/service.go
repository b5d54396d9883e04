package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/unitedhq/partner-api/internal/ids"
)

const (
	defaultIssuer     = "partner-api"
	defaultSessionTTL = 12 * time.Hour

	// TokenScheme prefixes issued API credential strings.
	TokenScheme = "Token "
)

// Credentials is an issued API key/secret pair. The secret is only available
// at issuance time; the store keeps a hash.
type Credentials struct {
	Key    string
	Secret string
}

// Token renders the pair as the credential string handed to clients.
func (c Credentials) Token() string {
	return TokenScheme + c.Key + ":" + c.Secret
}

// Service authenticates principals and issues the two credential forms:
// durable API key/secret pairs and short-lived session JWTs.
type Service struct {
	store      Store
	secret     []byte
	issuer     string
	sessionTTL time.Duration
	now        func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithIssuer overrides the session token issuer claim.
func WithIssuer(issuer string) ServiceOption {
	return func(s *Service) {
		if v := strings.TrimSpace(issuer); v != "" {
			s.issuer = v
		}
	}
}

// WithSessionTTL configures session token lifetime.
func WithSessionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service signing session tokens with the given
// secret.
func NewService(store Store, secret string, opts ...ServiceOption) (*Service, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("auth secret is not configured")
	}
	svc := &Service{
		store:      store,
		secret:     []byte(secret),
		issuer:     defaultIssuer,
		sessionTTL: defaultSessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Authenticate verifies the username/password pair against the principal
// record. It does not check the enabled flag; the resolution chain owns that
// gate and its ordering.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Account, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return Account{}, ErrInvalidCredentials
	}
	account, err := s.store.FindAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, ErrInvalidCredentials
		}
		return Account{}, err
	}
	if err := VerifyPassword(account.PasswordHash, password); err != nil {
		return Account{}, ErrInvalidCredentials
	}
	return account, nil
}

// IssueCredentials generates a fresh API key/secret pair and persists it on
// the principal record before returning. The write overwrites any previous
// pair: only the most recently issued credentials authenticate afterwards.
func (s *Service) IssueCredentials(ctx context.Context, principalID string) (Credentials, error) {
	secretBytes := make([]byte, 20)
	if _, err := rand.Read(secretBytes); err != nil {
		return Credentials{}, err
	}
	creds := Credentials{
		Key:    ids.New(),
		Secret: base64.RawURLEncoding.EncodeToString(secretBytes),
	}
	if err := s.store.SaveCredentials(ctx, principalID, creds.Key, hashSecret(creds.Secret)); err != nil {
		return Credentials{}, fmt.Errorf("save credentials: %w", err)
	}
	return creds, nil
}

// VerifyAPIToken validates a "key:secret" credential string and returns the
// owning account.
func (s *Service) VerifyAPIToken(ctx context.Context, raw string) (Account, error) {
	key, secret, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok || key == "" || secret == "" {
		return Account{}, ErrInvalidToken
	}
	account, err := s.store.FindAccountByAPIKey(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Account{}, ErrInvalidToken
		}
		return Account{}, err
	}
	if !secureCompareHash(account.APISecretHash, secret) {
		return Account{}, ErrInvalidToken
	}
	return account, nil
}

// sessionClaims are the JWT claims carried by session tokens.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// IssueSession signs a session JWT for the account using HS256.
func (s *Service) IssueSession(account Account) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.sessionTTL)
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, exp, nil
}

// VerifySession validates a session JWT and returns the principal id. An
// expired token is reported as ErrSessionExpired so the response layer can
// apply the session-expiry notice; any other failure is ErrInvalidToken.
func (s *Service) VerifySession(token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now().UTC() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrSessionExpired
		}
		return "", ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid {
		return "", ErrInvalidToken
	}
	if claims.Issuer != s.issuer || strings.TrimSpace(claims.Subject) == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func hashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func secureCompareHash(expectedHash, secret string) bool {
	actual := hashSecret(secret)
	if len(expectedHash) != len(actual) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expectedHash), []byte(actual)) == 1
}
