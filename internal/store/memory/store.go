// Package memory implements the record-store interfaces in process. It
// mirrors the Postgres store's filter, ordering and pagination semantics
// exactly, and backs the HTTP tests plus local runs without a database.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/unitedhq/partner-api/internal/auth"
	"github.com/unitedhq/partner-api/internal/identity"
	"github.com/unitedhq/partner-api/internal/ledger"
)

var (
	_ identity.Store = (*Store)(nil)
	_ ledger.Store   = (*Store)(nil)
	_ auth.Store     = (*Store)(nil)
)

// Store holds all records behind a single lock. Good enough for tests and
// single-process development runs.
type Store struct {
	mu          sync.RWMutex
	principals  map[string]*record
	employees   []identity.Employee
	partners    []identity.SalesPartner
	entries     []ledger.Entry
	entryOwners []string
}

type record struct {
	identity.Principal
	passwordHash  string
	apiKey        string
	apiSecretHash string
}

// New creates an empty store.
func New() *Store {
	return &Store{principals: make(map[string]*record)}
}

// --- seeding -------------------------------------------------------------

// AddPrincipal registers a principal with the given password hash.
func (s *Store) AddPrincipal(p identity.Principal, passwordHash string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.principals[p.ID] = &record{Principal: p, passwordHash: passwordHash}
}

// AddEmployee registers an employee record.
func (s *Store) AddEmployee(e identity.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = append(s.employees, e)
}

// AddPartner registers a sales partner record.
func (s *Store) AddPartner(p identity.SalesPartner) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.partners = append(s.partners, p)
}

// AddEntry registers a ledger entry.
func (s *Store) AddEntry(partnerID string, e ledger.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	s.entryOwners = append(s.entryOwners, partnerID)
}

// --- identity.Store ------------------------------------------------------

func (s *Store) FindPrincipal(ctx context.Context, id string) (identity.Principal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.principals[id]
	if !ok {
		return identity.Principal{}, identity.ErrNotFound
	}
	return rec.Principal, nil
}

func (s *Store) FindEmployeeByPrincipal(ctx context.Context, principalID string) (identity.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.employees {
		if e.UserID == principalID {
			return e, nil
		}
	}
	return identity.Employee{}, identity.ErrNotFound
}

func (s *Store) FindPartnerByEmployee(ctx context.Context, employeeID string) (identity.SalesPartner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.partners {
		if p.EmployeeID == employeeID {
			return p, nil
		}
	}
	return identity.SalesPartner{}, identity.ErrNotFound
}

// --- auth.Store ----------------------------------------------------------

func (s *Store) FindAccountByEmail(ctx context.Context, email string) (auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.principals {
		if strings.EqualFold(rec.Email, email) {
			return rec.account(), nil
		}
	}
	return auth.Account{}, auth.ErrNotFound
}

func (s *Store) FindAccountByAPIKey(ctx context.Context, apiKey string) (auth.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.principals {
		if rec.apiKey != "" && rec.apiKey == apiKey {
			return rec.account(), nil
		}
	}
	return auth.Account{}, auth.ErrNotFound
}

func (s *Store) SaveCredentials(ctx context.Context, principalID, apiKey, secretHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.principals[principalID]
	if !ok {
		return auth.ErrNotFound
	}
	rec.apiKey = apiKey
	rec.apiSecretHash = secretHash
	return nil
}

func (r *record) account() auth.Account {
	return auth.Account{
		ID:            r.ID,
		Email:         r.Email,
		PasswordHash:  r.passwordHash,
		Enabled:       r.Enabled,
		Image:         r.Image,
		APIKey:        r.apiKey,
		APISecretHash: r.apiSecretHash,
	}
}

// --- ledger.Store --------------------------------------------------------

func (s *Store) Entries(ctx context.Context, partnerID string, f ledger.Filter, p ledger.Page) ([]ledger.Entry, error) {
	p = p.Normalize()
	matched, err := s.filtered(partnerID, f.Normalize())
	if err != nil {
		return nil, err
	}
	offset := p.Offset()
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + p.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (s *Store) CountEntries(ctx context.Context, partnerID string, f ledger.Filter) (int, error) {
	matched, err := s.filtered(partnerID, f.Normalize())
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

func (s *Store) RecentEntries(ctx context.Context, partnerID string, limit int) ([]ledger.Entry, error) {
	matched, err := s.filtered(partnerID, ledger.Filter{})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (s *Store) PartnerPoints(ctx context.Context, partnerID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.partners {
		if p.ID == partnerID {
			return p.EarnedPoints, nil
		}
	}
	return 0, ledger.ErrNotFound
}

// filtered returns the partner's entries matching f, ordered by date
// descending with id descending as the tie-break, the same ordering the
// Postgres store applies.
func (s *Store) filtered(partnerID string, f ledger.Filter) ([]ledger.Entry, error) {
	var from, to time.Time
	if f.HasDateRange() {
		var err error
		from, err = time.Parse(ledger.DateLayout, f.FromDate)
		if err != nil {
			return nil, fmt.Errorf("parse from_date: %w", err)
		}
		to, err = time.Parse(ledger.DateLayout, f.ToDate)
		if err != nil {
			return nil, fmt.Errorf("parse to_date: %w", err)
		}
	}
	search := strings.ToLower(f.Search)

	s.mu.RLock()
	var matched []ledger.Entry
	for i, e := range s.entries {
		if s.entryOwners[i] != partnerID {
			continue
		}
		if f.HasDateRange() && (e.Date.Before(from) || e.Date.After(to)) {
			continue
		}
		switch f.Type {
		case "credit":
			if e.Points <= 0 {
				continue
			}
		case "debit":
			if e.Points >= 0 {
				continue
			}
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.ID), search) &&
			!strings.Contains(strings.ToLower(e.SalesInvoice), search) {
			continue
		}
		matched = append(matched, e)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Date.Equal(matched[j].Date) {
			return matched[i].Date.After(matched[j].Date)
		}
		return matched[i].ID > matched[j].ID
	})
	return matched, nil
}
