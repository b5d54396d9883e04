package identity

import (
	"context"
	"errors"
)

// Store describes the read access the resolver needs from the record store.
type Store interface {
	FindPrincipal(ctx context.Context, id string) (Principal, error)
	FindEmployeeByPrincipal(ctx context.Context, principalID string) (Employee, error)
	FindPartnerByEmployee(ctx context.Context, employeeID string) (SalesPartner, error)
}

// Resolver walks the principal → employee → sales partner chain. Each hop is
// a hard gate: a failure short-circuits before the next lookup runs. Results
// are resolved fresh per call, never cached.
type Resolver struct {
	store Store
}

// NewResolver constructs a Resolver over the given store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve produces the partner identity for the principal, or a
// *ResolutionError naming the gate that failed. Any other error is an
// internal data-access failure.
func (r *Resolver) Resolve(ctx context.Context, principalID string) (Resolution, error) {
	principal, err := r.store.FindPrincipal(ctx, principalID)
	if err != nil {
		return Resolution{}, err
	}
	if !principal.Enabled {
		return Resolution{}, errInactiveUser
	}

	employee, err := r.store.FindEmployeeByPrincipal(ctx, principalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Resolution{}, errNoEmployee
		}
		return Resolution{}, err
	}

	partner, err := r.store.FindPartnerByEmployee(ctx, employee.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Resolution{}, errNoPartner
		}
		return Resolution{}, err
	}

	return Resolution{Principal: principal, Employee: employee, Partner: partner}, nil
}
