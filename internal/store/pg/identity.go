package pg

import (
	"context"
	"database/sql"
	"errors"

	"github.com/unitedhq/partner-api/internal/identity"
)

var _ identity.Store = (*Store)(nil)

func (s *Store) FindPrincipal(ctx context.Context, id string) (identity.Principal, error) {
	var p identity.Principal
	err := s.db.QueryRowContext(ctx, `
		select id, email, enabled, image
		from principals where id = $1
	`, id).Scan(&p.ID, &p.Email, &p.Enabled, &p.Image)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.Principal{}, identity.ErrNotFound
	}
	if err != nil {
		return identity.Principal{}, err
	}
	return p, nil
}

func (s *Store) FindEmployeeByPrincipal(ctx context.Context, principalID string) (identity.Employee, error) {
	var (
		e         identity.Employee
		birthDate sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		select id, user_id, first_name, last_name, employee_name,
		       gender, birth_date, designation, department
		from employees where user_id = $1
		limit 1
	`, principalID).Scan(&e.ID, &e.UserID, &e.FirstName, &e.LastName, &e.FullName,
		&e.Gender, &birthDate, &e.Designation, &e.Department)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.Employee{}, identity.ErrNotFound
	}
	if err != nil {
		return identity.Employee{}, err
	}
	if birthDate.Valid {
		e.BirthDate = birthDate.Time.Format("2006-01-02")
	}
	return e, nil
}

func (s *Store) FindPartnerByEmployee(ctx context.Context, employeeID string) (identity.SalesPartner, error) {
	var p identity.SalesPartner
	err := s.db.QueryRowContext(ctx, `
		select id, employee_id, partner_type, earned_points
		from sales_partners where employee_id = $1
		limit 1
	`, employeeID).Scan(&p.ID, &p.EmployeeID, &p.PartnerType, &p.EarnedPoints)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.SalesPartner{}, identity.ErrNotFound
	}
	if err != nil {
		return identity.SalesPartner{}, err
	}
	return p, nil
}
