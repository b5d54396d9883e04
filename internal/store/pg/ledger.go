package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/unitedhq/partner-api/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

// ledgerPredicate builds the WHERE clause shared by the data and the count
// queries, so the page and the total can never drift apart. Every filter
// value is appended as a bound parameter.
func ledgerPredicate(partnerID string, f ledger.Filter) (string, []any) {
	where := []string{"sales_partner_id = $1"}
	args := []any{partnerID}

	if f.HasDateRange() {
		args = append(args, f.FromDate, f.ToDate)
		where = append(where, fmt.Sprintf("entry_date between $%d and $%d", len(args)-1, len(args)))
	}

	switch f.Type {
	case "credit":
		where = append(where, "points > 0")
	case "debit":
		where = append(where, "points < 0")
	}

	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(id ilike $%d or sales_invoice ilike $%d)", n, n))
	}

	return strings.Join(where, " and "), args
}

func (s *Store) Entries(ctx context.Context, partnerID string, f ledger.Filter, p ledger.Page) ([]ledger.Entry, error) {
	p = p.Normalize()
	where, args := ledgerPredicate(partnerID, f.Normalize())
	query := fmt.Sprintf(`
		select id, entry_date, points, sales_invoice
		from points_ledger
		where %s
		order by entry_date desc, id desc
		limit $%d offset $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, p.Limit, p.Offset())

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.Points, &e.SalesInvoice); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (s *Store) CountEntries(ctx context.Context, partnerID string, f ledger.Filter) (int, error) {
	where, args := ledgerPredicate(partnerID, f.Normalize())
	var total int
	err := s.db.QueryRowContext(ctx,
		fmt.Sprintf(`select count(*) from points_ledger where %s`, where),
		args...,
	).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) RecentEntries(ctx context.Context, partnerID string, limit int) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, entry_date, points, sales_invoice
		from points_ledger
		where sales_partner_id = $1
		order by entry_date desc, id desc
		limit $2
	`, partnerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []ledger.Entry
	for rows.Next() {
		var e ledger.Entry
		if err := rows.Scan(&e.ID, &e.Date, &e.Points, &e.SalesInvoice); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (s *Store) PartnerPoints(ctx context.Context, partnerID string) (int64, error) {
	var points int64
	err := s.db.QueryRowContext(ctx,
		`select earned_points from sales_partners where id = $1`, partnerID,
	).Scan(&points)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ledger.ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return points, nil
}
