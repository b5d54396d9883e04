package ledger

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the wire format for ledger dates and date filters.
const DateLayout = "2006-01-02"

var ErrNotFound = errors.New("ledger: not found")

// Entry is a raw ledger row. Points are signed: positive is a credit,
// negative a debit. Rows are immutable from this service's perspective.
type Entry struct {
	ID           string
	Date         time.Time
	Points       int64
	SalesInvoice string
}

// Transaction is a classified, wire-ready view of an Entry.
type Transaction struct {
	TransactionID string `json:"transaction_id"`
	Date          string `json:"date"`
	Amount        int64  `json:"amount"`
	SalesInvoice  string `json:"sales_invoice"`
	Type          string `json:"type"`
}

// Classify formats an entry for the wire. The sign of the amount is the sole
// source of truth: amount > 0 is the only credit test, so a zero amount
// classifies as debit.
func Classify(e Entry) Transaction {
	kind := "debit"
	if e.Points > 0 {
		kind = "credit"
	}
	return Transaction{
		TransactionID: e.ID,
		Date:          e.Date.Format(DateLayout),
		Amount:        e.Points,
		SalesInvoice:  e.SalesInvoice,
		Type:          kind,
	}
}

// Filter restricts a ledger query. All fields are optional and combine with
// logical AND.
type Filter struct {
	// FromDate and ToDate bound the entry date inclusively. The range is
	// applied only when both bounds are present; a single-sided bound is
	// ignored entirely.
	FromDate string
	ToDate   string
	// Type selects "credit" (points > 0) or "debit" (points < 0). Any other
	// value applies no type predicate. Zero-point entries match neither.
	Type string
	// Search matches case-insensitively as a substring of the entry id or
	// the invoice reference.
	Search string
}

// Normalize trims inputs and lower-cases the type selector.
func (f Filter) Normalize() Filter {
	return Filter{
		FromDate: strings.TrimSpace(f.FromDate),
		ToDate:   strings.TrimSpace(f.ToDate),
		Type:     strings.ToLower(strings.TrimSpace(f.Type)),
		Search:   strings.TrimSpace(f.Search),
	}
}

// HasDateRange reports whether both bounds are present.
func (f Filter) HasDateRange() bool {
	return f.FromDate != "" && f.ToDate != ""
}

const (
	defaultPage  = 1
	defaultLimit = 25
)

// Page selects a result window. Zero values take the defaults (1, 25);
// negative values clamp to 1. Bad pagination input is never an error.
type Page struct {
	Number int
	Limit  int
}

// Normalize applies defaults and clamping.
func (p Page) Normalize() Page {
	if p.Number == 0 {
		p.Number = defaultPage
	}
	if p.Limit == 0 {
		p.Limit = defaultLimit
	}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// DashboardSummary is the partner's stored point balance plus the most
// recent ledger activity.
type DashboardSummary struct {
	SalesPartner       string        `json:"sales_partner"`
	AvailablePoints    int64         `json:"available_points"`
	RecentTransactions []Transaction `json:"recent_transactions"`
}
