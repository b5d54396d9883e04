package ledger

import "context"

// recentLimit caps the dashboard's recent-activity window.
const recentLimit = 10

// Store describes the read access the query engine needs from the ledger
// table and the partner record. Implementations must apply identical filter
// semantics so the count and the page never drift apart.
type Store interface {
	Entries(ctx context.Context, partnerID string, f Filter, p Page) ([]Entry, error)
	CountEntries(ctx context.Context, partnerID string, f Filter) (int, error)
	RecentEntries(ctx context.Context, partnerID string, limit int) ([]Entry, error)
	PartnerPoints(ctx context.Context, partnerID string) (int64, error)
}

// Engine executes bounded, ordered, paginated ledger queries for a sales
// partner and classifies the results. It is stateless; every call is an
// independent request-scoped computation.
type Engine struct {
	store Store
}

// NewEngine constructs an Engine over the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// Query returns one page of classified transactions plus the total row count
// under the same filter. Results are ordered by date descending with the
// entry id as a deterministic tie-break.
func (e *Engine) Query(ctx context.Context, partnerID string, f Filter, p Page) ([]Transaction, int, error) {
	f = f.Normalize()
	p = p.Normalize()

	total, err := e.store.CountEntries(ctx, partnerID, f)
	if err != nil {
		return nil, 0, err
	}
	entries, err := e.store.Entries(ctx, partnerID, f, p)
	if err != nil {
		return nil, 0, err
	}
	return classifyAll(entries), total, nil
}

// Summary returns the partner's stored point balance (not recomputed from
// the ledger) and the ten most recent entries, unfiltered.
func (e *Engine) Summary(ctx context.Context, partnerID string) (DashboardSummary, error) {
	points, err := e.store.PartnerPoints(ctx, partnerID)
	if err != nil {
		return DashboardSummary{}, err
	}
	entries, err := e.store.RecentEntries(ctx, partnerID, recentLimit)
	if err != nil {
		return DashboardSummary{}, err
	}
	return DashboardSummary{
		SalesPartner:       partnerID,
		AvailablePoints:    points,
		RecentTransactions: classifyAll(entries),
	}, nil
}

func classifyAll(entries []Entry) []Transaction {
	out := make([]Transaction, 0, len(entries))
	for _, e := range entries {
		out = append(out, Classify(e))
	}
	return out
}
