package ledger

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	entries    []Entry
	points     int64
	pointsErr  error
	lastFilter Filter
	lastPage   Page
}

func (f *fakeStore) Entries(ctx context.Context, partnerID string, flt Filter, p Page) ([]Entry, error) {
	f.lastFilter = flt
	f.lastPage = p
	return f.entries, nil
}

func (f *fakeStore) CountEntries(ctx context.Context, partnerID string, flt Filter) (int, error) {
	return len(f.entries), nil
}

func (f *fakeStore) RecentEntries(ctx context.Context, partnerID string, limit int) ([]Entry, error) {
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func (f *fakeStore) PartnerPoints(ctx context.Context, partnerID string) (int64, error) {
	return f.points, f.pointsErr
}

func TestQueryNormalizesInputAndClassifies(t *testing.T) {
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{entries: []Entry{
		{ID: "L-2", Date: day, Points: -30, SalesInvoice: "INV-2"},
		{ID: "L-1", Date: day.AddDate(0, 0, -1), Points: 0, SalesInvoice: "INV-1"},
	}}
	engine := NewEngine(store)

	txs, total, err := engine.Query(context.Background(), "sp-1",
		Filter{Type: " Credit "}, Page{Number: -1, Limit: 0})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if total != 2 || len(txs) != 2 {
		t.Fatalf("total=%d len=%d", total, len(txs))
	}
	if store.lastFilter.Type != "credit" {
		t.Fatalf("filter not normalized: %+v", store.lastFilter)
	}
	if store.lastPage != (Page{Number: 1, Limit: 25}) {
		t.Fatalf("page not normalized: %+v", store.lastPage)
	}
	if txs[0].Type != "debit" || txs[1].Type != "debit" {
		t.Fatalf("classification: %+v", txs)
	}
	if txs[0].TransactionID != "L-2" || txs[0].Date != "2025-04-01" {
		t.Fatalf("formatting: %+v", txs[0])
	}
}

func TestSummaryUsesStoredBalance(t *testing.T) {
	store := &fakeStore{points: 120}
	engine := NewEngine(store)

	sum, err := engine.Summary(context.Background(), "sp-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.SalesPartner != "sp-1" || sum.AvailablePoints != 120 {
		t.Fatalf("unexpected summary: %+v", sum)
	}
	if len(sum.RecentTransactions) != 0 {
		t.Fatalf("expected empty recent activity, got %+v", sum.RecentTransactions)
	}
}

func TestSummaryCapsRecentAtTen(t *testing.T) {
	day := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	store := &fakeStore{points: 5}
	for i := 0; i < 15; i++ {
		store.entries = append(store.entries, Entry{ID: "L", Date: day, Points: 1})
	}
	engine := NewEngine(store)

	sum, err := engine.Summary(context.Background(), "sp-1")
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if len(sum.RecentTransactions) != 10 {
		t.Fatalf("recent window = %d, want 10", len(sum.RecentTransactions))
	}
}

func TestSummaryUnknownPartner(t *testing.T) {
	store := &fakeStore{pointsErr: ErrNotFound}
	if _, err := NewEngine(store).Summary(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
