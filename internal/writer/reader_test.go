package writer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rickgao/compound-data/internal/database"
)

type fakeRunner struct {
	res    *database.Result
	err    error
	target database.Target
}

func (f *fakeRunner) RunStatement(ctx context.Context, target database.Target, sql string, args ...any) (*database.Result, error) {
	f.target = target
	return f.res, f.err
}

func TestSnapshotReader_Latest(t *testing.T) {
	fetchedAt := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	db := &fakeRunner{res: &database.Result{
		Command:      "SELECT",
		RowsAffected: 1,
		Rows: [][]any{
			{"0x39AA39c021dfbaE8faC545936693aC917d5E7563", "USDC", "226404108324277", "0.0226404108324277", "0.75", "1.00025", fetchedAt},
		},
	}}

	r := NewSnapshotReader(db, database.Alternate)
	rows, err := r.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if db.target != database.Alternate {
		t.Errorf("target = %v, want alternate", db.target)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}

	row := rows[0]
	if row.UnderlyingSymbol != "USDC" {
		t.Errorf("UnderlyingSymbol = %q, want USDC", row.UnderlyingSymbol)
	}
	if !row.MarketTokenPrice.Equal(decimal.RequireFromString("0.0226404108324277")) {
		t.Errorf("MarketTokenPrice = %s", row.MarketTokenPrice)
	}
	if !row.FetchedAt.Equal(fetchedAt) {
		t.Errorf("FetchedAt = %v, want %v", row.FetchedAt, fetchedAt)
	}
}

func TestSnapshotReader_BadRow(t *testing.T) {
	tests := []struct {
		name string
		row  []any
	}{
		{"short", []any{"0x39AA39c021dfbaE8faC545936693aC917d5E7563"}},
		{"bad address", []any{"nope", "USDC", "1", "1", "1", "1", time.Now()}},
		{"bad number", []any{"0x39AA39c021dfbaE8faC545936693aC917d5E7563", "USDC", "abc", "1", "1", "1", time.Now()}},
		{"numeric not cast", []any{"0x39AA39c021dfbaE8faC545936693aC917d5E7563", "USDC", 1.5, "1", "1", "1", time.Now()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &fakeRunner{res: &database.Result{Rows: [][]any{tt.row}}}
			if _, err := NewSnapshotReader(db, database.Primary).Latest(context.Background()); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSnapshotReader_PropagatesError(t *testing.T) {
	want := errors.New("query: connection refused")
	db := &fakeRunner{err: want}

	if _, err := NewSnapshotReader(db, database.Primary).Latest(context.Background()); !errors.Is(err, want) {
		t.Errorf("Latest() error = %v, want %v", err, want)
	}
}
