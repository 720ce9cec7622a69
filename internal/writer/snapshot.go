package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/compound-data/internal/database"
	"github.com/rickgao/compound-data/internal/market"
)

const insertSnapshotSQL = `
	INSERT INTO market_snapshots (
		market_address, underlying_symbol, exchange_rate_stored,
		market_token_price, collateral_factor, underlying_price, fetched_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

// TxRunner is the transactional surface of database.Gateway.
type TxRunner interface {
	Begin(ctx context.Context) (*database.Tx, error)
	ExecMany(ctx context.Context, tx *database.Tx, sql string, params [][]any) error
	Commit(ctx context.Context, tx *database.Tx) error
	Rollback(ctx context.Context, tx *database.Tx) error
}

// WriterMetrics counts snapshot writes.
type WriterMetrics struct {
	Inserts int64 // Rows committed
	Flushes int64 // Committed passes
	Errors  int64 // Failed passes
}

// SnapshotWriter writes enrichment passes to market_snapshots.
type SnapshotWriter struct {
	db     TxRunner
	logger *slog.Logger

	mu      sync.Mutex
	metrics WriterMetrics
}

// NewSnapshotWriter creates a new SnapshotWriter.
func NewSnapshotWriter(db TxRunner, logger *slog.Logger) *SnapshotWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotWriter{
		db:     db,
		logger: logger,
	}
}

// Stats returns current metrics.
func (w *SnapshotWriter) Stats() WriterMetrics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.metrics
}

// HandleSnapshot writes one pass. Any failure rolls the whole pass back.
func (w *SnapshotWriter) HandleSnapshot(ctx context.Context, markets []market.TokenMarket, fetchedAt time.Time) error {
	start := time.Now()
	rows := transform(markets, fetchedAt)

	// ExecMany rejects an empty pass before a connection is checked out.
	if len(rows) == 0 {
		return w.fail(database.ErrNoData, 0)
	}

	tx, err := w.db.Begin(ctx)
	if err != nil {
		return w.fail(err, len(rows))
	}

	if err := w.db.ExecMany(ctx, tx, insertSnapshotSQL, rows); err != nil {
		if rbErr := w.db.Rollback(ctx, tx); rbErr != nil {
			w.logger.Error("snapshot rollback failed", "error", rbErr)
		}
		return w.fail(err, len(rows))
	}

	if err := w.db.Commit(ctx, tx); err != nil {
		return w.fail(err, len(rows))
	}

	w.mu.Lock()
	w.metrics.Inserts += int64(len(rows))
	w.metrics.Flushes++
	w.mu.Unlock()

	w.logger.Debug("snapshot written",
		"tx", tx.ID(),
		"count", len(rows),
		"duration", time.Since(start),
	)
	return nil
}

func (w *SnapshotWriter) fail(err error, count int) error {
	w.logger.Error("snapshot write failed", "error", err, "count", count)
	w.mu.Lock()
	w.metrics.Errors++
	w.mu.Unlock()
	return err
}

// transform converts markets into insert parameter sets.
func transform(markets []market.TokenMarket, fetchedAt time.Time) [][]any {
	rows := make([][]any, 0, len(markets))
	for _, m := range markets {
		rows = append(rows, []any{
			m.MarketAddress.Hex(),
			m.UnderlyingSymbol,
			m.ExchangeRateStored.String(),
			m.MarketTokenPrice.String(),
			m.CollateralFactor.String(),
			m.UnderlyingPrice.String(),
			fetchedAt.UTC(),
		})
	}
	return rows
}
