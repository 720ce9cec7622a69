package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rickgao/compound-data/internal/market"
)

// MarketSource runs enrichment passes.
type MarketSource interface {
	RefreshAllMarketPrices(ctx context.Context) map[common.Address]market.TokenMarket
	Markets() []market.TokenMarket
	LastRefreshError() error
}

// SnapshotHandler receives the table after each pass.
type SnapshotHandler interface {
	HandleSnapshot(ctx context.Context, markets []market.TokenMarket, fetchedAt time.Time) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(context.Context, []market.TokenMarket, time.Time) error

func (f SnapshotHandlerFunc) HandleSnapshot(ctx context.Context, m []market.TokenMarket, at time.Time) error {
	return f(ctx, m, at)
}

// Config holds refresher configuration.
type Config struct {
	Interval time.Duration // Time between passes; zero runs a single pass
	Timeout  time.Duration // Per-pass deadline; zero means none
}

// Refresher periodically refreshes the market table.
type Refresher struct {
	cfg     Config
	source  MarketSource
	handler SnapshotHandler
	logger  *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Refresher. handler may be nil.
func New(cfg Config, source MarketSource, handler SnapshotHandler, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		cfg:     cfg,
		source:  source,
		handler: handler,
		logger:  logger,
	}
}

// Start begins the refresh loop in the background.
func (r *Refresher) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.run()

	r.logger.Info("market refresher started", "interval", r.cfg.Interval)
	return nil
}

// Stop gracefully shuts down the refresher.
func (r *Refresher) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("market refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main refresh loop.
func (r *Refresher) run() {
	defer r.wg.Done()

	// Refresh immediately on start.
	r.RunOnce(r.ctx)

	if r.cfg.Interval <= 0 {
		return
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(r.ctx)
		}
	}
}

// RunOnce performs one pass and hands the result to the handler.
// It returns the error that cut the pass short, or the handler's error.
func (r *Refresher) RunOnce(ctx context.Context) error {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	r.source.RefreshAllMarketPrices(ctx)
	fetchedAt := time.Now()

	// A partial pass mixes fresh and stale values; it is not handed on.
	if err := r.source.LastRefreshError(); err != nil {
		r.logger.Warn("refresh pass incomplete, snapshot skipped", "error", err)
		return err
	}

	markets := r.source.Markets()
	if r.handler != nil {
		if err := r.handler.HandleSnapshot(ctx, markets, fetchedAt); err != nil {
			r.logger.Warn("snapshot handler failed", "error", err)
			return err
		}
	}

	r.logger.Info("refresh cycle complete",
		"markets", len(markets),
		"duration", time.Since(start),
	)
	return nil
}
