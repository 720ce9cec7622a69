package market

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	mantissaDecimals    = 18
	oraclePriceDecimals = 6
)

// ErrEmptyValue is returned when the chain answers with no value.
var ErrEmptyValue = errors.New("empty value from chain")

// RefreshError records why a refresh pass stopped early.
type RefreshError struct {
	Market common.Address
	Symbol string
	Step   string // "price", "exchange_rate", "collateral_factor"
	Err    error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh %s (%s) %s: %v", e.Symbol, e.Market.Hex(), e.Step, e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// Enricher owns the market table and refreshes it from the chain.
type Enricher struct {
	chain  ChainClient
	logger *slog.Logger

	mu      sync.RWMutex
	table   *Table
	lastErr error
	lastRun time.Time
}

// NewEnricher creates an Enricher over table. A nil table uses DefaultTable.
func NewEnricher(client ChainClient, table *Table, logger *slog.Logger) *Enricher {
	if logger == nil {
		logger = slog.Default()
	}
	if table == nil {
		table = DefaultTable()
	}
	return &Enricher{
		chain:  client,
		table:  table,
		logger: logger,
	}
}

// ListMarkets returns a copy of the table keyed by market address.
func (e *Enricher) ListMarkets() map[common.Address]TokenMarket {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshotLocked()
}

// Markets returns a copy of the table in declaration order.
func (e *Enricher) Markets() []TokenMarket {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]TokenMarket, 0, len(e.table.order))
	for _, addr := range e.table.order {
		out = append(out, *e.table.markets[addr])
	}
	return out
}

// LastRefreshError returns the error that stopped the most recent refresh pass,
// or nil if it covered every market.
func (e *Enricher) LastRefreshError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

// LastRefresh returns when the most recent refresh pass finished.
func (e *Enricher) LastRefresh() time.Time {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastRun
}

// GetCollateralFactor reads a market's collateral factor as a fraction.
// Chain errors are returned as is.
func (e *Enricher) GetCollateralFactor(ctx context.Context, market common.Address) (decimal.Decimal, error) {
	info, err := e.chain.Markets(ctx, market)
	if err != nil {
		return decimal.Zero, err
	}
	if info.CollateralFactorMantissa == nil {
		return decimal.Zero, ErrEmptyValue
	}
	return decimal.NewFromBigInt(info.CollateralFactorMantissa, -mantissaDecimals), nil
}

// RefreshAllMarketPrices refreshes every market in order and returns the table.
//
// The pass stops at the first failing market. That error is logged, kept for
// LastRefreshError and otherwise dropped: the caller gets the table as it
// stands, with earlier markets updated and the rest holding their previous values.
// A market's fields are only written once all of its reads succeed.
func (e *Enricher) RefreshAllMarketPrices(ctx context.Context) map[common.Address]TokenMarket {
	start := time.Now()
	updated := 0

	var failure error
	for _, m := range e.Markets() {
		next, err := e.refreshMarket(ctx, m)
		if err != nil {
			failure = err
			break
		}

		e.mu.Lock()
		*e.table.markets[m.MarketAddress] = next
		e.mu.Unlock()
		updated++
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = failure
	e.lastRun = time.Now()

	if failure != nil {
		e.logger.Warn("market refresh aborted, returning stale table",
			"error", failure,
			"updated", updated,
			"markets", len(e.table.order),
		)
	} else {
		e.logger.Info("market refresh complete",
			"markets", updated,
			"duration", time.Since(start),
		)
	}

	return e.snapshotLocked()
}

func (e *Enricher) refreshMarket(ctx context.Context, m TokenMarket) (TokenMarket, error) {
	fail := func(step string, err error) (TokenMarket, error) {
		return m, &RefreshError{Market: m.MarketAddress, Symbol: m.UnderlyingSymbol, Step: step, Err: err}
	}

	price, err := e.chain.Price(ctx, m.UnderlyingSymbol)
	if err == nil && price == nil {
		err = ErrEmptyValue
	}
	if err != nil {
		return fail("price", err)
	}

	rate, err := e.chain.ExchangeRateStored(ctx, m.MarketAddress)
	if err == nil && rate == nil {
		err = ErrEmptyValue
	}
	if err != nil {
		return fail("exchange_rate", err)
	}

	cf, err := e.GetCollateralFactor(ctx, m.MarketAddress)
	if err != nil {
		return fail("collateral_factor", err)
	}

	m.ExchangeRateStored = decimal.NewFromBigInt(rate, 0)
	m.MarketTokenPrice = MarketTokenPrice(rate, m.UnderlyingDecimals)
	m.CollateralFactor = cf
	m.UnderlyingPrice = decimal.NewFromBigInt(price, -oraclePriceDecimals)

	e.logger.Debug("market refreshed",
		"market", m.MarketAddress.Hex(),
		"symbol", m.UnderlyingSymbol,
		"price", m.UnderlyingPrice.String(),
		"ctoken_price", m.MarketTokenPrice.String(),
		"collateral_factor", m.CollateralFactor.String(),
	)
	return m, nil
}

// MarketTokenPrice converts a stored exchange rate into the amount of
// underlying one cToken redeems for: rate / 10^(18 + underlyingDecimals - 8).
func MarketTokenPrice(rate *big.Int, underlyingDecimals int32) decimal.Decimal {
	exp := mantissaDecimals + underlyingDecimals - cTokenDecimals
	return decimal.NewFromBigInt(rate, -exp)
}

func (e *Enricher) snapshotLocked() map[common.Address]TokenMarket {
	out := make(map[common.Address]TokenMarket, len(e.table.markets))
	for addr, m := range e.table.markets {
		out[addr] = *m
	}
	return out
}
