package writer

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/rickgao/compound-data/internal/database"
)

const latestSnapshotSQL = `
	SELECT DISTINCT ON (market_address)
		market_address, underlying_symbol,
		exchange_rate_stored::text, market_token_price::text,
		collateral_factor::text, underlying_price::text, fetched_at
	FROM market_snapshots
	ORDER BY market_address, fetched_at DESC`

// StatementRunner is the standalone-statement surface of database.Gateway.
type StatementRunner interface {
	RunStatement(ctx context.Context, target database.Target, sql string, args ...any) (*database.Result, error)
}

// SnapshotRow is one persisted market snapshot.
type SnapshotRow struct {
	MarketAddress      common.Address  `json:"marketAddress"`
	UnderlyingSymbol   string          `json:"underlyingSymbol"`
	ExchangeRateStored decimal.Decimal `json:"exchangeRateStored"`
	MarketTokenPrice   decimal.Decimal `json:"marketTokenPrice"`
	CollateralFactor   decimal.Decimal `json:"collateralFactor"`
	UnderlyingPrice    decimal.Decimal `json:"underlyingPrice"`
	FetchedAt          time.Time       `json:"fetchedAt"`
}

// SnapshotReader reads persisted snapshots from one target pool.
type SnapshotReader struct {
	db     StatementRunner
	target database.Target
}

// NewSnapshotReader creates a reader over target.
func NewSnapshotReader(db StatementRunner, target database.Target) *SnapshotReader {
	return &SnapshotReader{db: db, target: target}
}

// Latest returns the most recent snapshot row of every market.
func (r *SnapshotReader) Latest(ctx context.Context) ([]SnapshotRow, error) {
	res, err := r.db.RunStatement(ctx, r.target, latestSnapshotSQL)
	if err != nil {
		return nil, err
	}

	out := make([]SnapshotRow, 0, len(res.Rows))
	for i, values := range res.Rows {
		row, err := parseRow(values)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, row)
	}
	return out, nil
}

func parseRow(values []any) (SnapshotRow, error) {
	if len(values) != 7 {
		return SnapshotRow{}, fmt.Errorf("expected 7 columns, got %d", len(values))
	}

	addr, ok := values[0].(string)
	if !ok || !common.IsHexAddress(addr) {
		return SnapshotRow{}, fmt.Errorf("bad market_address %v", values[0])
	}
	symbol, ok := values[1].(string)
	if !ok {
		return SnapshotRow{}, fmt.Errorf("bad underlying_symbol %v", values[1])
	}
	fetchedAt, ok := values[6].(time.Time)
	if !ok {
		return SnapshotRow{}, fmt.Errorf("bad fetched_at %v", values[6])
	}

	var nums [4]decimal.Decimal
	for i := range nums {
		s, ok := values[2+i].(string)
		if !ok {
			return SnapshotRow{}, fmt.Errorf("column %d: not text: %T", 2+i, values[2+i])
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return SnapshotRow{}, fmt.Errorf("column %d: %w", 2+i, err)
		}
		nums[i] = d
	}

	return SnapshotRow{
		MarketAddress:      common.HexToAddress(addr),
		UnderlyingSymbol:   symbol,
		ExchangeRateStored: nums[0],
		MarketTokenPrice:   nums[1],
		CollateralFactor:   nums[2],
		UnderlyingPrice:    nums[3],
		FetchedAt:          fetchedAt,
	}, nil
}
