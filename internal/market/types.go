package market

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/rickgao/compound-data/internal/chain"
)

// cTokenDecimals is the fixed decimal count of every Compound market token.
const cTokenDecimals = 8

// TokenMarket is one Compound market and its last fetched values.
type TokenMarket struct {
	MarketAddress      common.Address `json:"marketAddress"`      // cToken, immutable
	UnderlyingAddress  common.Address `json:"underlyingAddress"`  // zero for ETH
	UnderlyingSymbol   string         `json:"underlyingSymbol"`   // oracle key
	UnderlyingDecimals int32          `json:"underlyingDecimals"` // underlying scale

	ExchangeRateStored decimal.Decimal `json:"exchangeRateStored"`
	MarketTokenPrice   decimal.Decimal `json:"marketTokenPrice"` // underlying per 1 cToken
	CollateralFactor   decimal.Decimal `json:"collateralFactor"` // 0..1
	UnderlyingPrice    decimal.Decimal `json:"underlyingPrice"`  // USD
}

// IsNative reports whether the market's underlying is the chain's native asset.
func (m TokenMarket) IsNative() bool {
	return m.UnderlyingAddress == (common.Address{})
}

// ChainClient is the read surface the enricher needs from the chain.
type ChainClient interface {
	Markets(ctx context.Context, market common.Address) (chain.MarketInfo, error)
	ExchangeRateStored(ctx context.Context, market common.Address) (*big.Int, error)
	Price(ctx context.Context, symbol string) (*big.Int, error)
}
