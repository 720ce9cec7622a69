package market

import (
	"github.com/ethereum/go-ethereum/common"
)

// Table is the fixed set of known markets. Entries keep declaration order.
// Keys never change after construction.
type Table struct {
	order   []common.Address
	markets map[common.Address]*TokenMarket
}

// NewTable builds a table from entries. Later duplicates of a market address are ignored.
func NewTable(entries ...TokenMarket) *Table {
	t := &Table{
		order:   make([]common.Address, 0, len(entries)),
		markets: make(map[common.Address]*TokenMarket, len(entries)),
	}
	for _, e := range entries {
		if _, dup := t.markets[e.MarketAddress]; dup {
			continue
		}
		m := e
		t.order = append(t.order, e.MarketAddress)
		t.markets[e.MarketAddress] = &m
	}
	return t
}

// Len returns the number of markets.
func (t *Table) Len() int {
	return len(t.order)
}

// DefaultTable returns the Compound v2 mainnet markets.
func DefaultTable() *Table {
	return NewTable(
		entry("0x6c8c6b02e7b2be14d4fa6022dfd6d75921d90e4e", "0x0d8775f648430679a709e98d2b0cb6250d2887ef", "BAT", 18),
		entry("0x5d3a536e4d6dbd6114cc1ead35777bab948e3643", "0x6b175474e89094c44da98b954eedeac495271d0f", "DAI", 18),
		entry("0x4ddc2d193948926d02f9b1fe9e1daa0718270ed5", "", "ETH", 18),
		entry("0x158079ee67fce2f58472a96584a73c7ab9ac95c1", "0x1985365e9f78359a9b6ad760e32412f4a445e862", "REP", 18),
		entry("0xf5dce57282a584d2746faf1593d3121fcac444dc", "0x89d24a6b4ccb1b6faa2625fe562bdd9a23260359", "SAI", 18),
		entry("0x39aa39c021dfbae8fac545936693ac917d5e7563", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", "USDC", 6),
		entry("0xf650c3d88d12db855b8bf7d11be6c55a4e07dcc9", "0xdac17f958d2ee523a2206206994597c13d831ec7", "USDT", 6),
		entry("0xc11b1268c1a384e55c48c2391d8d480264a3a7f4", "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", "BTC", 8),
		entry("0xb3319f5d18bc0d84dd1b4825dcde5d5f7266d407", "0xe41d2489571d322189246dafa5ebde1f4699f498", "ZRX", 18),
	)
}

func entry(market, underlying, symbol string, decimals int32) TokenMarket {
	m := TokenMarket{
		MarketAddress:      common.HexToAddress(market),
		UnderlyingSymbol:   symbol,
		UnderlyingDecimals: decimals,
	}
	if underlying != "" {
		m.UnderlyingAddress = common.HexToAddress(underlying)
	}
	return m
}
