// Package chain reads Compound lending-market state from an Ethereum node.
//
// Three contracts are read:
//   - Comptroller: markets(address) for the collateral factor mantissa (1e18 scale)
//   - cToken: exchangeRateStored() on any market token
//   - Open price feed: price(symbol), quoted with 6 decimals
//
// All reads are eth_call against the latest block. Nothing is retried here.
package chain
