// Package market holds the fixed table of Compound markets and enriches it
// with live prices and collateral factors.
//
// Conventions:
//   - Exchange rates are raw mantissas scaled by 10^(18 + underlyingDecimals - 8)
//   - Collateral factors are 1e18 mantissas, stored as plain fractions
//   - Oracle prices are 6-decimal fixed point, stored as plain USD values
//
// All arithmetic uses shopspring/decimal so no precision is lost at 18 decimals.
package market
