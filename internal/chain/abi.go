package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const comptrollerABIJSON = `[{
	"name": "markets",
	"type": "function",
	"stateMutability": "view",
	"inputs": [{"name": "", "type": "address"}],
	"outputs": [
		{"name": "isListed", "type": "bool"},
		{"name": "collateralFactorMantissa", "type": "uint256"},
		{"name": "isComped", "type": "bool"}
	]
}]`

const cTokenABIJSON = `[{
	"name": "exchangeRateStored",
	"type": "function",
	"stateMutability": "view",
	"inputs": [],
	"outputs": [{"name": "", "type": "uint256"}]
}]`

const oracleABIJSON = `[{
	"name": "price",
	"type": "function",
	"stateMutability": "view",
	"inputs": [{"name": "symbol", "type": "string"}],
	"outputs": [{"name": "", "type": "uint256"}]
}]`

var (
	// ComptrollerABI is the subset of the Compound comptroller used here.
	ComptrollerABI = mustParseABI(comptrollerABIJSON)

	// CTokenABI is the subset of the cToken interface used here.
	CTokenABI = mustParseABI(cTokenABIJSON)

	// OracleABI is the subset of the open price feed used here.
	OracleABI = mustParseABI(oracleABIJSON)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic("chain: invalid ABI: " + err.Error())
	}
	return parsed
}
