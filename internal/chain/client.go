package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// MarketInfo is the comptroller's view of one market.
type MarketInfo struct {
	IsListed                 bool
	CollateralFactorMantissa *big.Int
	IsComped                 bool
}

// Client issues read-only contract calls.
type Client struct {
	caller      bind.ContractCaller
	comptroller *bind.BoundContract
	oracle      *bind.BoundContract
	logger      *slog.Logger

	callTimeout time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithCallTimeout bounds each contract call. Zero disables the bound.
func WithCallTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.callTimeout = d
	}
}

// NewClient creates a client bound to the given comptroller and price oracle.
// caller is usually an *ethclient.Client.
func NewClient(caller bind.ContractCaller, comptroller, oracle common.Address, opts ...ClientOption) *Client {
	c := &Client{
		caller: caller,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.comptroller = c.Contract(comptroller, ComptrollerABI)
	c.oracle = c.Contract(oracle, OracleABI)
	return c
}

// Contract instantiates a read-only binding for any contract.
func (c *Client) Contract(address common.Address, parsed abi.ABI) *bind.BoundContract {
	return bind.NewBoundContract(address, parsed, c.caller, nil, nil)
}

// Markets reads comptroller.markets(market).
func (c *Client) Markets(ctx context.Context, market common.Address) (MarketInfo, error) {
	out, err := c.call(ctx, c.comptroller, "markets", market)
	if err != nil {
		return MarketInfo{}, err
	}
	if len(out) != 3 {
		return MarketInfo{}, fmt.Errorf("markets: unexpected output length %d", len(out))
	}

	isListed, ok1 := out[0].(bool)
	mantissa, ok2 := out[1].(*big.Int)
	isComped, ok3 := out[2].(bool)
	if !ok1 || !ok2 || !ok3 {
		return MarketInfo{}, fmt.Errorf("markets: unexpected output types %T, %T, %T", out[0], out[1], out[2])
	}

	return MarketInfo{
		IsListed:                 isListed,
		CollateralFactorMantissa: mantissa,
		IsComped:                 isComped,
	}, nil
}

// ExchangeRateStored reads exchangeRateStored() on a cToken.
func (c *Client) ExchangeRateStored(ctx context.Context, market common.Address) (*big.Int, error) {
	out, err := c.call(ctx, c.Contract(market, CTokenABI), "exchangeRateStored")
	if err != nil {
		return nil, err
	}
	return singleUint(out, "exchangeRateStored")
}

// Price reads the oracle price for an underlying symbol (6 decimals).
func (c *Client) Price(ctx context.Context, symbol string) (*big.Int, error) {
	out, err := c.call(ctx, c.oracle, "price", symbol)
	if err != nil {
		return nil, err
	}
	return singleUint(out, "price")
}

func (c *Client) call(ctx context.Context, contract *bind.BoundContract, method string, params ...any) ([]any, error) {
	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	start := time.Now()
	var out []any
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, params...); err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	c.logger.Debug("contract call",
		"method", method,
		"duration", time.Since(start),
	)
	return out, nil
}

func singleUint(out []any, method string) (*big.Int, error) {
	if len(out) != 1 {
		return nil, fmt.Errorf("%s: unexpected output length %d", method, len(out))
	}
	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected output type %T", method, out[0])
	}
	return v, nil
}
