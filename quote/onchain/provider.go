// Package onchain implements the production quotation provider. Swap
// quotes are priced from live pair reserves; flash-loan quotes are gated
// on the lending pool's available liquidity. No trade is ever executed.
package onchain

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/michaelpento.lv/cyclearb/types"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Lending pool ABI for flash-loan liquidity queries (Aave V2 style)
const poolABIJson = `[{
	"inputs": [{"internalType": "address", "name": "asset", "type": "address"}],
	"name": "getReserveData",
	"outputs": [{"internalType": "uint256", "name": "availableLiquidity", "type": "uint256"}],
	"stateMutability": "view",
	"type": "function"
}]`

const pairCacheSize = 64

// Config tunes the onchain provider
type Config struct {
	FlashLoanPool   common.Address
	FlashLoanFeeBps uint16
	RequestsPerSec  float64
	Burst           int
}

// Provider quotes against live chain state through a single RPC client
type Provider struct {
	caller  bind.ContractCaller
	pool    *bind.BoundContract
	config  Config
	limiter *rate.Limiter
	pairs   *lru.Cache // venue address -> *Pair
	logger  *zap.Logger
	metrics struct {
		quotes  prometheus.Counter
		errors  prometheus.Counter
		latency prometheus.Histogram
	}
}

// NewProvider creates the production provider. The caller is typically
// an *ethclient.Client; quoting only needs read access to chain state.
func NewProvider(caller bind.ContractCaller, cfg Config, logger *zap.Logger) (*Provider, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	poolABI, err := abi.JSON(strings.NewReader(poolABIJson))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool ABI: %w", err)
	}

	pairs, err := lru.New(pairCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create pair cache: %w", err)
	}

	p := &Provider{
		caller:  caller,
		pool:    bind.NewBoundContract(cfg.FlashLoanPool, poolABI, caller, nil, nil),
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.Burst),
		pairs:   pairs,
		logger:  logger,
	}

	p.metrics.quotes = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cyclearb_onchain_quotes_total",
		Help: "Total number of on-chain quotation calls",
	})
	p.metrics.errors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cyclearb_onchain_quote_errors_total",
		Help: "Total number of failed on-chain quotation calls",
	})
	p.metrics.latency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cyclearb_onchain_quote_latency_seconds",
		Help:    "Latency of on-chain quotation calls",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
	})

	return p, nil
}

// FlashLoanQuote checks that the lending pool can cover the requested
// borrow and prices the flash-loan fee
func (p *Provider) FlashLoanQuote(ctx context.Context, token types.Token, amount *big.Int) (*types.FlashLoanQuote, error) {
	start := time.Now()
	defer func() { p.metrics.latency.Observe(time.Since(start).Seconds()) }()
	p.metrics.quotes.Inc()

	if amount == nil || amount.Sign() <= 0 {
		p.metrics.errors.Inc()
		return nil, fmt.Errorf("invalid borrow amount")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		p.metrics.errors.Inc()
		return nil, err
	}

	var out []interface{}
	if err := p.pool.Call(&bind.CallOpts{Context: ctx}, &out, "getReserveData", token.Address); err != nil {
		p.metrics.errors.Inc()
		return nil, fmt.Errorf("failed to query pool reserve data: %w", err)
	}

	liquidity, ok := out[0].(*big.Int)
	if !ok {
		p.metrics.errors.Inc()
		return nil, fmt.Errorf("failed to parse available liquidity")
	}

	if liquidity.Cmp(amount) < 0 {
		p.metrics.errors.Inc()
		return nil, fmt.Errorf("insufficient pool liquidity: have %s, need %s", liquidity, amount)
	}

	fee := new(big.Int).Mul(amount, big.NewInt(int64(p.config.FlashLoanFeeBps)))
	fee.Div(fee, big.NewInt(10000))

	p.logger.Debug("flash loan quoted",
		zap.String("token", token.Symbol),
		zap.String("amount", amount.String()),
		zap.String("fee", fee.String()))

	return &types.FlashLoanQuote{
		Borrowed: types.NewAmount(token, amount),
		Fee:      types.NewAmount(token, fee),
	}, nil
}

// SwapQuote prices a swap of amount in -> out at the given venue from
// the pair's current reserves. The venue's token pair is verified
// against the requested tokens before quoting.
func (p *Provider) SwapQuote(ctx context.Context, in, out types.Token, amount *big.Int, venue common.Address) (*types.SwapQuote, error) {
	start := time.Now()
	defer func() { p.metrics.latency.Observe(time.Since(start).Seconds()) }()
	p.metrics.quotes.Inc()

	if amount == nil || amount.Sign() <= 0 {
		p.metrics.errors.Inc()
		return nil, fmt.Errorf("invalid swap input amount")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		p.metrics.errors.Inc()
		return nil, err
	}

	pair, err := p.getPair(venue)
	if err != nil {
		p.metrics.errors.Inc()
		return nil, err
	}

	reserveIn, reserveOut, err := p.orientedReserves(ctx, pair, in, out)
	if err != nil {
		p.metrics.errors.Inc()
		return nil, err
	}

	output := GetAmountOut(amount, reserveIn, reserveOut)
	if output.Sign() <= 0 {
		p.metrics.errors.Inc()
		return nil, fmt.Errorf("venue cannot price swap: empty output for %s->%s", in.Symbol, out.Symbol)
	}

	p.logger.Debug("swap quoted",
		zap.String("venue", venue.Hex()),
		zap.String("in", in.Symbol),
		zap.String("out", out.Symbol),
		zap.String("amount_in", amount.String()),
		zap.String("amount_out", output.String()))

	return &types.SwapQuote{Output: types.NewAmount(out, output)}, nil
}

func (p *Provider) String() string {
	return "onchain"
}

// getPair returns a cached pair wrapper for the venue
func (p *Provider) getPair(venue common.Address) (*Pair, error) {
	if cached, ok := p.pairs.Get(venue); ok {
		return cached.(*Pair), nil
	}

	pair, err := NewPair(venue, p.caller)
	if err != nil {
		return nil, fmt.Errorf("failed to create pair contract: %w", err)
	}

	p.pairs.Add(venue, pair)
	return pair, nil
}

// orientedReserves reads the pair reserves and orders them as
// (reserveIn, reserveOut) for the requested direction, verifying that
// the venue actually holds the requested token pair
func (p *Provider) orientedReserves(ctx context.Context, pair *Pair, in, out types.Token) (*big.Int, *big.Int, error) {
	token0, err := pair.Token0(ctx)
	if err != nil {
		return nil, nil, err
	}
	token1, err := pair.Token1(ctx)
	if err != nil {
		return nil, nil, err
	}

	reserve0, reserve1, err := pair.Reserves(ctx)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case token0 == in.Address && token1 == out.Address:
		return reserve0, reserve1, nil
	case token0 == out.Address && token1 == in.Address:
		return reserve1, reserve0, nil
	default:
		return nil, nil, fmt.Errorf("venue %s does not trade %s/%s", pair.Address().Hex(), in.Symbol, out.Symbol)
	}
}
