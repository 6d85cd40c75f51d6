// Package evaluator runs one flash-loan arbitrage cycle evaluation:
// borrow, swap to the intermediate asset on venue A, swap back on
// venue B, and decide profitability. It never executes anything.
package evaluator

import (
	"context"
	"math/big"
	"time"

	"github.com/michaelpento.lv/cyclearb/quote"
	"github.com/michaelpento.lv/cyclearb/types"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

// Route is the immutable description of the cycle under evaluation
type Route struct {
	BorrowToken       types.Token
	IntermediateToken types.Token
	BorrowAmount      *big.Int
	FlashLoanPool     common.Address
	VenueA            common.Address
	VenueB            common.Address
	VenueAName        string
	VenueBName        string
}

// Option configures an Evaluator
type Option func(*Evaluator)

// WithQuoteTimeout bounds each of the three quotation calls
func WithQuoteTimeout(timeout time.Duration) Option {
	return func(e *Evaluator) {
		e.quoteTimeout = timeout
	}
}

// Evaluator chains the three quotation calls for one route. Evaluations
// are independent; the evaluator holds no state between them.
type Evaluator struct {
	route        Route
	provider     quote.Provider
	logger       *zap.Logger
	quoteTimeout time.Duration
}

// New creates an evaluator for a route
func New(route Route, provider quote.Provider, logger *zap.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		route:        route,
		provider:     provider,
		logger:       logger,
		quoteTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs the three-step cycle and computes the profit decision.
// Each step's input is defined exclusively by the previous step's
// output; any step failure aborts the evaluation with a
// *quote.UnavailableError naming the step. No retries.
func (e *Evaluator) Evaluate(ctx context.Context) (*types.ArbitrageResult, error) {
	// Step 1: flash loan
	loan, err := e.flashLoan(ctx)
	if err != nil {
		return nil, err
	}

	// Step 2: borrow asset -> intermediate asset on venue A
	swapA, err := e.swap(ctx, quote.StepSwapA, e.route.BorrowToken, e.route.IntermediateToken,
		loan.Borrowed.Value, e.route.VenueA)
	if err != nil {
		return nil, err
	}

	// Step 3: intermediate asset -> borrow asset on venue B
	swapB, err := e.swap(ctx, quote.StepSwapB, e.route.IntermediateToken, e.route.BorrowToken,
		swapA.Output.Value, e.route.VenueB)
	if err != nil {
		return nil, err
	}

	// The cycle rounds back to the borrow asset; the only arithmetic
	// the evaluator performs is the final subtraction, at the borrow
	// token's fixed scale. Repayment includes the flash-loan fee.
	profit, err := swapB.Output.Sub(loan.Borrowed)
	if err != nil {
		return nil, err
	}
	// A provider may leave Fee unset to mean a free flash loan
	if loan.Fee.Value != nil {
		profit.Sub(profit, loan.Fee.Value)
	}

	result := &types.ArbitrageResult{
		Borrowed:     loan.Borrowed,
		Intermediate: swapA.Output,
		Final:        swapB.Output,
		Profit:       profit,
		Profitable:   profit.Sign() > 0,
	}

	e.logger.Info("cycle evaluated",
		zap.String("borrowed", result.Borrowed.Format()),
		zap.String("intermediate", result.Intermediate.Format()),
		zap.String("final", result.Final.Format()),
		zap.String("profit", types.FormatUnits(result.Profit, result.Borrowed.Token.Decimals)),
		zap.Bool("profitable", result.Profitable))

	return result, nil
}

func (e *Evaluator) flashLoan(ctx context.Context) (*types.FlashLoanQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, e.quoteTimeout)
	defer cancel()

	loan, err := e.provider.FlashLoanQuote(ctx, e.route.BorrowToken, e.route.BorrowAmount)
	if err != nil {
		e.logger.Warn("flash loan quote failed", zap.Error(err))
		return nil, quote.Unavailable(quote.StepFlashLoan, e.route.FlashLoanPool, err)
	}
	return loan, nil
}

func (e *Evaluator) swap(ctx context.Context, step string, in, out types.Token, amount *big.Int, venue common.Address) (*types.SwapQuote, error) {
	ctx, cancel := context.WithTimeout(ctx, e.quoteTimeout)
	defer cancel()

	swapQuote, err := e.provider.SwapQuote(ctx, in, out, amount, venue)
	if err != nil {
		e.logger.Warn("swap quote failed",
			zap.String("step", step),
			zap.String("venue", venue.Hex()),
			zap.Error(err))
		return nil, quote.Unavailable(step, venue, err)
	}
	return swapQuote, nil
}
