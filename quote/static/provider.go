// Package static implements a deterministic quotation provider backed by
// fixture tables. It exists for tests and dry runs; it is only ever used
// when selected explicitly in configuration, never as a fallback.
package static

import (
	"context"
	"fmt"
	"math/big"

	"github.com/michaelpento.lv/cyclearb/types"

	"github.com/ethereum/go-ethereum/common"
)

// Provider returns pre-seeded quotes. The zero liquidity tables refuse
// everything; seed them with SetFlashLoan and SetSwap.
type Provider struct {
	flashLoanFeeBps uint16
	flashLoanFunds  map[common.Address]*big.Int // token -> available liquidity
	swapOutputs     map[swapKey]*big.Int
	failedVenues    map[common.Address]bool
	failFlashLoan   bool
}

type swapKey struct {
	venue common.Address
	in    common.Address
	out   common.Address
}

// NewProvider creates an empty deterministic provider
func NewProvider(flashLoanFeeBps uint16) *Provider {
	return &Provider{
		flashLoanFeeBps: flashLoanFeeBps,
		flashLoanFunds:  make(map[common.Address]*big.Int),
		swapOutputs:     make(map[swapKey]*big.Int),
		failedVenues:    make(map[common.Address]bool),
	}
}

// Fixtures describes a full route's worth of deterministic quotes
type Fixtures struct {
	BorrowToken        types.Token
	IntermediateToken  types.Token
	FlashLoanLiquidity *big.Int
	VenueA             common.Address
	VenueAOutput       *big.Int // output of borrow -> intermediate at venue A
	VenueB             common.Address
	VenueBOutput       *big.Int // output of intermediate -> borrow at venue B
}

// NewProviderWithFixtures creates a provider seeded for one cycle, the
// form used when the static provider is selected from configuration
func NewProviderWithFixtures(flashLoanFeeBps uint16, f Fixtures) *Provider {
	p := NewProvider(flashLoanFeeBps)
	p.SetFlashLoan(f.BorrowToken, f.FlashLoanLiquidity)
	p.SetSwap(f.VenueA, f.BorrowToken, f.IntermediateToken, f.VenueAOutput)
	p.SetSwap(f.VenueB, f.IntermediateToken, f.BorrowToken, f.VenueBOutput)
	return p
}

// SetFlashLoan seeds available flash-loan liquidity for a token
func (p *Provider) SetFlashLoan(token types.Token, liquidity *big.Int) {
	p.flashLoanFunds[token.Address] = new(big.Int).Set(liquidity)
}

// SetSwap seeds the output a venue returns for swapping in -> out,
// regardless of input size
func (p *Provider) SetSwap(venue common.Address, in, out types.Token, output *big.Int) {
	p.swapOutputs[swapKey{venue: venue, in: in.Address, out: out.Address}] = new(big.Int).Set(output)
}

// FailVenue makes every swap quote against the venue fail
func (p *Provider) FailVenue(venue common.Address) {
	p.failedVenues[venue] = true
}

// FailFlashLoan makes the flash-loan quote fail
func (p *Provider) FailFlashLoan() {
	p.failFlashLoan = true
}

func (p *Provider) FlashLoanQuote(ctx context.Context, token types.Token, amount *big.Int) (*types.FlashLoanQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.failFlashLoan {
		return nil, fmt.Errorf("injected flash-loan failure")
	}

	liquidity, ok := p.flashLoanFunds[token.Address]
	if !ok || liquidity.Cmp(amount) < 0 {
		return nil, fmt.Errorf("insufficient flash-loan liquidity for %s", token.Symbol)
	}

	fee := new(big.Int).Mul(amount, big.NewInt(int64(p.flashLoanFeeBps)))
	fee.Div(fee, big.NewInt(10000))

	return &types.FlashLoanQuote{
		Borrowed: types.NewAmount(token, amount),
		Fee:      types.NewAmount(token, fee),
	}, nil
}

func (p *Provider) SwapQuote(ctx context.Context, in, out types.Token, amount *big.Int, venue common.Address) (*types.SwapQuote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.failedVenues[venue] {
		return nil, fmt.Errorf("injected venue failure")
	}

	output, ok := p.swapOutputs[swapKey{venue: venue, in: in.Address, out: out.Address}]
	if !ok {
		return nil, fmt.Errorf("no liquidity for %s->%s at venue", in.Symbol, out.Symbol)
	}

	return &types.SwapQuote{Output: types.NewAmount(out, output)}, nil
}

func (p *Provider) String() string {
	return "static"
}
