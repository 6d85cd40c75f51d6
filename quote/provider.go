package quote

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/michaelpento.lv/cyclearb/types"

	"github.com/ethereum/go-ethereum/common"
)

// Evaluation step labels, in cycle order
const (
	StepFlashLoan = "flashloan"
	StepSwapA     = "swap_a"
	StepSwapB     = "swap_b"
)

// Provider prices the two operations a cycle evaluation needs.
// Implementations must never fabricate a quote: if the venue cannot
// price the requested amount the call fails with an error, which the
// caller surfaces as an UnavailableError naming the step.
type Provider interface {
	// FlashLoanQuote asks the flash-loan venue whether amount of token
	// can be borrowed and at what fee. A quote may leave Fee.Value nil
	// to mean a free loan.
	FlashLoanQuote(ctx context.Context, token types.Token, amount *big.Int) (*types.FlashLoanQuote, error)

	// SwapQuote estimates the output of swapping amount of in for out
	// at the given venue (pool/pair address)
	SwapQuote(ctx context.Context, in, out types.Token, amount *big.Int, venue common.Address) (*types.SwapQuote, error)

	// String names the provider for logs and reports
	String() string
}

// UnavailableError reports that a venue could not price a request.
// It aborts the evaluation it occurs in; it is never retried.
type UnavailableError struct {
	Step  string
	Venue common.Address
	Err   error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("quote unavailable at step %s (venue %s): %v", e.Step, e.Venue.Hex(), e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Unavailable wraps err as an UnavailableError for the given step and venue
func Unavailable(step string, venue common.Address, err error) *UnavailableError {
	return &UnavailableError{Step: step, Venue: venue, Err: err}
}

// IsUnavailable reports whether err is (or wraps) an UnavailableError
func IsUnavailable(err error) bool {
	var ue *UnavailableError
	return errors.As(err, &ue)
}
