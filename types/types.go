package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Token identifies a fungible asset on a specific chain
type Token struct {
	ChainID  uint64
	Address  common.Address
	Symbol   string
	Decimals uint8
}

// Equal reports whether two tokens identify the same asset
func (t Token) Equal(other Token) bool {
	return t.ChainID == other.ChainID && t.Address == other.Address
}

// Amount is an integer value in the token's smallest unit.
// Never negative; crossing tokens requires a swap, not arithmetic.
type Amount struct {
	Token Token
	Value *big.Int
}

// NewAmount creates an Amount, copying the value
func NewAmount(token Token, value *big.Int) Amount {
	if value == nil {
		value = big.NewInt(0)
	}
	return Amount{
		Token: token,
		Value: new(big.Int).Set(value),
	}
}

// Sub returns a.Value - other.Value as a signed integer.
// Both amounts must share the same token.
func (a Amount) Sub(other Amount) (*big.Int, error) {
	if !a.Token.Equal(other.Token) {
		return nil, fmt.Errorf("amount token mismatch: %s vs %s", a.Token.Symbol, other.Token.Symbol)
	}
	return new(big.Int).Sub(a.Value, other.Value), nil
}

// Format renders the amount at the token's decimal scale, e.g. "104.5 USDC"
func (a Amount) Format() string {
	return fmt.Sprintf("%s %s", FormatUnits(a.Value, a.Token.Decimals), a.Token.Symbol)
}

// FormatUnits renders an integer value at the given decimal scale.
// Pure integer arithmetic; trailing fractional zeros are trimmed.
func FormatUnits(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Abs(value)
	if value.Sign() < 0 {
		sign = "-"
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))

	if frac.Sign() == 0 {
		return sign + whole.String()
	}

	fracStr := frac.String()
	if pad := int(decimals) - len(fracStr); pad > 0 {
		fracStr = strings.Repeat("0", pad) + fracStr
	}
	fracStr = strings.TrimRight(fracStr, "0")
	return fmt.Sprintf("%s%s.%s", sign, whole.String(), fracStr)
}

// FlashLoanQuote is a flash-loan venue's answer for a requested borrow
type FlashLoanQuote struct {
	Borrowed Amount
	Fee      Amount
}

// SwapQuote is a swap venue's estimated output for a given input
type SwapQuote struct {
	Output Amount
}

// ArbitrageResult captures one full cycle evaluation
type ArbitrageResult struct {
	Borrowed     Amount
	Intermediate Amount
	Final        Amount
	Profit       *big.Int
	Profitable   bool
}

// PlanStep is one leg of an instruction plan
type PlanStep struct {
	Venue        string
	VenueAddress common.Address
	Input        Amount
	Output       Amount
}

// InstructionPlan is the ordered set of steps for a profitable cycle:
// flash loan, swap on venue A, swap on venue B
type InstructionPlan struct {
	Steps []PlanStep
}
