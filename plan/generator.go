// Package plan turns a profitable evaluation into an ordered
// instruction plan. Pure; no I/O.
package plan

import (
	"fmt"

	"github.com/michaelpento.lv/cyclearb/evaluator"
	"github.com/michaelpento.lv/cyclearb/types"
)

// InvalidResultError reports a malformed ArbitrageResult handed to the
// generator. It indicates a programming error upstream, not an
// environmental failure.
type InvalidResultError struct {
	Reason string
}

func (e *InvalidResultError) Error() string {
	return fmt.Sprintf("invalid arbitrage result: %s", e.Reason)
}

// Generate produces the 3-step instruction plan for a profitable
// result, ordered flash loan -> venue A -> venue B. Returns nil when
// the result is not profitable.
func Generate(result *types.ArbitrageResult, route evaluator.Route) (*types.InstructionPlan, error) {
	if result == nil {
		return nil, &InvalidResultError{Reason: "result is nil"}
	}
	if !result.Profitable {
		return nil, nil
	}

	if !result.Final.Token.Equal(result.Borrowed.Token) {
		return nil, &InvalidResultError{Reason: "cycle does not round-trip to the borrow asset"}
	}
	if result.Borrowed.Value == nil || result.Borrowed.Value.Sign() <= 0 {
		return nil, &InvalidResultError{Reason: "borrowed amount must be positive"}
	}
	if result.Intermediate.Value == nil || result.Intermediate.Value.Sign() < 0 ||
		result.Final.Value == nil || result.Final.Value.Sign() < 0 {
		return nil, &InvalidResultError{Reason: "amounts must not be negative"}
	}

	return &types.InstructionPlan{
		Steps: []types.PlanStep{
			{
				Venue:        "flash loan",
				VenueAddress: route.FlashLoanPool,
				Input:        result.Borrowed,
				Output:       result.Borrowed,
			},
			{
				Venue:        route.VenueAName,
				VenueAddress: route.VenueA,
				Input:        result.Borrowed,
				Output:       result.Intermediate,
			},
			{
				Venue:        route.VenueBName,
				VenueAddress: route.VenueB,
				Input:        result.Intermediate,
				Output:       result.Final,
			},
		},
	}, nil
}
