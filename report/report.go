// Package report renders evaluation results for a human operator. The
// structured values stay authoritative; this is a thin text layer.
package report

import (
	"fmt"
	"io"

	"github.com/michaelpento.lv/cyclearb/types"
)

// Render writes a decimal-correct report of the evaluation and, when
// present, the instruction plan
func Render(w io.Writer, result *types.ArbitrageResult, instructionPlan *types.InstructionPlan) error {
	if result == nil {
		return fmt.Errorf("nil result")
	}

	fmt.Fprintf(w, "Borrowed:     %s\n", result.Borrowed.Format())
	fmt.Fprintf(w, "Intermediate: %s\n", result.Intermediate.Format())
	fmt.Fprintf(w, "Final:        %s\n", result.Final.Format())
	fmt.Fprintf(w, "Profit:       %s %s\n",
		types.FormatUnits(result.Profit, result.Borrowed.Token.Decimals),
		result.Borrowed.Token.Symbol)

	if !result.Profitable {
		fmt.Fprintln(w, "Not profitable; no instructions generated.")
		return nil
	}

	if instructionPlan == nil {
		return fmt.Errorf("profitable result without a plan")
	}

	fmt.Fprintln(w, "Instruction plan:")
	for i, step := range instructionPlan.Steps {
		fmt.Fprintf(w, "  %d. %s (%s): %s -> %s\n",
			i+1, step.Venue, step.VenueAddress.Hex(),
			step.Input.Format(), step.Output.Format())
	}

	return nil
}
