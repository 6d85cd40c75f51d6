package plan

import (
	"math/big"
	"testing"

	"github.com/michaelpento.lv/cyclearb/evaluator"
	"github.com/michaelpento.lv/cyclearb/types"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	usdc = types.Token{
		ChainID:  1,
		Address:  common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		Symbol:   "USDC",
		Decimals: 6,
	}
	weth = types.Token{
		ChainID:  1,
		Address:  common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		Symbol:   "WETH",
		Decimals: 18,
	}
)

func testRoute() evaluator.Route {
	return evaluator.Route{
		BorrowToken:       usdc,
		IntermediateToken: weth,
		BorrowAmount:      big.NewInt(100_000000),
		FlashLoanPool:     common.HexToAddress("0x7d2768dE32b0b80b7a3454c06BdAc94A69DDc7A9"),
		VenueA:            common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc"),
		VenueB:            common.HexToAddress("0x397FF1542f962076d0BFE58eA045FfA2d347ACa0"),
		VenueAName:        "UniswapV2",
		VenueBName:        "SushiSwap",
	}
}

func profitableResult() *types.ArbitrageResult {
	return &types.ArbitrageResult{
		Borrowed:     types.NewAmount(usdc, big.NewInt(100_000000)),
		Intermediate: types.NewAmount(weth, big.NewInt(40_000000000000000)),
		Final:        types.NewAmount(usdc, big.NewInt(104_000000)),
		Profit:       big.NewInt(4_000000),
		Profitable:   true,
	}
}

func TestGenerateProfitablePlan(t *testing.T) {
	route := testRoute()

	instructionPlan, err := Generate(profitableResult(), route)
	require.NoError(t, err)
	require.NotNil(t, instructionPlan)
	require.Len(t, instructionPlan.Steps, 3)

	// ordered flash loan -> venue A -> venue B
	assert.Equal(t, "flash loan", instructionPlan.Steps[0].Venue)
	assert.Equal(t, route.FlashLoanPool, instructionPlan.Steps[0].VenueAddress)
	assert.Equal(t, "UniswapV2", instructionPlan.Steps[1].Venue)
	assert.Equal(t, route.VenueA, instructionPlan.Steps[1].VenueAddress)
	assert.Equal(t, "SushiSwap", instructionPlan.Steps[2].Venue)
	assert.Equal(t, route.VenueB, instructionPlan.Steps[2].VenueAddress)

	// legs chain: each step's input is the previous step's output
	assert.Equal(t, instructionPlan.Steps[0].Output, instructionPlan.Steps[1].Input)
	assert.Equal(t, instructionPlan.Steps[1].Output, instructionPlan.Steps[2].Input)
	assert.Equal(t, big.NewInt(104_000000), instructionPlan.Steps[2].Output.Value)
}

func TestGenerateNoPlanWhenUnprofitable(t *testing.T) {
	result := profitableResult()
	result.Profit = big.NewInt(-1_000000)
	result.Profitable = false
	result.Final = types.NewAmount(usdc, big.NewInt(99_000000))

	instructionPlan, err := Generate(result, testRoute())
	require.NoError(t, err)
	assert.Nil(t, instructionPlan)
}

func TestGenerateRejectsTokenMismatch(t *testing.T) {
	result := profitableResult()
	result.Final = types.NewAmount(weth, big.NewInt(104_000000))

	instructionPlan, err := Generate(result, testRoute())
	assert.Nil(t, instructionPlan)

	var invalid *InvalidResultError
	require.ErrorAs(t, err, &invalid)
}

func TestGenerateRejectsNilResult(t *testing.T) {
	instructionPlan, err := Generate(nil, testRoute())
	assert.Nil(t, instructionPlan)

	var invalid *InvalidResultError
	require.ErrorAs(t, err, &invalid)
}

func TestGenerateRejectsNonPositiveBorrow(t *testing.T) {
	result := profitableResult()
	result.Borrowed = types.NewAmount(usdc, big.NewInt(0))

	instructionPlan, err := Generate(result, testRoute())
	assert.Nil(t, instructionPlan)

	var invalid *InvalidResultError
	require.ErrorAs(t, err, &invalid)
}
