package onchain

import (
	"bytes"
	"context"
	"math/big"
	"strings"
	"testing"

	"github.com/michaelpento.lv/cyclearb/types"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

var (
	testPool  = common.HexToAddress("0x7d2768dE32b0b80b7a3454c06BdAc94A69DDc7A9")
	testVenue = common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc")

	testUSDC = types.Token{
		ChainID:  1,
		Address:  common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		Symbol:   "USDC",
		Decimals: 6,
	}
	testWETH = types.Token{
		ChainID:  1,
		Address:  common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		Symbol:   "WETH",
		Decimals: 18,
	}
)

// mockCaller serves pool and pair view calls from in-memory state
type mockCaller struct {
	pairABI abi.ABI
	poolABI abi.ABI

	token0    common.Address
	token1    common.Address
	reserve0  *big.Int
	reserve1  *big.Int
	liquidity map[common.Address]*big.Int
}

func newMockCaller(t *testing.T) *mockCaller {
	t.Helper()

	pairABI, err := abi.JSON(strings.NewReader(pairABIJson))
	require.NoError(t, err)
	poolABI, err := abi.JSON(strings.NewReader(poolABIJson))
	require.NoError(t, err)

	return &mockCaller{
		pairABI:   pairABI,
		poolABI:   poolABI,
		liquidity: make(map[common.Address]*big.Int),
	}
}

func (m *mockCaller) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	return []byte{0x01}, nil
}

func (m *mockCaller) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	selector := call.Data[:4]

	switch {
	case bytes.Equal(selector, m.poolABI.Methods["getReserveData"].ID):
		asset := common.BytesToAddress(call.Data[4:36])
		liquidity, ok := m.liquidity[asset]
		if !ok {
			liquidity = big.NewInt(0)
		}
		return liquidity.FillBytes(make([]byte, 32)), nil
	case bytes.Equal(selector, m.pairABI.Methods["token0"].ID):
		return m.pairABI.Methods["token0"].Outputs.Pack(m.token0)
	case bytes.Equal(selector, m.pairABI.Methods["token1"].ID):
		return m.pairABI.Methods["token1"].Outputs.Pack(m.token1)
	case bytes.Equal(selector, m.pairABI.Methods["getReserves"].ID):
		return m.pairABI.Methods["getReserves"].Outputs.Pack(m.reserve0, m.reserve1, uint32(0))
	}

	return nil, ethereum.NotFound
}

func newTestProvider(t *testing.T, caller *mockCaller, feeBps uint16) *Provider {
	t.Helper()

	p, err := NewProvider(caller, Config{
		FlashLoanPool:   testPool,
		FlashLoanFeeBps: feeBps,
		RequestsPerSec:  100,
		Burst:           100,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return p
}

func TestNewProviderRequiresCaller(t *testing.T) {
	_, err := NewProvider(nil, Config{}, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestFlashLoanQuote(t *testing.T) {
	t.Run("sufficient liquidity prices fee", func(t *testing.T) {
		caller := newMockCaller(t)
		caller.liquidity[testUSDC.Address] = big.NewInt(1_000_000_000000)

		p := newTestProvider(t, caller, 9)

		quote, err := p.FlashLoanQuote(context.Background(), testUSDC, big.NewInt(100_000000))
		require.NoError(t, err)

		assert.Equal(t, big.NewInt(100_000000), quote.Borrowed.Value)
		assert.Equal(t, big.NewInt(90000), quote.Fee.Value) // 100 USDC * 9bps
		assert.True(t, quote.Fee.Token.Equal(testUSDC))
	})

	t.Run("insufficient liquidity is rejected", func(t *testing.T) {
		caller := newMockCaller(t)
		caller.liquidity[testUSDC.Address] = big.NewInt(50_000000)

		p := newTestProvider(t, caller, 9)

		_, err := p.FlashLoanQuote(context.Background(), testUSDC, big.NewInt(100_000000))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "insufficient pool liquidity")
	})

	t.Run("zero fee pool", func(t *testing.T) {
		caller := newMockCaller(t)
		caller.liquidity[testUSDC.Address] = big.NewInt(1_000_000_000000)

		p := newTestProvider(t, caller, 0)

		quote, err := p.FlashLoanQuote(context.Background(), testUSDC, big.NewInt(100_000000))
		require.NoError(t, err)
		assert.Equal(t, 0, quote.Fee.Value.Sign())
	})

	t.Run("invalid amounts are rejected", func(t *testing.T) {
		caller := newMockCaller(t)
		p := newTestProvider(t, caller, 9)

		for _, amount := range []*big.Int{nil, big.NewInt(0), big.NewInt(-1)} {
			_, err := p.FlashLoanQuote(context.Background(), testUSDC, amount)
			assert.Error(t, err)
		}
	})
}

func TestSwapQuote(t *testing.T) {
	reserveUSDC := big.NewInt(10_000_000_000000)                        // 10M USDC
	reserveWETH := new(big.Int).Mul(big.NewInt(4000), big.NewInt(1e18)) // 4000 WETH
	amountIn := big.NewInt(100_000000)                                  // 100 USDC
	want := GetAmountOut(amountIn, reserveUSDC, reserveWETH)

	t.Run("input token is token0", func(t *testing.T) {
		caller := newMockCaller(t)
		caller.token0 = testUSDC.Address
		caller.token1 = testWETH.Address
		caller.reserve0 = reserveUSDC
		caller.reserve1 = reserveWETH

		p := newTestProvider(t, caller, 9)

		quote, err := p.SwapQuote(context.Background(), testUSDC, testWETH, amountIn, testVenue)
		require.NoError(t, err)
		assert.Equal(t, want, quote.Output.Value)
		assert.True(t, quote.Output.Token.Equal(testWETH))
	})

	t.Run("input token is token1", func(t *testing.T) {
		caller := newMockCaller(t)
		caller.token0 = testWETH.Address
		caller.token1 = testUSDC.Address
		caller.reserve0 = reserveWETH
		caller.reserve1 = reserveUSDC

		p := newTestProvider(t, caller, 9)

		quote, err := p.SwapQuote(context.Background(), testUSDC, testWETH, amountIn, testVenue)
		require.NoError(t, err)
		assert.Equal(t, want, quote.Output.Value)
	})

	t.Run("venue trading a different pair is rejected", func(t *testing.T) {
		caller := newMockCaller(t)
		caller.token0 = testWETH.Address
		caller.token1 = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F") // DAI
		caller.reserve0 = reserveWETH
		caller.reserve1 = reserveUSDC

		p := newTestProvider(t, caller, 9)

		_, err := p.SwapQuote(context.Background(), testUSDC, testWETH, amountIn, testVenue)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "does not trade USDC/WETH")
	})

	t.Run("empty reserves cannot be priced", func(t *testing.T) {
		caller := newMockCaller(t)
		caller.token0 = testUSDC.Address
		caller.token1 = testWETH.Address
		caller.reserve0 = big.NewInt(0)
		caller.reserve1 = big.NewInt(0)

		p := newTestProvider(t, caller, 9)

		_, err := p.SwapQuote(context.Background(), testUSDC, testWETH, amountIn, testVenue)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot price swap")
	})

	t.Run("invalid amounts are rejected", func(t *testing.T) {
		caller := newMockCaller(t)
		p := newTestProvider(t, caller, 9)

		for _, amount := range []*big.Int{nil, big.NewInt(0), big.NewInt(-5)} {
			_, err := p.SwapQuote(context.Background(), testUSDC, testWETH, amount, testVenue)
			assert.Error(t, err)
		}
	})
}
