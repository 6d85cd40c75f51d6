package config

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"
	"time"

	"github.com/michaelpento.lv/cyclearb/types"

	"github.com/ethereum/go-ethereum/common"
)

// Provider selection values. The provider is chosen explicitly at
// startup; there is no fallback between them.
const (
	ProviderOnchain = "onchain"
	ProviderStatic  = "static"
)

// Config is the immutable run configuration. It is constructed once,
// validated, and passed by reference; nothing mutates it afterwards.
type Config struct {
	// Chain and network settings
	ChainID     uint64 `json:"chain_id"`
	RPCEndpoint string `json:"rpc_endpoint"`

	// Quotation provider selection
	Provider string `json:"provider"`

	// Token table, keyed by symbol
	Tokens map[string]TokenConfig `json:"tokens"`

	// The cycle to evaluate
	Route RouteConfig `json:"route"`

	// Flash-loan fee in basis points (1 = 0.01%)
	FlashLoanFeeBps uint16 `json:"flash_loan_fee_bps"`

	// Fixture quotes for the static provider. Required when the static
	// provider is selected, ignored otherwise.
	Static StaticConfig `json:"static"`

	// Network settings
	QuoteTimeout time.Duration   `json:"quote_timeout"`
	RPCRateLimit RateLimitConfig `json:"rpc_rate_limit"`
}

// TokenConfig describes one asset in the token table
type TokenConfig struct {
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
}

// RouteConfig names the borrow leg, the intermediate leg, and the venues
type RouteConfig struct {
	BorrowToken       string         `json:"borrow_token"`
	IntermediateToken string         `json:"intermediate_token"`
	BorrowAmount      string         `json:"borrow_amount"` // smallest units, decimal string
	FlashLoanPool     common.Address `json:"flash_loan_pool"`
	VenueA            common.Address `json:"venue_a"`
	VenueB            common.Address `json:"venue_b"`
	VenueAName        string         `json:"venue_a_name"`
	VenueBName        string         `json:"venue_b_name"`
}

// StaticConfig holds the deterministic quote amounts the static
// provider serves, in smallest units as decimal strings
type StaticConfig struct {
	FlashLoanLiquidity string `json:"flash_loan_liquidity"`
	VenueAOutput       string `json:"venue_a_output"`
	VenueBOutput       string `json:"venue_b_output"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	BurstSize         int     `json:"burst_size"`
}

// ConfigurationError reports invalid or missing startup configuration.
// It is fatal before any evaluation begins.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration invalid: %s", strings.Join(e.Problems, "; "))
}

// Validate checks the configuration, collecting every problem found
func (c *Config) Validate() error {
	var problems []string

	if c.ChainID == 0 {
		problems = append(problems, "chain_id must be specified")
	}

	switch c.Provider {
	case ProviderOnchain:
		if c.RPCEndpoint == "" {
			problems = append(problems, "rpc_endpoint must be specified for the onchain provider")
		}
	case ProviderStatic:
		// no endpoint needed, but the fixture amounts must be present
		fixtures := []struct {
			name  string
			value string
		}{
			{"static.flash_loan_liquidity", c.Static.FlashLoanLiquidity},
			{"static.venue_a_output", c.Static.VenueAOutput},
			{"static.venue_b_output", c.Static.VenueBOutput},
		}
		for _, f := range fixtures {
			if amount, ok := new(big.Int).SetString(f.value, 10); !ok || amount.Sign() <= 0 {
				problems = append(problems, fmt.Sprintf("%s must be a positive integer in smallest units", f.name))
			}
		}
	case "":
		problems = append(problems, "provider must be selected explicitly (onchain or static)")
	default:
		problems = append(problems, fmt.Sprintf("unknown provider %q", c.Provider))
	}

	if len(c.Tokens) == 0 {
		problems = append(problems, "token table must not be empty")
	}
	if _, ok := c.Tokens[c.Route.BorrowToken]; !ok {
		problems = append(problems, fmt.Sprintf("borrow token %q not in token table", c.Route.BorrowToken))
	}
	if _, ok := c.Tokens[c.Route.IntermediateToken]; !ok {
		problems = append(problems, fmt.Sprintf("intermediate token %q not in token table", c.Route.IntermediateToken))
	}
	if c.Route.BorrowToken != "" && c.Route.BorrowToken == c.Route.IntermediateToken {
		problems = append(problems, "borrow and intermediate tokens must differ")
	}

	if amount, ok := new(big.Int).SetString(c.Route.BorrowAmount, 10); !ok || amount.Sign() <= 0 {
		problems = append(problems, "borrow_amount must be a positive integer in smallest units")
	}

	if c.Route.FlashLoanPool == (common.Address{}) {
		problems = append(problems, "flash_loan_pool address must be specified")
	}
	if c.Route.VenueA == (common.Address{}) {
		problems = append(problems, "venue_a address must be specified")
	}
	if c.Route.VenueB == (common.Address{}) {
		problems = append(problems, "venue_b address must be specified")
	}

	if c.QuoteTimeout <= 0 {
		problems = append(problems, "quote_timeout must be positive")
	}
	if c.Provider == ProviderOnchain {
		if c.RPCRateLimit.RequestsPerSecond <= 0 {
			problems = append(problems, "rpc_rate_limit.requests_per_second must be positive")
		}
		if c.RPCRateLimit.BurstSize <= 0 {
			problems = append(problems, "rpc_rate_limit.burst_size must be positive")
		}
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

// Token resolves a token table entry into a full token descriptor.
// Call only after Validate.
func (c *Config) Token(symbol string) types.Token {
	tc := c.Tokens[symbol]
	return types.Token{
		ChainID:  c.ChainID,
		Address:  tc.Address,
		Symbol:   symbol,
		Decimals: tc.Decimals,
	}
}

// BorrowAmount returns the configured borrow amount in smallest units.
// Call only after Validate.
func (c *Config) BorrowAmount() *big.Int {
	amount, _ := new(big.Int).SetString(c.Route.BorrowAmount, 10)
	return amount
}

// StaticAmounts returns the parsed static-provider fixture amounts.
// Call only after Validate with the static provider selected.
func (c *Config) StaticAmounts() (liquidity, venueAOut, venueBOut *big.Int) {
	liquidity, _ = new(big.Int).SetString(c.Static.FlashLoanLiquidity, 10)
	venueAOut, _ = new(big.Int).SetString(c.Static.VenueAOutput, 10)
	venueBOut, _ = new(big.Int).SetString(c.Static.VenueBOutput, 10)
	return liquidity, venueAOut, venueBOut
}

// LoadConfig reads and validates a JSON config file. The RPC endpoint
// may be supplied or overridden through the environment (see env.go).
func LoadConfig(cfgFile string) (*Config, error) {
	file, err := os.Open(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	config := DefaultConfig()
	if err := json.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if endpoint := RPCEndpointFromEnv(); endpoint != "" {
		config.RPCEndpoint = endpoint
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a config with non-route defaults filled in.
// The route, token table, and provider still have to come from the file.
func DefaultConfig() *Config {
	return &Config{
		QuoteTimeout: 10 * time.Second,
		RPCRateLimit: RateLimitConfig{
			RequestsPerSecond: 10,
			BurstSize:         20,
		},
	}
}
