package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/michaelpento.lv/cyclearb/config"
	"github.com/michaelpento.lv/cyclearb/evaluator"
	"github.com/michaelpento.lv/cyclearb/plan"
	"github.com/michaelpento.lv/cyclearb/quote"
	"github.com/michaelpento.lv/cyclearb/quote/onchain"
	"github.com/michaelpento.lv/cyclearb/quote/static"
	"github.com/michaelpento.lv/cyclearb/report"
	"github.com/michaelpento.lv/cyclearb/utils"
	"github.com/michaelpento.lv/cyclearb/utils/metrics"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one arbitrage cycle and exit",
	Long: `Evaluate a single flash-loan arbitrage cycle: borrow the configured
asset, quote the swap into the intermediate asset on venue A, quote the
swap back on venue B, and report whether the cycle is profitable.
Nothing is executed on chain.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := utils.GetLogger()
		metrics.Initialize()

		if err := config.LoadEnv(); err != nil {
			log.Warn("Failed to load .env file", zap.Error(err))
		}

		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}

		provider, err := buildProvider(cfg, log)
		if err != nil {
			return err
		}

		route := evaluator.Route{
			BorrowToken:       cfg.Token(cfg.Route.BorrowToken),
			IntermediateToken: cfg.Token(cfg.Route.IntermediateToken),
			BorrowAmount:      cfg.BorrowAmount(),
			FlashLoanPool:     cfg.Route.FlashLoanPool,
			VenueA:            cfg.Route.VenueA,
			VenueB:            cfg.Route.VenueB,
			VenueAName:        cfg.Route.VenueAName,
			VenueBName:        cfg.Route.VenueBName,
		}

		eval := evaluator.New(route, provider, log,
			evaluator.WithQuoteTimeout(cfg.QuoteTimeout))

		evalMetrics := metrics.NewEvaluationMetrics("cyclearb")
		evalMetrics.Evaluations.Inc()
		start := time.Now()

		result, err := eval.Evaluate(cmd.Context())
		evalMetrics.Duration.Observe(time.Since(start).Seconds())
		if err != nil {
			evalMetrics.Failures.Inc()
			return err
		}

		if result.Profitable {
			evalMetrics.Profitable.Inc()
		} else {
			evalMetrics.Unprofitable.Inc()
		}

		instructionPlan, err := plan.Generate(result, route)
		if err != nil {
			return err
		}

		return report.Render(os.Stdout, result, instructionPlan)
	},
}

// buildProvider selects the quotation provider named in configuration.
// There is no fallback: an unusable selection is a configuration error.
func buildProvider(cfg *config.Config, log *zap.Logger) (quote.Provider, error) {
	switch cfg.Provider {
	case config.ProviderOnchain:
		client, err := ethclient.Dial(cfg.RPCEndpoint)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
		}
		return onchain.NewProvider(client, onchain.Config{
			FlashLoanPool:   cfg.Route.FlashLoanPool,
			FlashLoanFeeBps: cfg.FlashLoanFeeBps,
			RequestsPerSec:  cfg.RPCRateLimit.RequestsPerSecond,
			Burst:           cfg.RPCRateLimit.BurstSize,
		}, log)
	case config.ProviderStatic:
		liquidity, venueAOut, venueBOut := cfg.StaticAmounts()
		return static.NewProviderWithFixtures(cfg.FlashLoanFeeBps, static.Fixtures{
			BorrowToken:        cfg.Token(cfg.Route.BorrowToken),
			IntermediateToken:  cfg.Token(cfg.Route.IntermediateToken),
			FlashLoanLiquidity: liquidity,
			VenueA:             cfg.Route.VenueA,
			VenueAOutput:       venueAOut,
			VenueB:             cfg.Route.VenueB,
			VenueBOutput:       venueBOut,
		}), nil
	default:
		// unreachable after config validation
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}
