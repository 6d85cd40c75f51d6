package cmd

import (
	"context"

	"github.com/michaelpento.lv/cyclearb/utils"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "cyclearb",
	Short: "A CLI that evaluates a single flash-loan arbitrage cycle",
	Long: `A CLI that evaluates one flash-loan arbitrage cycle across two swap
venues and reports whether the cycle is profitable, producing an
instruction plan when it is. It quotes only; it never trades.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.json", "config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func initConfig() {
	utils.InitLogger(debug)
}
