package cmd

import (
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "A deterministic market-simulation and back-testing engine",
	Long: `Quant replays time-ordered market data through a strategy/policy pipeline
and simulates order execution against a virtual broker.

It provides tools for:
  - Backtesting strategies over historic or generated data
  - Walk-forward evaluation over successive out-of-sample windows
  - Parallel Monte Carlo runs over sampled sub-windows
  - Journaling fills, equity curves and metrics to CSV or SQLite`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
}
