package cmd

import (
	"context"

	"github.com/rustyeddy/quant/backtest"
	"github.com/spf13/cobra"
)

var montecarloCmd = &cobra.Command{
	Use:   "montecarlo",
	Short: "Run parallel Monte Carlo sampled windows",
	Long: `Montecarlo samples random sub-windows from the feed timeframe and runs one
fully isolated backtest per window, all in parallel. The run seed makes the
window sampling reproducible.

Example:
  quant montecarlo -c config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		f, err := buildFeed(cfg)
		if err != nil {
			return err
		}
		j, err := buildJournal(cfg)
		if err != nil {
			return err
		}
		defer j.Close()

		window, err := cfg.Run.ParseWindow()
		if err != nil {
			return err
		}
		samples := cfg.Run.Samples
		if mcSamples > 0 {
			samples = mcSamples
		}
		if samples < 1 {
			samples = 1
		}

		// The feed is immutable and shared; every run gets its own broker,
		// strategy and policy from the factory.
		factory := func() *backtest.Runner { return buildRunner(cfg, f, j) }

		results, err := backtest.MonteCarlo(context.Background(), factory, samples, window, cfg.Run.Seed)
		for _, res := range results {
			printResult(res)
		}
		return err
	},
}

var mcSamples int

func init() {
	montecarloCmd.Flags().IntVarP(&mcSamples, "samples", "n", 0, "number of sampled runs (overrides config)")
	rootCmd.AddCommand(montecarloCmd)
}
