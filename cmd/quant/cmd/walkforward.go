package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var walkforwardCmd = &cobra.Command{
	Use:   "walkforward",
	Short: "Run sequential walk-forward windows",
	Long: `Walkforward partitions the feed timeframe into contiguous windows and runs
one fully isolated backtest per window. With run.validation set, each window
splits into a TRAIN run and an out-of-sample VALIDATION run.

Example:
  quant walkforward -c config.yaml`,
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

		windows := cfg.Run.Windows
		if wfWindows > 0 {
			windows = wfWindows
		}
		if windows < 1 {
			windows = 1
		}

		runner := buildRunner(cfg, f, j)
		results, err := runner.WalkForward(context.Background(), windows, cfg.Run.Validation)
		for _, res := range results {
			printResult(res)
		}
		return err
	},
}

var wfWindows int

func init() {
	walkforwardCmd.Flags().IntVarP(&wfWindows, "windows", "n", 0, "number of windows (overrides config)")
	rootCmd.AddCommand(walkforwardCmd)
}
