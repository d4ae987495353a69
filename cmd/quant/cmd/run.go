package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a single backtest over the whole feed",
	Long: `Run replays the configured feed once through the strategy, policy and
simulated broker, then prints the final account summary.

Example:
  quant run -c config.yaml`,
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

		runner := buildRunner(cfg, f, j)
		res := runner.Run(context.Background())
		printResult(res)
		return res.Err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}
