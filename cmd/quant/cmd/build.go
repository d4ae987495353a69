package cmd

import (
	"fmt"

	"github.com/rustyeddy/quant/backtest"
	"github.com/rustyeddy/quant/config"
	"github.com/rustyeddy/quant/feed"
	"github.com/rustyeddy/quant/journal"
	"github.com/rustyeddy/quant/market"
	"github.com/rustyeddy/quant/metric"
	"github.com/rustyeddy/quant/policy"
	"github.com/rustyeddy/quant/sim"
	"github.com/rustyeddy/quant/strategy"
)

func loadConfig() (*config.Config, error) {
	if cfgFile == "" {
		return config.Default(), nil
	}
	return config.LoadFromFile(cfgFile)
}

func buildFeed(cfg *config.Config) (*feed.RandomWalkFeed, error) {
	interval, err := cfg.Feed.ParseInterval()
	if err != nil {
		return nil, err
	}

	assets := make([]market.Asset, 0, len(cfg.Feed.Symbols))
	for _, sym := range cfg.Feed.Symbols {
		assets = append(assets, market.NewAsset(sym, market.Currency(cfg.Account.Currency)))
	}

	f := feed.NewRandomWalkFeed(cfg.Feed.Events, assets...)
	f.Interval = interval
	if cfg.Feed.Seed != 0 {
		f.Seed = cfg.Feed.Seed
	}
	if cfg.Feed.StartPrice > 0 {
		f.StartPrice = cfg.Feed.StartPrice
	}
	if cfg.Feed.Volatility > 0 {
		f.Volatility = cfg.Feed.Volatility
	}
	return f, nil
}

func buildJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "", "none":
		return journal.Nop{}, nil
	case "csv":
		return journal.NewCSV(cfg.Journal.FillsFile, cfg.Journal.EquityFile, cfg.Journal.MetricsFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}

// buildRunner assembles one isolated pipeline from the config. Each call
// returns fresh broker, strategy and policy state, so it doubles as the
// Monte Carlo factory.
func buildRunner(cfg *config.Config, f feed.Feed, j journal.Journal) *backtest.Runner {
	var model sim.AccountModel = sim.CashAccount{}
	if cfg.Account.Leverage > 1 {
		model = sim.MarginAccount{Leverage: cfg.Account.Leverage}
	}

	var pricing sim.Pricing = sim.NoCost{}
	if cfg.Sim.SpreadBps > 0 {
		pricing = sim.SpreadPricing{Bps: cfg.Sim.SpreadBps}
	}

	var fees sim.FeeModel = sim.NoFee{}
	if cfg.Sim.FeeRate > 0 {
		fees = sim.PercentageFee{Rate: cfg.Sim.FeeRate}
	}

	rates := market.SingleCurrency{}

	broker := sim.New(sim.Config{
		Currency:    market.Currency(cfg.Account.Currency),
		Deposit:     cfg.Account.Deposit,
		Pricing:     pricing,
		Fees:        fees,
		Model:       model,
		Rates:       rates,
		VolumeLimit: cfg.Sim.VolumeLimit,
		Journal:     j,
	})

	strat := strategy.NewEMACross(cfg.Run.Strategy.Fast, cfg.Run.Strategy.Slow)
	pol := policy.NewFlex(cfg.Run.OrderPct, rates)

	r := backtest.NewRunner(f, strat, pol, broker)
	r.Metrics = []metric.Metric{metric.NewAccountMetric(rates)}
	r.Journal = j
	r.Rates = rates
	return r
}

func printResult(res *backtest.Result) {
	fmt.Printf("run %s  phase=%s  %s\n", res.RunID, res.Phase, res.Timeframe)
	fmt.Printf("  steps: %d\n", res.Steps)
	if eq, ok := res.Metrics["account.equity"]; ok {
		fmt.Printf("  equity: %.2f\n", eq)
	}
	fmt.Printf("  realized pl: %.2f\n", res.Account.RealizedPL)
	fmt.Printf("  open positions: %d  orders: %d\n", len(res.Account.Positions), len(res.Account.Orders))
	if res.Err != nil {
		fmt.Printf("  terminated early: %v\n", res.Err)
	}
}
