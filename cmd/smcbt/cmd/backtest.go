package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/smcbt/backtest"
	"github.com/rustyeddy/smcbt/config"
	"github.com/rustyeddy/smcbt/journal"
	"github.com/rustyeddy/smcbt/market"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a portfolio backtest from a config file",
	Long: `Backtest loads the configured instruments' bar files, generates
candidates per instrument, and simulates the portfolio over the merged
timeline.

Example:
  smcbt backtest -c config.yml`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btEquity     float64
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to YAML config (defaults used when omitted)")
	backtestCmd.Flags().Float64VarP(&btEquity, "equity", "e", 0, "override initial equity")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(btConfigPath)
	if err != nil {
		return err
	}
	if btEquity > 0 {
		cfg.Backtest.InitialEquity = btEquity
	}
	if len(cfg.Instruments) == 0 {
		return fmt.Errorf("no instruments configured")
	}

	series := make([]backtest.Series, 0, len(cfg.Instruments))
	for _, inst := range cfg.Instruments {
		bars, err := market.LoadBars(inst.BarsFile)
		if err != nil {
			return fmt.Errorf("load %s: %w", inst.Symbol, err)
		}

		var bias market.BiasMap
		if inst.DailyFile != "" {
			daily, err := market.LoadBars(inst.DailyFile)
			if err != nil {
				return fmt.Errorf("load daily %s: %w", inst.Symbol, err)
			}
			bias = market.DailyBias(daily)
		}

		logger.Info().Str("instrument", inst.Symbol).Int("bars", len(bars)).Msg("loaded")
		series = append(series, backtest.Series{Symbol: inst.Symbol, Bars: bars, Bias: bias})
	}

	j, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer j.Close()

	runner := &backtest.Runner{Config: cfg, Journal: j, Log: logger}
	res, err := runner.Run(cmd.Context(), series)
	if err != nil {
		return err
	}

	printSummary(res)
	return nil
}

func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.TradesFile, cfg.Journal.EquityFile)
	case "none":
		return journal.Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Journal.Type)
	}
}

func printSummary(res backtest.Result) {
	s := res.Summary
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintf(w, "Total Trades\t%d\n", s.TotalTrades)
	fmt.Fprintf(w, "Win Rate\t%.1f%%\n", s.WinRate)
	fmt.Fprintf(w, "Total PnL\t%.2f\n", s.TotalPnL)
	fmt.Fprintf(w, "Return\t%.2f%%\n", s.ReturnPct)
	fmt.Fprintf(w, "Max Drawdown\t%.2f%%\n", s.MaxDrawdown)
	fmt.Fprintf(w, "Profit Factor\t%.2f\n", s.ProfitFactor)
	fmt.Fprintf(w, "Sharpe\t%.2f\n", s.Sharpe)
	fmt.Fprintf(w, "Avg Score\t%.1f\n", s.AvgScore)
	fmt.Fprintf(w, "Tier 1 / Tier 2\t%d / %d\n", s.Tier1Trades, s.Tier2Trades)
	fmt.Fprintf(w, "Final Equity\t%.2f\n", res.FinalEquity)
	w.Flush()

	if len(res.Monthly) > 0 {
		fmt.Println("\nMonthly PnL:")
		for _, m := range res.Monthly {
			fmt.Printf("  %s  %10.2f\n", m.Month, m.PnL)
		}
	}
}
