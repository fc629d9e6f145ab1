package cmd

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "smcbt",
	Short: "A market-structure strategy backtester for forex and metals",
	Long: `smcbt backtests a rule-based smart-money-concepts strategy over
historical bar data.

It detects structural levels, fair-value gaps, order blocks and liquidity
sweeps, scores trade candidates, and simulates their execution under
portfolio-level risk constraints: correlation caps, concurrency limits and
a drawdown circuit breaker.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
