package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()

	assert.InDelta(t, 25000, cfg.Backtest.InitialEquity, 1e-9)
	assert.True(t, cfg.Backtest.CloseAtEnd)
	assert.Equal(t, 14, cfg.Backtest.ATRPeriod)

	assert.Equal(t, 5, cfg.SMC.SwingLookback)
	assert.False(t, cfg.SMC.AdaptiveLookback)
	assert.Equal(t, 0, cfg.SMC.LookbackMax)
	assert.InDelta(t, 0.5, cfg.SMC.FVGATRMin, 1e-9)
	assert.Equal(t, 10, cfg.SMC.OBScanBars)

	assert.InDelta(t, 61.8, cfg.Signal.ChopMax, 1e-9)
	assert.True(t, cfg.Signal.RequireMSS)
	assert.Equal(t, 5, cfg.Signal.SweepBars)
	assert.InDelta(t, 1.5, cfg.Signal.StopATR, 1e-9)
	assert.InDelta(t, 3, cfg.Signal.RewardMultiple, 1e-9)
	assert.Equal(t, 30, cfg.Signal.WeightBias)
	assert.Equal(t, []string{"london", "newyork"}, cfg.Signal.Sessions)

	assert.InDelta(t, 0.01, cfg.Risk.BaseRisk, 1e-9)
	assert.Equal(t, 85, cfg.Risk.Tier1Threshold)
	assert.Equal(t, 65, cfg.Risk.Tier2Threshold)

	assert.Equal(t, 5, cfg.Portfolio.MaxConcurrent)
	assert.InDelta(t, 0.05, cfg.Portfolio.BreakerDrawdown, 1e-9)

	assert.Equal(t, "stop", cfg.Sim.ExitPriority)
	assert.Equal(t, "csv", cfg.Journal.Type)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
backtest:
  initial_equity: 50000
signal:
  require_mss: false
  sweep_bars: 8
sim:
  exit_priority: target
instruments:
  - symbol: EURUSD
    bars_file: /data/eurusd_h1.csv
    daily_file: /data/eurusd_d1.csv
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.InDelta(t, 50000, cfg.Backtest.InitialEquity, 1e-9)
	assert.False(t, cfg.Signal.RequireMSS)
	assert.Equal(t, 8, cfg.Signal.SweepBars)
	assert.Equal(t, "target", cfg.Sim.ExitPriority)

	// Untouched knobs keep their defaults.
	assert.Equal(t, 5, cfg.SMC.SwingLookback)
	assert.InDelta(t, 0.01, cfg.Risk.BaseRisk, 1e-9)

	require.Len(t, cfg.Instruments, 1)
	assert.Equal(t, "EURUSD", cfg.Instruments[0].Symbol)
	assert.Equal(t, "/data/eurusd_d1.csv", cfg.Instruments[0].DailyFile)
}

func TestLoadKeepsExplicitZeroValues(t *testing.T) {
	t.Parallel()

	// An explicit zero value in the file must survive loading; it is an
	// override, not an unset field to be re-defaulted.
	path := writeConfig(t, `
backtest:
  close_at_end: false
signal:
  require_mss: false
sim:
  slippage_atr: 0
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Backtest.CloseAtEnd)
	assert.False(t, cfg.Signal.RequireMSS)
	assert.Zero(t, cfg.Sim.SlippageATR)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"bad exit priority", "sim:\n  exit_priority: immediately\n"},
		{"bad journal type", "journal:\n  type: parquet\n"},
		{"tiers inverted", "risk:\n  tier1_threshold: 60\n  tier2_threshold: 80\n"},
		{"lookback max of one", "smc:\n  lookback_max: 1\n"},
		{"instrument without bars file", "instruments:\n  - symbol: EURUSD\n"},
		{"negative equity", "backtest:\n  initial_equity: -5\n"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, Default().Save(path))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Backtest, cfg.Backtest)
	assert.Equal(t, Default().SMC, cfg.SMC)
	assert.Equal(t, Default().Signal, cfg.Signal)
	assert.Equal(t, Default().Risk, cfg.Risk)
	assert.Equal(t, Default().Portfolio, cfg.Portfolio)
	assert.Equal(t, Default().Sim, cfg.Sim)
	assert.Equal(t, Default().Journal, cfg.Journal)
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}
