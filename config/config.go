// Package config loads the backtest configuration from YAML. Every
// numeric knob has a default, so an empty (or missing) file produces a
// runnable configuration; unknown keys are ignored.
package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Backtest    BacktestConfig     `yaml:"backtest"`
	SMC         SMCConfig          `yaml:"smc"`
	Signal      SignalConfig       `yaml:"signal"`
	Risk        RiskConfig         `yaml:"risk"`
	Portfolio   PortfolioConfig    `yaml:"portfolio"`
	Sim         SimConfig          `yaml:"sim"`
	Journal     JournalConfig      `yaml:"journal"`
	Instruments []InstrumentConfig `yaml:"instruments" validate:"dive"`
}

type BacktestConfig struct {
	InitialEquity float64 `yaml:"initial_equity" default:"25000" validate:"gt=0"`
	StartDate     string  `yaml:"start_date"`
	EndDate       string  `yaml:"end_date"`
	CloseAtEnd    bool    `yaml:"close_at_end" default:"true"`

	ATRPeriod  int `yaml:"atr_period" default:"14" validate:"gt=0"`
	ADXPeriod  int `yaml:"adx_period" default:"14" validate:"gt=0"`
	ChopPeriod int `yaml:"chop_period" default:"14" validate:"gt=1"`
}

type SMCConfig struct {
	SwingLookback    int     `yaml:"swing_lookback" default:"5" validate:"gte=2"`
	AdaptiveLookback bool    `yaml:"adaptive_lookback"`
	LookbackAlpha    float64 `yaml:"lookback_alpha" default:"0.5"`
	LookbackShort    int     `yaml:"lookback_short" default:"14" validate:"gt=0"`
	LookbackLong     int     `yaml:"lookback_long" default:"50" validate:"gt=0"`
	LookbackMax      int     `yaml:"lookback_max" default:"0" validate:"gte=0"`

	FVGATRMin        float64 `yaml:"fvg_atr_min" default:"0.5" validate:"gte=0"`
	DispBodyRatioMin float64 `yaml:"disp_body_ratio_min" default:"0.6" validate:"gt=0,lte=1"`
	DispRangeATRMin  float64 `yaml:"disp_range_atr_min" default:"1.0" validate:"gte=0"`
	SweepTolATR      float64 `yaml:"sweep_tolerance_atr" default:"0.1" validate:"gte=0"`

	OBScanBars     int     `yaml:"ob_scan_bars" default:"10" validate:"gt=0"`
	OBVolumeFilter bool    `yaml:"ob_volume_filter"`
	OBVolumeFactor float64 `yaml:"ob_volume_factor" default:"1.5" validate:"gt=0"`
	OBVolumePeriod int     `yaml:"ob_volume_period" default:"20" validate:"gt=0"`
}

type SignalConfig struct {
	ChopMax    float64 `yaml:"chop_max" default:"61.8"`
	ADXMin     float64 `yaml:"adx_min" default:"20"`
	RequireMSS bool    `yaml:"require_mss" default:"true"`
	SweepBars  int     `yaml:"sweep_bars" default:"5" validate:"gt=0"`

	StopATR        float64 `yaml:"stop_atr" default:"1.5" validate:"gt=0"`
	RewardMultiple float64 `yaml:"reward_multiple" default:"3" validate:"gt=0"`

	WeightBias    int      `yaml:"weight_bias" default:"30" validate:"gte=0"`
	WeightSetup   int      `yaml:"weight_setup" default:"25" validate:"gte=0"`
	WeightSweep   int      `yaml:"weight_sweep" default:"25" validate:"gte=0"`
	WeightContext int      `yaml:"weight_context" default:"20" validate:"gte=0"`
	ChopLow       float64  `yaml:"chop_low" default:"61.8"`
	Sessions      []string `yaml:"sessions" default:"[\"london\",\"newyork\"]"`
}

type RiskConfig struct {
	BaseRisk        float64 `yaml:"base_risk" default:"0.01" validate:"gt=0,lte=1"`
	Tier1Threshold  int     `yaml:"tier1_threshold" default:"85" validate:"gte=0,lte=100"`
	Tier2Threshold  int     `yaml:"tier2_threshold" default:"65" validate:"gte=0,lte=100"`
	Tier2Modifier   float64 `yaml:"tier2_modifier" default:"0.5" validate:"gt=0,lte=1"`
	BreakerModifier float64 `yaml:"breaker_modifier" default:"0.5" validate:"gt=0,lte=1"`
}

type PortfolioConfig struct {
	MaxConcurrent        int     `yaml:"max_concurrent_positions" default:"5" validate:"gt=0"`
	CorrelationThreshold float64 `yaml:"correlation_threshold" default:"0.75" validate:"gt=0,lte=1"`
	MaxCorrelatedPos     int     `yaml:"max_correlated_positions" default:"2" validate:"gt=0"`
	MaxCorrelatedRisk    float64 `yaml:"max_correlated_risk" default:"0.02" validate:"gt=0,lte=1"`
	BreakerDrawdown      float64 `yaml:"circuit_breaker_drawdown" default:"0.05" validate:"gt=0,lt=1"`
}

type SimConfig struct {
	ExitPriority string  `yaml:"exit_priority" default:"stop" validate:"oneof=stop target"`
	SlippageATR  float64 `yaml:"slippage_atr" default:"0.1" validate:"gte=0"`
}

type JournalConfig struct {
	Type       string `yaml:"type" default:"csv" validate:"oneof=csv sqlite none"`
	TradesFile string `yaml:"trades_file" default:"./trades.csv"`
	EquityFile string `yaml:"equity_file" default:"./equity.csv"`
	DBPath     string `yaml:"db_path" default:"./backtest.db"`
}

type InstrumentConfig struct {
	Symbol    string `yaml:"symbol" validate:"required"`
	BarsFile  string `yaml:"bars_file" validate:"required"`
	DailyFile string `yaml:"daily_file"`
}

// Default returns the configuration an empty file yields.
func Default() *Config {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		// defaults only fail on malformed struct tags
		panic(err)
	}
	return cfg
}

// Load reads a YAML config file, fills defaults and validates. An empty
// path returns the defaults. Defaults are applied before unmarshalling so
// an explicit zero in the file (require_mss: false, slippage_atr: 0) is
// kept rather than re-defaulted.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration's cross-field and range constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Risk.Tier2Threshold > c.Risk.Tier1Threshold {
		return fmt.Errorf("invalid config: tier2_threshold %d above tier1_threshold %d",
			c.Risk.Tier2Threshold, c.Risk.Tier1Threshold)
	}
	if c.SMC.LookbackMax > 0 && c.SMC.LookbackMax < 2 {
		return fmt.Errorf("invalid config: lookback_max must be 0 or >= 2")
	}
	return nil
}
