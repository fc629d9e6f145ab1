package backtest

import (
	"github.com/rustyeddy/smcbt/config"
	"github.com/rustyeddy/smcbt/risk"
	"github.com/rustyeddy/smcbt/signal"
	"github.com/rustyeddy/smcbt/sim"
	"github.com/rustyeddy/smcbt/structure"
)

func structureConfig(c *config.Config) structure.Config {
	return structure.Config{
		SwingLookback:    c.SMC.SwingLookback,
		AdaptiveLookback: c.SMC.AdaptiveLookback,
		LookbackAlpha:    c.SMC.LookbackAlpha,
		LookbackShort:    c.SMC.LookbackShort,
		LookbackLong:     c.SMC.LookbackLong,
		LookbackMax:      c.SMC.LookbackMax,
		FVGATRMin:        c.SMC.FVGATRMin,
		DispBodyRatioMin: c.SMC.DispBodyRatioMin,
		DispRangeATRMin:  c.SMC.DispRangeATRMin,
		SweepTolATR:      c.SMC.SweepTolATR,
		OBScanBars:       c.SMC.OBScanBars,
		OBVolumeFilter:   c.SMC.OBVolumeFilter,
		OBVolumeFactor:   c.SMC.OBVolumeFactor,
		OBVolumePeriod:   c.SMC.OBVolumePeriod,
	}
}

func signalConfig(c *config.Config) signal.Config {
	return signal.Config{
		ChopMax:        c.Signal.ChopMax,
		ADXMin:         c.Signal.ADXMin,
		RequireMSS:     c.Signal.RequireMSS,
		SweepBars:      c.Signal.SweepBars,
		StopATR:        c.Signal.StopATR,
		RewardMultiple: c.Signal.RewardMultiple,
		WeightBias:     c.Signal.WeightBias,
		WeightSetup:    c.Signal.WeightSetup,
		WeightSweep:    c.Signal.WeightSweep,
		WeightContext:  c.Signal.WeightContext,
		ChopLow:        c.Signal.ChopLow,
		Sessions:       c.Signal.Sessions,
	}
}

func riskPolicy(c *config.Config) risk.Policy {
	return risk.Policy{
		BaseRisk:        c.Risk.BaseRisk,
		Tier1Threshold:  c.Risk.Tier1Threshold,
		Tier2Threshold:  c.Risk.Tier2Threshold,
		Tier2Modifier:   c.Risk.Tier2Modifier,
		BreakerModifier: c.Risk.BreakerModifier,
	}
}

func simConfig(c *config.Config) sim.Config {
	return sim.Config{
		ExitPriority: c.Sim.ExitPriority,
		SlippageATR:  c.Sim.SlippageATR,
	}
}
