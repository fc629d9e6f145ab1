package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFraction(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()

	tests := []struct {
		name    string
		score   int
		breaker bool
		want    float64
	}{
		{"tier 1", 90, false, 0.01},
		{"tier 1 boundary", 85, false, 0.01},
		{"tier 2", 70, false, 0.005},
		{"tier 2 boundary", 65, false, 0.005},
		{"below tiers", 64, false, 0},
		{"zero score", 0, false, 0},
		{"tier 1 under breaker", 90, true, 0.005},
		{"tier 2 under breaker", 70, true, 0.0025},
		{"below tiers under breaker", 50, true, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, p.Fraction(tt.score, tt.breaker), 1e-12)
		})
	}
}

func TestPositionSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		equity   float64
		fraction float64
		stop     float64
		want     float64
	}{
		{"basic", 10000, 0.01, 2.0, 50},
		{"fx scale", 25000, 0.005, 0.0050, 25000},
		{"zero stop", 10000, 0.01, 0, 0},
		{"negative stop", 10000, 0.01, -1, 0},
		{"zero fraction", 10000, 0, 2.0, 0},
		{"zero equity", 0, 0.01, 2.0, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, PositionSize(tt.equity, tt.fraction, tt.stop), 1e-9)
		})
	}
}

func TestCoefficient(t *testing.T) {
	t.Parallel()

	corr := DefaultCorrelations()

	// Same instrument is perfectly correlated with itself.
	assert.InDelta(t, 1.0, corr.Coefficient("EURUSD", "EURUSD"), 1e-12)

	// Lookups work in both directions.
	assert.InDelta(t, 0.85, corr.Coefficient("EURUSD", "GBPUSD"), 1e-12)
	assert.InDelta(t, 0.85, corr.Coefficient("GBPUSD", "EURUSD"), 1e-12)

	// Inverse movers carry negative coefficients.
	assert.InDelta(t, -0.90, corr.Coefficient("EURUSD", "USDCHF"), 1e-12)

	// Unknown pairs are uncorrelated.
	assert.InDelta(t, 0.0, corr.Coefficient("EURUSD", "USDJPY"), 1e-12)
	assert.InDelta(t, 0.0, corr.Coefficient("EURNOK", "USDSEK"), 1e-12)
}
