// Package risk maps confluence scores to capital-risk fractions and
// fractions to position sizes, and provides the correlation lookup the
// portfolio layer uses for exposure capping.
package risk

// Policy holds the tiered risk parameters.
type Policy struct {
	BaseRisk        float64 // risk fraction for a tier-1 score, e.g. 0.01
	Tier1Threshold  int     // score >= this -> BaseRisk
	Tier2Threshold  int     // score >= this -> BaseRisk * Tier2Modifier
	Tier2Modifier   float64
	BreakerModifier float64 // applied to BaseRisk while the circuit breaker is active
}

// DefaultPolicy: 1% at tier 1 (>=85), 0.5% at tier 2 (>=65), halved under
// an active circuit breaker.
func DefaultPolicy() Policy {
	return Policy{
		BaseRisk:        0.01,
		Tier1Threshold:  85,
		Tier2Threshold:  65,
		Tier2Modifier:   0.5,
		BreakerModifier: 0.5,
	}
}

// Fraction returns the capital fraction to risk for a score. Zero means
// the candidate is not traded; that is a normal outcome, not an error.
func (p Policy) Fraction(score int, breakerActive bool) float64 {
	base := p.BaseRisk
	if breakerActive {
		base *= p.BreakerModifier
	}
	switch {
	case score >= p.Tier1Threshold:
		return base
	case score >= p.Tier2Threshold:
		return base * p.Tier2Modifier
	default:
		return 0
	}
}

// PositionSize converts a risk fraction into units via fixed-fractional
// sizing. A degenerate stop distance sizes to zero.
func PositionSize(equity, riskFraction, stopDistance float64) float64 {
	if stopDistance <= 0 || riskFraction <= 0 || equity <= 0 {
		return 0
	}
	return equity * riskFraction / stopDistance
}
