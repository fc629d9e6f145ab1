package risk

// CorrelationTable maps instrument pairs to static correlation
// coefficients. It is injectable so the default major-pair table can be
// swapped or extended without touching the portfolio simulator.
type CorrelationTable map[string]map[string]float64

// Coefficient returns the coefficient for a pair, looking both directions
// so the table doesn't have to be fully symmetric. Unknown pairs are 0.
func (t CorrelationTable) Coefficient(a, b string) float64 {
	if a == b {
		return 1
	}
	if row, ok := t[a]; ok {
		if c, ok := row[b]; ok {
			return c
		}
	}
	if row, ok := t[b]; ok {
		if c, ok := row[a]; ok {
			return c
		}
	}
	return 0
}

// DefaultCorrelations is a static major-pair table. Positive values mark
// pairs that move together, negative ones inverse movers.
func DefaultCorrelations() CorrelationTable {
	return CorrelationTable{
		"EURUSD": {"GBPUSD": 0.85, "USDCHF": -0.90, "AUDUSD": 0.75, "XAUUSD": 0.40},
		"GBPUSD": {"EURUSD": 0.85, "USDCHF": -0.80, "AUDUSD": 0.70},
		"AUDUSD": {"EURUSD": 0.75, "GBPUSD": 0.70, "XAUUSD": 0.60},
		"USDCHF": {"EURUSD": -0.90, "GBPUSD": -0.80},
		"USDCAD": {"AUDUSD": -0.50, "XAUUSD": -0.30},
		"USDJPY": {"EURJPY": 0.60, "GBPJPY": 0.60},
		"EURJPY": {"USDJPY": 0.60, "EURUSD": 0.50},
		"GBPJPY": {"USDJPY": 0.60, "GBPUSD": 0.50},
		"XAUUSD": {"AUDUSD": 0.60, "XAGUSD": 0.85},
		"XAGUSD": {"XAUUSD": 0.85},
	}
}
