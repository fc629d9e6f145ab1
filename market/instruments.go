package market

// InstrumentMeta carries the per-instrument constants the simulator needs.
// MinTick bounds the slippage model from below; PipLocation is kept for
// reporting (pips = price move / 10^PipLocation).
type InstrumentMeta struct {
	Name        string
	PipLocation int
	MinTick     float64
}

var Instruments = map[string]InstrumentMeta{
	"EURUSD": {Name: "EURUSD", PipLocation: -4, MinTick: 0.00001},
	"GBPUSD": {Name: "GBPUSD", PipLocation: -4, MinTick: 0.00001},
	"AUDUSD": {Name: "AUDUSD", PipLocation: -4, MinTick: 0.00001},
	"USDCHF": {Name: "USDCHF", PipLocation: -4, MinTick: 0.00001},
	"USDCAD": {Name: "USDCAD", PipLocation: -4, MinTick: 0.00001},
	"USDJPY": {Name: "USDJPY", PipLocation: -2, MinTick: 0.001},
	"EURJPY": {Name: "EURJPY", PipLocation: -2, MinTick: 0.001},
	"GBPJPY": {Name: "GBPJPY", PipLocation: -2, MinTick: 0.001},
	"XAUUSD": {Name: "XAUUSD", PipLocation: -1, MinTick: 0.01},
	"XAGUSD": {Name: "XAGUSD", PipLocation: -3, MinTick: 0.001},
}

// Meta returns metadata for an instrument, falling back to 4-decimal FX
// conventions for symbols not in the table.
func Meta(instrument string) InstrumentMeta {
	if m, ok := Instruments[instrument]; ok {
		return m
	}
	return InstrumentMeta{Name: instrument, PipLocation: -4, MinTick: 0.0001}
}
