// Package structure derives market structure from a bar series: swing
// levels, fair-value gaps, displacement, liquidity sweeps, structure
// shifts and order blocks.
package structure

import "github.com/rustyeddy/smcbt/market"

type ZoneKind uint8

const (
	ZoneFVG ZoneKind = iota
	ZoneOrderBlock
)

func (k ZoneKind) String() string {
	if k == ZoneOrderBlock {
		return "OrderBlock"
	}
	return "FVG"
}

// Zone is a structural price band (gap or order block) that stays live
// until price closes through its invalidation boundary: the bottom for a
// bullish zone, the top for a bearish one.
type Zone struct {
	Kind   ZoneKind
	Dir    market.Side
	Top    float64
	Bottom float64
	Born   int // bar index of creation
	Live   bool
}

// Arena holds zone records with a liveness flag. Dead zones are left in
// place and compacted periodically instead of reallocating the slice on
// every prune.
type Arena struct {
	zones []Zone
	dead  int
}

const compactThreshold = 64

func (a *Arena) Add(z Zone) {
	z.Live = true
	a.zones = append(a.zones, z)
}

// Prune invalidates every live zone the close has traded through.
func (a *Arena) Prune(close float64) {
	for i := range a.zones {
		z := &a.zones[i]
		if !z.Live {
			continue
		}
		if (z.Dir == market.Long && close < z.Bottom) ||
			(z.Dir == market.Short && close > z.Top) {
			z.Live = false
			a.dead++
		}
	}
	if a.dead >= compactThreshold && a.dead*2 >= len(a.zones) {
		a.compact()
	}
}

func (a *Arena) compact() {
	live := a.zones[:0]
	for _, z := range a.zones {
		if z.Live {
			live = append(live, z)
		}
	}
	a.zones = live
	a.dead = 0
}

// Touches reports whether the [low, high] bar range overlaps any live
// zone band of the given direction.
func (a *Arena) Touches(dir market.Side, low, high float64) bool {
	for i := range a.zones {
		z := &a.zones[i]
		if z.Live && z.Dir == dir && low <= z.Top && high >= z.Bottom {
			return true
		}
	}
	return false
}

// LiveCount returns the number of live zones.
func (a *Arena) LiveCount() int {
	return len(a.zones) - a.dead
}
