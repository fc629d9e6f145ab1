package indicators

import (
	"fmt"
	"math"

	"github.com/rustyeddy/smcbt/market"
)

// Chop is the Choppiness Index:
//
//	100 * log10(sum(TR, period) / (maxHigh - minLow)) / log10(period)
//
// High values (> ~61.8) mark ranging markets. Undefined during warmup and
// on a zero high-low range.
type Chop struct {
	period int

	trs   []float64
	highs []float64
	lows  []float64
	head  int
	count int

	prev    market.Bar
	hasPrev bool
}

func NewChop(period int) *Chop {
	if period < 2 {
		period = 2
	}
	return &Chop{
		period: period,
		trs:    make([]float64, period),
		highs:  make([]float64, period),
		lows:   make([]float64, period),
	}
}

func (c *Chop) Name() string {
	return fmt.Sprintf("CHOP(%d)", c.period)
}

func (c *Chop) Warmup() int {
	return c.period + 1
}

func (c *Chop) Reset() {
	c.head = 0
	c.count = 0
	c.hasPrev = false
}

func (c *Chop) Update(b market.Bar) {
	if !c.hasPrev {
		c.prev = b
		c.hasPrev = true
		return
	}

	tr := TrueRange(b, c.prev)
	c.prev = b

	c.trs[c.head] = tr
	c.highs[c.head] = b.High
	c.lows[c.head] = b.Low
	c.head = (c.head + 1) % c.period
	if c.count < c.period {
		c.count++
	}
}

func (c *Chop) Ready() bool {
	return c.count == c.period
}

func (c *Chop) Value() float64 {
	if !c.Ready() {
		return market.Undefined()
	}

	var sumTR float64
	maxHigh := math.Inf(-1)
	minLow := math.Inf(1)
	for i := 0; i < c.period; i++ {
		sumTR += c.trs[i]
		if c.highs[i] > maxHigh {
			maxHigh = c.highs[i]
		}
		if c.lows[i] < minLow {
			minLow = c.lows[i]
		}
	}

	r := maxHigh - minLow
	if r <= 0 {
		return market.Undefined()
	}
	return 100 * math.Log10(sumTR/r) / math.Log10(float64(c.period))
}
