package indicators

import (
	"fmt"

	"github.com/rustyeddy/smcbt/market"
)

// ATR is a streaming Average True Range: a rolling simple mean of true
// range over the period. Undefined for the first period bars (the first
// bar yields no true range at all).
type ATR struct {
	period int

	window []float64
	head   int
	count  int
	sum    float64

	prev    market.Bar
	hasPrev bool
}

// NewATR creates an Average True Range indicator with the given period.
func NewATR(period int) *ATR {
	if period < 1 {
		period = 1
	}
	return &ATR{period: period, window: make([]float64, period)}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

func (a *ATR) Warmup() int {
	// period true ranges, and the first bar produces none
	return a.period + 1
}

func (a *ATR) Reset() {
	a.head = 0
	a.count = 0
	a.sum = 0
	a.hasPrev = false
	for i := range a.window {
		a.window[i] = 0
	}
}

func (a *ATR) Update(b market.Bar) {
	if !a.hasPrev {
		a.prev = b
		a.hasPrev = true
		return
	}

	tr := TrueRange(b, a.prev)
	a.prev = b

	if a.count == a.period {
		a.sum -= a.window[a.head]
	} else {
		a.count++
	}
	a.window[a.head] = tr
	a.sum += tr
	a.head = (a.head + 1) % a.period
}

func (a *ATR) Ready() bool {
	return a.count == a.period
}

func (a *ATR) Value() float64 {
	if !a.Ready() {
		return market.Undefined()
	}
	return a.sum / float64(a.period)
}
