package indicators

import (
	"fmt"

	"github.com/rustyeddy/smcbt/market"
)

// ADX implements Wilder's Average Directional Index (trend strength).
//
// Warmup: Period bars seed the smoothed TR/+DM/-DM averages, then Period
// DX values seed ADX, so roughly 2*Period bars pass before Ready().
// A bar where +DI + -DI == 0 produces no DX; the previous ADX is carried.
type ADX struct {
	Period int

	prev     market.Bar
	havePrev bool

	trN  float64
	pdmN float64
	mdmN float64

	adx   float64
	dxSum float64
	dxCnt int

	count int
	ready bool
}

func NewADX(period int) *ADX {
	if period < 1 {
		period = 1
	}
	return &ADX{Period: period}
}

func (a *ADX) Name() string {
	return fmt.Sprintf("ADX(%d)", a.Period)
}

func (a *ADX) Warmup() int {
	return 2*a.Period + 1
}

func (a *ADX) Reset() {
	*a = ADX{Period: a.Period}
}

func (a *ADX) Ready() bool {
	return a.ready
}

func (a *ADX) Value() float64 {
	if !a.ready {
		return market.Undefined()
	}
	return a.adx
}

func (a *ADX) Update(b market.Bar) {
	if !a.havePrev {
		a.prev = b
		a.havePrev = true
		a.count = 1
		return
	}

	upMove := b.High - a.prev.High
	downMove := a.prev.Low - b.Low

	var pdm, mdm float64
	if upMove > downMove && upMove > 0 {
		pdm = upMove
	}
	if downMove > upMove && downMove > 0 {
		mdm = downMove
	}

	tr := TrueRange(b, a.prev)
	a.prev = b
	a.count++

	// Phase A: accumulate initial averages over the first Period samples.
	if a.count <= a.Period+1 {
		a.trN += tr
		a.pdmN += pdm
		a.mdmN += mdm
		if a.count == a.Period+1 {
			p := float64(a.Period)
			a.trN /= p
			a.pdmN /= p
			a.mdmN /= p
		}
		return
	}

	p := float64(a.Period)
	a.trN = (a.trN*(p-1) + tr) / p
	a.pdmN = (a.pdmN*(p-1) + pdm) / p
	a.mdmN = (a.mdmN*(p-1) + mdm) / p

	if a.trN == 0 {
		return
	}

	pdi := 100 * (a.pdmN / a.trN)
	mdi := 100 * (a.mdmN / a.trN)
	den := pdi + mdi
	if den == 0 {
		// degenerate bar: no DX sample, carry prior state
		return
	}

	dx := 100 * abs(pdi-mdi) / den

	// Phase B: seed ADX with the mean of the first Period DX values.
	if !a.ready {
		a.dxSum += dx
		a.dxCnt++
		if a.dxCnt == a.Period {
			a.adx = a.dxSum / p
			a.ready = true
		}
		return
	}

	a.adx = (a.adx*(p-1) + dx) / p
}
