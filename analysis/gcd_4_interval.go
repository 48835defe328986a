package analysis

import (
	"math"
)

// Rounding maps a normalized interval in milliseconds to a histogram key.
type Rounding interface {
	Bucket(ms float64) float64
}

// NearestMultiple keys are milliseconds rounded to the nearest Step.
type NearestMultiple struct {
	Step float64
}

func (r NearestMultiple) Bucket(ms float64) float64 {
	if r.Step <= 0 {
		return ms
	}
	return math.Round(ms/r.Step) * r.Step
}

// CeilDecimals keys are seconds rounded up to Places decimals.
type CeilDecimals struct {
	Places int
}

func (r CeilDecimals) Bucket(ms float64) float64 {
	p := math.Pow(10, float64(r.Places))
	// 2.5 * 100 = 250.00000000000003 같은 오차 제거
	v := math.Round(ms/1000*p*1e6) / 1e6
	return math.Ceil(v) / p
}

// SkipPolicy selects how many leading uses never start an interval.
type SkipPolicy int

const (
	// SkipTwo: the first interval is between the 2nd and 3rd use.
	SkipTwo SkipPolicy = iota
	// SkipOne: the first interval is between the 1st and 2nd use.
	SkipOne
)

func (p SkipPolicy) firstIndex() int {
	if p == SkipOne {
		return 1
	}
	return 2
}

// ModifierResolver is satisfied by *Resolver.
type ModifierResolver interface {
	Resolve(t int64) float64
}

// Histogram counts normalized intervals per bucket key.
type Histogram map[float64]int

func (h Histogram) Total() int {
	var sum int
	for _, count := range h {
		sum += count
	}
	return sum
}

// NormalizeIntervals returns the normalized gaps between adjacent uses in
// milliseconds, in sequence order. Pairs with an interrupted end are skipped.
func NormalizeIntervals(uses []ActionUse, resolver ModifierResolver, skip SkipPolicy) []float64 {
	first := skip.firstIndex()
	if len(uses) <= first {
		return nil
	}

	r := make([]float64, 0, len(uses)-first)
	for idx := first; idx < len(uses); idx++ {
		prev := &uses[idx-1]
		cur := &uses[idx]

		prevStart, ok := prev.StartTime()
		if !ok {
			continue
		}
		curStart, ok := cur.StartTime()
		if !ok {
			continue
		}

		interval := float64(curStart - prevStart)
		castTimeScale := 1.0
		if prev.IsTaxed() {
			interval -= CasterTax
			castTimeScale = float64(prev.CastTime) / BaseGCD
		}

		r = append(r, interval/castTimeScale/resolver.Resolve(prevStart))
	}

	return r
}

// BuildHistogram buckets every normalized interval with the rounding policy.
func BuildHistogram(uses []ActionUse, resolver ModifierResolver, rounding Rounding, skip SkipPolicy) Histogram {
	h := make(Histogram)
	for _, v := range NormalizeIntervals(uses, resolver, skip) {
		h[rounding.Bucket(v)]++
	}
	return h
}
