package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constResolver float64

func (c constResolver) Resolve(int64) float64 { return float64(c) }

func TestNormalizeSkipsFirstTwo(t *testing.T) {
	// 첫 간격(0 -> 5000)은 풀링 전 잡음
	uses := PairCasts(instants(actInstant, 0, 5000, 7500, 10000), newFixtureRules())
	require.Len(t, uses, 4)

	assert.Equal(t, []float64{2500, 2500}, NormalizeIntervals(uses, constResolver(1), SkipTwo))
	assert.Equal(t, []float64{5000, 2500, 2500}, NormalizeIntervals(uses, constResolver(1), SkipOne))
}

func TestNormalizeShortSequences(t *testing.T) {
	rules := newFixtureRules()

	assert.Empty(t, NormalizeIntervals(nil, constResolver(1), SkipTwo))
	assert.Empty(t, NormalizeIntervals(PairCasts(instants(actInstant, 0, 2500), rules), constResolver(1), SkipTwo))
	assert.Len(t, NormalizeIntervals(PairCasts(instants(actInstant, 0, 2500), rules), constResolver(1), SkipOne), 1)
}

func TestNormalizeCasterTax(t *testing.T) {
	events := []RawEvent{
		cast(0, actInstant),
		cast(2500, actInstant),
		begin(5000, actHardCast), cast(8000, actHardCast),
		cast(8100, actInstant),
	}
	uses := PairCasts(events, newFixtureRules())
	require.Len(t, uses, 4)

	// (5000 - 2500) 비과세, (8100 - 5000 - 100) / (3000 / 2500)
	assert.InDeltaSlice(t, []float64{2500, 2500}, NormalizeIntervals(uses, constResolver(1), SkipTwo), 1e-6)
}

func TestNormalizeInstantHardCastIsNotTaxed(t *testing.T) {
	events := []RawEvent{
		cast(0, actInstant),
		cast(2500, actInstant),
		cast(5000, actHardCast), // swiftcast
		cast(7500, actInstant),
	}
	uses := PairCasts(events, newFixtureRules())
	require.Len(t, uses, 4)
	assert.True(t, uses[2].IsInstant())

	assert.Equal(t, []float64{2500, 2500}, NormalizeIntervals(uses, constResolver(1), SkipTwo))
}

func TestNormalizeDividesModifierAtPreviousStart(t *testing.T) {
	events := []RawEvent{
		cast(0, actInstant),
		cast(2500, actInstant),
		apply(2500, modHaste),
		cast(5000, actInstant),
		cast(7000, actInstant),
		remove(8000, modHaste),
		cast(9000, actInstant),
		end(20000),
	}
	state, err := TrackModifiers(1, events, newFixtureRules())
	require.NoError(t, err)
	uses := PairCasts(events, newFixtureRules())

	// 2500 시점에 걸린 버프는 2500 -> 5000 간격에 영향 없음
	got := NormalizeIntervals(uses, NewResolver(state, 1), SkipTwo)
	assert.InDeltaSlice(t, []float64{2500, 2500, 2500}, got, 1e-6)
}

func TestNormalizeSkipsInterrupted(t *testing.T) {
	events := []RawEvent{
		cast(0, actInstant),
		cast(2500, actInstant),
		cast(5000, actInstant),
		begin(7500, actHardCast), // interrupted
		cast(8000, actInstant),
		cast(10500, actInstant),
	}
	uses := PairCasts(events, newFixtureRules())
	require.Len(t, uses, 6)

	// (2500,5000) (5000,x) (x,8000) (8000,10500)
	assert.Equal(t, []float64{2500, 2500}, NormalizeIntervals(uses, constResolver(1), SkipTwo))
}

func TestHistogramTotalsValidIntervals(t *testing.T) {
	events := instants(actInstant, 0, 2500, 5010, 7480, 10000, 12500, 15020)
	events = append(events, begin(17500, actHardCast), cast(18000, actInstant), cast(20500, actInstant))
	uses := PairCasts(events, newFixtureRules())

	h := BuildHistogram(uses, constResolver(1), NearestMultiple{Step: 10}, SkipTwo)
	valid := NormalizeIntervals(uses, constResolver(1), SkipTwo)

	assert.Equal(t, len(valid), h.Total())
	assert.Equal(t, Histogram{2510: 1, 2470: 1, 2520: 2, 2500: 2}, h)
}

func TestHistogramEmpty(t *testing.T) {
	h := BuildHistogram(nil, constResolver(1), NearestMultiple{Step: 10}, SkipTwo)
	assert.NotNil(t, h)
	assert.Zero(t, h.Total())
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 2500.0, NearestMultiple{Step: 10}.Bucket(2504.9))
	assert.Equal(t, 2510.0, NearestMultiple{Step: 10}.Bucket(2505))
	assert.Equal(t, 2504.9, NearestMultiple{}.Bucket(2504.9))

	assert.Equal(t, 2.5, CeilDecimals{Places: 2}.Bucket(2500))
	assert.Equal(t, 2.51, CeilDecimals{Places: 2}.Bucket(2500.1))
	assert.Equal(t, 2.13, CeilDecimals{Places: 2}.Bucket(2125))
	assert.Equal(t, 3.0, CeilDecimals{Places: 0}.Bucket(2001))
}
