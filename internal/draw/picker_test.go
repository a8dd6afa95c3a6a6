package draw_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Tinuva88/TCGFun/internal/draw"
)

func TestPick_EmptyPool(t *testing.T) {
	for name, weights := range map[string][]float64{
		"nil":      nil,
		"zeros":    {0, 0},
		"negative": {-1, -2},
		"nan":      {math.NaN()},
		"inf":      {math.Inf(1)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := draw.Pick(newSeq(0.5), weights)
			assert.ErrorIs(t, err, draw.ErrEmptyPool)
		})
	}
}

func TestPick_CumulativeScan(t *testing.T) {
	weights := []float64{1, 2, 1}
	cases := []struct {
		u    float64
		want int
	}{
		{0, 0},
		{0.2499, 0},
		{0.25, 1},
		{0.7499, 1},
		{0.75, 2},
		{0.9999, 2},
	}
	for _, tc := range cases {
		got, err := draw.Pick(newSeq(tc.u), weights)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "u=%v", tc.u)
	}
}

func TestPick_SkipsNonViableWeights(t *testing.T) {
	for _, u := range []float64{0, 0.5, 0.999} {
		got, err := draw.Pick(newSeq(u), []float64{0, 3, -1, math.NaN()})
		require.NoError(t, err)
		assert.Equal(t, 1, got)
	}
}

func TestPick_DriftFallsBackToLastViable(t *testing.T) {
	got, err := draw.Pick(newSeq(1.0), []float64{1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestPickUniform(t *testing.T) {
	_, err := draw.PickUniform(newSeq(0.1), 0)
	assert.ErrorIs(t, err, draw.ErrEmptyPool)

	got, err := draw.PickUniform(newSeq(0.5), 4)
	require.NoError(t, err)
	assert.Equal(t, 2, got)
}

func TestPick_Property_ReturnsViableIndex(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		weights := rapid.SliceOfN(rapid.Float64Range(-1, 10), 1, 20).Draw(rt, "weights")
		u := rapid.Float64Range(0, 0.999999).Draw(rt, "u")

		viable := false
		for _, w := range weights {
			if w > 0 {
				viable = true
			}
		}
		got, err := draw.Pick(newSeq(u), weights)
		if !viable {
			if err == nil {
				rt.Fatalf("expected ErrEmptyPool for %v", weights)
			}
			return
		}
		if err != nil {
			rt.Fatalf("unexpected error: %v", err)
		}
		if got < 0 || got >= len(weights) || weights[got] <= 0 {
			rt.Fatalf("picked non-viable index %d of %v", got, weights)
		}
	})
}

// TestPick_UniformWeightsChiSquare checks that equal weights converge to a
// uniform distribution. 16.27 is the chi-square critical value for 3 degrees
// of freedom at p = 0.001.
func TestPick_UniformWeightsChiSquare(t *testing.T) {
	const (
		buckets = 4
		draws   = 40000
	)
	src := draw.NewSeededSource(42)
	weights := []float64{1, 1, 1, 1}
	counts := make([]int, buckets)
	for i := 0; i < draws; i++ {
		idx, err := draw.Pick(src, weights)
		require.NoError(t, err)
		counts[idx]++
	}

	expected := float64(draws) / buckets
	chi := 0.0
	for _, c := range counts {
		d := float64(c) - expected
		chi += d * d / expected
	}
	assert.Less(t, chi, 16.27, "counts %v", counts)
}

func TestSources(t *testing.T) {
	a := draw.NewSeededSource(7)
	b := draw.NewSeededSource(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}

	c := draw.NewCryptoSource()
	for i := 0; i < 100; i++ {
		v := c.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}

	assert.Equal(t, draw.SeedFromString("case night"), draw.SeedFromString("case night"))
	assert.NotEqual(t, draw.SeedFromString("a"), draw.SeedFromString("b"))
}
