package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsEmptyInputIsNil(t *testing.T) {
	assert.Nil(t, Median(nil))
	assert.Nil(t, StdDev(nil))
	assert.Nil(t, Percentile(nil, 0.9))
	assert.Nil(t, Mean(nil))
	assert.Nil(t, Min(nil))
	assert.Nil(t, Max(nil))
	assert.Nil(t, Mode(nil))
}

func TestMedian(t *testing.T) {
	assert.Equal(t, 3.0, *Median([]float64{5, 1, 3}))
	assert.Equal(t, 2.5, *Median([]float64{4, 1, 3, 2}))

	in := []float64{3, 1, 2}
	Median(in)
	assert.Equal(t, []float64{3, 1, 2}, in, "input must not be reordered")
}

func TestStdDevIsPopulation(t *testing.T) {
	assert.Equal(t, 0.0, *StdDev([]float64{7}))
	assert.InDelta(t, 2.0, *StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9}), 1e-12)
}

func TestPercentileIsCeilRank(t *testing.T) {
	tests := []struct {
		values []float64
		want   float64
	}{
		{[]float64{10, 1, 2, 3, 4, 5, 6, 7, 8, 9}, 9},
		{[]float64{22.5}, 22.5},
		{[]float64{3, 1, 2}, 3},
		{[]float64{1, 2, 3, 4, 5}, 5},
	}
	for _, tt := range tests {
		got := Percentile(tt.values, 0.9)
		require.NotNil(t, got)
		assert.Equal(t, tt.want, *got, "p90 of %v", tt.values)
	}
	assert.Equal(t, 1.0, *Percentile([]float64{3, 1, 2}, 0))
}

func TestMinMaxMean(t *testing.T) {
	v := []float64{-70, -94, -80}
	assert.Equal(t, -94.0, *Min(v))
	assert.Equal(t, -70.0, *Max(v))
	assert.InDelta(t, -81.333, *Mean(v), 0.001)
}

func TestModePrefersFirstToReachCount(t *testing.T) {
	assert.Equal(t, 5, *Mode([]int{5, 7, 7, 5}))
	assert.Equal(t, 7, *Mode([]int{5, 7, 7}))
}
