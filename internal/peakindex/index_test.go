package peakindex

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsen/specclust/internal/spectrum"
)

func withPeaks(mzs ...float64) *spectrum.Spectrum {
	s := &spectrum.Spectrum{}
	for _, mz := range mzs {
		s.Peaks = append(s.Peaks, spectrum.Peak{MZ: mz, Intensity: 1})
	}
	return s
}

func TestBucketKey(t *testing.T) {
	tests := []struct {
		mz, width float64
		want      int64
	}{
		{50.01, 0.02, 2500},
		{50.0, 0.25, 200},
		{0, 0.02, 0},
		{1.99, 2, 0},
		{2, 2, 1},
		{-0.5, 1, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketKey(tt.mz, tt.width), "BucketKey(%v, %v)", tt.mz, tt.width)
	}
}

func TestBucketKey_Saturates(t *testing.T) {
	assert.Equal(t, int64(math.MaxInt64), BucketKey(1e300, 0.02))
	assert.Equal(t, int64(math.MaxInt64), BucketKey(math.MaxFloat64, 1))
	assert.Equal(t, int64(math.MinInt64), BucketKey(-1e300, 0.02))
	// still exact just below the limit
	assert.Equal(t, int64(1<<52), BucketKey(float64(1<<52), 1))
}

func TestRegister_RejectsOutOfRangeID(t *testing.T) {
	idx := New(1, 5)
	assert.Panics(t, func() { idx.Register(withPeaks(10), -1) })
	assert.Panics(t, func() { idx.Register(withPeaks(10), math.MaxUint32+1) })
	assert.NotPanics(t, func() { idx.Register(withPeaks(10), math.MaxUint32) })
	assert.Equal(t, []int{math.MaxUint32}, idx.Candidates(withPeaks(10.5)))
}

func TestBucketKey_MatchesFloor(t *testing.T) {
	width := 0.02
	values := []float64{100.001, 100.019, 100.02, 100.039, 250.5, 999.99}
	for _, x := range values {
		for _, y := range values {
			same := math.Floor(x/width) == math.Floor(y/width)
			assert.Equal(t, same, BucketKey(x, width) == BucketKey(y, width), "%v vs %v", x, y)
		}
	}
}

func TestBucketKey_BoundaryStraddle(t *testing.T) {
	// Closer than the bin width, but on either side of a boundary.
	assert.NotEqual(t, BucketKey(1.99, 1), BucketKey(2.01, 1))
}

func TestRegisterAndCandidates(t *testing.T) {
	idx := New(1, 5)
	assert.Empty(t, idx.Candidates(withPeaks(10, 20)))

	idx.Register(withPeaks(10, 20, 30), 0)
	idx.Register(withPeaks(30.5, 40), 3)
	idx.Register(withPeaks(50), 7)

	assert.Equal(t, 3, idx.Leaders())
	assert.Equal(t, 5, idx.Len()) // buckets 10, 20, 30, 40, 50

	tests := []struct {
		name string
		s    *spectrum.Spectrum
		want []int
	}{
		{"single hit", withPeaks(10.7), []int{0}},
		{"shared bucket deduplicated", withPeaks(30.1, 40.2), []int{0, 3}},
		{"ascending order", withPeaks(50.2, 30.9, 20.1), []int{0, 3, 7}},
		{"no hit", withPeaks(60, 70), nil},
		{"no peaks", withPeaks(), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.Candidates(tt.s))
		})
	}
}

func TestTopKUsesLowestMassPeaks(t *testing.T) {
	idx := New(1, 2)
	idx.Register(withPeaks(100, 200, 300), 0)

	// only buckets 100 and 200 were registered
	assert.Equal(t, []int{0}, idx.Candidates(withPeaks(200)))
	assert.Empty(t, idx.Candidates(withPeaks(300)))

	// a query only looks at its own first two peaks
	assert.Empty(t, idx.Candidates(withPeaks(1, 2, 100)))
}

func TestBuckets(t *testing.T) {
	idx := New(0.5, 5)
	idx.Register(withPeaks(1.2, 3.1), 2)
	idx.Register(withPeaks(1.4), 4)

	buckets := idx.Buckets()
	require.Len(t, buckets, 2)
	assert.Equal(t, Bucket{Key: 2, LowMZ: 1.0, Leaders: []int{2, 4}}, buckets[0])
	assert.Equal(t, Bucket{Key: 6, LowMZ: 3.0, Leaders: []int{2}}, buckets[1])
	assert.Positive(t, idx.SizeInBytes())
}
