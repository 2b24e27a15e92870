// Package peakindex maps quantized peak m/z to the cluster leaders that own
// a peak in that bin.
//
// Only the first TopK peaks of a spectrum (its lowest-m/z peaks, since peak
// lists are sorted) are indexed. Two masses closer than the bin width but on
// opposite sides of a bin boundary land in different buckets; that is an
// accepted source of missed candidates.
package peakindex

import (
	"fmt"
	"iter"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/matsen/specclust/internal/spectrum"
)

// BucketKey quantizes an m/z value into its bin.
// Quotients beyond the int64 range saturate at math.MinInt64 or
// math.MaxInt64, so all such values share an edge bucket.
func BucketKey(mz, binWidth float64) int64 {
	q := math.Floor(mz / binWidth)
	switch {
	case q >= math.MaxInt64: // float64(MaxInt64) rounds up to 2^63
		return math.MaxInt64
	case q < math.MinInt64:
		return math.MinInt64
	}
	return int64(q)
}

// Index is an append-only bucket index over leader ids.
// It is not safe for concurrent use.
type Index struct {
	binWidth float64
	topK     int
	buckets  map[int64]*roaring.Bitmap
	leaders  int
}

// New creates an empty index.
func New(binWidth float64, topK int) *Index {
	return &Index{
		binWidth: binWidth,
		topK:     topK,
		buckets:  make(map[int64]*roaring.Bitmap),
	}
}

// keys yields the bucket keys of the first topK peaks of s.
func (idx *Index) keys(s *spectrum.Spectrum) iter.Seq[int64] {
	return func(yield func(int64) bool) {
		n := min(idx.topK, len(s.Peaks))
		for i := 0; i < n; i++ {
			if !yield(BucketKey(s.Peaks[i].MZ, idx.binWidth)) {
				return
			}
		}
	}
}

// Candidates returns the deduplicated leaders sharing a bucket with any of
// the first topK peaks of s, in ascending id order. Leaders are registered
// in increasing id order, so this is also their insertion order.
func (idx *Index) Candidates(s *spectrum.Spectrum) []int {
	union := roaring.New()
	for key := range idx.keys(s) {
		if bm, ok := idx.buckets[key]; ok {
			union.Or(bm)
		}
	}
	if union.IsEmpty() {
		return nil
	}

	out := make([]int, 0, union.GetCardinality())
	it := union.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Register adds leader id under the bucket of each of the first topK peaks
// of s. Spectra with fewer than topK peaks register what they have.
// Ids are stored as uint32; Register panics on an id outside that range.
func (idx *Index) Register(s *spectrum.Spectrum, id int) {
	if id < 0 || uint64(id) > math.MaxUint32 {
		panic(fmt.Sprintf("peakindex: leader id %d out of range", id))
	}
	for key := range idx.keys(s) {
		bm, ok := idx.buckets[key]
		if !ok {
			bm = roaring.New()
			idx.buckets[key] = bm
		}
		bm.Add(uint32(id))
	}
	idx.leaders++
}

// Len returns the number of non-empty buckets.
func (idx *Index) Len() int {
	return len(idx.buckets)
}

// Leaders returns the number of Register calls.
func (idx *Index) Leaders() int {
	return idx.leaders
}

// Bucket is a snapshot of one bucket for diagnostics.
type Bucket struct {
	Key     int64   `json:"key"`
	LowMZ   float64 `json:"low_mz"` // Inclusive lower bound of the bin
	Leaders []int   `json:"leaders"`
}

// Buckets returns all buckets ordered by key.
func (idx *Index) Buckets() []Bucket {
	keys := make([]int64, 0, len(idx.buckets))
	for k := range idx.buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		members := idx.buckets[k].ToArray()
		leaders := make([]int, len(members))
		for i, m := range members {
			leaders[i] = int(m)
		}
		out = append(out, Bucket{
			Key:     k,
			LowMZ:   float64(k) * idx.binWidth,
			Leaders: leaders,
		})
	}
	return out
}

// SizeInBytes returns the serialized size of all bucket bitmaps.
func (idx *Index) SizeInBytes() uint64 {
	var n uint64
	for _, bm := range idx.buckets {
		n += bm.GetSizeInBytes()
	}
	return n
}
