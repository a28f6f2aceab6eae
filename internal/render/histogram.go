package render

import (
	"math"

	"github.com/dyuri/fffconv/internal/model"
)

// Histogram counts samples per level bucket over a raw range.
type Histogram struct {
	Buckets []int
	Under   int // level < 0
	Over    int // level > 1
}

// Total returns the number of counted samples, in range or not.
func (h Histogram) Total() int {
	n := h.Under + h.Over
	for _, c := range h.Buckets {
		n += c
	}
	return n
}

// Peak returns the largest bucket count.
func (h Histogram) Peak() int {
	peak := 0
	for _, c := range h.Buckets {
		if c > peak {
			peak = c
		}
	}
	return peak
}

// NewHistogram buckets the samples of img over [min, max] using the same
// index rule as palette mapping. Samples outside the range are counted in
// Under and Over instead of a bucket; NaN levels (min == max) land in
// bucket 0.
func NewHistogram(img *model.ThermalImage, buckets int, min, max uint16) Histogram {
	h := Histogram{Buckets: make([]int, buckets)}
	if buckets <= 0 {
		return h
	}
	for i := 0; i < img.Len(); i++ {
		level := Level(img.Raw(i), min, max)
		switch {
		case level < 0:
			h.Under++
		case level > 1:
			h.Over++
		case math.IsNaN(level):
			h.Buckets[0]++
		default:
			h.Buckets[int(math.Floor(float64(buckets-1)*level+0.5))]++
		}
	}
	return h
}
