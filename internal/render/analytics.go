// Package render turns raw thermal samples into statistics and false-color
// pixels.
package render

import (
	"math"
	"slices"

	"github.com/dyuri/fffconv/internal/model"
)

// Analytics holds order statistics of an image's raw samples. It is
// derived data: build it with Analyze and keep it next to the image.
type Analytics struct {
	sorted []uint16
}

// Analyze sorts the raw samples of img once. An image without samples
// yields ErrNoThermalData.
func Analyze(img *model.ThermalImage) (*Analytics, error) {
	return AnalyzeSamples(img.RawValues())
}

// AnalyzeSamples is Analyze for a bare sample slice. The slice is copied.
func AnalyzeSamples(samples []uint16) (*Analytics, error) {
	if len(samples) == 0 {
		return nil, model.ErrNoThermalData
	}
	sorted := slices.Clone(samples)
	slices.Sort(sorted)
	return &Analytics{sorted: sorted}, nil
}

// Len returns the number of samples.
func (a *Analytics) Len() int { return len(a.sorted) }

// Min returns the smallest raw value.
func (a *Analytics) Min() uint16 { return a.sorted[0] }

// Max returns the largest raw value.
func (a *Analytics) Max() uint16 { return a.sorted[len(a.sorted)-1] }

// PercentileValue returns the nearest-rank value at fraction p (0..1,
// clamped) without interpolation.
func (a *Analytics) PercentileValue(p float64) uint16 {
	if math.IsNaN(p) {
		p = 0
	}
	p = math.Max(0, math.Min(1, p))
	return a.sorted[int(math.Floor(p*float64(len(a.sorted)-1)))]
}

// PercentileOffset returns where PercentileValue(p) sits between Min and
// Max, 0..1. It is NaN when all samples are equal.
func (a *Analytics) PercentileOffset(p float64) float64 {
	return Level(a.PercentileValue(p), a.Min(), a.Max())
}

// PercentileMarks returns the offsets of the n evenly spaced percentiles
// 0, 1/n, ..., (n-1)/n.
func (a *Analytics) PercentileMarks(n int) []float64 {
	marks := make([]float64, n)
	for i := range marks {
		marks[i] = a.PercentileOffset(float64(i) / float64(n))
	}
	return marks
}

// Level normalises raw against the image range.
func (a *Analytics) Level(raw uint16) float64 {
	return Level(raw, a.Min(), a.Max())
}

// Level returns (raw-min)/(max-min). Values outside [min, max] fall
// outside [0, 1]; min == max gives NaN or ±Inf.
func Level(raw, min, max uint16) float64 {
	return (float64(raw) - float64(min)) / (float64(max) - float64(min))
}
