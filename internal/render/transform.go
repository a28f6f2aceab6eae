package render

import (
	"image"

	"github.com/dyuri/fffconv/internal/model"
	"github.com/dyuri/fffconv/internal/parallel"
)

// Transformer produces the color of one pixel. level is the pixel's raw
// value normalised against the requested range.
type Transformer func(x, y, w, h int, level float64, raw uint16) Color

// Mapper maps levels through a palette. Levels below 0 get Under, levels
// above 1 get Over.
type Mapper struct {
	Palette Palette
	Over    Color
	Under   Color
}

// Color returns the color of level.
func (m Mapper) Color(level float64) Color {
	switch {
	case level < 0:
		return m.Under
	case level > 1:
		return m.Over
	case len(m.Palette) == 0:
		return Transparent
	}
	return m.Palette[m.Palette.Index(level)]
}

// Transformer adapts the mapper for Transform.
func (m Mapper) Transformer() Transformer {
	return func(_, _, _, _ int, level float64, _ uint16) Color {
		return m.Color(level)
	}
}

// Transform applies fn to every raw sample of img, with levels computed
// against [min, max]. The result has one color per sample, row-major.
// fn is called from several goroutines at once and in no particular order,
// so it must be safe for concurrent use.
func Transform(img *model.ThermalImage, min, max uint16, fn Transformer) []Color {
	n := img.Len()
	w, h := img.Width(), img.Height()
	if w <= 0 {
		w, h = n, 1
	}

	out := make([]Color, n)
	parallel.For(n, func(start, end int) {
		for i := start; i < end; i++ {
			raw := img.Raw(i)
			out[i] = fn(i%w, i/w, w, h, Level(raw, min, max), raw)
		}
	})
	return out
}

// Paletted renders img through m over [min, max].
func Paletted(img *model.ThermalImage, m Mapper, min, max uint16) []Color {
	return Transform(img, min, max, m.Transformer())
}

// Default renders img over its full range with the embedded palette, or
// WhiteHot when the image has none. Out of range pixels cannot occur.
func Default(img *model.ThermalImage, a *Analytics) []Color {
	p := EmbeddedPalette(img)
	if len(p) == 0 {
		p = WhiteHot
	}
	return Paletted(img, Mapper{Palette: p}, a.Min(), a.Max())
}

// ToNRGBA copies pixels into a w×h image. Missing pixels stay transparent.
func ToNRGBA(pixels []Color, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, c := range pixels {
		if i >= w*h {
			break
		}
		o := i * 4
		img.Pix[o] = c.R()
		img.Pix[o+1] = c.G()
		img.Pix[o+2] = c.B()
		img.Pix[o+3] = c.A()
	}
	return img
}

// Colorbar renders p left (cold) to right (hot) as a w×h strip.
func Colorbar(p Palette, w, h int) []Color {
	out := make([]Color, w*h)
	if len(p) == 0 || w <= 0 {
		return out
	}
	for x := 0; x < w; x++ {
		c := p[x*len(p)/w]
		for y := 0; y < h; y++ {
			out[y*w+x] = c
		}
	}
	return out
}
