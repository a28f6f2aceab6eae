package render

import (
	"math"
	"sort"
	"strings"

	"github.com/dyuri/fffconv/internal/model"
)

// Palette is an ordered color ramp, coldest first.
type Palette []Color

// Index maps a level in [0, 1] to a palette index. NaN maps to 0.
// Levels outside [0, 1] are not clamped.
func (p Palette) Index(level float64) int {
	if math.IsNaN(level) {
		return 0
	}
	return int(math.Floor(float64(len(p)-1)*level + 0.5))
}

// Built-in palettes
var (
	WhiteHot = grayRamp(false)
	DarkHot  = grayRamp(true)

	Fakebow = gradient([]Color{
		0xff00000a,
		0xff3b0091,
		0xff98009b,
		0xffcc1582,
		0xffe94d0d,
		0xfff78500,
		0xfffec100,
		0xffffef63,
		0xfffffff6,
	}, 64)

	Widebow = gradient([]Color{
		0xff000000,
		0xff000080,
		0xff0000ff,
		0xff8000ff,
		0xffff0080,
		0xffff0000,
		0xffff8000,
		0xffffff00,
		0xffffff80,
		0xffffffff,
	}, 127)
)

var builtin = map[string]Palette{
	"whitehot": WhiteHot,
	"darkhot":  DarkHot,
	"fakebow":  Fakebow,
	"widebow":  Widebow,
}

// PaletteNames lists the built-in palettes, sorted.
func PaletteNames() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupPalette returns a copy of a built-in palette by name
// (case-insensitive).
func LookupPalette(name string) (Palette, bool) {
	p, ok := builtin[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return append(Palette(nil), p...), true
}

// EmbeddedPalette converts the image's YCbCr palette. It returns nil when
// the image has none.
func EmbeddedPalette(img *model.ThermalImage) Palette {
	if !img.HasPalette() {
		return nil
	}
	triples := img.Palette()
	p := make(Palette, len(triples))
	for i, t := range triples {
		p[i] = FromYCbCr(t)
	}
	return p
}

// grayRamp returns 255 opaque grays from black (or white when reversed).
func grayRamp(reversed bool) Palette {
	p := make(Palette, 255)
	for n := range p {
		v := n
		if reversed {
			v = 255 - n
		}
		p[n] = Color(v*0x010101) | 0xFF000000
	}
	return p
}

// gradient interpolates each ARGB channel over steps entries between
// consecutive stops. The last stop is appended as is.
func gradient(stops []Color, steps int) Palette {
	p := make(Palette, 0, (len(stops)-1)*steps+1)
	for i := 0; i < len(stops)-1; i++ {
		c1, c2 := channels(stops[i]), channels(stops[i+1])
		for j := 0; j < steps; j++ {
			frac := float32(j) / float32(steps)
			var out Color
			for k := 0; k < 4; k++ {
				delta := float32(int(c2[k]) - int(c1[k]))
				v := int(c1[k]) + int(math.Floor(float64(delta*frac+0.5)))
				out |= Color(v&0xFF) << (24 - 8*k)
			}
			p = append(p, out)
		}
	}
	return append(p, stops[len(stops)-1])
}

func channels(c Color) [4]uint8 {
	return [4]uint8{c.A(), c.R(), c.G(), c.B()}
}
