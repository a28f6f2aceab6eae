package render

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/dyuri/fffconv/internal/model"
)

// Color is a packed 0xAARRGGBB value, not premultiplied.
type Color uint32

// Opaque black and fully transparent.
const (
	Black       Color = 0xFF000000
	Transparent Color = 0x00000000
)

// ARGB builds a Color from its channels.
func ARGB(a, r, g, b uint8) Color {
	return Color(a)<<24 | Color(r)<<16 | Color(g)<<8 | Color(b)
}

func (c Color) A() uint8 { return uint8(c >> 24) }
func (c Color) R() uint8 { return uint8(c >> 16) }
func (c Color) G() uint8 { return uint8(c >> 8) }
func (c Color) B() uint8 { return uint8(c) }

// NRGBA converts to the image/color representation.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R(), G: c.G(), B: c.B(), A: c.A()}
}

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

func (c Color) String() string {
	return fmt.Sprintf("#%08x", uint32(c))
}

// Set parses "#AARRGGBB", "#RRGGBB" (opaque) or "0xAARRGGBB"; it makes
// *Color usable as a pflag.Value.
func (c *Color) Set(s string) error {
	hex := strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(s), "#"), "0x")
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", s, err)
	}
	switch len(hex) {
	case 6:
		*c = Color(v) | 0xFF000000
	case 8:
		*c = Color(v)
	default:
		return fmt.Errorf("invalid color %q: want 6 or 8 hex digits", s)
	}
	return nil
}

func (c *Color) Type() string { return "color" }

// FromYCbCr converts an embedded palette triple (Y, Cb, Cr) to an opaque
// color. Channels are truncated and clamped to 0..255.
func FromYCbCr(t model.Triple) Color {
	y := float64(t[0])
	cb := float64(int(t[1]) - 0x80)
	cr := float64(int(t[2]) - 0x80)

	r := int(y + 1.40200*cb)
	g := int(y - 0.34414*cr - 0.71414*cb)
	b := int(y + 1.77200*cr)

	return ARGB(0xFF, clamp(r), clamp(g), clamp(b))
}

func clamp(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
