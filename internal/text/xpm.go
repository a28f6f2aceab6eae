package text

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"strings"
)

// xpmChars are the pixel codes: printable ASCII without space, quote and
// backslash.
const xpmChars = "!#$%&'()*+,-./0123456789:;<=>?@ABCDEFGHIJKLMNOPQRSTUVWXYZ[]^_`abcdefghijklmnopqrstuvwxyz{|}~"

// WriteXPM writes img as an XPM3 image named name. Pixels with alpha below
// 128 are written as "None". One character per pixel is used when the
// image has few enough colors, two otherwise.
func WriteXPM(w io.Writer, name string, img *image.NRGBA) error {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	// Collect the palette in first-seen order
	index := make(map[uint32]int)
	var colors []uint32
	pixels := make([]int, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := img.NRGBAAt(x, y)
			key := uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
			if c.A < 128 {
				key = 1 << 24 // transparent
			}
			i, ok := index[key]
			if !ok {
				i = len(colors)
				index[key] = i
				colors = append(colors, key)
			}
			pixels = append(pixels, i)
		}
	}

	cpp := 1
	if len(colors) > len(xpmChars) {
		cpp = 2
	}
	if len(colors) > len(xpmChars)*len(xpmChars) {
		return fmt.Errorf("too many colors for XPM encoding: %d", len(colors))
	}
	code := func(i int) string {
		if cpp == 1 {
			return xpmChars[i : i+1]
		}
		return string([]byte{xpmChars[i/len(xpmChars)], xpmChars[i%len(xpmChars)]})
	}

	bw := bufio.NewWriter(w)
	// Format:
	// /* XPM */
	// static char *name[] = {
	// "8 8 2 1",
	// "! c #ff0000",
	// "# c None",
	// "!!!!!!!!",
	// ...
	// };
	fmt.Fprintf(bw, "/* XPM */\nstatic char *%s[] = {\n", xpmName(name))
	fmt.Fprintf(bw, "\"%d %d %d %d\",\n", width, height, len(colors), cpp)
	for i, c := range colors {
		if c == 1<<24 {
			fmt.Fprintf(bw, "\"%s c None\",\n", code(i))
		} else {
			fmt.Fprintf(bw, "\"%s c #%06x\",\n", code(i), c)
		}
	}

	var row strings.Builder
	for y := 0; y < height; y++ {
		row.Reset()
		for x := 0; x < width; x++ {
			row.WriteString(code(pixels[y*width+x]))
		}
		sep := ","
		if y == height-1 {
			sep = ""
		}
		fmt.Fprintf(bw, "\"%s\"%s\n", row.String(), sep)
	}
	fmt.Fprintf(bw, "};\n")

	return bw.Flush()
}

// xpmName turns name into a C identifier
func xpmName(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		case r >= '0' && r <= '9' && i > 0:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "image"
	}
	return b.String()
}
