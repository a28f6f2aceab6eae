package text

import (
	"bufio"
	"fmt"
	"io"

	"github.com/dyuri/fffconv/internal/binary"
	"github.com/dyuri/fffconv/internal/model"
)

// Writer handles writing property sheets
type Writer struct {
	w *bufio.Writer

	// Palette includes the embedded color table as a [_palette] section.
	Palette bool
}

// NewWriter creates a new property sheet writer
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write outputs the image description, one section per record kind
func (w *Writer) Write(img *model.ThermalImage) error {
	if err := w.writeImage(img); err != nil {
		return fmt.Errorf("write image section: %w", err)
	}

	for _, k := range binary.PropertyKinds {
		props := img.Properties().Category(k.String())
		if len(props) == 0 {
			continue
		}
		if err := w.writeProperties(k.String(), props); err != nil {
			return fmt.Errorf("write %s section: %w", k, err)
		}
	}

	if w.Palette && img.HasPalette() {
		if err := w.writePalette(img.Palette()); err != nil {
			return fmt.Errorf("write palette section: %w", err)
		}
	}

	return w.w.Flush()
}

// writeImage writes the [_image] section
func (w *Writer) writeImage(img *model.ThermalImage) error {
	// Format:
	// [_image]
	// Creator=MTX IR
	// Width=320
	// Height=240
	// [end]
	fmt.Fprintf(w.w, "[%s]\n", sectionImage)
	if img.Creator() != "" {
		fmt.Fprintf(w.w, "Creator=%s\n", img.Creator())
	}
	fmt.Fprintf(w.w, "Width=%d\nHeight=%d\n", img.Width(), img.Height())
	_, err := fmt.Fprintf(w.w, "[end]\n\n")
	return err
}

// writeProperties writes a [Camera], [Palette] or [PiP] section
func (w *Writer) writeProperties(section string, props []model.Property) error {
	fmt.Fprintf(w.w, "[%s]\n", section)
	for _, p := range props {
		fmt.Fprintf(w.w, "%s=%s\n", p.Name, p.Value.String())
	}
	_, err := fmt.Fprintf(w.w, "[end]\n\n")
	return err
}

// writePalette writes the embedded YCbCr color table
func (w *Writer) writePalette(palette []model.Triple) error {
	fmt.Fprintf(w.w, "[%s]\n", sectionPalette)
	for _, c := range palette {
		fmt.Fprintf(w.w, "Color=%d,%d,%d\n", c[0], c[1], c[2])
	}
	_, err := fmt.Fprintf(w.w, "[end]\n\n")
	return err
}
