// Package text reads and writes property sheets: a line-oriented
// "[Section] key=value [end]" rendering of a thermal image's properties.
package text

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dyuri/fffconv/internal/binary"
	"github.com/dyuri/fffconv/internal/model"
)

const (
	sectionImage   = "_image"
	sectionPalette = "_palette"
)

// Sheet is the content of a property sheet
type Sheet struct {
	Creator    string
	Width      int
	Height     int
	Properties []model.Property
	Palette    []model.Triple // nil when the sheet has no [_palette] section
}

// Apply returns a copy of img with the sheet's properties (and palette,
// if present) replacing the decoded ones. The [_image] section is
// informational only: the image keeps its own creator and size.
func (s *Sheet) Apply(img *model.ThermalImage) *model.ThermalImage {
	out := img.WithProperties(s.Properties...)
	if s.Palette == nil {
		return out
	}

	b := model.NewImageBuilder().
		Creator(out.Creator()).
		Size(out.Width(), out.Height()).
		RawValues(out.RawValues()).
		Palette(s.Palette)
	for _, p := range out.Properties().All() {
		b.AddProperty(p)
	}
	return b.Build()
}

// Reader handles reading property sheets
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a new property sheet reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
		line:    0,
	}
}

// Read parses the entire sheet. Property names and sections are checked
// against the FFF property tables; values are parsed with the type of the
// named property.
func (r *Reader) Read() (*Sheet, error) {
	sheet := &Sheet{}
	seen := make(map[string]bool)

	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if !strings.HasPrefix(line, "[") {
			return nil, fmt.Errorf("line %d: expected section header, got %q", r.line, line)
		}
		section := strings.TrimSuffix(strings.TrimPrefix(line, "["), "]")

		switch section {
		case sectionImage:
			if err := r.readImage(sheet); err != nil {
				return nil, fmt.Errorf("line %d: read image section: %w", r.line, err)
			}

		case sectionPalette:
			palette, err := r.readPalette()
			if err != nil {
				return nil, fmt.Errorf("line %d: read palette section: %w", r.line, err)
			}
			sheet.Palette = palette

		case "end":
			continue

		default:
			props, err := r.readProperties(section)
			if err != nil {
				return nil, fmt.Errorf("line %d: read %s section: %w", r.line, section, err)
			}
			for _, p := range props {
				if seen[p.Name] {
					return nil, fmt.Errorf("line %d: %s set twice", r.line, p.Name)
				}
				seen[p.Name] = true
				sheet.Properties = append(sheet.Properties, p)
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}

	return sheet, nil
}

// entries yields the key=value pairs of the current section up to [end]
func (r *Reader) entries(fn func(key, value string) error) error {
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[end]") {
			return nil
		}

		// Parse key=value pairs
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("line %d: expected key=value, got %q", r.line, line)
		}

		if err := fn(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])); err != nil {
			return fmt.Errorf("line %d: %w", r.line, err)
		}
	}
	return fmt.Errorf("unexpected EOF looking for [end]")
}

// readImage reads the [_image] section
func (r *Reader) readImage(sheet *Sheet) error {
	return r.entries(func(key, value string) error {
		var err error
		switch key {
		case "Creator":
			sheet.Creator = value
		case "Width":
			sheet.Width, err = strconv.Atoi(value)
		case "Height":
			sheet.Height, err = strconv.Atoi(value)
		}
		return err
	})
}

// readPalette reads the [_palette] section
func (r *Reader) readPalette() ([]model.Triple, error) {
	palette := []model.Triple{}
	err := r.entries(func(key, value string) error {
		if key != "Color" {
			return fmt.Errorf("unexpected key %s", key)
		}
		c, err := parseTriple(value)
		if err != nil {
			return err
		}
		palette = append(palette, c)
		return nil
	})
	return palette, err
}

// readProperties reads a section named after a record kind
func (r *Reader) readProperties(section string) ([]model.Property, error) {
	var props []model.Property
	err := r.entries(func(key, value string) error {
		d, kind, ok := binary.LookupProperty(key)
		if !ok {
			return fmt.Errorf("unknown property %s", key)
		}
		if kind.String() != section {
			return fmt.Errorf("%s belongs to [%s], not [%s]", key, kind, section)
		}
		v, err := ParseValue(d.Type, value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		props = append(props, model.Property{Name: key, Category: section, Value: v})
		return nil
	})
	return props, err
}

// ParseValue parses the sheet representation of a value of type tag.
func ParseValue(tag model.TypeTag, s string) (model.Value, error) {
	switch tag {
	case model.Int32:
		n, err := parseInt(s, 32)
		return model.Int32Value(int32(n)), err
	case model.Int16S:
		n, err := parseInt(s, 16)
		return model.Int16SValue(int16(n)), err
	case model.Int16U:
		n, err := parseUint(s, 16)
		return model.Int16UValue(uint16(n)), err
	case model.Byte1:
		n, err := parseUint(s, 8)
		return model.ByteValue(byte(n)), err
	case model.Float32:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil && !isRangeError(err) {
			return model.Value{}, err
		}
		return model.Float32Value(float32(f)), nil
	case model.Text16, model.Text32:
		if len(s) > tag.Width() {
			return model.Value{}, fmt.Errorf("text %q longer than %d bytes", s, tag.Width())
		}
		return model.TextValue(tag, s), nil
	case model.Color:
		c, err := parseTriple(s)
		return model.ColorValue(c), err
	default:
		return model.Value{}, fmt.Errorf("unsupported type %v", tag)
	}
}

// parseInt parses a signed value like "-7340" or "0x1f"
func parseInt(s string, bits int) (int64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, bits)
		return int64(v), err
	}
	return strconv.ParseInt(s, 10, bits)
}

func parseUint(s string, bits int) (uint64, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return strconv.ParseUint(s[2:], 16, bits)
	}
	return strconv.ParseUint(s, 10, bits)
}

// parseTriple parses a color like "16,128,128"
func parseTriple(s string) (model.Triple, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return model.Triple{}, fmt.Errorf("color %q: want three components", s)
	}
	var t model.Triple
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return model.Triple{}, fmt.Errorf("color %q: %w", s, err)
		}
		t[i] = byte(v)
	}
	return t, nil
}

// isRangeError reports float overflow, which ParseFloat answers with ±Inf.
func isRangeError(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}
