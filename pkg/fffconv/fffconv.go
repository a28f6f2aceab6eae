// Package fffconv decodes FLIR FFF thermal images and turns them into
// temperatures and false-color pictures.
//
// This package can be used as a library to parse containers (plain,
// compressed, or embedded in a radiometric JPEG), convert raw samples to
// temperatures, and render them through a palette.
//
// Example usage:
//
//	img, err := fffconv.DecodeFile("IR_0042.jpg")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	temps, err := fffconv.Temperatures(img, fffconv.Celsius)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(temps[0])
package fffconv

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/dyuri/fffconv/internal/archive"
	"github.com/dyuri/fffconv/internal/binary"
	"github.com/dyuri/fffconv/internal/jpeg"
	"github.com/dyuri/fffconv/internal/model"
	"github.com/dyuri/fffconv/internal/radiometry"
	"github.com/dyuri/fffconv/internal/render"
	"github.com/sirupsen/logrus"
)

type (
	ThermalImage  = model.ThermalImage
	Property      = model.Property
	Analytics     = render.Analytics
	Histogram     = render.Histogram
	Color         = render.Color
	Palette       = render.Palette
	Unit          = radiometry.Unit
	RasterDecoder = binary.RasterDecoder
	Error         = model.Error
)

const (
	Celsius    = radiometry.Celsius
	Fahrenheit = radiometry.Fahrenheit
	Kelvin     = radiometry.Kelvin
)

// Common errors
var (
	ErrFormat             = model.ErrFormat
	ErrInvalidHeader      = model.ErrInvalidHeader
	ErrUnsupportedSubtype = model.ErrUnsupportedSubtype
	ErrMissingProperty    = model.ErrMissingProperty
	ErrNoThermalData      = model.ErrNoThermalData
)

type decodeOptions struct {
	log     logrus.FieldLogger
	charset string
	raster  RasterDecoder
}

// Option configures decoding.
type Option func(*decodeOptions)

// WithLogger reports skipped records to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *decodeOptions) {
		o.log = l
	}
}

// WithCharset sets the charset of fixed text fields: utf-8 (default),
// windows-1252 or iso-8859-1.
func WithCharset(name string) Option {
	return func(o *decodeOptions) {
		o.charset = name
	}
}

// WithRasterDecoder replaces the codec used for Raw records that hold an
// embedded PNG or TIFF raster.
func WithRasterDecoder(d RasterDecoder) Option {
	return func(o *decodeOptions) {
		o.raster = d
	}
}

func readerOptions(opts []Option) ([]binary.Option, error) {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var out []binary.Option
	if o.log != nil {
		out = append(out, binary.WithLogger(o.log))
	}
	if o.charset != "" {
		enc, err := binary.Charset(o.charset)
		if err != nil {
			return nil, err
		}
		out = append(out, binary.WithTextEncoding(enc))
	}
	if o.raster != nil {
		out = append(out, binary.WithRasterDecoder(o.raster))
	}
	return out, nil
}

// DecodeReader parses an FFF container.
//
// The reader must support ReadAt for random access. The size parameter
// should be the total container size in bytes.
func DecodeReader(r io.ReaderAt, size int64, opts ...Option) (*ThermalImage, error) {
	ropts, err := readerOptions(opts)
	if err != nil {
		return nil, err
	}
	return binary.NewReader(r, size, ropts...).Parse()
}

// Decode parses an FFF container held in memory.
func Decode(data []byte, opts ...Option) (*ThermalImage, error) {
	return DecodeReader(bytes.NewReader(data), int64(len(data)), opts...)
}

// DecodeJPEG parses the FFF container embedded in a radiometric JPEG.
func DecodeJPEG(data []byte, opts ...Option) (*ThermalImage, error) {
	fff, err := jpeg.Extract(data)
	if err != nil {
		return nil, err
	}
	return Decode(fff, opts...)
}

// DecodeFile reads a JPEG or FFF file, optionally zstd, lz4 or xz
// compressed.
func DecodeFile(path string, opts ...Option) (*ThermalImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input file: %w", err)
	}
	return DecodeBytes(data, opts...)
}

// DecodeBytes is DecodeFile for data already in memory.
func DecodeBytes(data []byte, opts ...Option) (*ThermalImage, error) {
	data, _, err := archive.ReadAll(data)
	if err != nil {
		return nil, model.Wrap(ErrFormat, err)
	}
	if IsJPEG(data) {
		return DecodeJPEG(data, opts...)
	}
	return Decode(data, opts...)
}

// IsJPEG reports whether data starts with a JPEG start-of-image marker.
func IsJPEG(data []byte) bool {
	return len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8
}

// Extract returns the FFF container embedded in a radiometric JPEG.
func Extract(data []byte) ([]byte, error) {
	return jpeg.Extract(data)
}

// Encode writes img as an FFF container with big-endian raw samples.
func Encode(w io.Writer, img *ThermalImage) error {
	return binary.NewWriter(w).Write(img)
}

// Analyze computes the sample statistics used for rendering.
func Analyze(img *ThermalImage) (*Analytics, error) {
	return render.Analyze(img)
}

// NewConverter builds a temperature converter from the image's Camera
// properties.
func NewConverter(img *ThermalImage) (*radiometry.Converter, error) {
	cal, err := radiometry.CalibrationFrom(img.Properties())
	if err != nil {
		return nil, err
	}
	return radiometry.NewConverter(cal), nil
}

// Temperatures converts every raw sample of img, row-major.
func Temperatures(img *ThermalImage, u Unit) ([]float64, error) {
	if img.Len() == 0 {
		return nil, ErrNoThermalData
	}
	conv, err := NewConverter(img)
	if err != nil {
		return nil, err
	}
	return conv.Convert(img.RawValues(), u), nil
}

// RenderOptions selects the palette and range of Render.
type RenderOptions struct {
	// Palette to use; nil means the embedded palette, or WhiteHot when
	// the image has none.
	Palette Palette

	// Over and Under color samples outside the range.
	Over  Color
	Under Color

	// MinPercentile and MaxPercentile bound the range (0..1). A zero
	// MaxPercentile means 1.
	MinPercentile float64
	MaxPercentile float64
}

// Render renders img to one ARGB color per sample.
func Render(img *ThermalImage, a *Analytics, opts RenderOptions) []Color {
	p := opts.Palette
	if p == nil {
		p = render.EmbeddedPalette(img)
	}
	if len(p) == 0 {
		p = render.WhiteHot
	}

	maxP := opts.MaxPercentile
	if maxP == 0 {
		maxP = 1
	}
	m := render.Mapper{Palette: p, Over: opts.Over, Under: opts.Under}
	return render.Paletted(img, m, a.PercentileValue(opts.MinPercentile), a.PercentileValue(maxP))
}

// NewHistogram counts the samples of img into buckets over the image range.
func NewHistogram(img *ThermalImage, a *Analytics, buckets int) Histogram {
	return render.NewHistogram(img, buckets, a.Min(), a.Max())
}

// Palettes lists the builtin palette names.
func Palettes() []string {
	return render.PaletteNames()
}

// LookupPalette returns a builtin palette by name.
func LookupPalette(name string) (Palette, bool) {
	return render.LookupPalette(name)
}
