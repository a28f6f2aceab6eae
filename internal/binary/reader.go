package binary

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png" // Register PNG decoder for embedded raw rasters.
	"io"
	"math/bits"

	"github.com/dyuri/fffconv/internal/model"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/tiff" // Register TIFF decoder for embedded raw rasters.
	"golang.org/x/text/encoding"
)

// Reader handles parsing of FFF containers
type Reader struct {
	r      io.ReaderAt
	size   int64
	props  PropertyDecoder
	raster RasterDecoder
	log    logrus.FieldLogger
}

// Option configures a Reader.
type Option func(*Reader)

// WithLogger sets the logger used to report skipped records.
func WithLogger(l logrus.FieldLogger) Option {
	return func(r *Reader) {
		if l != nil {
			r.log = l
		}
	}
}

// WithTextEncoding sets the encoding of fixed text fields (default UTF-8).
func WithTextEncoding(enc encoding.Encoding) Option {
	return func(r *Reader) {
		r.props = NewPropertyDecoder(enc)
	}
}

// WithRasterDecoder replaces the codec used for embedded-image Raw records.
func WithRasterDecoder(d RasterDecoder) Option {
	return func(r *Reader) {
		if d != nil {
			r.raster = d
		}
	}
}

// RasterDecoder decodes a 16-bit single channel raster. Samples are
// returned row-major exactly as the codec produced them.
type RasterDecoder interface {
	DecodeRaster(data []byte) (width, height int, samples []uint16, err error)
}

// NewReader creates a new FFF reader over size bytes of r
func NewReader(r io.ReaderAt, size int64, opts ...Option) *Reader {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	reader := &Reader{
		r:      r,
		size:   size,
		raster: ImageRasterDecoder{},
		log:    discard,
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Header is the parsed container header
type Header struct {
	Creator         string
	Version         int32
	DirectoryOffset int32
	DirectoryCount  int32
}

// DirectoryEntry is one 32-byte record directory entry
type DirectoryEntry struct {
	Kind     Kind
	SubKind  SubKind
	Version  uint32
	Index    uint32
	Offset   int32 // Record offset from start of FFF data
	Length   int32 // Record length
	Checksum uint32
}

// Parse reads the whole container and returns the decoded image.
//
// Header and directory problems abort the parse. A Camera, Palette or PiP
// record that cannot be decoded is skipped and logged; a Raw record that
// cannot be decoded aborts the parse.
func (r *Reader) Parse() (*model.ThermalImage, error) {
	header, err := r.ReadHeader()
	if err != nil {
		return nil, err
	}

	entries, err := r.ReadDirectory(header)
	if err != nil {
		return nil, err
	}

	b := model.NewImageBuilder().Creator(header.Creator)
	var haveRaw, havePalette bool

	for i, e := range entries {
		log := r.log.WithFields(logrus.Fields{
			"record":  i,
			"kind":    e.Kind.String(),
			"subkind": e.SubKind.String(),
			"offset":  e.Offset,
			"length":  e.Length,
		})

		switch e.Kind {
		case KindEmpty:
			continue

		case KindCamera, KindPalette, KindPiP:
			palette, err := r.readPropertyRecord(e, b, log)
			if err != nil {
				log.WithError(err).Warn("skipping record")
				continue
			}
			if palette != nil {
				if havePalette {
					log.Debug("ignoring additional palette table")
					continue
				}
				b.Palette(palette)
				havePalette = true
			}

		case KindRaw:
			if haveRaw {
				log.Debug("ignoring additional raw record")
				continue
			}
			width, height, samples, err := r.readRawRecord(e)
			if err != nil {
				return nil, fmt.Errorf("read raw record %d: %w", i, err)
			}
			if width*height != len(samples) {
				log.Warnf("raw size %dx%d does not match %d samples", width, height, len(samples))
			}
			b.Size(width, height).RawValues(samples)
			haveRaw = true
			log.Debugf("decoded %dx%d raw image", width, height)

		default:
			log.Debug("skipping unsupported record kind")
		}
	}

	return b.Build(), nil
}

// ReadHeader reads and verifies the container header
func (r *Reader) ReadHeader() (*Header, error) {
	buf := make([]byte, HeaderRecordCount+4)
	if r.size < int64(len(buf)) {
		return nil, model.Wrap(model.ErrInvalidHeader, fmt.Errorf("container too small: %d bytes", r.size))
	}
	if err := r.readAt(buf, 0); err != nil {
		return nil, model.Wrap(model.ErrInvalidHeader, fmt.Errorf("read header bytes: %w", err))
	}

	// Offset 0x00: "FFF\0" signature
	if string(buf[HeaderFormat:HeaderFormat+len(Magic)]) != Magic {
		return nil, model.Wrap(model.ErrInvalidHeader,
			fmt.Errorf("unrecognized signature %q", buf[HeaderFormat:HeaderFormat+len(Magic)]))
	}

	// Offset 0x04: Creator (16 bytes, padded)
	creator, err := r.props.decodeText(buf[HeaderCreator : HeaderCreator+CreatorLength])
	if err != nil {
		return nil, model.Wrap(model.ErrInvalidHeader, fmt.Errorf("decode creator: %w", err))
	}

	return &Header{
		Creator:         creator,
		Version:         int32(headerOrder.Uint32(buf[HeaderVersion:])),
		DirectoryOffset: int32(headerOrder.Uint32(buf[HeaderRecordOffset:])),
		DirectoryCount:  int32(headerOrder.Uint32(buf[HeaderRecordCount:])),
	}, nil
}

// ReadDirectory reads every record directory entry
func (r *Reader) ReadDirectory(h *Header) ([]DirectoryEntry, error) {
	if h.DirectoryCount < 0 || h.DirectoryOffset < 0 {
		return nil, model.Wrap(model.ErrFormat,
			fmt.Errorf("invalid directory: %d entries at 0x%x", h.DirectoryCount, h.DirectoryOffset))
	}
	end := int64(h.DirectoryOffset) + int64(h.DirectoryCount)*EntryLength
	if end > r.size {
		return nil, model.Wrap(model.ErrFormat,
			fmt.Errorf("directory of %d entries at 0x%x exceeds container size %d", h.DirectoryCount, h.DirectoryOffset, r.size))
	}

	entries := make([]DirectoryEntry, h.DirectoryCount)
	buf := make([]byte, EntryLength)
	for i := range entries {
		if err := r.readAt(buf, int64(h.DirectoryOffset)+int64(i)*EntryLength); err != nil {
			return nil, model.Wrap(model.ErrFormat, fmt.Errorf("read directory entry %d: %w", i, err))
		}
		entries[i] = DirectoryEntry{
			Kind:     Kind(headerOrder.Uint16(buf[EntryKind:])),
			SubKind:  SubKind(headerOrder.Uint16(buf[EntrySubKind:])),
			Version:  headerOrder.Uint32(buf[EntryVersion:]),
			Index:    headerOrder.Uint32(buf[EntryIndex:]),
			Offset:   int32(headerOrder.Uint32(buf[EntryOffset:])),
			Length:   int32(headerOrder.Uint32(buf[EntryContentLen:])),
			Checksum: headerOrder.Uint32(buf[EntryChecksum:]),
		}
	}
	return entries, nil
}

// readAt fills buf from offset off. A short read is an error; io.EOF
// alongside a full buffer is not.
func (r *Reader) readAt(buf []byte, off int64) error {
	if len(buf) == 0 {
		return nil
	}
	n, err := r.r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil {
		err = io.ErrUnexpectedEOF
	}
	return err
}

// readContent returns the bytes of a record
func (r *Reader) readContent(e DirectoryEntry) ([]byte, error) {
	if e.Offset < 0 || e.Length < 0 || int64(e.Offset)+int64(e.Length) > r.size {
		return nil, model.Wrap(model.ErrFormat,
			fmt.Errorf("record content [0x%x, +%d) outside container of %d bytes", e.Offset, e.Length, r.size))
	}
	content := make([]byte, e.Length)
	if err := r.readAt(content, int64(e.Offset)); err != nil {
		return nil, model.Wrap(model.ErrFormat, fmt.Errorf("read record content: %w", err))
	}
	return content, nil
}

// readPropertyRecord decodes a Camera, Palette or PiP record. Properties
// are committed to b only when the whole record decodes. For Palette
// records the embedded color table is returned.
func (r *Reader) readPropertyRecord(e DirectoryEntry, b *model.ImageBuilder, log logrus.FieldLogger) ([]model.Triple, error) {
	content, err := r.readContent(e)
	if err != nil {
		return nil, err
	}

	table := PropertiesOf(e.Kind)
	props := make([]model.Property, 0, len(table))
	for _, d := range table {
		v, err := r.props.Decode(content, d)
		if err != nil {
			return nil, err
		}
		props = append(props, model.Property{Name: d.Name, Category: e.Kind.String(), Value: v})
	}

	var palette []model.Triple
	if e.Kind == KindPalette {
		palette, err = readPaletteTable(content)
		if err != nil {
			return nil, err
		}
	}

	for _, p := range props {
		if !b.AddProperty(p) {
			log.Debugf("duplicate property %s ignored", p.Name)
		}
	}
	return palette, nil
}

// readPaletteTable reads the inline YCbCr color table of a Palette record
func readPaletteTable(content []byte) ([]model.Triple, error) {
	if len(content) < PaletteColorCount+4 {
		return nil, model.Wrap(model.ErrFormat, fmt.Errorf("palette record too small: %d bytes", len(content)))
	}
	count := int64(int32(propertyOrder.Uint32(content[PaletteColorCount:])))
	if count < 0 || PaletteData+count*3 > int64(len(content)) {
		return nil, model.Wrap(model.ErrFormat,
			fmt.Errorf("palette of %d colors does not fit in %d bytes", count, len(content)))
	}

	palette := make([]model.Triple, count)
	for n := range palette {
		pos := PaletteData + n*3
		palette[n] = model.Triple{content[pos], content[pos+1], content[pos+2]}
	}
	return palette, nil
}

// readRawRecord decodes the raw sensor values of a Raw record
func (r *Reader) readRawRecord(e DirectoryEntry) (int, int, []uint16, error) {
	switch e.SubKind {
	case SubKindBigEndian, SubKindLittleEndian, SubKindImage:
	default:
		return 0, 0, nil, model.Wrap(model.ErrUnsupportedSubtype, fmt.Errorf("subtype %d", e.SubKind))
	}

	content, err := r.readContent(e)
	if err != nil {
		return 0, 0, nil, err
	}
	if len(content) < RawData {
		return 0, 0, nil, model.Wrap(model.ErrFormat, fmt.Errorf("raw record too small: %d bytes", len(content)))
	}
	payload := content[RawData:]

	if e.SubKind == SubKindImage {
		width, height, samples, err := r.raster.DecodeRaster(payload)
		if err != nil {
			return 0, 0, nil, model.Wrap(model.ErrFormat, fmt.Errorf("decode raw raster: %w", err))
		}
		// The raster stores little-endian words in a big-endian container.
		out := make([]uint16, len(samples))
		for i, s := range samples {
			out[i] = bits.ReverseBytes16(s)
		}
		return width, height, out, nil
	}

	order := headerOrder
	if e.SubKind == SubKindLittleEndian {
		order = propertyOrder
	}
	width := int(order.Uint16(content[RawWidth:]))
	height := int(order.Uint16(content[RawHeight:]))

	samples := make([]uint16, len(payload)/2)
	for i := range samples {
		samples[i] = order.Uint16(payload[i*2:])
	}
	return width, height, samples, nil
}

// ImageRasterDecoder decodes PNG or TIFF rasters through the image package.
type ImageRasterDecoder struct{}

// DecodeRaster implements RasterDecoder.
func (ImageRasterDecoder) DecodeRaster(data []byte) (int, int, []uint16, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return 0, 0, nil, err
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	samples := make([]uint16, 0, width*height)

	gray, isGray := img.(*image.Gray16)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if isGray {
				samples = append(samples, gray.Gray16At(x, y).Y)
				continue
			}
			samples = append(samples, color.Gray16Model.Convert(img.At(x, y)).(color.Gray16).Y)
		}
	}
	return width, height, samples, nil
}
