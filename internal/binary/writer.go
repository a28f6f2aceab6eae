package binary

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/dyuri/fffconv/internal/model"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// fileVersion is written to the header and every directory entry.
const fileVersion = 100

// Writer handles writing FFF containers
type Writer struct {
	w        io.Writer
	rawOrder SubKind           // SubKindBigEndian or SubKindLittleEndian
	encoding encoding.Encoding // Text encoding for fixed text fields

	records []record
}

// record is one encoded record waiting for its directory entry
type record struct {
	kind    Kind
	subKind SubKind
	content []byte
}

// NewWriter creates a new FFF writer. Raw samples are written big-endian
// unless SetRawOrder says otherwise.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		w:        w,
		rawOrder: SubKindBigEndian,
		encoding: unicode.UTF8,
	}
}

// SetRawOrder selects the Raw record subkind, SubKindBigEndian or
// SubKindLittleEndian.
func (w *Writer) SetRawOrder(s SubKind) error {
	if s != SubKindBigEndian && s != SubKindLittleEndian {
		return model.Wrap(model.ErrUnsupportedSubtype, fmt.Errorf("cannot write subtype %v", s))
	}
	w.rawOrder = s
	return nil
}

// SetTextEncoding sets the encoding used for text fields.
func (w *Writer) SetTextEncoding(enc encoding.Encoding) {
	if enc != nil {
		w.encoding = enc
	}
}

// Write writes a complete FFF container for img
func (w *Writer) Write(img *model.ThermalImage) error {
	w.records = w.records[:0]

	if img.Len() > 0 || img.Width() > 0 || img.Height() > 0 {
		if err := w.writeRaw(img); err != nil {
			return fmt.Errorf("write raw record: %w", err)
		}
	}

	for _, k := range PropertyKinds {
		if err := w.writePropertyRecord(img, k); err != nil {
			return fmt.Errorf("write %s record: %w", k, err)
		}
	}

	// Calculate all offsets
	dirOffset := HeaderLength
	dataOffset := dirOffset + len(w.records)*EntryLength

	var out bytes.Buffer
	if err := w.writeHeader(&out, img.Creator(), dirOffset, len(w.records)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	offset := dataOffset
	for i, rec := range w.records {
		entry := make([]byte, EntryLength)
		headerOrder.PutUint16(entry[EntryKind:], uint16(rec.kind))
		headerOrder.PutUint16(entry[EntrySubKind:], uint16(rec.subKind))
		headerOrder.PutUint32(entry[EntryVersion:], fileVersion)
		headerOrder.PutUint32(entry[EntryIndex:], uint32(i+1))
		headerOrder.PutUint32(entry[EntryOffset:], uint32(offset))
		headerOrder.PutUint32(entry[EntryContentLen:], uint32(len(rec.content)))
		out.Write(entry)
		offset += len(rec.content)
	}
	for _, rec := range w.records {
		out.Write(rec.content)
	}

	_, err := w.w.Write(out.Bytes())
	return err
}

// writeHeader writes the 0x40 byte container header
func (w *Writer) writeHeader(buf *bytes.Buffer, creator string, dirOffset, count int) error {
	header := make([]byte, HeaderLength)
	copy(header[HeaderFormat:], Magic)

	c, err := w.encodeString(creator, CreatorLength)
	if err != nil {
		return fmt.Errorf("encode creator: %w", err)
	}
	copy(header[HeaderCreator:], c)

	headerOrder.PutUint32(header[HeaderVersion:], fileVersion)
	headerOrder.PutUint32(header[HeaderRecordOffset:], uint32(dirOffset))
	headerOrder.PutUint32(header[HeaderRecordCount:], uint32(count))
	headerOrder.PutUint32(header[HeaderIndexID:], uint32(count+1))

	buf.Write(header)
	return nil
}

// writeRaw encodes the raw samples using the configured byte order
func (w *Writer) writeRaw(img *model.ThermalImage) error {
	if img.Width() > math.MaxUint16 || img.Height() > math.MaxUint16 {
		return model.Wrap(model.ErrFormat, fmt.Errorf("image %dx%d too large", img.Width(), img.Height()))
	}
	order := headerOrder
	if w.rawOrder == SubKindLittleEndian {
		order = propertyOrder
	}

	content := make([]byte, RawData+img.Len()*2)
	order.PutUint16(content[RawWidth:], uint16(img.Width()))
	order.PutUint16(content[RawHeight:], uint16(img.Height()))
	for i := 0; i < img.Len(); i++ {
		order.PutUint16(content[RawData+i*2:], img.Raw(i))
	}

	w.records = append(w.records, record{kind: KindRaw, subKind: w.rawOrder, content: content})
	return nil
}

// writePropertyRecord encodes the properties of one category. Nothing is
// written when the image has no property of that kind (and, for Palette,
// no embedded palette).
func (w *Writer) writePropertyRecord(img *model.ThermalImage, k Kind) error {
	props := img.Properties().Category(k.String())
	if len(props) == 0 && !(k == KindPalette && img.HasPalette()) {
		return nil
	}

	table := PropertiesOf(k)
	size := contentLength(table)
	palette := img.Palette()
	if k == KindPalette && PaletteData+len(palette)*3 > size {
		size = PaletteData + len(palette)*3
	}
	content := make([]byte, size)

	for _, p := range props {
		d, ok := findDescriptor(table, p.Name)
		if !ok {
			continue
		}
		if err := w.encodeValue(content, d, p.Value); err != nil {
			return fmt.Errorf("encode %s: %w", p.Name, err)
		}
	}

	if k == KindPalette {
		// The color count shares its offset with PaletteColors; the table
		// length wins.
		propertyOrder.PutUint32(content[PaletteColorCount:], uint32(len(palette)))
		for n, c := range palette {
			copy(content[PaletteData+n*3:], c[:])
		}
	}

	w.records = append(w.records, record{kind: k, content: content})
	return nil
}

// encodeValue stores v at d.Offset. Numeric values are converted to the
// descriptor's type; text is truncated to the field width.
func (w *Writer) encodeValue(content []byte, d PropertyDescriptor, v model.Value) error {
	buf := content[d.Offset : d.Offset+d.Type.Width()]

	switch d.Type {
	case model.Text16, model.Text32:
		s, ok := v.Text()
		if !ok {
			s = v.String()
		}
		b, err := w.encodeString(s, len(buf))
		if err != nil {
			return err
		}
		copy(buf, b)
		return nil
	case model.Color:
		t, ok := v.Triple()
		if !ok {
			return fmt.Errorf("value %v is not a color", v)
		}
		copy(buf, t[:])
		return nil
	}

	n, ok := v.Number()
	if !ok {
		return fmt.Errorf("value %q is not numeric", v.String())
	}
	switch d.Type {
	case model.Int32:
		propertyOrder.PutUint32(buf, uint32(int32(n)))
	case model.Int16S:
		propertyOrder.PutUint16(buf, uint16(int16(n)))
	case model.Int16U:
		propertyOrder.PutUint16(buf, uint16(n))
	case model.Float32:
		propertyOrder.PutUint32(buf, math.Float32bits(float32(n)))
	case model.Byte1:
		buf[0] = byte(n)
	}
	return nil
}

// encodeString encodes s and NUL pads (or truncates) it to width bytes
func (w *Writer) encodeString(s string, width int) ([]byte, error) {
	encoded, err := w.encoding.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("encode string %q: %w", s, err)
	}
	out := make([]byte, width)
	copy(out, encoded)
	return out, nil
}

func findDescriptor(table []PropertyDescriptor, name string) (PropertyDescriptor, bool) {
	for _, d := range table {
		if d.Name == name {
			return d, true
		}
	}
	return PropertyDescriptor{}, false
}
