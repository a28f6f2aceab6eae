package binary

import (
	"fmt"
	"math"
	"strings"

	"github.com/dyuri/fffconv/internal/model"
	"github.com/elliotwutingfeng/asciiset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// padding holds the bytes trimmed from the end of fixed text fields.
var padding, _ = asciiset.MakeASCIISet("\x00 ")

// PropertyDecoder turns record content into typed property values.
// The zero value decodes text as UTF-8.
type PropertyDecoder struct {
	text encoding.Encoding
}

// NewPropertyDecoder creates a decoder using the given text encoding
// for Text16/Text32 fields. A nil encoding means UTF-8.
func NewPropertyDecoder(text encoding.Encoding) PropertyDecoder {
	return PropertyDecoder{text: text}
}

// DecodeProperty decodes one property with the default (UTF-8) decoder.
func DecodeProperty(content []byte, d PropertyDescriptor) (model.Value, error) {
	return PropertyDecoder{}.Decode(content, d)
}

// Decode reads the value described by d from content. All multi-byte
// numbers are little-endian.
func (pd PropertyDecoder) Decode(content []byte, d PropertyDescriptor) (model.Value, error) {
	width := d.Type.Width()
	if width == 0 {
		return model.Value{}, model.Wrap(model.ErrFormat, fmt.Errorf("property %s: unknown type %v", d.Name, d.Type))
	}
	if d.Offset < 0 || d.Offset+width > len(content) {
		return model.Value{}, model.Wrap(model.ErrFormat,
			fmt.Errorf("property %s: %d bytes at 0x%x exceed content length %d", d.Name, width, d.Offset, len(content)))
	}
	buf := content[d.Offset : d.Offset+width]

	switch d.Type {
	case model.Int32:
		return model.Int32Value(int32(propertyOrder.Uint32(buf))), nil
	case model.Int16S:
		return model.Int16SValue(int16(propertyOrder.Uint16(buf))), nil
	case model.Int16U:
		return model.Int16UValue(propertyOrder.Uint16(buf)), nil
	case model.Float32:
		return model.Float32Value(math.Float32frombits(propertyOrder.Uint32(buf))), nil
	case model.Text16, model.Text32:
		s, err := pd.decodeText(buf)
		if err != nil {
			return model.Value{}, model.Wrap(model.ErrFormat, fmt.Errorf("property %s: %w", d.Name, err))
		}
		return model.TextValue(d.Type, s), nil
	case model.Byte1:
		return model.ByteValue(buf[0]), nil
	default: // model.Color
		return model.ColorValue(model.Triple{buf[0], buf[1], buf[2]}), nil
	}
}

// decodeText decodes a fixed-length text field and trims trailing padding
func (pd PropertyDecoder) decodeText(buf []byte) (string, error) {
	return decodeText(pd.text, buf)
}

func decodeText(enc encoding.Encoding, buf []byte) (string, error) {
	end := len(buf)
	for end > 0 && padding.Contains(buf[end-1]) {
		end--
	}
	if enc == nil {
		enc = unicode.UTF8
	}
	decoded, err := enc.NewDecoder().Bytes(buf[:end])
	if err != nil {
		return string(buf[:end]), err
	}
	return string(decoded), nil
}

// Charset returns the text encoding registered under name. Accepted names
// are "utf-8", "windows-1252" and "iso-8859-1" (case-insensitive).
func Charset(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "iso-8859-1", "latin1":
		return charmap.ISO8859_1, nil
	default:
		return nil, fmt.Errorf("unknown charset: %s", name)
	}
}
