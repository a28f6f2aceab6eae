// Package archive wraps exported files in an optional compression layer
// and recognises compressed input by its magic bytes.
package archive

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/ulikunitz/xz"
)

// Codec names a compression format.
type Codec string

const (
	None Codec = "none"
	Zstd Codec = "zstd"
	LZ4  Codec = "lz4"
	XZ   Codec = "xz"
)

var codecs = []Codec{None, Zstd, LZ4, XZ}

// Frame magic numbers
var (
	zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
	xzMagic   = []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}
)

// Codecs lists the supported codec names.
func Codecs() []string {
	names := make([]string, len(codecs))
	for i, c := range codecs {
		names[i] = string(c)
	}
	return names
}

func (c Codec) String() string { return string(c) }

// Set parses a codec name; *Codec is a pflag.Value.
func (c *Codec) Set(s string) error {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		s = string(None)
	}
	for _, known := range codecs {
		if s == string(known) {
			*c = known
			return nil
		}
	}
	return fmt.Errorf("unknown compression %q (want one of %s)", s, strings.Join(Codecs(), ", "))
}

func (c *Codec) Type() string { return "codec" }

// Extension returns the file name suffix of the codec, "" for None.
func (c Codec) Extension() string {
	switch c {
	case Zstd:
		return ".zst"
	case LZ4:
		return ".lz4"
	case XZ:
		return ".xz"
	default:
		return ""
	}
}

// NewWriter returns a writer compressing into w. Close flushes the frame
// but does not close w.
func NewWriter(w io.Writer, c Codec) (io.WriteCloser, error) {
	switch c {
	case None, "":
		return nopWriteCloser{w}, nil
	case Zstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("create zstd writer: %w", err)
		}
		return enc, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case XZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("create xz writer: %w", err)
		}
		return xw, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", string(c))
	}
}

// NewReader returns a reader decompressing r with codec c.
func NewReader(r io.Reader, c Codec) (io.ReadCloser, error) {
	switch c {
	case None, "":
		return io.NopCloser(r), nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case XZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("create xz reader: %w", err)
		}
		return io.NopCloser(xr), nil
	default:
		return nil, fmt.Errorf("unknown compression %q", string(c))
	}
}

// Detect identifies the codec from the first bytes of a stream.
func Detect(header []byte) Codec {
	switch {
	case bytes.HasPrefix(header, zstdMagic):
		return Zstd
	case bytes.HasPrefix(header, lz4Magic):
		return LZ4
	case bytes.HasPrefix(header, xzMagic):
		return XZ
	default:
		return None
	}
}

// Open sniffs the codec of r and returns a decompressing reader.
func Open(r io.Reader) (io.ReadCloser, Codec, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(len(xzMagic))
	if err != nil && err != io.EOF {
		return nil, None, fmt.Errorf("read magic: %w", err)
	}
	c := Detect(header)
	rc, err := NewReader(br, c)
	if err != nil {
		return nil, c, err
	}
	return rc, c, nil
}

// ReadAll decompresses data, detecting the codec.
func ReadAll(data []byte) ([]byte, Codec, error) {
	c := Detect(data)
	if c == None {
		return data, c, nil
	}
	rc, err := NewReader(bytes.NewReader(data), c)
	if err != nil {
		return nil, c, err
	}
	defer rc.Close()

	out, err := io.ReadAll(rc)
	if err != nil {
		return nil, c, fmt.Errorf("decompress %s: %w", c, err)
	}
	return out, c, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
