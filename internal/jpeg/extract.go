// Package jpeg locates the FFF container that FLIR cameras split across
// APP1 segments of a JPEG file.
package jpeg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/dyuri/fffconv/internal/model"
)

const (
	markerStart = 0xFF
	markerSOI   = 0xD8
	markerEOI   = 0xD9
	markerSOS   = 0xDA
	markerAPP1  = 0xE1
	markerTEM   = 0x01
)

// FLIR APP1 payload header:
// Offset 0x00: "FLIR\0"
// Offset 0x05: 0x01
// Offset 0x06: Segment index
// Offset 0x07: Index of the last segment
const (
	flirHeaderLength = 8
	flirIndex        = 6
	flirLastIndex    = 7
)

var flirTag = []byte("FLIR")

// maxSegmentPayload is the largest APP payload a segment length can hold.
const maxSegmentPayload = 0xFFFF - 2

// Segment is one marker segment before the scan data.
type Segment struct {
	Marker  byte
	Offset  int // Offset of the payload in the file
	Payload []byte
}

// Segments walks the marker segments up to the first scan.
func Segments(data []byte) ([]Segment, error) {
	if len(data) < 4 || data[0] != markerStart || data[1] != markerSOI {
		return nil, errors.New("invalid jpeg: missing SOI marker")
	}

	var segs []Segment
	pos := 2
	for pos < len(data) {
		if data[pos] != markerStart {
			return nil, fmt.Errorf("invalid jpeg: expected marker at 0x%x", pos)
		}
		// Fill bytes
		for pos < len(data) && data[pos] == markerStart {
			pos++
		}
		if pos >= len(data) {
			break
		}
		marker := data[pos]
		pos++

		if marker == markerSOS || marker == markerEOI {
			break
		}
		if marker == markerTEM || (marker >= 0xD0 && marker <= 0xD7) {
			continue
		}

		if pos+2 > len(data) {
			return nil, fmt.Errorf("truncated marker 0x%02X at 0x%x", marker, pos)
		}
		segLen := int(binary.BigEndian.Uint16(data[pos:]))
		if segLen < 2 || pos+segLen > len(data) {
			return nil, fmt.Errorf("invalid length %d of segment 0x%02X at 0x%x", segLen, marker, pos)
		}
		segs = append(segs, Segment{Marker: marker, Offset: pos + 2, Payload: data[pos+2 : pos+segLen]})
		pos += segLen
	}
	return segs, nil
}

// Extract reassembles the FFF container from the FLIR APP1 segments of a
// JPEG file. Segments are joined in the order of their index byte.
func Extract(data []byte) ([]byte, error) {
	segs, err := Segments(data)
	if err != nil {
		return nil, model.Wrap(model.ErrFormat, err)
	}

	var parts []Segment
	for _, s := range segs {
		if s.Marker == markerAPP1 && len(s.Payload) >= flirHeaderLength && bytes.HasPrefix(s.Payload, flirTag) {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return nil, model.Wrap(model.ErrNoThermalData, errors.New("no FLIR APP1 segments"))
	}

	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].Payload[flirIndex] < parts[j].Payload[flirIndex]
	})

	var fff bytes.Buffer
	for _, p := range parts {
		fff.Write(p.Payload[flirHeaderLength:])
	}
	return fff.Bytes(), nil
}

// ExtractReader reads a whole JPEG stream and calls Extract.
func ExtractReader(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read jpeg: %w", err)
	}
	return Extract(data)
}

// Embed inserts fff after the SOI marker of jpegData as a run of FLIR APP1
// segments. It fails if fff needs more than 256 segments.
func Embed(jpegData, fff []byte) ([]byte, error) {
	if len(jpegData) < 2 || jpegData[0] != markerStart || jpegData[1] != markerSOI {
		return nil, errors.New("invalid jpeg: missing SOI marker")
	}

	chunk := maxSegmentPayload - flirHeaderLength
	count := (len(fff) + chunk - 1) / chunk
	if count == 0 {
		count = 1
	}
	if count > 256 {
		return nil, fmt.Errorf("container of %d bytes needs %d segments", len(fff), count)
	}

	var out bytes.Buffer
	out.WriteByte(markerStart)
	out.WriteByte(markerSOI)
	for i := 0; i < count; i++ {
		start := i * chunk
		end := start + chunk
		if end > len(fff) {
			end = len(fff)
		}
		payload := make([]byte, flirHeaderLength, flirHeaderLength+end-start)
		copy(payload, "FLIR\x00\x01")
		payload[flirIndex] = byte(i)
		payload[flirLastIndex] = byte(count - 1)
		payload = append(payload, fff[start:end]...)
		writeAppSegment(&out, markerAPP1, payload)
	}
	out.Write(jpegData[2:])
	return out.Bytes(), nil
}

func writeAppSegment(out *bytes.Buffer, marker byte, payload []byte) {
	out.WriteByte(markerStart)
	out.WriteByte(marker)
	length := uint16(len(payload) + 2)
	out.WriteByte(byte(length >> 8))
	out.WriteByte(byte(length))
	out.Write(payload)
}
