package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyuri/fffconv/internal/binary"
	"github.com/dyuri/fffconv/internal/model"
	"github.com/dyuri/fffconv/internal/render"
	"golang.org/x/text/encoding/charmap"
)

func TestOutputName(t *testing.T) {
	tests := []struct {
		input string
		ext   string
		want  string
	}{
		{"IR_0042.jpg", ".png", "IR_0042.png"},
		{"/data/IR_0042.fff.zst", ".csv", "IR_0042.csv"},
		{"plain", ".tiff", "plain.tiff"},
		{"dir/IR_0042.jpg", "", "IR_0042"},
	}
	for _, tt := range tests {
		if got := outputName(tt.input, tt.ext); got != tt.want {
			t.Errorf("outputName(%q, %q) = %q, want %q", tt.input, tt.ext, got, tt.want)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := writeCSV(&buf, []float64{1, 2.345, 3, math.NaN(), 5, 6}, 3, 1); err != nil {
		t.Fatalf("writeCSV failed: %v", err)
	}
	want := "1.0,2.3,3.0\nNaN,5.0,6.0\n"
	if buf.String() != want {
		t.Errorf("writeCSV = %q, want %q", buf.String(), want)
	}
}

func TestPrintHistogram(t *testing.T) {
	var buf bytes.Buffer
	h := render.Histogram{Buckets: []int{4, 0, 2}, Over: 1}
	printHistogram(&buf, h, 100, 200, 8)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("Got %d lines, want 4:\n%s", len(lines), buf.String())
	}
	if !strings.HasSuffix(lines[0], "########") {
		t.Errorf("peak bar = %q, want 8 marks", lines[0])
	}
	if !strings.HasSuffix(lines[2], " ####") {
		t.Errorf("half bar = %q, want 4 marks", lines[2])
	}
	if lines[3] != "under: 0, over: 1" {
		t.Errorf("summary = %q", lines[3])
	}
}

func TestRawImage(t *testing.T) {
	img := model.NewImageBuilder().Size(2, 1).RawValues([]uint16{0x1234, 0xFFFF}).Build()
	g := rawImage(img)
	if g.Gray16At(0, 0).Y != 0x1234 || g.Gray16At(1, 0).Y != 0xFFFF {
		t.Errorf("rawImage = %v, want [0x1234 0xFFFF]", g.Pix)
	}
}

func calibratedImage(emissivity float32, raw []uint16) *model.ThermalImage {
	b := model.NewImageBuilder().Size(len(raw), 1).RawValues(raw)
	values := map[string]float32{
		"Emissivity":                   emissivity,
		"ObjectDistance":               1,
		"ReflectedApparentTemperature": 293.15,
		"AtmosphericTemperature":       293.15,
		"IRWindowTransmission":         1,
		"RelativeHumidity":             0.5,
		"PlanckR1":                     14364.633,
		"PlanckB":                      1385.4,
		"PlanckF":                      1,
		"PlanckR2":                     0.010603162,
		"AtmosphericTransAlpha1":       0.006569,
		"AtmosphericTransAlpha2":       0.01262,
		"AtmosphericTransBeta1":        -0.002276,
		"AtmosphericTransBeta2":        -0.00667,
		"AtmosphericTransX":            1.9,
	}
	for name, v := range values {
		b.AddProperty(model.Property{Name: name, Category: "Camera", Value: model.Float32Value(v)})
	}
	b.AddProperty(model.Property{Name: "PlanckO", Category: "Camera", Value: model.Int32Value(-5753)})
	return b.Build()
}

func TestValidator(t *testing.T) {
	tests := []struct {
		name     string
		img      *model.ThermalImage
		errors   int
		warnings int
	}{
		{"valid", calibratedImage(0.95, []uint16{15000, 16000}), 0, 0},
		{"low emissivity", calibratedImage(0.3, []uint16{15000, 16000}), 0, 1},
		{"bad emissivity", calibratedImage(1.5, []uint16{15000, 16000}), 1, 0},
		{"no data", model.NewImageBuilder().Build(), 2, 0},
		{"no calibration", model.NewImageBuilder().Size(1, 1).RawValues([]uint16{1}).Build(), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(false)
			v.validate(tt.img, tt.name)
			if len(v.errors) != tt.errors {
				t.Errorf("errors = %v, want %d", v.errors, tt.errors)
			}
			if len(v.warnings) != tt.warnings {
				t.Errorf("warnings = %v, want %d", v.warnings, tt.warnings)
			}
		})
	}
}

func TestValidatorMissingCalibrationNames(t *testing.T) {
	v := newValidator(false)
	v.validate(model.NewImageBuilder().Size(1, 1).RawValues([]uint16{1}).Build(), "bare")
	if len(v.errors) != 1 || !strings.Contains(v.errors[0], "PlanckR1") {
		t.Errorf("errors = %v, want one naming PlanckR1", v.errors)
	}

	var buf bytes.Buffer
	v.printResults(&buf)
	if !strings.Contains(buf.String(), "Validation failed: 1 error(s)") {
		t.Errorf("printResults =\n%s", buf.String())
	}
}

func TestWriteFFFCharset(t *testing.T) {
	b := model.NewImageBuilder().Size(2, 1).RawValues([]uint16{1, 2})
	b.AddProperty(model.Property{Name: "CameraModel", Category: "Camera", Value: model.TextValue(model.Text32, "Café")})
	img := b.Build()

	var buf bytes.Buffer
	if err := writeFFF(&buf, img, "le", "windows-1252"); err != nil {
		t.Fatalf("writeFFF failed: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("Caf\xe9\x00")) {
		t.Error("CameraModel not encoded as windows-1252")
	}

	got, err := binary.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()),
		binary.WithTextEncoding(charmap.Windows1252)).Parse()
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if p, _ := got.Property("CameraModel"); p.Value != model.TextValue(model.Text32, "Café") {
		t.Errorf("CameraModel = %v, want Café", p.Value)
	}

	if err := writeFFF(&buf, img, "be", "ebcdic"); err == nil {
		t.Error("writeFFF with unknown charset should fail")
	}
	if err := writeFFF(&buf, img, "middle", "utf-8"); err == nil {
		t.Error("writeFFF with unknown byte order should fail")
	}
}

func TestCollectInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "IR_0001.fff")
	if err := os.WriteFile(path, []byte("placeholder"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	raw := make([]uint16, 10)
	for i := range raw {
		raw[i] = 15000 + uint16(i)*100
	}
	info, err := collectInfo(path, 11, calibratedImage(0.95, raw))
	if err != nil {
		t.Fatalf("collectInfo failed: %v", err)
	}
	if info.RawMin != 15000 || info.RawMax != 15900 {
		t.Errorf("raw range = %d..%d, want 15000..15900", info.RawMin, info.RawMax)
	}
	if info.TempMin == nil || !(*info.TempMin < *info.TempMax) {
		t.Errorf("temperature range missing or inverted: %v..%v", info.TempMin, info.TempMax)
	}
	if len(info.Marks) != 10 {
		t.Fatalf("Got %d marks, want 10", len(info.Marks))
	}
	if info.Marks[0] != 0 || math.Abs(info.Marks[2]-1.0/9) > 1e-12 {
		t.Errorf("Marks = %v", info.Marks)
	}
	if info.Modified.IsZero() {
		t.Error("Modified time not set")
	}

	flat, err := collectInfo(path, 11, calibratedImage(0.95, []uint16{15000, 15000}))
	if err != nil {
		t.Fatalf("collectInfo failed: %v", err)
	}
	if flat.Marks != nil {
		t.Errorf("Marks of a flat image = %v, want nil", flat.Marks)
	}
}

func TestFormatMarks(t *testing.T) {
	if got := formatMarks([]float64{0, 0.125, 1}); got != "0.00 0.12 1.00" {
		t.Errorf("formatMarks = %q, want %q", got, "0.00 0.12 1.00")
	}
}
