package fffconv

import (
	"bytes"
	"errors"
	"image"
	stdjpeg "image/jpeg"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dyuri/fffconv/internal/archive"
	"github.com/dyuri/fffconv/internal/jpeg"
	"github.com/dyuri/fffconv/internal/model"
	"github.com/dyuri/fffconv/internal/render"
)

// calibrated returns an image with E8-like constants and no attenuation.
func calibrated(raw []uint16) *model.ThermalImage {
	b := model.NewImageBuilder().
		Creator("MTX IR").
		Size(len(raw), 1).
		RawValues(raw)

	camera := []struct {
		name  string
		value float32
	}{
		{"Emissivity", 1},
		{"ObjectDistance", 0},
		{"ReflectedApparentTemperature", 273.15},
		{"AtmosphericTemperature", 273.15},
		{"IRWindowTemperature", 273.15},
		{"IRWindowTransmission", 1},
		{"RelativeHumidity", 0.5},
		{"PlanckR1", 14364.633},
		{"PlanckB", 1385.4},
		{"PlanckF", 1},
		{"PlanckR2", 0.010603162},
		{"AtmosphericTransAlpha1", 0.006569},
		{"AtmosphericTransAlpha2", 0.01262},
		{"AtmosphericTransBeta1", -0.002276},
		{"AtmosphericTransBeta2", -0.00667},
		{"AtmosphericTransX", 1.9},
	}
	for _, c := range camera {
		b.AddProperty(model.Property{Name: c.name, Category: "Camera", Value: model.Float32Value(c.value)})
	}
	b.AddProperty(model.Property{Name: "PlanckO", Category: "Camera", Value: model.Int32Value(-5753)})
	return b.Build()
}

func encode(t *testing.T, img *model.ThermalImage) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	return buf.Bytes()
}

func TestDecode(t *testing.T) {
	img := calibrated([]uint16{12000, 13000, 14000})

	got, err := Decode(encode(t, img))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !reflect.DeepEqual(got.RawValues(), img.RawValues()) {
		t.Errorf("RawValues = %v, want %v", got.RawValues(), img.RawValues())
	}
	if got.Properties().Len() != img.Properties().Len() {
		t.Errorf("Got %d properties, want %d", got.Properties().Len(), img.Properties().Len())
	}
}

func TestDecodeBadCharset(t *testing.T) {
	img := calibrated([]uint16{12000})
	if _, err := Decode(encode(t, img), WithCharset("ebcdic")); err == nil {
		t.Error("Decode with unknown charset should fail")
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte("not an FFF container at all, but long enough"))
	if !errors.Is(err, ErrFormat) {
		t.Errorf("err = %v, want ErrFormat", err)
	}
}

func TestDecodeJPEG(t *testing.T) {
	var pic bytes.Buffer
	if err := stdjpeg.Encode(&pic, image.NewGray(image.Rect(0, 0, 8, 8)), nil); err != nil {
		t.Fatalf("jpeg.Encode failed: %v", err)
	}
	img := calibrated([]uint16{12000, 13000})
	data, err := jpeg.Embed(pic.Bytes(), encode(t, img))
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}

	got, err := DecodeJPEG(data)
	if err != nil {
		t.Fatalf("DecodeJPEG failed: %v", err)
	}
	if got.Len() != 2 || got.Raw(1) != 13000 {
		t.Errorf("RawValues = %v, want [12000 13000]", got.RawValues())
	}

	if _, err := DecodeJPEG(pic.Bytes()); !errors.Is(err, ErrNoThermalData) {
		t.Errorf("err = %v, want ErrNoThermalData", err)
	}
}

func TestDecodeFile(t *testing.T) {
	img := calibrated([]uint16{12000, 13000, 14000, 15000})
	fff := encode(t, img)
	dir := t.TempDir()

	for _, c := range []archive.Codec{archive.None, archive.Zstd, archive.LZ4, archive.XZ} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w, err := archive.NewWriter(&buf, c)
			if err != nil {
				t.Fatalf("NewWriter failed: %v", err)
			}
			if _, err := w.Write(fff); err != nil {
				t.Fatalf("Write failed: %v", err)
			}
			if err := w.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			path := filepath.Join(dir, "image.fff"+c.Extension())
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			got, err := DecodeFile(path)
			if err != nil {
				t.Fatalf("DecodeFile failed: %v", err)
			}
			if !reflect.DeepEqual(got.RawValues(), img.RawValues()) {
				t.Errorf("RawValues = %v, want %v", got.RawValues(), img.RawValues())
			}
		})
	}

	if _, err := DecodeFile(filepath.Join(dir, "missing.fff")); err == nil {
		t.Error("DecodeFile of a missing file should fail")
	}
}

func TestTemperatures(t *testing.T) {
	probe, err := NewConverter(calibrated(nil))
	if err != nil {
		t.Fatalf("NewConverter failed: %v", err)
	}
	raw20 := uint16(math.Round(probe.RawFromTemp(20)))
	raw80 := uint16(math.Round(probe.RawFromTemp(80)))

	img := calibrated([]uint16{raw20, raw80})

	tests := []struct {
		unit Unit
		want []float64
		tol  float64
	}{
		{Celsius, []float64{20, 80}, 0.1},
		{Kelvin, []float64{293.15, 353.15}, 0.1},
		{Fahrenheit, []float64{68, 176}, 0.2},
	}
	for _, tt := range tests {
		got, err := Temperatures(img, tt.unit)
		if err != nil {
			t.Fatalf("Temperatures(%v) failed: %v", tt.unit, err)
		}
		for i := range tt.want {
			if math.Abs(got[i]-tt.want[i]) > tt.tol {
				t.Errorf("Temperatures(%v)[%d] = %v, want %v", tt.unit, i, got[i], tt.want[i])
			}
		}
	}
}

func TestTemperaturesErrors(t *testing.T) {
	bare := model.NewImageBuilder().Size(1, 1).RawValues([]uint16{1}).Build()
	if _, err := Temperatures(bare, Celsius); !errors.Is(err, ErrMissingProperty) {
		t.Errorf("err = %v, want ErrMissingProperty", err)
	}

	empty := model.NewImageBuilder().Build()
	if _, err := Temperatures(empty, Celsius); !errors.Is(err, ErrNoThermalData) {
		t.Errorf("err = %v, want ErrNoThermalData", err)
	}
}

func TestRender(t *testing.T) {
	img := calibrated([]uint16{100, 200, 300, 400, 500})
	a, err := Analyze(img)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	full := Render(img, a, RenderOptions{})
	if full[0] != render.WhiteHot[0] || full[4] != render.WhiteHot[len(render.WhiteHot)-1] {
		t.Errorf("Render ends = %v, %v, want WhiteHot ends", full[0], full[4])
	}

	over, under := render.ARGB(255, 255, 0, 0), render.ARGB(255, 0, 0, 255)
	clipped := Render(img, a, RenderOptions{
		Palette:       render.DarkHot,
		Over:          over,
		Under:         under,
		MinPercentile: 0.25,
		MaxPercentile: 0.75,
	})
	if clipped[0] != under {
		t.Errorf("pixel 0 = %v, want under color %v", clipped[0], under)
	}
	if clipped[4] != over {
		t.Errorf("pixel 4 = %v, want over color %v", clipped[4], over)
	}
	if clipped[2] == over || clipped[2] == under {
		t.Errorf("pixel 2 = %v, want a palette color", clipped[2])
	}
}

func TestNewHistogram(t *testing.T) {
	img := calibrated([]uint16{100, 100, 150, 200})
	a, err := Analyze(img)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	h := NewHistogram(img, a, 4)
	if h.Total() != 4 {
		t.Errorf("Total = %d, want 4", h.Total())
	}
	if h.Buckets[0] != 2 {
		t.Errorf("Buckets[0] = %d, want 2", h.Buckets[0])
	}
}

func TestPalettes(t *testing.T) {
	for _, name := range Palettes() {
		p, ok := LookupPalette(name)
		if !ok || len(p) == 0 {
			t.Errorf("LookupPalette(%q) = %d colors, %v", name, len(p), ok)
		}
	}
	if _, ok := LookupPalette("nope"); ok {
		t.Error("LookupPalette(nope) should fail")
	}
}

func TestIsJPEG(t *testing.T) {
	if !IsJPEG([]byte{0xFF, 0xD8, 0xFF}) {
		t.Error("IsJPEG(SOI) = false, want true")
	}
	if IsJPEG([]byte("FFF\x00")) {
		t.Error("IsJPEG(FFF) = true, want false")
	}
}
