package radiometry

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/dyuri/fffconv/internal/model"
)

// e8 holds constants seen in FLIR E8 images.
var e8 = Calibration{
	Emissivity:           0.95,
	ObjectDistance:       1,
	ReflectedTemperature: 293.15,
	AtmosphericTemp:      293.15,
	IRWindowTransmission: 1,
	RelativeHumidity:     0.5,
	PlanckR1:             14364.633,
	PlanckB:              1385.4,
	PlanckF:              1,
	PlanckO:              -5753,
	PlanckR2:             0.010603162,
	Alpha1:               0.006569,
	Alpha2:               0.01262,
	Beta1:                -0.002276,
	Beta2:                -0.00667,
	X:                    1.9,
}

// ideal has no attenuation: E=1, tau=1, IRT=1, Rt=At=0 °C.
func ideal() Calibration {
	c := e8
	c.Emissivity = 1
	c.ObjectDistance = 0
	c.IRWindowTransmission = 1
	c.ReflectedTemperature = 273.15
	c.AtmosphericTemp = 273.15
	return c
}

func TestRoundTrip(t *testing.T) {
	conv := NewConverter(ideal())

	for _, temp := range []float64{-40, -10, 0, 0.5, 21.3, 100, 250, 650} {
		raw := conv.RawFromTemp(temp)
		got := conv.Celsius(raw)
		if math.Abs(got-temp) > 1e-6 {
			t.Errorf("Celsius(RawFromTemp(%v)) = %v, want %v", temp, got, temp)
		}
	}
}

func TestAttenuatedConversion(t *testing.T) {
	conv := NewConverter(e8)

	// A target emitting less than a blackbody reads warmer once emissivity
	// is compensated, and the conversion is monotonic.
	prev := math.Inf(-1)
	for raw := 12000.0; raw <= 20000; raw += 1000 {
		c := conv.Celsius(raw)
		if math.IsNaN(c) {
			t.Fatalf("Celsius(%v) = NaN", raw)
		}
		if c <= prev {
			t.Errorf("Celsius(%v) = %v, not above previous %v", raw, c, prev)
		}
		prev = c
	}

	raw := NewConverter(ideal()).RawFromTemp(30)
	if got := conv.Celsius(raw); !(got > 30) {
		t.Errorf("Celsius with E=0.95 = %v, want above 30", got)
	}
}

func TestAttenuatedReferenceValues(t *testing.T) {
	// E8 constants behind 5 m of air and a window with 90% transmission.
	cal := e8
	cal.ObjectDistance = 5
	cal.IRWindowTransmission = 0.9
	conv := NewConverter(cal)

	tests := []struct {
		raw  float64
		want float64
	}{
		{9000, -68.81056716279954},
		{13000, -15.341969784740968},
		{17000, 14.614274982064728},
		{25000, 56.686898813427604},
	}
	for _, tt := range tests {
		got := conv.Celsius(tt.raw)
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Celsius(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestDomainErrorsYieldNaN(t *testing.T) {
	conv := NewConverter(ideal())

	// raw + O <= 0 drives the logarithm argument negative.
	if got := conv.Celsius(0); !math.IsNaN(got) {
		t.Errorf("Celsius(0) = %v, want NaN", got)
	}

	zeroE := ideal()
	zeroE.Emissivity = 0
	if got := NewConverter(zeroE).Celsius(15000); !math.IsNaN(got) {
		t.Errorf("Celsius with E=0 = %v, want NaN", got)
	}

	temps := conv.Convert([]uint16{0, uint16(conv.RawFromTemp(20)), 0}, Celsius)
	if !math.IsNaN(temps[0]) || !math.IsNaN(temps[2]) {
		t.Errorf("Convert = %v, want NaN at 0 and 2", temps)
	}
	if math.IsNaN(temps[1]) {
		t.Errorf("Convert[1] = NaN, a bad sample must not affect its neighbours")
	}
}

func TestConvertUnits(t *testing.T) {
	conv := NewConverter(ideal())
	raw := make([]uint16, 10000)
	for i := range raw {
		raw[i] = uint16(8000 + i)
	}

	c := conv.Convert(raw, Celsius)
	f := conv.Convert(raw, Fahrenheit)
	k := conv.Convert(raw, Kelvin)

	for i := range raw {
		want := conv.Celsius(float64(raw[i]))
		if c[i] != want {
			t.Fatalf("Convert[%d] = %v, want %v", i, c[i], want)
		}
		if math.Abs(f[i]-(want*9/5+32)) > 1e-9 {
			t.Fatalf("Fahrenheit[%d] = %v, want %v", i, f[i], want*9/5+32)
		}
		if math.Abs(k[i]-(want+273.15)) > 1e-9 {
			t.Fatalf("Kelvin[%d] = %v, want %v", i, k[i], want+273.15)
		}
	}
}

func TestUnitSet(t *testing.T) {
	tests := []struct {
		in   string
		want Unit
	}{
		{"C", Celsius},
		{"fahrenheit", Fahrenheit},
		{"k", Kelvin},
	}

	for _, tt := range tests {
		var u Unit
		if err := u.Set(tt.in); err != nil {
			t.Errorf("Set(%q) failed: %v", tt.in, err)
			continue
		}
		if u != tt.want {
			t.Errorf("Set(%q) = %v, want %v", tt.in, u, tt.want)
		}
	}

	var u Unit
	if err := u.Set("rankine"); err == nil {
		t.Error("Set(rankine) should fail")
	}
}

func calibrationProperties(skip ...string) *model.Properties {
	b := model.NewImageBuilder()
	values := map[string]float64{
		"Emissivity":                   e8.Emissivity,
		"ObjectDistance":               e8.ObjectDistance,
		"ReflectedApparentTemperature": e8.ReflectedTemperature,
		"AtmosphericTemperature":       e8.AtmosphericTemp,
		"IRWindowTransmission":         e8.IRWindowTransmission,
		"RelativeHumidity":             e8.RelativeHumidity,
		"PlanckR1":                     e8.PlanckR1,
		"PlanckB":                      e8.PlanckB,
		"PlanckF":                      e8.PlanckF,
		"PlanckR2":                     e8.PlanckR2,
		"AtmosphericTransAlpha1":       e8.Alpha1,
		"AtmosphericTransAlpha2":       e8.Alpha2,
		"AtmosphericTransBeta1":        e8.Beta1,
		"AtmosphericTransBeta2":        e8.Beta2,
		"AtmosphericTransX":            e8.X,
	}
	skipped := make(map[string]bool)
	for _, s := range skip {
		skipped[s] = true
	}
	for _, name := range RequiredProperties() {
		if skipped[name] {
			continue
		}
		v := model.Float32Value(float32(values[name]))
		if name == "PlanckO" {
			v = model.Int32Value(int32(e8.PlanckO))
		}
		b.AddProperty(model.Property{Name: name, Category: "Camera", Value: v})
	}
	return b.Build().Properties()
}

func TestCalibrationFrom(t *testing.T) {
	c, err := CalibrationFrom(calibrationProperties())
	if err != nil {
		t.Fatalf("CalibrationFrom failed: %v", err)
	}
	if c.PlanckO != -5753 {
		t.Errorf("PlanckO = %v, want -5753", c.PlanckO)
	}
	if c.Emissivity != float64(float32(0.95)) {
		t.Errorf("Emissivity = %v, want %v", c.Emissivity, float64(float32(0.95)))
	}
	if c.ReflectedTemperature != float64(float32(293.15)) {
		t.Errorf("ReflectedTemperature = %v, want %v", c.ReflectedTemperature, float64(float32(293.15)))
	}
}

func TestCalibrationFromMissing(t *testing.T) {
	_, err := CalibrationFrom(calibrationProperties("PlanckR1", "Emissivity"))
	if !errors.Is(err, model.ErrMissingProperty) {
		t.Fatalf("err = %v, want ErrMissingProperty", err)
	}
	for _, name := range []string{"PlanckR1", "Emissivity"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not name %s", err, name)
		}
	}

	if _, err := CalibrationFrom(model.NewProperties()); !errors.Is(err, model.ErrMissingProperty) {
		t.Errorf("empty properties err = %v, want ErrMissingProperty", err)
	}
}
