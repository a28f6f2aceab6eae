package radiometry

import (
	"fmt"
	"math"
	"strings"

	"github.com/dyuri/fffconv/internal/parallel"
)

const kelvinOffset = 273.15

// Unit selects the output temperature scale.
type Unit int

const (
	Celsius Unit = iota
	Fahrenheit
	Kelvin
)

func (u Unit) String() string {
	switch u {
	case Fahrenheit:
		return "F"
	case Kelvin:
		return "K"
	default:
		return "C"
	}
}

// Set parses a unit name; it makes *Unit usable as a pflag.Value.
func (u *Unit) Set(s string) error {
	switch strings.ToLower(s) {
	case "c", "celsius":
		*u = Celsius
	case "f", "fahrenheit":
		*u = Fahrenheit
	case "k", "kelvin":
		*u = Kelvin
	default:
		return fmt.Errorf("unknown unit %q (want C, F or K)", s)
	}
	return nil
}

func (u *Unit) Type() string { return "unit" }

// FromCelsius converts a Celsius temperature to u.
func (u Unit) FromCelsius(c float64) float64 {
	switch u {
	case Fahrenheit:
		return c*9/5 + 32
	case Kelvin:
		return c + kelvinOffset
	default:
		return c
	}
}

// Converter maps raw values to temperatures for one calibration. The
// attenuation terms are computed once by NewConverter.
type Converter struct {
	cal Calibration

	e, tau, irt float64

	// Attenuation terms in raw units
	rawAtmAttn     float64
	rawAtm2Attn    float64
	rawWindAttn    float64
	rawReflAttn    float64
	rawReflWinAttn float64
}

// NewConverter prepares a converter for c.
func NewConverter(c Calibration) *Converter {
	conv := &Converter{cal: c}

	e := c.Emissivity
	irt := c.IRWindowTransmission
	reflTemp := c.ReflectedTemperature - kelvinOffset
	atmTemp := c.AtmosphericTemp - kelvinOffset
	rh := c.RelativeHumidity * 100

	h2o := (rh / 100) * math.Exp(1.5587+0.06939*atmTemp-0.00027816*math.Pow(atmTemp, 2)+0.00000068455*math.Pow(atmTemp, 3))
	dist := math.Sqrt(c.ObjectDistance / 2)
	tau := c.X*math.Exp(-dist*(c.Alpha1+c.Beta1*math.Sqrt(h2o))) +
		(1-c.X)*math.Exp(-dist*(c.Alpha2+c.Beta2*math.Sqrt(h2o)))

	emissWind := 1 - irt
	reflWind := 0.0
	windowTemp := reflTemp

	conv.e, conv.tau, conv.irt = e, tau, irt
	conv.rawReflAttn = (1 - e) / e * conv.RawFromTemp(reflTemp)
	conv.rawAtmAttn = (1 - tau) / e / tau * conv.RawFromTemp(atmTemp)
	conv.rawWindAttn = emissWind / e / tau / irt * conv.RawFromTemp(windowTemp)
	conv.rawReflWinAttn = reflWind / e / tau / irt * conv.RawFromTemp(reflTemp)
	conv.rawAtm2Attn = (1 - tau) / e / tau / irt / tau * conv.RawFromTemp(atmTemp)
	return conv
}

// RawFromTemp returns the raw value a blackbody at t °C would produce.
func (c *Converter) RawFromTemp(t float64) float64 {
	p := c.cal
	return p.PlanckR1/(p.PlanckR2*(math.Exp(p.PlanckB/(t+kelvinOffset))-p.PlanckF)) - p.PlanckO
}

// Celsius returns the object temperature for a raw value, or NaN when
// the model is undefined for it.
func (c *Converter) Celsius(raw float64) float64 {
	p := c.cal
	objectRaw := raw/c.e/c.tau/c.irt/c.tau -
		c.rawAtmAttn - c.rawAtm2Attn - c.rawWindAttn - c.rawReflAttn - c.rawReflWinAttn

	arg := p.PlanckR1/(p.PlanckR2*(objectRaw+p.PlanckO)) + p.PlanckF
	if !(arg > 0) || math.IsInf(arg, 0) {
		return math.NaN()
	}
	t := p.PlanckB/math.Log(arg) - kelvinOffset
	if math.IsInf(t, 0) {
		return math.NaN()
	}
	return t
}

// Temperature returns the object temperature of raw in unit u.
func (c *Converter) Temperature(raw float64, u Unit) float64 {
	return u.FromCelsius(c.Celsius(raw))
}

// Convert returns one temperature per raw sample, in order. Samples are
// processed concurrently; a sample the model cannot convert becomes NaN.
func (c *Converter) Convert(raw []uint16, u Unit) []float64 {
	out := make([]float64, len(raw))
	parallel.For(len(raw), func(start, end int) {
		for i := start; i < end; i++ {
			out[i] = c.Temperature(float64(raw[i]), u)
		}
	})
	return out
}
