// Package radiometry converts raw sensor counts to object temperatures
// with the Planck radiance model and FLIR's atmospheric transmission model.
package radiometry

import (
	"fmt"
	"strings"

	"github.com/dyuri/fffconv/internal/model"
)

// Calibration holds the camera constants and measurement conditions
// needed to convert raw values. Temperatures are in Kelvin and relative
// humidity is a fraction, as stored in Camera records.
type Calibration struct {
	Emissivity           float64
	ObjectDistance       float64 // Metres
	ReflectedTemperature float64 // K
	AtmosphericTemp      float64 // K
	IRWindowTransmission float64
	RelativeHumidity     float64 // 0..1

	PlanckR1 float64
	PlanckB  float64
	PlanckF  float64
	PlanckO  float64
	PlanckR2 float64

	Alpha1 float64
	Alpha2 float64
	Beta1  float64
	Beta2  float64
	X      float64
}

// calibrationFields binds property names to Calibration fields.
var calibrationFields = []struct {
	name  string
	field func(c *Calibration) *float64
}{
	{"Emissivity", func(c *Calibration) *float64 { return &c.Emissivity }},
	{"ObjectDistance", func(c *Calibration) *float64 { return &c.ObjectDistance }},
	{"ReflectedApparentTemperature", func(c *Calibration) *float64 { return &c.ReflectedTemperature }},
	{"AtmosphericTemperature", func(c *Calibration) *float64 { return &c.AtmosphericTemp }},
	{"IRWindowTransmission", func(c *Calibration) *float64 { return &c.IRWindowTransmission }},
	{"RelativeHumidity", func(c *Calibration) *float64 { return &c.RelativeHumidity }},
	{"PlanckR1", func(c *Calibration) *float64 { return &c.PlanckR1 }},
	{"PlanckB", func(c *Calibration) *float64 { return &c.PlanckB }},
	{"PlanckF", func(c *Calibration) *float64 { return &c.PlanckF }},
	{"PlanckO", func(c *Calibration) *float64 { return &c.PlanckO }},
	{"PlanckR2", func(c *Calibration) *float64 { return &c.PlanckR2 }},
	{"AtmosphericTransAlpha1", func(c *Calibration) *float64 { return &c.Alpha1 }},
	{"AtmosphericTransAlpha2", func(c *Calibration) *float64 { return &c.Alpha2 }},
	{"AtmosphericTransBeta1", func(c *Calibration) *float64 { return &c.Beta1 }},
	{"AtmosphericTransBeta2", func(c *Calibration) *float64 { return &c.Beta2 }},
	{"AtmosphericTransX", func(c *Calibration) *float64 { return &c.X }},
}

// RequiredProperties lists the property names CalibrationFrom reads.
func RequiredProperties() []string {
	names := make([]string, len(calibrationFields))
	for i, f := range calibrationFields {
		names[i] = f.name
	}
	return names
}

// CalibrationFrom collects the calibration from decoded properties. Every
// absent or non-numeric property is listed in the returned
// ErrMissingProperty error.
func CalibrationFrom(props *model.Properties) (Calibration, error) {
	var c Calibration
	var missing []string

	for _, f := range calibrationFields {
		p, ok := props.Get(f.name)
		if !ok {
			missing = append(missing, f.name)
			continue
		}
		n, ok := p.Value.Number()
		if !ok {
			missing = append(missing, f.name)
			continue
		}
		*f.field(&c) = n
	}

	if len(missing) > 0 {
		return Calibration{}, model.Wrap(model.ErrMissingProperty, fmt.Errorf("%s", strings.Join(missing, ", ")))
	}
	return c, nil
}
