package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/dyuri/fffconv/internal/model"
	"github.com/dyuri/fffconv/internal/radiometry"
	"github.com/spf13/cobra"
)

// validate command
var validateCmd = &cobra.Command{
	Use:   "validate <input>",
	Short: "Check a thermal image for problems",
	Long: `Check that a thermal image decodes, carries a complete calibration,
and that its raw data is consistent with the recorded camera settings.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().Bool("strict", false, "Fail on warnings")
	addOverrideFlag(validateCmd.Flags())
}

func runValidate(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	strict, _ := cmd.Flags().GetBool("strict")

	img, err := loadImage(cmd, inputPath)
	if err != nil {
		return err
	}

	v := newValidator(strict)
	v.validate(img, inputPath)
	v.printResults(os.Stdout)

	if v.hasErrors() || (strict && v.hasWarnings()) {
		return fmt.Errorf("validation failed")
	}
	return nil
}

// validator holds validation state
type validator struct {
	strict   bool
	errors   []string
	warnings []string
	file     string
}

func newValidator(strict bool) *validator {
	return &validator{
		strict:   strict,
		errors:   make([]string, 0),
		warnings: make([]string, 0),
	}
}

func (v *validator) error(msg string, args ...interface{}) {
	v.errors = append(v.errors, fmt.Sprintf(msg, args...))
}

func (v *validator) warning(msg string, args ...interface{}) {
	v.warnings = append(v.warnings, fmt.Sprintf(msg, args...))
}

func (v *validator) hasErrors() bool {
	return len(v.errors) > 0
}

func (v *validator) hasWarnings() bool {
	return len(v.warnings) > 0
}

func (v *validator) validate(img *model.ThermalImage, file string) {
	v.file = file

	v.validateRaster(img)

	cal, err := radiometry.CalibrationFrom(img.Properties())
	if err != nil {
		var coded *model.Error
		if errors.As(err, &coded) && coded.Cause != nil {
			v.error("Missing calibration: %v", coded.Cause)
		} else {
			v.error("Calibration: %v", err)
		}
		return
	}
	v.validateCalibration(cal)
	v.validateTemperatures(img, cal)
}

func (v *validator) validateRaster(img *model.ThermalImage) {
	if img.Len() == 0 {
		v.error("No raw thermal data")
		return
	}
	if img.Width()*img.Height() != img.Len() {
		v.warning("Size %dx%d does not match %d samples", img.Width(), img.Height(), img.Len())
	}

	// RawValueRangeMin/Max describe the sensor range, when recorded
	lo, okLo := numberProperty(img, "RawValueRangeMin")
	hi, okHi := numberProperty(img, "RawValueRangeMax")
	if !okLo || !okHi || hi <= lo {
		return
	}
	outside := 0
	for _, r := range img.RawValues() {
		if float64(r) < lo || float64(r) > hi {
			outside++
		}
	}
	if outside > 0 {
		v.warning("%d samples outside the sensor range %.0f..%.0f", outside, lo, hi)
	}
}

func (v *validator) validateCalibration(cal radiometry.Calibration) {
	if cal.Emissivity <= 0 || cal.Emissivity > 1 {
		v.error("Invalid emissivity %g (must be in (0, 1])", cal.Emissivity)
	} else if cal.Emissivity < 0.5 {
		v.warning("Low emissivity %g", cal.Emissivity)
	}
	if cal.IRWindowTransmission <= 0 || cal.IRWindowTransmission > 1 {
		v.error("Invalid IR window transmission %g (must be in (0, 1])", cal.IRWindowTransmission)
	}
	if cal.RelativeHumidity < 0 || cal.RelativeHumidity > 1 {
		v.warning("Unusual relative humidity %g (expected 0..1)", cal.RelativeHumidity)
	}
	if cal.ObjectDistance < 0 {
		v.error("Negative object distance %g", cal.ObjectDistance)
	}
	if cal.PlanckR2 == 0 {
		v.error("PlanckR2 is zero")
	}
}

func (v *validator) validateTemperatures(img *model.ThermalImage, cal radiometry.Calibration) {
	temps := radiometry.NewConverter(cal).Convert(img.RawValues(), radiometry.Celsius)
	invalid := 0
	for _, t := range temps {
		if math.IsNaN(t) {
			invalid++
		}
	}
	if invalid > 0 {
		v.warning("%d of %d samples have no defined temperature", invalid, len(temps))
	}
}

func numberProperty(img *model.ThermalImage, name string) (float64, bool) {
	p, ok := img.Property(name)
	if !ok {
		return 0, false
	}
	return p.Value.Number()
}

func (v *validator) printResults(w io.Writer) {
	fmt.Fprintf(w, "Validating: %s\n", v.file)
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if len(v.errors) == 0 && len(v.warnings) == 0 {
		fmt.Fprintln(w, "✓ Valid thermal image - no issues found")
		return
	}

	if len(v.errors) > 0 {
		fmt.Fprintf(w, "\nErrors (%d):\n", len(v.errors))
		for _, err := range v.errors {
			fmt.Fprintf(w, "  ✗ %s\n", err)
		}
	}

	if len(v.warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", len(v.warnings))
		for _, warn := range v.warnings {
			fmt.Fprintf(w, "  ⚠ %s\n", warn)
		}
	}

	fmt.Fprintln(w)
	if len(v.errors) > 0 {
		fmt.Fprintf(w, "Validation failed: %d error(s)", len(v.errors))
		if len(v.warnings) > 0 {
			fmt.Fprintf(w, ", %d warning(s)", len(v.warnings))
		}
		fmt.Fprintln(w)
	} else if len(v.warnings) > 0 {
		fmt.Fprintf(w, "Validation passed with %d warning(s)\n", len(v.warnings))
		if v.strict {
			fmt.Fprintln(w, "(use without --strict to ignore warnings)")
		}
	}
}
