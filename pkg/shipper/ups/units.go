package ups

import (
	"math"
	"strconv"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// UPS accepts only in/cm for dimensions and lb/kg for weight. The
// connector's unit vocabulary is wider (mm, m, ft, yd, g, oz), so every
// parcel is normalized to a UPS-accepted unit before a payload is
// built. UPS also rejects requests that mix imperial and metric units,
// and shipments originating in certain countries must use imperial
// units regardless of the input.

// LengthResolution is the outcome of planning a dimension conversion:
// the unit to convert to plus the UPS code and description for it.
type LengthResolution struct {
	Target      shipper.LengthUnit
	Code        string
	Description string
}

// WeightResolution is the outcome of planning a weight conversion.
type WeightResolution struct {
	Target      shipper.WeightUnit
	Code        string
	Description string
}

var (
	imperialLength = LengthResolution{Target: shipper.LengthIN, Code: "IN", Description: "Inches"}
	metricLength   = LengthResolution{Target: shipper.LengthCM, Code: "CM", Description: "Centimeters"}

	imperialWeight = WeightResolution{Target: shipper.WeightLB, Code: "LBS", Description: "Pounds"}
	metricWeight   = WeightResolution{Target: shipper.WeightKG, Code: "KGS", Description: "Kilograms"}
)

// Shipments originating in these countries must provide package
// dimensions in imperial units. Other countries may use either system.
var imperialUnitCountries = map[string]bool{
	"US": true,
}

// Conversion factors to a common base (metres / grams).
var metresPer = map[shipper.LengthUnit]float64{
	shipper.LengthMM: 0.001,
	shipper.LengthCM: 0.01,
	shipper.LengthM:  1,
	shipper.LengthIN: 0.0254,
	shipper.LengthFT: 0.3048,
	shipper.LengthYD: 0.9144,
}

var gramsPer = map[shipper.WeightUnit]float64{
	shipper.WeightG:  1,
	shipper.WeightKG: 1000,
	shipper.WeightOZ: 28.349523125,
	shipper.WeightLB: 453.59237,
}

var imperialLengthUnits = map[shipper.LengthUnit]bool{
	shipper.LengthIN: true,
	shipper.LengthFT: true,
	shipper.LengthYD: true,
}

var imperialWeightUnits = map[shipper.WeightUnit]bool{
	shipper.WeightOZ: true,
	shipper.WeightLB: true,
}

// ResolveLengthUnit selects the UPS length unit for an input unit and
// origin country. Origins in the imperial-mandatory set always resolve
// to inches, even for metric input; otherwise the unit system of the
// input is preserved.
func ResolveLengthUnit(unit shipper.LengthUnit, originCountry string) (LengthResolution, error) {
	if _, ok := metresPer[unit]; !ok {
		return LengthResolution{}, shipper.ErrUnsupportedUnit.WithMessage("unsupported length unit %q", unit)
	}
	if imperialUnitCountries[originCountry] || imperialLengthUnits[unit] {
		return imperialLength, nil
	}
	return metricLength, nil
}

// ResolveWeightUnit selects the UPS weight unit for an input unit and
// origin country, applying the same imperial-mandatory rule as
// ResolveLengthUnit.
func ResolveWeightUnit(unit shipper.WeightUnit, originCountry string) (WeightResolution, error) {
	if _, ok := gramsPer[unit]; !ok {
		return WeightResolution{}, shipper.ErrUnsupportedUnit.WithMessage("unsupported weight unit %q", unit)
	}
	if imperialUnitCountries[originCountry] || imperialWeightUnits[unit] {
		return imperialWeight, nil
	}
	return metricWeight, nil
}

// ConvertLength converts a dimension value between any two supported
// length units.
func ConvertLength(value float64, from, to shipper.LengthUnit) (float64, error) {
	f, ok := metresPer[from]
	if !ok {
		return 0, shipper.ErrUnsupportedUnit.WithMessage("unsupported length unit %q", from)
	}
	t, ok := metresPer[to]
	if !ok {
		return 0, shipper.ErrUnsupportedUnit.WithMessage("unsupported length unit %q", to)
	}
	return value * f / t, nil
}

// ConvertWeight converts a weight value between any two supported
// weight units.
func ConvertWeight(value float64, from, to shipper.WeightUnit) (float64, error) {
	f, ok := gramsPer[from]
	if !ok {
		return 0, shipper.ErrUnsupportedUnit.WithMessage("unsupported weight unit %q", from)
	}
	t, ok := gramsPer[to]
	if !ok {
		return 0, shipper.ErrUnsupportedUnit.WithMessage("unsupported weight unit %q", to)
	}
	return value * f / t, nil
}

// FormatMeasurement renders a converted value the way UPS expects:
// rounded to the configured number of decimal places, as a string with
// no trailing zeros.
func FormatMeasurement(value float64, precision int) string {
	pow := math.Pow10(precision)
	rounded := math.Round(value*pow) / pow
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
