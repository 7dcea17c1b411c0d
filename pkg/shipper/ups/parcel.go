package ups

import (
	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// Purpose distinguishes the payload context a package is built for.
// Rating payloads tag the packaging type under a different key than
// shipment payloads, though the code value is identical.
type Purpose int

const (
	PurposeQuote Purpose = iota
	PurposeShipment
)

// Customer-supplied package. UPS code 02.
const packagingTypeCode = "02"

// ToPackage converts a parcel to a UPS package payload, resolving
// target units for the origin country and converting all dimensions
// and the weight. The three linear dimensions always share one
// resolved length unit; UPS rejects mixed-system payloads.
func ToPackage(p shipper.Parcel, originCountry string, purpose Purpose, precision int) (Package, error) {
	length, err := ResolveLengthUnit(p.LengthUnit, originCountry)
	if err != nil {
		return Package{}, err
	}
	weight, err := ResolveWeightUnit(p.WeightUnit, originCountry)
	if err != nil {
		return Package{}, err
	}

	dims := make([]string, 3)
	for i, value := range []float64{p.Length, p.Width, p.Height} {
		converted, err := ConvertLength(value, p.LengthUnit, length.Target)
		if err != nil {
			return Package{}, err
		}
		dims[i] = FormatMeasurement(converted, precision)
	}

	convertedWeight, err := ConvertWeight(p.Weight, p.WeightUnit, weight.Target)
	if err != nil {
		return Package{}, err
	}

	pkg := Package{
		Dimensions: Dimensions{
			UnitOfMeasurement: CodeDescription{Code: length.Code, Description: length.Description},
			Length:            dims[0],
			Width:             dims[1],
			Height:            dims[2],
		},
		PackageWeight: PackageWeight{
			UnitOfMeasurement: CodeDescription{Code: weight.Code, Description: weight.Description},
			Weight:            FormatMeasurement(convertedWeight, precision),
		},
	}

	switch purpose {
	case PurposeShipment:
		pkg.Packaging = &CodeDescription{Code: packagingTypeCode}
	default:
		pkg.PackagingType = &CodeDescription{Code: packagingTypeCode}
	}
	return pkg, nil
}
