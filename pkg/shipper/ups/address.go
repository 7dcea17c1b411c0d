package ups

import (
	"strings"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// AddressContext carries the fields UPS never echoes back in a
// candidate address, so they can be back-filled from the caller's
// input.
type AddressContext struct {
	Name    string
	Company string
	Phone   string
	Email   string
}

// displayName concatenates the person and company names, skipping
// empty values.
func displayName(a shipper.Address) string {
	return joinNonEmpty(a.Name, a.Company)
}

// addressLine concatenates street1 and street2 into one comma-separated
// line, as the XAV endpoint expects.
func addressLine(a shipper.Address) string {
	return joinNonEmpty(a.Street1, a.Street2)
}

// streetLines keeps street1/street2 as an ordered sequence, as the
// rating and shipping payloads expect.
func streetLines(a shipper.Address) []string {
	lines := make([]string, 0, 2)
	for _, l := range []string{a.Street1, a.Street2} {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// ToValidationAddress converts an address to the flat AddressKeyFormat
// used by the XAV endpoint. Street lines are concatenated here; only
// the validation format flattens them.
func ToValidationAddress(a shipper.Address) AddressKeyFormat {
	return AddressKeyFormat{
		ConsigneeName:      displayName(a),
		AddressLine:        addressLines{addressLine(a)},
		PoliticalDivision2: a.City,
		PoliticalDivision1: a.State,
		PostcodePrimaryLow: a.Zip,
		CountryCode:        a.Country,
	}
}

// ToQuoteAddress converts an address to the rating payload format.
func ToQuoteAddress(a shipper.Address) NamedAddress {
	return NamedAddress{
		Name: displayName(a),
		Address: AddressFields{
			AddressLine:       streetLines(a),
			City:              a.City,
			StateProvinceCode: a.State,
			PostalCode:        a.Zip,
			CountryCode:       a.Country,
		},
	}
}

// ToShipmentAddress converts an address to the shipment payload
// format, which additionally requires a phone number.
func ToShipmentAddress(a shipper.Address) ShipAddress {
	quote := ToQuoteAddress(a)
	addr := ShipAddress{
		Name:    quote.Name,
		Address: quote.Address,
	}
	if a.Phone != "" {
		addr.Phone = &Phone{Number: a.Phone}
	}
	return addr
}

// FromCarrierAddress builds an Address from a UPS AddressKeyFormat,
// back-filling the fields UPS drops from the caller-supplied context.
// The wire AddressLine may be a single string or a sequence of up to
// two lines.
func FromCarrierAddress(key AddressKeyFormat, ctx AddressContext) shipper.Address {
	var street1, street2 string
	if len(key.AddressLine) > 0 {
		street1 = key.AddressLine[0]
	}
	if len(key.AddressLine) > 1 {
		street2 = key.AddressLine[1]
	}

	return shipper.Address{
		Name:    ctx.Name,
		Company: ctx.Company,
		Street1: street1,
		Street2: street2,
		City:    key.PoliticalDivision2,
		State:   key.PoliticalDivision1,
		Zip:     key.PostcodePrimaryLow,
		Country: key.CountryCode,
		Phone:   ctx.Phone,
		Email:   ctx.Email,
	}
}

// shipperParty builds the configured shipper party for rating and
// shipment payloads.
func shipperParty(info ShipperInfo, withContact bool) ShipperParty {
	lines := make([]string, 0, 2)
	for _, l := range []string{info.Street1, info.Street2} {
		if l != "" {
			lines = append(lines, l)
		}
	}

	party := ShipperParty{
		Name:          info.Name,
		ShipperNumber: info.ShipperNumber,
		Address: AddressFields{
			AddressLine:       lines,
			City:              info.City,
			StateProvinceCode: info.State,
			PostalCode:        info.Zip,
			CountryCode:       info.Country,
		},
	}
	if withContact {
		party.TaxIdentificationNumber = info.TaxID
		if info.Phone != "" {
			party.Phone = &Phone{Number: info.Phone}
		}
	}
	return party
}
