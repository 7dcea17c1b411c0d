package ups

import (
	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// UPS does not return descriptive names for most services; this table
// supplies them.
var serviceLevels = map[string]string{
	"01": "UPS Next Day Air",
	"02": "UPS 2nd Day Air",
	"03": "UPS Ground",
	"07": "UPS Worldwide Express",
	"08": "UPS Worldwide Expedited",
	"11": "UPS Standard",
	"12": "UPS 3 Day Select",
	"13": "UPS Next Day Air Saver",
	"14": "UPS Next Day Air Early A.M.",
	"54": "UPS Worldwide Express Plus",
	"59": "UPS 2nd Day Air A.M.",
	"65": "UPS Saver",
	"82": "UPS Today Standard",
	"83": "UPS Today Dedicated Courier",
	"84": "UPS Today Intercity",
	"85": "UPS Today Express",
	"86": "UPS Today Express Saver",
}

// ServiceLevel returns the human-readable name for a UPS service code.
// Unknown codes map to "unknown".
func ServiceLevel(code string) string {
	if name, ok := serviceLevels[code]; ok {
		return name
	}
	return "unknown"
}

// FromRatedShipment builds a domain rate from one rated shipment in a
// rating response, falling back to the service-level table when UPS
// omits the description.
func FromRatedShipment(rs RatedShipment) shipper.Rate {
	level := rs.Service.Description
	if level == "" {
		level = ServiceLevel(rs.Service.Code)
	}
	return shipper.Rate{
		ServiceCode:  rs.Service.Code,
		Carrier:      carrierName,
		ServiceLevel: level,
		Price:        rs.TotalCharges.MonetaryValue,
		CurrencyCode: rs.TotalCharges.CurrencyCode,
	}
}
