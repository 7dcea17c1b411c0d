package ups

import (
	"net/url"
	"time"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

// statusByType maps UPS activity status type codes to domain statuses.
// Codes outside the table map to UNKNOWN.
var statusByType = map[string]shipper.Status{
	"M": shipper.StatusUnknown,    // Manifest pickup pending
	"P": shipper.StatusPreTransit, // Picked up
	"I": shipper.StatusTransit,    // In transit
	"D": shipper.StatusDelivered,  // Delivered
	"X": shipper.StatusFailure,    // Exception
}

// MapStatus maps a UPS activity status type code to the domain status.
func MapStatus(typeCode string) shipper.Status {
	if s, ok := statusByType[typeCode]; ok {
		return s
	}
	return shipper.StatusUnknown
}

// upsTimestampLayout parses the concatenation of the UPS Date
// ("YYYYMMDD") and Time ("HHMMSS") fields.
const upsTimestampLayout = "20060102T150405"

func parseActivityTime(date, clock string) (time.Time, error) {
	return time.Parse(upsTimestampLayout, date+"T"+clock)
}

// SnapshotFromTrackResponse reduces a tracking response to the latest
// observed state of the queried package.
//
// Only UPS parcel tracking is supported; freight responses carry no
// Package field and are rejected as malformed. When a response carries
// several packages, the one matching the inquiry number is selected -
// each package has its own tracking number and any of them resolves to
// the same shipment.
func SnapshotFromTrackResponse(resp *TrackResponse) (shipper.TrackingSnapshot, error) {
	if resp == nil || len(resp.Shipment.Package) == 0 {
		return shipper.TrackingSnapshot{}, shipper.ErrMalformedCarrierResponse.
			WithMessage("tracking response contains no package; only parcel tracking is supported")
	}

	inquiry := resp.Shipment.InquiryNumber.Value
	packages := resp.Shipment.Package

	pkg := packages[0]
	if len(packages) > 1 {
		found := false
		for _, candidate := range packages {
			if candidate.TrackingNumber == inquiry {
				pkg = candidate
				found = true
				break
			}
		}
		if !found {
			return shipper.TrackingSnapshot{}, shipper.ErrMalformedCarrierResponse.
				WithMessage("no package matches inquiry number %s", inquiry)
		}
	}

	if len(pkg.Activity) == 0 {
		return shipper.TrackingSnapshot{}, shipper.ErrMalformedCarrierResponse.
			WithMessage("package %s carries no activity", pkg.TrackingNumber)
	}

	// Pick the most recent activity by timestamp. Entries with an
	// unparseable timestamp lose to any parseable one.
	var latest Activity
	var latestAt time.Time
	haveLatest := false
	for _, act := range pkg.Activity {
		at, err := parseActivityTime(act.Date, act.Time)
		if err != nil {
			if !haveLatest {
				latest = act
			}
			continue
		}
		if !haveLatest || !at.Before(latestAt) {
			latest, latestAt, haveLatest = act, at, true
		}
	}

	return shipper.TrackingSnapshot{
		TrackingNumber: pkg.TrackingNumber,
		Status:         MapStatus(latest.Status.Type),
		StatusText:     latest.Status.Description,
		ObservedAt:     latestAt,
	}, nil
}

// BuildTrackingURL constructs a browser URL where an end user can see
// the tracking status for a tracking number.
func BuildTrackingURL(baseURL, trackingNumber string) string {
	query := url.Values{}
	query.Set("trackNums", trackingNumber)
	query.Set("track.x", "track")
	return baseURL + "?" + query.Encode()
}
