package ups_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournevent/shipping-connector/pkg/shipper"
	"github.com/tournevent/shipping-connector/pkg/shipper/ups"
)

func TestMapStatus(t *testing.T) {
	assert.Equal(t, shipper.StatusUnknown, ups.MapStatus("M"))
	assert.Equal(t, shipper.StatusPreTransit, ups.MapStatus("P"))
	assert.Equal(t, shipper.StatusTransit, ups.MapStatus("I"))
	assert.Equal(t, shipper.StatusDelivered, ups.MapStatus("D"))
	assert.Equal(t, shipper.StatusFailure, ups.MapStatus("X"))
	assert.Equal(t, shipper.StatusUnknown, ups.MapStatus("Z"))
	assert.Equal(t, shipper.StatusUnknown, ups.MapStatus(""))
}

func trackResponseFromJSON(t *testing.T, raw string) *ups.TrackResponse {
	t.Helper()
	var resp ups.TrackResponse
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	return &resp
}

func TestSnapshotFromTrackResponse_LatestActivityWins(t *testing.T) {
	resp := trackResponseFromJSON(t, `{
		"Shipment": {
			"InquiryNumber": {"Value": "1Z123"},
			"Package": {
				"TrackingNumber": "1Z123",
				"Activity": [
					{"Date": "20260830", "Time": "091500", "Status": {"Type": "D", "Description": "Delivered"}},
					{"Date": "20260829", "Time": "120000", "Status": {"Type": "I", "Description": "Departed facility"}}
				]
			}
		}
	}`)

	snap, err := ups.SnapshotFromTrackResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "1Z123", snap.TrackingNumber)
	assert.Equal(t, shipper.StatusDelivered, snap.Status)
	assert.Equal(t, "Delivered", snap.StatusText)
	assert.Equal(t, 2026, snap.ObservedAt.Year())
	assert.Equal(t, 30, snap.ObservedAt.Day())
}

func TestSnapshotFromTrackResponse_SingleActivityObject(t *testing.T) {
	// Activity arrives as a single object when only one event exists.
	resp := trackResponseFromJSON(t, `{
		"Shipment": {
			"InquiryNumber": {"Value": "1Z123"},
			"Package": {
				"TrackingNumber": "1Z123",
				"Activity": {"Date": "20260828", "Time": "080000", "Status": {"Type": "P", "Description": "Pickup scan"}}
			}
		}
	}`)

	snap, err := ups.SnapshotFromTrackResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, shipper.StatusPreTransit, snap.Status)
}

func TestSnapshotFromTrackResponse_SelectsPackageByInquiryNumber(t *testing.T) {
	resp := trackResponseFromJSON(t, `{
		"Shipment": {
			"InquiryNumber": {"Value": "1Z456"},
			"Package": [
				{"TrackingNumber": "1Z123", "Activity": {"Date": "20260828", "Time": "080000", "Status": {"Type": "I"}}},
				{"TrackingNumber": "1Z456", "Activity": {"Date": "20260828", "Time": "090000", "Status": {"Type": "D", "Description": "Delivered"}}}
			]
		}
	}`)

	snap, err := ups.SnapshotFromTrackResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, "1Z456", snap.TrackingNumber)
	assert.Equal(t, shipper.StatusDelivered, snap.Status)
}

func TestSnapshotFromTrackResponse_NoPackage(t *testing.T) {
	resp := trackResponseFromJSON(t, `{"Shipment": {"InquiryNumber": {"Value": "1Z123"}}}`)

	_, err := ups.SnapshotFromTrackResponse(resp)
	assert.True(t, errors.Is(err, shipper.ErrMalformedCarrierResponse))
}

func TestSnapshotFromTrackResponse_NoActivity(t *testing.T) {
	resp := trackResponseFromJSON(t, `{
		"Shipment": {
			"InquiryNumber": {"Value": "1Z123"},
			"Package": {"TrackingNumber": "1Z123"}
		}
	}`)

	_, err := ups.SnapshotFromTrackResponse(resp)
	assert.True(t, errors.Is(err, shipper.ErrMalformedCarrierResponse))
}

func TestBuildTrackingURL(t *testing.T) {
	url := ups.BuildTrackingURL("https://www.ups.com/track", "1Z9999W99999999999")
	assert.Equal(t, "https://www.ups.com/track?track.x=track&trackNums=1Z9999W99999999999", url)
}
