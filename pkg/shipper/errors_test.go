package shipper_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tournevent/shipping-connector/pkg/shipper"
)

func TestError_IsMatchesByCode(t *testing.T) {
	derived := shipper.ErrConflict.WithMessage("rate %s already consumed", "tok-1")

	assert.True(t, errors.Is(derived, shipper.ErrConflict))
	assert.False(t, errors.Is(derived, shipper.ErrNotFound))
}

func TestError_WithPreservesOriginal(t *testing.T) {
	derived := shipper.ErrValidation.WithMessage("bad input").WithDetail("x")

	assert.Empty(t, shipper.ErrValidation.Message)
	assert.Nil(t, shipper.ErrValidation.Detail)
	assert.Equal(t, "bad input", derived.Message)
	assert.Equal(t, shipper.ErrValidation.Code, derived.Code)
}

func TestError_UnwrapAndCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	derived := shipper.ErrCarrierService.WithCause(cause)

	assert.True(t, errors.Is(derived, shipper.ErrCarrierService))
	assert.Equal(t, cause, errors.Unwrap(derived))
	assert.Contains(t, derived.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, shipper.HTTPStatus(shipper.ErrValidation))
	assert.Equal(t, http.StatusUnprocessableEntity, shipper.HTTPStatus(shipper.ErrInvalidAddress))
	assert.Equal(t, http.StatusNotImplemented, shipper.HTTPStatus(shipper.ErrUnsupportedCountry))
	assert.Equal(t, http.StatusNotFound, shipper.HTTPStatus(shipper.ErrNotFound))
	assert.Equal(t, http.StatusPreconditionFailed, shipper.HTTPStatus(shipper.ErrPreconditionFailed))
	assert.Equal(t, http.StatusConflict, shipper.HTTPStatus(shipper.ErrConflict))
	assert.Equal(t, http.StatusBadGateway, shipper.HTTPStatus(shipper.ErrCarrierService))
	assert.Equal(t, http.StatusInternalServerError, shipper.HTTPStatus(fmt.Errorf("plain")))

	// Wrapped errors resolve through the chain.
	wrapped := fmt.Errorf("outer: %w", shipper.ErrConflict)
	assert.Equal(t, http.StatusConflict, shipper.HTTPStatus(wrapped))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "already.shipped", shipper.ErrorCode(shipper.ErrConflict))
	assert.Equal(t, "internal.error", shipper.ErrorCode(fmt.Errorf("plain")))
}

func TestErrorDetail(t *testing.T) {
	derived := shipper.ErrInvalidAddress.WithDetail([]string{"a", "b"})

	detail, ok := shipper.ErrorDetail(derived).([]string)
	require.True(t, ok)
	assert.Len(t, detail, 2)
	assert.Nil(t, shipper.ErrorDetail(fmt.Errorf("plain")))
}
