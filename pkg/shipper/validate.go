package shipper

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes a single field-level validation failure in a
// request payload.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator wraps the struct validator used for inbound payloads.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a Validator configured for the connector's
// request entities.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Check validates an entity against its struct tags. Schema violations
// are returned as ErrValidation carrying per-field detail; the carrier
// is never called for a payload that fails here.
func (v *Validator) Check(entity any) error {
	err := v.validate.Struct(entity)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return ErrValidation.WithMessage("request body is invalid").WithCause(err)
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: tagMessage(fe.Tag()),
		})
	}

	return ErrValidation.WithMessage("request body is invalid").WithDetail(fields)
}

// fieldPath strips the root struct name from a validator namespace,
// e.g. "QuoteRequest.OriginAddress.Name" -> "originAddress.name".
func fieldPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	for i, p := range parts {
		if p == "" {
			continue
		}
		// Keep any index suffix, lower-case only the leading rune.
		parts[i] = strings.ToLower(p[:1]) + p[1:]
	}
	return strings.Join(parts, ".")
}

func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "min", "gte", "lte", "max", "len":
		return "out.of.range"
	case "oneof":
		return "unsupported.value"
	case "uuid4":
		return "malformed.identifier"
	default:
		return "invalid"
	}
}
