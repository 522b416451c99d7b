package domain

import (
	"errors"
	"strings"
)

var (
	ErrInvalidTransition  = errors.New("invalid submission state transition")
	ErrUnknownField       = errors.New("unknown registration field")
)

// FieldError is a single field rejection reported by the registration service.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationErrors is returned when the registration service rejects input
// that passed local validation, e.g. a duplicate email.
type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	if v == nil || len(v.Errors) == 0 {
		return "validation error"
	}
	fields := make([]string, 0, len(v.Errors))
	for _, fe := range v.Errors {
		fields = append(fields, fe.Field)
	}
	return "validation error: " + strings.Join(fields, ", ")
}

// ErrorSet converts the rejection into the per-field shape used for local
// validation. The first message per field wins; entries without a field
// are reported under apiError.
func (v *ValidationErrors) ErrorSet() ErrorSet {
	out := ErrorSet{}
	if v == nil {
		return out
	}
	for _, fe := range v.Errors {
		field := strings.TrimSpace(fe.Field)
		if field == "" {
			field = FieldAPIError
		}
		if _, exists := out[field]; exists {
			continue
		}
		msg := strings.TrimSpace(fe.Message)
		if msg == "" {
			msg = MsgSignupFailed
		}
		out[field] = msg
	}
	if len(out) == 0 {
		out[FieldAPIError] = MsgSignupFailed
	}
	return out
}
