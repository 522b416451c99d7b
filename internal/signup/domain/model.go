// Package domain contains core types for the registration flow.
package domain

import "sort"

// Field keys used in ErrorSet.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldTerms    = "terms"
	FieldAPIError = "apiError"
)

// User-facing messages.
const (
	MsgNameRequired     = "Name is required"
	MsgEmailRequired    = "Email is required"
	MsgEmailInvalid     = "Invalid email address"
	MsgPasswordTooShort = "Password must be at least 6 characters long"
	MsgTermsRequired    = "You must accept the terms and conditions"
	MsgSignupFailed     = "Failed to sign up. Please try again later."
)

// Session keys and the post-registration route.
const (
	SessionKeyUserID   = "myID"
	SessionKeyUserName = "userName"

	RouteHome = "/home"
)

// MinPasswordLength is the minimum password length in characters.
const MinPasswordLength = 6

// RegistrationInput is the four-field record the form submits.
type RegistrationInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"min=6"`
	Terms    bool   `json:"terms" validate:"eq=true"`
}

// ErrorSet maps a field key to the message of its first failing rule.
// An absent key means the field is currently valid.
type ErrorSet map[string]string

// Has reports whether key is currently failing.
func (e ErrorSet) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// Empty reports whether no field is failing.
func (e ErrorSet) Empty() bool {
	return len(e) == 0
}

// Clone returns an independent copy.
func (e ErrorSet) Clone() ErrorSet {
	if e == nil {
		return ErrorSet{}
	}
	out := make(ErrorSet, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Keys returns the failing keys in sorted order.
func (e ErrorSet) Keys() []string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
