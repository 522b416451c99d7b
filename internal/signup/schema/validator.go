// Package schema validates registration input against the form's field rules.
package schema

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/telematch/internal/signup/domain"
)

type ruleKey struct {
	field string
	tag   string
}

var messages = map[ruleKey]string{
	{domain.FieldName, "required"}:  domain.MsgNameRequired,
	{domain.FieldEmail, "required"}: domain.MsgEmailRequired,
	{domain.FieldEmail, "email"}:    domain.MsgEmailInvalid,
	{domain.FieldPassword, "min"}:   domain.MsgPasswordTooShort,
	{domain.FieldTerms, "eq"}:       domain.MsgTermsRequired,
}

// Validator checks a RegistrationInput. It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

var defaultValidator = New()

// Validate runs the default validator.
func Validate(input domain.RegistrationInput) (domain.RegistrationInput, domain.ErrorSet) {
	return defaultValidator.Validate(input)
}

// Validate evaluates every rule and returns the input unchanged when it is
// valid, or the failing fields mapped to their first applicable message.
func (v *Validator) Validate(input domain.RegistrationInput) (domain.RegistrationInput, domain.ErrorSet) {
	err := v.validate.Struct(input)
	if err == nil {
		return input, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return input, domain.ErrorSet{domain.FieldAPIError: domain.MsgSignupFailed}
	}

	out := make(domain.ErrorSet, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, exists := out[field]; exists {
			continue
		}
		msg, ok := messages[ruleKey{field: field, tag: fe.Tag()}]
		if !ok {
			msg = fe.Error()
		}
		out[field] = msg
	}
	return input, out
}
