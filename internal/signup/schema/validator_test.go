package schema

import (
	"strings"
	"testing"

	"github.com/smallbiznis/telematch/internal/signup/domain"
	"github.com/stretchr/testify/assert"
)

func validInput() domain.RegistrationInput {
	return domain.RegistrationInput{
		Name:     "A",
		Email:    "a@b.com",
		Password: "123456",
		Terms:    true,
	}
}

func TestValidateAcceptsValidInput(t *testing.T) {
	in := validInput()
	out, errs := Validate(in)

	assert.Empty(t, errs)
	assert.Equal(t, in, out)
}

func TestValidateSingleFieldFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*domain.RegistrationInput)
		want   domain.ErrorSet
	}{
		{
			name:   "empty name",
			mutate: func(in *domain.RegistrationInput) { in.Name = "" },
			want:   domain.ErrorSet{domain.FieldName: domain.MsgNameRequired},
		},
		{
			name:   "malformed email",
			mutate: func(in *domain.RegistrationInput) { in.Email = "bad" },
			want:   domain.ErrorSet{domain.FieldEmail: domain.MsgEmailInvalid},
		},
		{
			name:   "empty email takes the required message",
			mutate: func(in *domain.RegistrationInput) { in.Email = "" },
			want:   domain.ErrorSet{domain.FieldEmail: domain.MsgEmailRequired},
		},
		{
			name:   "short password",
			mutate: func(in *domain.RegistrationInput) { in.Password = "12345" },
			want:   domain.ErrorSet{domain.FieldPassword: domain.MsgPasswordTooShort},
		},
		{
			name:   "terms not accepted",
			mutate: func(in *domain.RegistrationInput) { in.Terms = false },
			want:   domain.ErrorSet{domain.FieldTerms: domain.MsgTermsRequired},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)

			_, errs := Validate(in)
			assert.Equal(t, tc.want, errs)
		})
	}
}

func TestValidateReportsEveryViolation(t *testing.T) {
	_, errs := Validate(domain.RegistrationInput{})

	assert.Equal(t, domain.ErrorSet{
		domain.FieldName:     domain.MsgNameRequired,
		domain.FieldEmail:    domain.MsgEmailRequired,
		domain.FieldPassword: domain.MsgPasswordTooShort,
		domain.FieldTerms:    domain.MsgTermsRequired,
	}, errs)
}

func TestValidatePasswordCountsCharacters(t *testing.T) {
	in := validInput()
	in.Password = strings.Repeat("é", domain.MinPasswordLength)

	_, errs := Validate(in)
	assert.Empty(t, errs)
}

func TestValidateIsDeterministic(t *testing.T) {
	in := domain.RegistrationInput{Name: "", Email: "nope", Password: "1", Terms: false}

	_, first := Validate(in)
	for i := 0; i < 10; i++ {
		_, again := Validate(in)
		assert.Equal(t, first, again)
	}
}
