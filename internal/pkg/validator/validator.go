// Package validator checks request structs and email addresses.
//
// Usecases depend on the Validator interface; V10 is the go-playground
// implementation used in production.
package validator

import (
	"encoding/json"
	"errors"
	"net/mail"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"
)

// ErrTranslatorNotFound means the english translator could not be loaded.
var ErrTranslatorNotFound = errors.New("validator: translator not found")

// Validator validates tagged structs.
type Validator interface {
	Validate(data any) error
}

// V10ValidationError maps snake_case field names to translated messages.
type V10ValidationError map[string]string

func (ve V10ValidationError) Error() string {
	b, err := json.Marshal(map[string]string(ve))
	if err != nil || len(ve) == 0 {
		return "validation error"
	}
	return string(b)
}

// Values exposes the field map to the HTTP error codec.
func (ve V10ValidationError) Values() map[string]string {
	return ve
}

// V10 implements Validator and the address checks used by the OTP flow.
type V10 struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewV10 builds a validator with english messages.
func NewV10() (*V10, error) {
	v := validator.New(validator.WithRequiredStructEnabled())

	english := en.New()
	trans, ok := ut.New(english, english).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, err
	}

	return &V10{validate: v, trans: trans}, nil
}

// Validate returns V10ValidationError when data violates its tags.
func (v *V10) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	out := make(V10ValidationError, len(fieldErrs))
	for _, fe := range fieldErrs {
		out[lo.SnakeCase(fe.Field())] = fe.Translate(v.trans)
	}
	return out
}

// IsSyntacticallyValid accepts a bare RFC 5322 address. Display names and
// surrounding whitespace are rejected: the parsed address must equal the input.
func (v *V10) IsSyntacticallyValid(address string) bool {
	if err := v.validate.Var(address, "required,email"); err != nil {
		return false
	}

	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return false
	}
	return parsed.Address == address
}

// MatchesAllowedDomain reports whether address ends with suffix, ignoring case.
// An empty suffix allows every address.
func (*V10) MatchesAllowedDomain(address, suffix string) bool {
	if suffix == "" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(address), strings.ToLower(suffix))
}
