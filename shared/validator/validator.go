// Package validator validates request payloads before they reach the business
// logic and reports violations per field.
package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

// Validator wraps go-playground/validator with English translations. Field
// names in violation maps follow the struct's json tags.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// New creates a Validator with default English translations registered.
func New() (*Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})

	locale := en.New()
	translator, _ := ut.New(locale, locale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, err
	}

	return &Validator{
		validate:   validate,
		translator: translator,
	}, nil
}

// Validate checks the struct's validate tags and returns a map of field name
// to violation message. A nil map means the value is valid.
func (v *Validator) Validate(s any) map[string]string {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return map[string]string{"": err.Error()}
	}

	violations := make(map[string]string, len(validationErrs))
	for _, fieldErr := range validationErrs {
		violations[fieldErr.Field()] = fieldErr.Translate(v.translator)
	}

	return violations
}
