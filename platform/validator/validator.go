// Package validator wraps go-playground/validator with the tags and field
// naming the API uses.
package validator

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var regionPattern = regexp.MustCompile(`^[A-Za-z]{2}$`)

// Validator validates request DTOs. Safe for concurrent use.
type Validator struct {
	v *validator.Validate
}

// New returns a validator with the custom tags registered:
//
//	region    ISO 3166-1 alpha-2 country code, any case
//	notblank  rejects strings that are empty after trimming
//
// Errors name fields by their json or form tag.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		return regionPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return &Validator{v: v}
}

// Struct validates s against its validate tags.
func (val *Validator) Struct(s any) error {
	return val.v.Struct(s)
}

// Fields maps each failing field to the tag it failed, for error details.
// Errors that are not validation errors yield nil.
func Fields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Namespace()[strings.Index(fe.Namespace(), ".")+1:]] = fe.Tag()
	}
	return out
}

func fieldName(field reflect.StructField) string {
	for _, key := range []string{"json", "form"} {
		name, _, _ := strings.Cut(field.Tag.Get(key), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}
