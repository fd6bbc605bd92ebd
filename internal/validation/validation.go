// Package validation checks user input with struct tags and reports per-field
// message keys that the i18n catalog can render.
package validation

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/mamadbah2/motofleet/internal/errors"
)

// KeyInvalidQuantity is reported when quantity text is not an integer.
const KeyInvalidQuantity = "validation.quantity.invalid"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Struct validates v and returns the failing fields mapped to message keys.
// A nil map means the value is valid.
func Struct(v any) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": "validation.invalid"}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; seen {
			continue
		}
		fields[fe.Field()] = MessageKey(fe.Field(), fe.Tag())
	}
	return fields
}

// Validate wraps Struct into a validation error carrying the field keys.
func Validate(v any) error {
	if fields := Struct(v); fields != nil {
		return apperrors.FieldsError(fields)
	}
	return nil
}

// MessageKey builds the catalog key for a failed rule, e.g. validation.plate.min.
func MessageKey(field, tag string) string {
	return "validation." + field + "." + tag
}

// ParseQuantity converts quantity text from a form or flag. Blank text yields nil so the
// required rule reports it; anything that is not an integer is rejected.
func ParseQuantity(text string) (*int, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil, apperrors.FieldsError(map[string]string{"quantity": KeyInvalidQuantity})
	}
	return &n, nil
}
