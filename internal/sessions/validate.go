package sessions

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"wepick/internal/genres"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
			return genres.Known(fl.Field().String())
		})
		_ = v.RegisterValidation("decade", func(fl validator.FieldLevel) bool {
			d := int(fl.Field().Int())
			return d >= FirstDecade && d <= LastDecade && d%10 == 0
		})

		validate = v
	})
	return validate
}

// validateStruct runs the struct tags of s and converts failures into a
// single ValidationError.
func validateStruct(s any) error {
	err := validatorInstance().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Message: err.Error()}
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fe.Field()+" "+friendlyMessage(fe))
	}
	return &ValidationError{Message: strings.Join(messages, "; ")}
}

func friendlyMessage(fe validator.FieldError) string {
	isList := fe.Kind() == reflect.Slice
	switch fe.Tag() {
	case "required":
		return "is required"
	case "len":
		if isList {
			return fmt.Sprintf("must contain exactly %s genres", fe.Param())
		}
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "max":
		if isList {
			return fmt.Sprintf("must contain at most %s genres", fe.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", fe.Param())
	case "unique":
		return "must not repeat a genre"
	case "genre":
		return fmt.Sprintf("%q is not a known genre", fe.Value())
	case "decade":
		return fmt.Sprintf("must be a decade between %d and %d", FirstDecade, LastDecade)
	default:
		return "is invalid"
	}
}
