package validator

import (
	"reflect"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
	apperrors "greekgeeks/internal/pkg/errors"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	v.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})

	return v
}

// IsEmail reports whether email is syntactically valid.
func IsEmail(email string) bool {
	return checkmail.ValidateFormat(email) == nil
}

// Struct validates s against its `validate` tags. Failures come back as a validation
// error whose details map each offending field to a message.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.Validation("Invalid request body", nil)
	}

	details := make(map[string]string, len(verrs))
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := message(fe)
		details[fe.Field()] = msg
		messages = append(messages, msg)
	}

	return apperrors.Validation(strings.Join(messages, ", "), details)
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		return field + " must be at least " + param + " characters"
	case "max":
		return field + " must be at most " + param + " characters"
	case "email", "mailbox":
		return field + " must be a valid email"
	case "oneof":
		return field + " must be one of: " + param
	default:
		return field + " is invalid"
	}
}
