package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

type FieldError struct {
	Field string
	Tag   string
	Msg   string
}

// messages maps field+tag to the wording the frontend shows.
var messages = map[string]string{
	"email.required":    "Invalid email address",
	"email.email":       "Invalid email address",
	"username.required": "Username must be at least 3 characters long",
	"username.min":      "Username must be at least 3 characters long",
	"password.required": "Password must be at least 6 characters long",
	"password.min":      "Password must be at least 6 characters long",
	"token.required":    "Token is required",
}

func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})

	return validate
}

// ValidateStruct returns nil when s is valid.
func ValidateStruct(s interface{}) []FieldError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []FieldError{{Field: "", Tag: "invalid", Msg: err.Error()}}
	}

	result := make([]FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		result = append(result, FieldError{
			Field: fe.Field(),
			Tag:   fe.Tag(),
			Msg:   message(fe.Field(), fe.Tag(), fe.Param()),
		})
	}
	return result
}

// ValidateEmail checks the address format only, no mx lookup.
func ValidateEmail(email string) *FieldError {
	if err := checkmail.ValidateFormat(email); err != nil {
		return &FieldError{Field: "email", Tag: "email", Msg: messages["email.email"]}
	}
	return nil
}

func message(field string, tag string, param string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", field, param)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
