package validator

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	engine     *validator.Validate
	engineOnce sync.Once
)

// New returns a validator with the signup-specific tags registered.
func New() *validator.Validate {
	v := validator.New()
	mustRegister(v)
	return v
}

// Engine returns the shared validator instance.
func Engine() *validator.Validate {
	engineOnce.Do(func() {
		engine = New()
	})
	return engine
}

// RegisterGin installs `digits` into gin's binding validator. Password
// strength stays with the form controller, which reports it as a submit
// outcome rather than a binding error.
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return registerDigits(v)
}

func mustRegister(v *validator.Validate) {
	if err := register(v); err != nil {
		panic(err)
	}
}

func register(v *validator.Validate) error {
	if err := v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	}); err != nil {
		return err
	}
	return registerDigits(v)
}

func registerDigits(v *validator.Validate) error {
	return v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return IsDigits(fl.Field().String())
	})
}

func FormatValidationError(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "eq":
		if fe.Kind() == reflect.Bool && fe.Param() == "true" {
			return fmt.Sprintf("%s must be accepted", field)
		}
		return fmt.Sprintf("%s must be %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "digits":
		return fmt.Sprintf("%s may only contain digits", field)
	case "password_strength":
		return fmt.Sprintf("%s does not meet the requirements", field)
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Name":    "Field name",
		"Kind":    "Input kind",
		"Value":   "Value",
		"Checked": "Checked",

		"FirstName":            "First name",
		"LastName":             "Last name",
		"Email":                "Email",
		"Password":             "Password",
		"PasswordConfirmation": "Password confirmation",
		"DateOfBirth":          "Date of birth",
		"TelNumber":            "Phone number",
		"TermsAndPolicies":     "Terms and policies",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
