package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRegex  = regexp.MustCompile(`^\w{2,16}$`)
	passwordRegex  = regexp.MustCompile(`^\w{2,16}$`)
	emailCodeRegex = regexp.MustCompile(`^\d{6}$`)
)

// Validator wraps go-playground/validator with the platform's rules.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	validate := validator.New()

	// Registration failures here are programmer errors, panic early.
	mustRegister(validate, "username", func(fl validator.FieldLevel) bool {
		return usernameRegex.MatchString(fl.Field().String())
	})
	mustRegister(validate, "userpassword", func(fl validator.FieldLevel) bool {
		return passwordRegex.MatchString(fl.Field().String())
	})
	mustRegister(validate, "email_code", func(fl validator.FieldLevel) bool {
		return emailCodeRegex.MatchString(fl.Field().String())
	})
	mustRegister(validate, "score_step", func(fl validator.FieldLevel) bool {
		return fl.Field().Int()%10 == 0
	})

	return &Validator{validate: validate}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %q validation: %v", tag, err))
	}
}

// Validate checks a request struct and returns ValidationErrors on failure.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}
	var out ValidationErrors
	for _, fe := range fieldErrors {
		out = append(out, ValidationError{
			Field: strings.ToLower(fe.Field()),
			Tag:   fe.Tag(),
			Value: fmt.Sprintf("%v", fe.Value()),
		})
	}
	return out
}

// IsEmailCode reports whether s looks like a 6-digit confirmation code.
func IsEmailCode(s string) bool {
	return emailCodeRegex.MatchString(s)
}

// ValidationError describes one failed field rule.
type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
	Value string `json:"value,omitempty"`
}

// ValidationErrors aggregates field failures into one error value.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = fmt.Sprintf("%s: failed %q", ve.Field, ve.Tag)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
