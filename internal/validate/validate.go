// Package validate is the schema-validation boundary between decoded request
// payloads and the services. Every failed rule is reported in one message.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/minibank/internal/apperror"
)

// MaxAmount is the exclusive upper bound for any amount or balance; it keeps
// values inside NUMERIC(15,2).
var MaxAmount = decimal.New(1, 13)

// Validator checks struct tags on request DTOs.
type Validator struct {
	inner *validator.Validate
}

// New builds a validator with the money and password rules registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	_ = v.RegisterValidation("money", validMoney)
	_ = v.RegisterValidation("password", validPassword)
	return &Validator{inner: v}
}

// Struct validates s and returns a Validation error listing every violation.
func (v *Validator) Struct(s any) error {
	err := v.inner.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperror.Internal(err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, message(fe))
	}
	return apperror.Validation("Validation failed: " + strings.Join(msgs, "; "))
}

// IsMoney reports whether d is a positive amount expressible in cents that
// fits a NUMERIC(15,2) column.
func IsMoney(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2)) && d.LessThan(MaxAmount)
}

func validMoney(fl validator.FieldLevel) bool {
	switch v := fl.Field().Interface().(type) {
	case string:
		d, err := decimal.NewFromString(v)
		return err == nil && IsMoney(d)
	case decimal.Decimal:
		return IsMoney(v)
	default:
		return false
	}
}

func validPassword(fl validator.FieldLevel) bool {
	pw := fl.Field().String()
	if n := len([]rune(pw)); n < 8 || n > 128 {
		return false
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "number":
		return fmt.Sprintf("%s must contain only digits", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "money":
		return fmt.Sprintf("%s must be a positive number with at most 2 decimal places", field)
	case "password":
		return fmt.Sprintf("%s must be 8-128 characters and contain at least one letter and one number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
