package service

import (
	"reflect"
	"strings"

	"example/storefront/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// maxAmount is the first value that no longer fits DECIMAL(10,2)
var maxAmount = decimal.New(1, 8)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields under their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Decimals are validated through their string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("money", validMoney); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// validMoney accepts non-negative amounts with at most 2 decimal places
// that fit the money columns
func validMoney(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return !d.IsNegative() && d.Round(2).Equal(d) && d.LessThan(maxAmount)
}

// check runs the struct tags of v and reports the first failing field as
// a ValidationError
func check(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, "validate request")
	}
	fe := fieldErrs[0]
	return models.Invalid(fe.Field(), message(fe))
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be empty"
	case "email":
		return "must be a valid email address"
	case "gte":
		return "must be at least " + fe.Param()
	case "money":
		return "must be a non-negative amount below 100000000 with at most 2 decimal places"
	}
	return "is invalid"
}
