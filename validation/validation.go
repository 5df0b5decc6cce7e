// Package validation collects field errors as a map of field name to code.
package validation

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func RangeFloat(field string, val, minVal, maxVal float64, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(jsonName)
	})
	return validate
}

// Struct runs the `validate` struct tags of s and adds one code per failing field,
// keyed by the json name. Tags map to codes: required -> required, gt=0 -> must_be_positive,
// gte=0 -> must_not_be_negative, anything else -> invalid.
func Struct(s any, v Violations) {
	err := instance().Struct(s)
	if err == nil {
		return
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		v["_"] = "invalid"
		return
	}
	for _, fe := range errs {
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		v[field] = code(fe)
	}
}

func code(fe validator.FieldError) string {
	switch {
	case fe.Tag() == "required" || fe.Tag() == "notblank":
		return "required"
	case fe.Tag() == "gt" && fe.Param() == "0":
		return "must_be_positive"
	case fe.Tag() == "gte" && fe.Param() == "0":
		return "must_not_be_negative"
	case fe.Tag() == "oneof":
		return "not_allowed"
	case fe.Tag() == "max":
		return "too_long"
	default:
		return "invalid"
	}
}
