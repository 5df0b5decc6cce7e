package estimate

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-estimates/internal/store"
)

// ErrValidation matches every ValidationError with errors.Is.
var ErrValidation = errors.New("validation failed")

// ErrDuplicateNumber is returned when creating an estimate whose number is taken.
var ErrDuplicateNumber = fmt.Errorf("estimate number already exists: %w", store.ErrDuplicateKey)

// Validation codes, also used as i18n message keys.
const (
	CodeCustomerNotSelected = "customer_not_selected"
	CodeCustomerNameMissing = "customer_name_required"
	CodeCustomerNotFound    = "customer_not_found"
	CodeLineOutOfRange      = "line_out_of_range"
	CodeItemNotFound        = "item_not_found"
	CodeNegativeCharge      = "must_not_be_negative"
)

// ValidationError reports user input that prevents an operation. Nothing is written.
type ValidationError struct {
	Field string
	Code  string
}

func (e *ValidationError) Error() string { return e.Field + ": " + e.Code }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, code string) error { return &ValidationError{Field: field, Code: code} }
