package models

import (
	"errors"
	"fmt"
)

var (
	// ErrInputData marks a malformed or missing edge list or category list.
	// It aborts processing of the affected interaction only.
	ErrInputData = errors.New("input data error")

	// ErrDegenerateMatrix marks a matrix a transform or clustering method cannot
	// handle, such as a zero-degree row under a failing policy or k larger than
	// the number of nodes.
	ErrDegenerateMatrix = errors.New("degenerate matrix")
)

// CombinationError records the failure of one sweep combination.
type CombinationError struct {
	Combination Combination
	Err         error
}

func (e *CombinationError) Error() string {
	return fmt.Sprintf("%s/%s view=%q k=%d: %v",
		e.Combination.Interaction, e.Combination.Method, e.Combination.View, e.Combination.K, e.Err)
}

func (e *CombinationError) Unwrap() error { return e.Err }

// ValidationError represents structured validation errors
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

func (ve ValidationError) Error() string {
	if ve.Value != "" {
		return fmt.Sprintf("validation error in field '%s': %s (value: %s)", ve.Field, ve.Message, ve.Value)
	}
	return fmt.Sprintf("validation error in field '%s': %s", ve.Field, ve.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors: %s (and %d more)", len(ve), ve[0].Error(), len(ve)-1)
}
