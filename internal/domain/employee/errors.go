package employee

import (
	"errors"
	"fmt"
)

var (
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrInvalidCompensation = errors.New("employee compensation must be non-negative")
)

type NegativeCompensationError struct {
	EmployeeID string
	Field      string
}

func (e *NegativeCompensationError) Error() string {
	return fmt.Sprintf("employee %s: %s is negative", e.EmployeeID, e.Field)
}

func (e *NegativeCompensationError) Unwrap() error {
	return ErrInvalidCompensation
}
