package core

import (
	"errors"
	"strings"
)

var ErrNotFound = errors.New("storefront: not found")

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// ValidationError lists the required form fields that were empty or absent.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "storefront: missing required fields: " + strings.Join(e.Fields, ", ")
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
