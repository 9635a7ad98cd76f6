// Package apperr holds the sentinel errors shared across packages.
package apperr

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("unavailable")
)
