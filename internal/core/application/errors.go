package application

import "errors"

var (
	// ErrValidation wraps every input rejected before an operation starts.
	ErrValidation = errors.New("validation failed")

	ErrNotConnected       = errors.New("wallet not connected")
	ErrBrandNotConfigured = errors.New("brand not configured")
	ErrUnsupported        = errors.New("not supported by the protocol")
	ErrBusy               = errors.New("another operation is in progress")
)
