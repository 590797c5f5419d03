package domain

import (
	"errors"
	"fmt"
)

// DecodeError marks a record whose payload was not valid base64 or not
// parseable JSON. Per-record, always recovered by the orchestrator.
type DecodeError struct {
	Cause error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode record: %v", e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// ValidationError marks a decoded document missing a required field. The
// message names the field so operators can trace bad sensors from logs.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "missing field: " + e.Field
}

// ErrorType classifies a processing error for the error-count metric
// dimension.
func ErrorType(err error) string {
	var decodeErr *DecodeError
	var validationErr *ValidationError
	switch {
	case errors.As(err, &decodeErr):
		return "decode_error"
	case errors.As(err, &validationErr):
		return "validation_error"
	default:
		return "processing_error"
	}
}
