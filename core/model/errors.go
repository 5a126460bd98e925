package model

import (
	"errors"
	"fmt"
)

// NetworkError wraps a transport or HTTP status failure.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// DecodeError wraps a response body that could not be decoded.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NotFoundError reports a missing resource.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ValidationError reports input rejected before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// ErrorKind classifies an error for logs and metrics labels. Nil maps
// to the empty string, unrecognized errors to "unknown".
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var (
		ne *NetworkError
		de *DecodeError
		nf *NotFoundError
		ve *ValidationError
	)
	switch {
	case errors.As(err, &ne):
		return "network"
	case errors.As(err, &de):
		return "decode"
	case errors.As(err, &nf):
		return "not_found"
	case errors.As(err, &ve):
		return "validation"
	default:
		return "unknown"
	}
}
