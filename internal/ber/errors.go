// Package ber implements ASN.1 BER (Basic Encoding Rules) encoding
// as specified in ITU-T X.690.
package ber

import (
	"errors"
	"fmt"
)

// Decoder errors
var (
	// ErrUnexpectedEOF is returned when the decoder encounters truncated data.
	ErrUnexpectedEOF = errors.New("ber: unexpected end of data")

	// ErrInvalidLength is returned when a length value is malformed.
	ErrInvalidLength = errors.New("ber: invalid length encoding")

	// ErrIndefiniteLength is returned when indefinite length encoding is encountered.
	ErrIndefiniteLength = errors.New("ber: indefinite length not supported")

	// ErrInvalidInteger is returned when an integer value is malformed.
	ErrInvalidInteger = errors.New("ber: invalid integer encoding")

	// ErrInvalidTag is returned when a tag number cannot be decoded.
	ErrInvalidTag = errors.New("ber: invalid tag encoding")

	// ErrUnmappedTag is returned when a primitive value has no schema
	// mapping and the schema has no default shape.
	ErrUnmappedTag = errors.New("ber: no schema mapping for tag")

	// ErrValueTooLarge is returned when a value declares a payload larger
	// than the configured limit.
	ErrValueTooLarge = errors.New("ber: value exceeds size limit")

	// ErrNestingTooDeep is returned when constructed values nest deeper than MaxDepth.
	ErrNestingTooDeep = errors.New("ber: constructed values nested too deeply")
)

// DecodeError provides detailed information about a decoding failure.
type DecodeError struct {
	Offset  int    // Byte offset where the error occurred
	Message string // Human-readable error description
	Err     error  // Underlying error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ber: decode error at offset %d: %s: %v", e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("ber: decode error at offset %d: %s", e.Offset, e.Message)
}

// Unwrap returns the underlying error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new DecodeError with the given parameters.
func NewDecodeError(offset int, message string, err error) *DecodeError {
	return &DecodeError{
		Offset:  offset,
		Message: message,
		Err:     err,
	}
}
