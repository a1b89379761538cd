// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"errors"
	"fmt"

	"github.com/KilimcininKorOglu/ldapfixture/internal/ber"
)

// LDAP protocol operation tags (APPLICATION class)
// Per RFC 4511 Section 4.2
const (
	ApplicationBindRequest       = 0 // [APPLICATION 0]
	ApplicationBindResponse      = 1 // [APPLICATION 1]
	ApplicationUnbindRequest     = 2 // [APPLICATION 2]
	ApplicationSearchRequest     = 3 // [APPLICATION 3]
	ApplicationSearchResultEntry = 4 // [APPLICATION 4]
	ApplicationSearchResultDone  = 5 // [APPLICATION 5]
)

// Context-specific tags
const (
	// ContextTagControls is the tag for message controls [0]
	ContextTagControls = 0
	// AuthSimple is the tag for simple authentication [0]
	AuthSimple = 0
)

// ProtocolVersion is the only LDAP version the server accepts.
const ProtocolVersion = 3

// MaxMessageID is the maximum valid message ID per RFC 4511
// MessageID ::= INTEGER (0 .. maxInt)
// maxInt INTEGER ::= 2147483647 -- (2^^31 - 1)
const MaxMessageID = 2147483647

// Kind is the request type carried by a protocol operation.
type Kind int

const (
	// KindUnknown is any operation the server does not handle.
	KindUnknown Kind = iota
	// KindBind is a BindRequest: [APPLICATION 0] constructed.
	KindBind
	// KindSearch is a SearchRequest: [APPLICATION 3] constructed.
	KindSearch
	// KindUnbind is an UnbindRequest: [APPLICATION 2] primitive.
	KindUnbind
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindBind:
		return "bind"
	case KindSearch:
		return "search"
	case KindUnbind:
		return "unbind"
	default:
		return "unknown"
	}
}

// Classify maps a protocol operation to its request kind using the
// operation's class, form and tag number.
func Classify(op *ber.Value) Kind {
	switch {
	case op.Is(ber.ClassApplication, true, ApplicationBindRequest):
		return KindBind
	case op.Is(ber.ClassApplication, true, ApplicationSearchRequest):
		return KindSearch
	case op.Is(ber.ClassApplication, false, ApplicationUnbindRequest):
		return KindUnbind
	default:
		return KindUnknown
	}
}

// Schema is the decoding schema for LDAP requests. Unmapped primitives,
// such as filter components, decode as raw bytes.
var Schema = newSchema()

func newSchema() *ber.Schema {
	shapes := ber.UniversalShapes()
	shapes[ber.Identifier{Class: ber.ClassApplication, Constructed: true, Tag: ApplicationBindRequest}] = ber.ShapeSequence
	shapes[ber.Identifier{Class: ber.ClassApplication, Constructed: true, Tag: ApplicationSearchRequest}] = ber.ShapeSequence
	shapes[ber.Identifier{Class: ber.ClassApplication, Tag: ApplicationUnbindRequest}] = ber.ShapeText
	shapes[ber.Identifier{Class: ber.ClassContextSpecific, Tag: AuthSimple}] = ber.ShapeText
	return ber.NewSchema(ber.ShapeRaw, shapes)
}

// Errors for LDAP message parsing
var (
	// ErrInvalidMessage is returned when the envelope is not a SEQUENCE
	ErrInvalidMessage = errors.New("ldap: message must be a universal SEQUENCE")

	// ErrInvalidMessageID is returned when the message ID is out of valid range
	ErrInvalidMessageID = errors.New("ldap: message ID out of valid range (0 to 2147483647)")

	// ErrMissingOperation is returned when the protocol operation is missing
	ErrMissingOperation = errors.New("ldap: missing protocol operation")

	// ErrInvalidBindRequest is returned when a BindRequest lacks a required field
	ErrInvalidBindRequest = errors.New("ldap: malformed bind request")

	// ErrInvalidSearchRequest is returned when a SearchRequest lacks a required field
	ErrInvalidSearchRequest = errors.New("ldap: malformed search request")
)

// ParseError provides detailed information about a parsing failure
type ParseError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ldap: parse error in %s: %s: %v", e.Field, e.Message, e.Err)
	}
	return fmt.Sprintf("ldap: parse error in %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying error
func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError creates a new ParseError
func NewParseError(field, message string, err error) *ParseError {
	return &ParseError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
