// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import "fmt"

// ResultCode represents an LDAP result code as defined in RFC 4511 Section 4.1.9.
// Only the codes the server can produce are listed.
type ResultCode int

// LDAP result codes per RFC 4511 Section 4.1.9
const (
	// ResultSuccess indicates the operation completed successfully.
	ResultSuccess ResultCode = 0

	// ResultOperationsError indicates an error occurred during processing
	// that is not covered by another result code.
	ResultOperationsError ResultCode = 1

	// ResultProtocolError indicates the server received data that is not
	// well-formed or violates the protocol.
	ResultProtocolError ResultCode = 2

	// ResultAuthMethodNotSupported indicates the authentication method
	// or mechanism is not supported.
	ResultAuthMethodNotSupported ResultCode = 7

	// ResultNoSuchObject indicates the specified object does not exist
	// in the DIT.
	ResultNoSuchObject ResultCode = 32

	// ResultInappropriateAuthentication indicates the authentication
	// method is inappropriate for the operation.
	ResultInappropriateAuthentication ResultCode = 48

	// ResultInvalidCredentials indicates the supplied credentials are
	// invalid.
	ResultInvalidCredentials ResultCode = 49

	// ResultInsufficientAccessRights indicates the client does not have
	// sufficient access rights to perform the operation.
	ResultInsufficientAccessRights ResultCode = 50

	// ResultOther indicates an unknown error condition.
	ResultOther ResultCode = 80
)

// String returns the string representation of the result code
func (r ResultCode) String() string {
	switch r {
	case ResultSuccess:
		return "Success"
	case ResultOperationsError:
		return "OperationsError"
	case ResultProtocolError:
		return "ProtocolError"
	case ResultAuthMethodNotSupported:
		return "AuthMethodNotSupported"
	case ResultNoSuchObject:
		return "NoSuchObject"
	case ResultInappropriateAuthentication:
		return "InappropriateAuthentication"
	case ResultInvalidCredentials:
		return "InvalidCredentials"
	case ResultInsufficientAccessRights:
		return "InsufficientAccessRights"
	case ResultOther:
		return "Other"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// IsSuccess returns true if the result code indicates success
func (r ResultCode) IsSuccess() bool {
	return r == ResultSuccess
}
