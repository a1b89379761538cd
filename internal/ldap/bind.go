// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"github.com/KilimcininKorOglu/ldapfixture/internal/ber"
)

// BindRequest represents an LDAP Bind Request
// BindRequest ::= [APPLICATION 0] SEQUENCE {
//
//	version                 INTEGER (1 .. 127),
//	name                    LDAPDN,
//	authentication          AuthenticationChoice
//
// }
//
// The authentication choice is kept as decoded so the caller can check
// which alternative the client used.
type BindRequest struct {
	// Version is the LDAP protocol version (typically 3)
	Version int64
	// Name is the DN of the user binding
	Name string
	// Credential is the authentication choice value
	Credential *ber.Value
}

// IsSimple reports whether the credential is the simple [0] alternative.
func (r *BindRequest) IsSimple() bool {
	return r.Credential.Is(ber.ClassContextSpecific, false, AuthSimple)
}

// SimplePassword returns the simple credential as text. It is empty for
// any other authentication choice.
func (r *BindRequest) SimplePassword() string {
	if !r.IsSimple() {
		return ""
	}
	if r.Credential.Shape == ber.ShapeText {
		return r.Credential.Text
	}
	return string(r.Credential.Bytes)
}

// ParseBindRequest reads a BindRequest from the decoded [APPLICATION 0] value.
func ParseBindRequest(op *ber.Value) (*BindRequest, error) {
	if !op.Is(ber.ClassApplication, true, ApplicationBindRequest) {
		return nil, ErrInvalidBindRequest
	}

	version := op.Child(0)
	if version == nil || version.Shape != ber.ShapeInteger {
		return nil, NewParseError("version", "expected INTEGER", ErrInvalidBindRequest)
	}

	name := op.Child(1)
	if name == nil || name.Shape != ber.ShapeText {
		return nil, NewParseError("name", "expected OCTET STRING", ErrInvalidBindRequest)
	}

	credential := op.Child(2)
	if credential == nil {
		return nil, NewParseError("authentication", "missing", ErrInvalidBindRequest)
	}

	return &BindRequest{
		Version:    version.Int,
		Name:       name.Text,
		Credential: credential,
	}, nil
}
