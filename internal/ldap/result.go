// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"github.com/KilimcininKorOglu/ldapfixture/internal/ber"
)

// LDAPResult represents the common result structure used in most LDAP responses.
// Per RFC 4511 Section 4.1.9:
// LDAPResult ::= SEQUENCE {
//
//	resultCode         ENUMERATED { ... },
//	matchedDN          LDAPDN,
//	diagnosticMessage  LDAPString,
//	referral           [3] Referral OPTIONAL
//
// }
//
// The result code is written as a universal INTEGER.
type LDAPResult struct {
	// ResultCode indicates the outcome of the operation
	ResultCode ResultCode
	// MatchedDN contains the DN of the last entry matched during processing
	MatchedDN string
	// DiagnosticMessage contains additional diagnostic information
	DiagnosticMessage string
}

func (r LDAPResult) values() []*ber.Value {
	return []*ber.Value{
		ber.Integer(int64(r.ResultCode)),
		ber.OctetString(r.MatchedDN),
		ber.OctetString(r.DiagnosticMessage),
	}
}

// BindResponse represents an LDAP Bind response.
// BindResponse ::= [APPLICATION 1] SEQUENCE { COMPONENTS OF LDAPResult }
type BindResponse struct {
	LDAPResult
}

// Value returns the [APPLICATION 1] protocol operation.
func (r *BindResponse) Value() *ber.Value {
	return ber.NewConstructed(ber.ClassApplication, ApplicationBindResponse, r.values()...)
}

// PartialAttribute represents an attribute with its values.
// Per RFC 4511 Section 4.1.7:
// PartialAttribute ::= SEQUENCE {
//
//	type       AttributeDescription,
//	vals       SET OF value AttributeValue
//
// }
type PartialAttribute struct {
	// Type is the attribute description (name or OID)
	Type string
	// Values contains the attribute values
	Values []string
}

// SearchResultEntry represents a search result entry.
// Per RFC 4511 Section 4.5.2:
// SearchResultEntry ::= [APPLICATION 4] SEQUENCE {
//
//	objectName      LDAPDN,
//	attributes      PartialAttributeList
//
// }
// PartialAttributeList ::= SEQUENCE OF partialAttribute PartialAttribute
type SearchResultEntry struct {
	// ObjectName is the DN of the entry
	ObjectName string
	// Attributes contains the entry's attributes
	Attributes []PartialAttribute
}

// Value returns the [APPLICATION 4] protocol operation.
func (r *SearchResultEntry) Value() *ber.Value {
	attrs := make([]*ber.Value, 0, len(r.Attributes))
	for _, attr := range r.Attributes {
		vals := make([]*ber.Value, 0, len(attr.Values))
		for _, val := range attr.Values {
			vals = append(vals, ber.OctetString(val))
		}
		attrs = append(attrs, ber.Sequence(ber.OctetString(attr.Type), ber.Set(vals...)))
	}

	return ber.NewConstructed(ber.ClassApplication, ApplicationSearchResultEntry,
		ber.OctetString(r.ObjectName),
		ber.Sequence(attrs...),
	)
}

// SearchResultDone represents the final response to a search operation.
// Per RFC 4511 Section 4.5.2:
// SearchResultDone ::= [APPLICATION 5] LDAPResult
type SearchResultDone struct {
	LDAPResult
}

// Value returns the [APPLICATION 5] protocol operation.
func (r *SearchResultDone) Value() *ber.Value {
	return ber.NewConstructed(ber.ClassApplication, ApplicationSearchResultDone, r.values()...)
}

// NewSuccessResult creates a new LDAPResult with success status.
func NewSuccessResult() LDAPResult {
	return LDAPResult{
		ResultCode: ResultSuccess,
	}
}

// NewErrorResult creates a new LDAPResult with the specified error.
func NewErrorResult(code ResultCode, message string) LDAPResult {
	return LDAPResult{
		ResultCode:        code,
		DiagnosticMessage: message,
	}
}
