// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"github.com/KilimcininKorOglu/ldapfixture/internal/ber"
)

// SearchScope represents the scope of an LDAP search operation
type SearchScope int

const (
	// ScopeBaseObject searches only the base object
	ScopeBaseObject SearchScope = 0
	// ScopeSingleLevel searches one level below the base object
	ScopeSingleLevel SearchScope = 1
	// ScopeWholeSubtree searches the entire subtree
	ScopeWholeSubtree SearchScope = 2
)

// String returns the string representation of the search scope
func (s SearchScope) String() string {
	switch s {
	case ScopeBaseObject:
		return "BaseObject"
	case ScopeSingleLevel:
		return "SingleLevel"
	case ScopeWholeSubtree:
		return "WholeSubtree"
	default:
		return "Unknown"
	}
}

// SearchRequest represents an LDAP Search Request.
// SearchRequest ::= [APPLICATION 3] SEQUENCE {
//
//	baseObject      LDAPDN,
//	scope           ENUMERATED { ... },
//	derefAliases    ENUMERATED { ... },
//	sizeLimit       INTEGER (0 .. maxInt),
//	timeLimit       INTEGER (0 .. maxInt),
//	typesOnly       BOOLEAN,
//	filter          Filter,
//	attributes      AttributeSelection
//
// }
//
// Only the base object and scope are read. The remaining fields are
// accepted in any form.
type SearchRequest struct {
	// BaseObject is the DN where the search starts
	BaseObject string
	// Scope is the requested scope, ScopeBaseObject when absent
	Scope SearchScope
}

// ParseSearchRequest reads a SearchRequest from the decoded [APPLICATION 3] value.
func ParseSearchRequest(op *ber.Value) (*SearchRequest, error) {
	if !op.Is(ber.ClassApplication, true, ApplicationSearchRequest) {
		return nil, ErrInvalidSearchRequest
	}

	base := op.Child(0)
	if base == nil || base.Shape != ber.ShapeText {
		return nil, NewParseError("baseObject", "expected OCTET STRING", ErrInvalidSearchRequest)
	}

	req := &SearchRequest{BaseObject: base.Text}
	if scope := op.Child(1); scope != nil && scope.Shape == ber.ShapeInteger {
		req.Scope = SearchScope(scope.Int)
	}
	return req, nil
}
