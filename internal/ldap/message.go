// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"github.com/KilimcininKorOglu/ldapfixture/internal/ber"
)

// LDAPMessage represents an LDAP protocol message envelope.
// Per RFC 4511 Section 4.1.1:
// LDAPMessage ::= SEQUENCE {
//
//	messageID       MessageID,
//	protocolOp      CHOICE { ... },
//	controls        [0] Controls OPTIONAL
//
// }
type LDAPMessage struct {
	// MessageID uniquely identifies the message within a connection
	MessageID int64
	// Operation is the decoded protocol operation
	Operation *ber.Value
	// Controls holds the optional controls value; it is never interpreted
	Controls *ber.Value
}

// Kind classifies the message's protocol operation.
func (m *LDAPMessage) Kind() Kind {
	if m == nil {
		return KindUnknown
	}
	return Classify(m.Operation)
}

// ParseLDAPMessage interprets a decoded value as an LDAP message envelope.
func ParseLDAPMessage(v *ber.Value) (*LDAPMessage, error) {
	if !v.Is(ber.ClassUniversal, true, ber.TagSequence) {
		return nil, ErrInvalidMessage
	}

	id := v.Child(0)
	if id == nil || !id.Is(ber.ClassUniversal, false, ber.TagInteger) || id.Shape != ber.ShapeInteger {
		return nil, NewParseError("messageID", "expected INTEGER", ErrInvalidMessage)
	}
	if id.Int < 0 || id.Int > MaxMessageID {
		return nil, ErrInvalidMessageID
	}

	op := v.Child(1)
	if op == nil {
		return nil, ErrMissingOperation
	}

	msg := &LDAPMessage{
		MessageID: id.Int,
		Operation: op,
	}
	if c := v.Child(2); c != nil && c.Is(ber.ClassContextSpecific, true, ContextTagControls) {
		msg.Controls = c
	}
	return msg, nil
}

// EncodeMessage wraps a protocol operation in an LDAPMessage envelope.
func EncodeMessage(messageID int64, op *ber.Value) ([]byte, error) {
	return ber.Encode(ber.Sequence(ber.Integer(messageID), op))
}
