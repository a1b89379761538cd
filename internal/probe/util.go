package probe

import (
	"fmt"

	asn1 "github.com/go-asn1-ber/asn1-ber"

	"github.com/KilimcininKorOglu/ldapfixture/internal/ldap"
)

func newLDAPRequest(messageID int64, op *asn1.Packet) *asn1.Packet {
	return newSequence("LDAP Request", newInteger(messageID, "Message ID"), op)
}

func newSequence(msg string, children ...*asn1.Packet) *asn1.Packet {
	seq := asn1.Encode(asn1.ClassUniversal, asn1.TypeConstructed, asn1.TagSequence, nil, msg)
	return addChildren(seq, children)
}

func newApplication(item asn1.Tag, msg string, children ...*asn1.Packet) *asn1.Packet {
	app := asn1.Encode(asn1.ClassApplication, asn1.TypeConstructed, item, nil, msg)
	return addChildren(app, children)
}

func addChildren(packet *asn1.Packet, children []*asn1.Packet) *asn1.Packet {
	for _, child := range children {
		packet.AppendChild(child)
	}
	return packet
}

func newString(value, msg string) *asn1.Packet {
	return asn1.NewString(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagOctetString, value, msg)
}

func newContextString(item asn1.Tag, value, msg string) *asn1.Packet {
	return asn1.NewString(asn1.ClassContext, asn1.TypePrimitive, item, value, msg)
}

func newInteger(value int64, msg string) *asn1.Packet {
	return asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagInteger, value, msg)
}

func newEnum(value int64, msg string) *asn1.Packet {
	return asn1.NewInteger(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagEnumerated, value, msg)
}

func newBool(value bool, msg string) *asn1.Packet {
	return asn1.NewBoolean(asn1.ClassUniversal, asn1.TypePrimitive, asn1.TagBoolean, value, msg)
}

// parseResult reads resultCode, matchedDN and diagnosticMessage.
func parseResult(op *asn1.Packet) (*Result, error) {
	if len(op.Children) < 3 {
		return nil, fmt.Errorf("%w: result has %d fields", ErrUnexpectedResponse, len(op.Children))
	}

	code, ok := op.Children[0].Value.(int64)
	if !ok {
		return nil, fmt.Errorf("%w: result code is %T", ErrUnexpectedResponse, op.Children[0].Value)
	}
	matched, err := stringValue(op.Children[1])
	if err != nil {
		return nil, err
	}
	diag, err := stringValue(op.Children[2])
	if err != nil {
		return nil, err
	}

	return &Result{
		Code:       ldap.ResultCode(code),
		MatchedDN:  matched,
		Diagnostic: diag,
	}, nil
}

// parseEntry reads objectName and the attribute list.
func parseEntry(op *asn1.Packet) (Entry, error) {
	if len(op.Children) != 2 {
		return Entry{}, fmt.Errorf("%w: entry has %d fields", ErrUnexpectedResponse, len(op.Children))
	}

	dn, err := stringValue(op.Children[0])
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{DN: dn}
	for _, attr := range op.Children[1].Children {
		if len(attr.Children) != 2 {
			return Entry{}, fmt.Errorf("%w: attribute has %d fields", ErrUnexpectedResponse, len(attr.Children))
		}
		typ, err := stringValue(attr.Children[0])
		if err != nil {
			return Entry{}, err
		}

		a := Attribute{Type: typ}
		for _, v := range attr.Children[1].Children {
			s, err := stringValue(v)
			if err != nil {
				return Entry{}, err
			}
			a.Values = append(a.Values, s)
		}
		entry.Attributes = append(entry.Attributes, a)
	}
	return entry, nil
}

func stringValue(p *asn1.Packet) (string, error) {
	s, ok := p.Value.(string)
	if !ok {
		return "", fmt.Errorf("%w: expected string, got %T", ErrUnexpectedResponse, p.Value)
	}
	return s, nil
}
