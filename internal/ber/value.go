// Package ber implements ASN.1 BER (Basic Encoding Rules) encoding
// as specified in ITU-T X.690.
package ber

import (
	"fmt"
	"strings"
)

// Value is one decoded tag-length-value unit.
//
// Primitive values keep their payload in Bytes; Text or Int is filled in
// as well when the schema interprets the payload. Constructed values carry
// their nested values in Children and leave Bytes empty.
type Value struct {
	Identifier
	Shape    Shape
	Bytes    []byte
	Text     string
	Int      int64
	Children []*Value
}

// NewInteger returns a primitive value holding v as a minimal two's
// complement integer.
func NewInteger(class Class, tag int, v int64) *Value {
	return &Value{
		Identifier: Identifier{Class: class, Tag: tag},
		Shape:      ShapeInteger,
		Bytes:      encodeInteger(v),
		Int:        v,
	}
}

// NewText returns a primitive value holding s.
func NewText(class Class, tag int, s string) *Value {
	b := make([]byte, len(s))
	copy(b, s)
	return &Value{
		Identifier: Identifier{Class: class, Tag: tag},
		Shape:      ShapeText,
		Bytes:      b,
		Text:       s,
	}
}

// NewRaw returns a primitive value holding a copy of b.
func NewRaw(class Class, tag int, b []byte) *Value {
	payload := make([]byte, len(b))
	copy(payload, b)
	return &Value{
		Identifier: Identifier{Class: class, Tag: tag},
		Shape:      ShapeRaw,
		Bytes:      payload,
	}
}

// NewConstructed returns a constructed value wrapping children.
func NewConstructed(class Class, tag int, children ...*Value) *Value {
	return &Value{
		Identifier: Identifier{Class: class, Constructed: true, Tag: tag},
		Shape:      ShapeSequence,
		Children:   children,
	}
}

// Integer returns a universal INTEGER.
func Integer(v int64) *Value {
	return NewInteger(ClassUniversal, TagInteger, v)
}

// OctetString returns a universal OCTET STRING holding s.
func OctetString(s string) *Value {
	return NewText(ClassUniversal, TagOctetString, s)
}

// Sequence returns a universal SEQUENCE.
func Sequence(children ...*Value) *Value {
	return NewConstructed(ClassUniversal, TagSequence, children...)
}

// Set returns a universal SET.
func Set(children ...*Value) *Value {
	return NewConstructed(ClassUniversal, TagSet, children...)
}

// Child returns the i-th child, or nil when v is nil, primitive, or has
// fewer children.
func (v *Value) Child(i int) *Value {
	if v == nil || i < 0 || i >= len(v.Children) {
		return nil
	}
	return v.Children[i]
}

// Is reports whether v carries the given identifier.
func (v *Value) Is(class Class, constructed bool, tag int) bool {
	if v == nil {
		return false
	}
	return v.Identifier == Identifier{Class: class, Constructed: constructed, Tag: tag}
}

// String renders the value tree for logs and test failures.
func (v *Value) String() string {
	var sb strings.Builder
	v.format(&sb)
	return sb.String()
}

func (v *Value) format(sb *strings.Builder) {
	if v == nil {
		sb.WriteString("<nil>")
		return
	}
	sb.WriteString(v.Identifier.String())
	if v.Constructed {
		sb.WriteString("{")
		for i, c := range v.Children {
			if i > 0 {
				sb.WriteString(", ")
			}
			c.format(sb)
		}
		sb.WriteString("}")
		return
	}
	switch v.Shape {
	case ShapeText:
		fmt.Fprintf(sb, "(%q)", v.Text)
	case ShapeInteger:
		fmt.Fprintf(sb, "(%d)", v.Int)
	default:
		fmt.Fprintf(sb, "(%x)", v.Bytes)
	}
}
