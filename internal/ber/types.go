// Package ber implements ASN.1 BER (Basic Encoding Rules) encoding
// as specified in ITU-T X.690.
package ber

import "fmt"

// Class is the tag class of an identifier octet (bits 7-8).
type Class int

// Tag class constants (bits 7-8 of the tag byte)
const (
	ClassUniversal       Class = 0x00 // 00xxxxxx
	ClassApplication     Class = 0x40 // 01xxxxxx
	ClassContextSpecific Class = 0x80 // 10xxxxxx
	ClassPrivate         Class = 0xC0 // 11xxxxxx
)

// String returns the lowercase class name.
func (c Class) String() string {
	switch c {
	case ClassUniversal:
		return "universal"
	case ClassApplication:
		return "application"
	case ClassContextSpecific:
		return "context"
	case ClassPrivate:
		return "private"
	default:
		return fmt.Sprintf("class(0x%02x)", int(c))
	}
}

// Constructed flag (bit 6 of the tag byte)
const (
	TypePrimitive   = 0x00 // xx0xxxxx
	TypeConstructed = 0x20 // xx1xxxxx
)

// Universal tag numbers for primitive types
const (
	TagBoolean     = 0x01
	TagInteger     = 0x02
	TagOctetString = 0x04
	TagNull        = 0x05
	TagEnumerated  = 0x0A
	TagSequence    = 0x10
	TagSet         = 0x11
)

// Length encoding constants
const (
	// LengthLongFormBit indicates long form length encoding (bit 8 set)
	LengthLongFormBit = 0x80
	// MaxShortFormLength is the maximum length encodable in short form (0-127)
	MaxShortFormLength = 127
	// maxLengthOctets bounds the long form length-of-length.
	maxLengthOctets = 8
)

// DefaultMaxValueSize is the largest payload a single top-level value may
// declare before the decoder rejects it (16 MB).
const DefaultMaxValueSize = 16 * 1024 * 1024

// MaxDepth is the deepest nesting of constructed values the decoder accepts.
const MaxDepth = 64

// Identifier is the (class, form, tag number) triple carried by the
// identifier octets of every encoded value.
type Identifier struct {
	Class       Class
	Constructed bool
	Tag         int
}

// String renders the identifier as e.g. "application/constructed/3".
func (id Identifier) String() string {
	form := "primitive"
	if id.Constructed {
		form = "constructed"
	}
	return fmt.Sprintf("%s/%s/%d", id.Class, form, id.Tag)
}

// Shape describes how a decoded payload is represented.
type Shape int

const (
	// ShapeInvalid marks the absence of a mapping. As a schema default it
	// means unmapped primitives are rejected.
	ShapeInvalid Shape = iota
	// ShapeRaw keeps the primitive payload as bytes only.
	ShapeRaw
	// ShapeSequence is the shape of every constructed value.
	ShapeSequence
	// ShapeText interprets the primitive payload as a string.
	ShapeText
	// ShapeInteger interprets the primitive payload as a signed
	// two's complement integer.
	ShapeInteger
)

// String returns the shape name.
func (s Shape) String() string {
	switch s {
	case ShapeRaw:
		return "raw"
	case ShapeSequence:
		return "sequence"
	case ShapeText:
		return "text"
	case ShapeInteger:
		return "integer"
	default:
		return "invalid"
	}
}
