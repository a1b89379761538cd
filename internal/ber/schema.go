// Package ber implements ASN.1 BER (Basic Encoding Rules) encoding
// as specified in ITU-T X.690.
package ber

// Schema maps identifiers to the shape their primitive payload decodes to.
// A Schema is immutable once built and safe for concurrent use.
type Schema struct {
	shapes map[Identifier]Shape
	def    Shape
}

// NewSchema builds a schema from shapes. def is returned for unmapped
// primitive identifiers; ShapeInvalid means unmapped primitives are
// rejected with ErrUnmappedTag.
func NewSchema(def Shape, shapes map[Identifier]Shape) *Schema {
	m := make(map[Identifier]Shape, len(shapes))
	for id, s := range shapes {
		m[id] = s
	}
	return &Schema{shapes: m, def: def}
}

// Lookup returns the shape for id. The boolean is false when id is unmapped
// and the schema has no default.
func (s *Schema) Lookup(id Identifier) (Shape, bool) {
	if s == nil {
		return ShapeRaw, true
	}
	if shape, ok := s.shapes[id]; ok {
		return shape, true
	}
	if s.def == ShapeInvalid {
		return ShapeInvalid, false
	}
	return s.def, true
}

// Default returns the shape used for unmapped identifiers.
func (s *Schema) Default() Shape {
	if s == nil {
		return ShapeRaw
	}
	return s.def
}

// UniversalShapes are the universal-class mappings most schemas start from.
func UniversalShapes() map[Identifier]Shape {
	return map[Identifier]Shape{
		{Class: ClassUniversal, Tag: TagInteger}:                     ShapeInteger,
		{Class: ClassUniversal, Tag: TagEnumerated}:                  ShapeInteger,
		{Class: ClassUniversal, Tag: TagOctetString}:                 ShapeText,
		{Class: ClassUniversal, Tag: TagBoolean}:                     ShapeRaw,
		{Class: ClassUniversal, Tag: TagNull}:                        ShapeRaw,
		{Class: ClassUniversal, Constructed: true, Tag: TagSequence}: ShapeSequence,
		{Class: ClassUniversal, Constructed: true, Tag: TagSet}:      ShapeSequence,
	}
}
