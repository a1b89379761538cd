// Package ber implements ASN.1 BER (Basic Encoding Rules) encoding and decoding
// as specified in ITU-T X.690.
//
// BER is the wire format used by LDAP for all protocol messages. This package
// models every encoded unit as a tagged Value and decodes incrementally, so a
// connection can hand it whatever bytes have arrived so far.
//
// # Tag Classes
//
// BER uses four tag classes to identify data types:
//
//   - Universal (0x00): Standard ASN.1 types like INTEGER, BOOLEAN, SEQUENCE
//   - Application (0x40): Protocol-specific types (LDAP operations)
//   - Context-specific (0x80): Context-dependent types within a structure
//   - Private (0xC0): Organization-specific types
//
// # Schema
//
// The wire format does not say how a primitive payload should be read. A
// Schema maps each (class, form, tag) identifier to a Shape: text, integer
// or raw bytes. Constructed values always decode to their children.
//
//	schema := ber.NewSchema(ber.ShapeRaw, ber.UniversalShapes())
//
// # Decoding
//
// DecodeOne decodes the first complete value of a buffer and reports how
// many bytes it used. A buffer holding only part of a value yields a nil
// value and no error:
//
//	v, n, err := ber.DecodeOne(buf, schema)
//	if err != nil {
//	    // malformed input
//	}
//	if v == nil {
//	    // wait for more bytes
//	}
//
// Stream wraps the same loop around a growing buffer:
//
//	s := ber.NewStream(schema, 0)
//	s.Write(chunk)
//	for {
//	    v, err := s.Next()
//	    if err != nil || v == nil {
//	        break
//	    }
//	    // handle v
//	}
//
// # Encoding
//
// Build values with the helpers and encode them with Encode:
//
//	msg := ber.Sequence(
//	    ber.Integer(1),
//	    ber.NewConstructed(ber.ClassApplication, 1, ber.Integer(0)),
//	)
//	data, err := ber.Encode(msg)
//
// Lengths up to 127 use the short form; longer payloads use the long form.
// Indefinite lengths are never produced and are rejected when decoding.
//
// # References
//
//   - ITU-T X.690: ASN.1 encoding rules
//   - RFC 4511: LDAP Protocol (uses BER encoding)
package ber
