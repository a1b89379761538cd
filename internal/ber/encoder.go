// Package ber implements ASN.1 BER (Basic Encoding Rules) encoding
// as specified in ITU-T X.690.
package ber

import (
	"errors"
)

// Errors returned by the encoder
var (
	ErrInvalidTagClass  = errors.New("ber: invalid tag class")
	ErrInvalidTagNumber = errors.New("ber: invalid tag number")
	ErrNegativeLength   = errors.New("ber: negative length not allowed")
)

// BEREncoder encodes ASN.1 values using BER (Basic Encoding Rules).
type BEREncoder struct {
	buf []byte
}

// NewBEREncoder creates a new BER encoder with an optional initial capacity.
func NewBEREncoder(capacity int) *BEREncoder {
	if capacity <= 0 {
		capacity = 64
	}
	return &BEREncoder{
		buf: make([]byte, 0, capacity),
	}
}

// Bytes returns the encoded bytes.
func (e *BEREncoder) Bytes() []byte {
	return e.buf
}

// Reset clears the encoder buffer for reuse.
func (e *BEREncoder) Reset() {
	e.buf = e.buf[:0]
}

// Len returns the current length of encoded data.
func (e *BEREncoder) Len() int {
	return len(e.buf)
}

// WriteTag writes the identifier octets for id.
// Tag numbers 0-30 use the short form, larger numbers the long form.
func (e *BEREncoder) WriteTag(id Identifier) error {
	if id.Class != ClassUniversal && id.Class != ClassApplication &&
		id.Class != ClassContextSpecific && id.Class != ClassPrivate {
		return ErrInvalidTagClass
	}
	if id.Tag < 0 {
		return ErrInvalidTagNumber
	}

	form := byte(TypePrimitive)
	if id.Constructed {
		form = TypeConstructed
	}

	if id.Tag <= 30 {
		e.buf = append(e.buf, byte(id.Class)|form|byte(id.Tag))
		return nil
	}

	// Long form: class | constructed | 0x1F, then base-128 tag number
	e.buf = append(e.buf, byte(id.Class)|form|0x1F)
	e.writeBase128(id.Tag)
	return nil
}

// writeBase128 encodes an integer in base-128 format (high bit indicates continuation)
func (e *BEREncoder) writeBase128(value int) {
	if value == 0 {
		e.buf = append(e.buf, 0)
		return
	}

	var groups []byte
	for value > 0 {
		groups = append(groups, byte(value&0x7F))
		value >>= 7
	}

	for i := len(groups) - 1; i >= 0; i-- {
		b := groups[i]
		if i > 0 {
			b |= 0x80
		}
		e.buf = append(e.buf, b)
	}
}

// WriteLength writes a BER length value to the buffer.
// Uses short form for lengths 0-127, long form for larger values.
func (e *BEREncoder) WriteLength(length int) error {
	if length < 0 {
		return ErrNegativeLength
	}

	if length <= MaxShortFormLength {
		e.buf = append(e.buf, byte(length))
		return nil
	}

	numBytes := 0
	for temp := length; temp > 0; temp >>= 8 {
		numBytes++
	}

	e.buf = append(e.buf, byte(LengthLongFormBit|numBytes))
	for i := numBytes - 1; i >= 0; i-- {
		e.buf = append(e.buf, byte(length>>(i*8)))
	}

	return nil
}

// WriteRaw writes raw bytes directly to the buffer.
func (e *BEREncoder) WriteRaw(data []byte) {
	e.buf = append(e.buf, data...)
}

// WriteValue encodes v. Constructed values encode their children first so
// the aggregate length is known before the header is written.
func (e *BEREncoder) WriteValue(v *Value) error {
	if v == nil {
		return errors.New("ber: cannot encode nil value")
	}

	payload := v.Bytes
	if v.Constructed {
		inner := NewBEREncoder(64)
		for _, child := range v.Children {
			if err := inner.WriteValue(child); err != nil {
				return err
			}
		}
		payload = inner.Bytes()
	}

	if err := e.WriteTag(v.Identifier); err != nil {
		return err
	}
	if err := e.WriteLength(len(payload)); err != nil {
		return err
	}
	e.WriteRaw(payload)
	return nil
}

// Encode returns the BER encoding of v.
func Encode(v *Value) ([]byte, error) {
	enc := NewBEREncoder(128)
	if err := enc.WriteValue(v); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// encodeInteger encodes an int64 as a minimal two's complement byte slice.
func encodeInteger(v int64) []byte {
	n := 8
	for n > 1 {
		// The dropped octet plus the next sign bit must all repeat the sign.
		top := v >> (8*(n-1) - 1)
		if top != 0 && top != -1 {
			break
		}
		n--
	}

	out := make([]byte, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
