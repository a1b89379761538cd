// Package ber implements ASN.1 BER (Basic Encoding Rules) encoding
// as specified in ITU-T X.690.
package ber

import (
	"errors"
	"fmt"
)

// BERDecoder is a read cursor over BER-encoded data.
type BERDecoder struct {
	data   []byte
	offset int
}

// NewBERDecoder creates a new BER decoder for the given data.
func NewBERDecoder(data []byte) *BERDecoder {
	return &BERDecoder{
		data:   data,
		offset: 0,
	}
}

// Offset returns the current read position in the data.
func (d *BERDecoder) Offset() int {
	return d.offset
}

// Remaining returns the number of bytes remaining to be read.
func (d *BERDecoder) Remaining() int {
	return len(d.data) - d.offset
}

// ReadIdentifier reads the identifier octets at the current position.
func (d *BERDecoder) ReadIdentifier() (Identifier, error) {
	startOffset := d.offset

	if d.offset >= len(d.data) {
		return Identifier{}, NewDecodeError(startOffset, "cannot read tag", ErrUnexpectedEOF)
	}

	firstByte := d.data[d.offset]
	d.offset++

	id := Identifier{
		Class:       Class(firstByte & 0xC0),
		Constructed: firstByte&TypeConstructed != 0,
		Tag:         int(firstByte & 0x1F),
	}

	// Long form: all five low bits set, tag number follows in base-128
	if id.Tag == 0x1F {
		number, err := d.readBase128()
		if err != nil {
			return Identifier{}, NewDecodeError(startOffset, "cannot read long form tag number", err)
		}
		id.Tag = number
	}

	return id, nil
}

// readBase128 reads a base-128 encoded integer (used for long form tags).
func (d *BERDecoder) readBase128() (int, error) {
	result := 0
	for {
		if d.offset >= len(d.data) {
			return 0, ErrUnexpectedEOF
		}

		b := d.data[d.offset]
		d.offset++

		if result > (1 << 24) {
			return 0, ErrInvalidTag
		}

		result = (result << 7) | int(b&0x7F)

		if b&0x80 == 0 {
			break
		}
	}
	return result, nil
}

// ReadLength reads a BER length value from the current position.
func (d *BERDecoder) ReadLength() (int, error) {
	startOffset := d.offset

	if d.offset >= len(d.data) {
		return 0, NewDecodeError(startOffset, "cannot read length", ErrUnexpectedEOF)
	}

	firstByte := d.data[d.offset]
	d.offset++

	// Short form: bit 8 is 0, bits 1-7 contain the length
	if firstByte&LengthLongFormBit == 0 {
		return int(firstByte), nil
	}

	// Long form: bits 1-7 contain the number of subsequent length bytes
	numBytes := int(firstByte & 0x7F)

	if numBytes == 0 {
		return 0, NewDecodeError(startOffset, "indefinite length encoding", ErrIndefiniteLength)
	}
	if numBytes > maxLengthOctets {
		return 0, NewDecodeError(startOffset, fmt.Sprintf("length of length %d too large", numBytes), ErrInvalidLength)
	}

	if d.offset+numBytes > len(d.data) {
		return 0, NewDecodeError(startOffset, "truncated length encoding", ErrUnexpectedEOF)
	}

	length := 0
	for i := 0; i < numBytes; i++ {
		if length > (1 << 47) {
			return 0, NewDecodeError(startOffset, "length value overflow", ErrInvalidLength)
		}
		length = (length << 8) | int(d.data[d.offset])
		d.offset++
	}

	return length, nil
}

// parseInteger decodes a two's complement integer payload.
func parseInteger(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, errors.New("integer must have at least 1 byte")
	}
	if len(b) > 8 {
		return 0, errors.New("integer too large for int64")
	}

	var result int64
	// If high bit is set, the number is negative (two's complement)
	if b[0]&0x80 != 0 {
		result = -1
	}
	for _, c := range b {
		result = (result << 8) | int64(c)
	}
	return result, nil
}

// DecodeOne decodes the first complete value in buf.
//
// It returns the value and the exact number of bytes it occupies. When buf
// holds only a prefix of a value, DecodeOne returns (nil, 0, nil) and the
// caller should wait for more data. Any other failure is a *DecodeError.
func DecodeOne(buf []byte, schema *Schema) (*Value, int, error) {
	return decodeOne(buf, schema, DefaultMaxValueSize)
}

func decodeOne(buf []byte, schema *Schema, maxValueSize int) (*Value, int, error) {
	d := NewBERDecoder(buf)

	// The header alone tells us whether the whole value has arrived.
	if _, err := d.ReadIdentifier(); err != nil {
		if errors.Is(err, ErrUnexpectedEOF) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	length, err := d.ReadLength()
	if err != nil {
		if errors.Is(err, ErrUnexpectedEOF) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	if maxValueSize > 0 && length > maxValueSize {
		return nil, 0, NewDecodeError(0, fmt.Sprintf("declared length %d exceeds %d", length, maxValueSize), ErrValueTooLarge)
	}

	total := d.Offset() + length
	if total > len(buf) {
		return nil, 0, nil
	}

	d = NewBERDecoder(buf[:total])
	v, err := d.readValue(schema, 0)
	if err != nil {
		return nil, 0, err
	}
	return v, total, nil
}

// readValue decodes one value whose bytes lie entirely within d.data.
func (d *BERDecoder) readValue(schema *Schema, depth int) (*Value, error) {
	startOffset := d.offset

	if depth > MaxDepth {
		return nil, NewDecodeError(startOffset, "cannot descend further", ErrNestingTooDeep)
	}

	id, err := d.ReadIdentifier()
	if err != nil {
		return nil, nested(err, startOffset)
	}
	length, err := d.ReadLength()
	if err != nil {
		return nil, nested(err, startOffset)
	}
	if length > d.Remaining() {
		return nil, NewDecodeError(startOffset, "value overruns enclosing length", ErrInvalidLength)
	}

	end := d.offset + length
	v := &Value{Identifier: id}

	if id.Constructed {
		v.Shape = ShapeSequence
		sub := &BERDecoder{data: d.data[:end], offset: d.offset}
		for sub.Remaining() > 0 {
			child, err := sub.readValue(schema, depth+1)
			if err != nil {
				return nil, err
			}
			v.Children = append(v.Children, child)
		}
		d.offset = end
		return v, nil
	}

	shape, ok := schema.Lookup(id)
	if !ok {
		return nil, NewDecodeError(startOffset, fmt.Sprintf("primitive %s", id), ErrUnmappedTag)
	}

	payload := make([]byte, length)
	copy(payload, d.data[d.offset:end])
	d.offset = end

	v.Shape = shape
	v.Bytes = payload

	switch shape {
	case ShapeText:
		v.Text = string(payload)
	case ShapeInteger:
		n, err := parseInteger(payload)
		if err != nil {
			return nil, NewDecodeError(startOffset, err.Error(), ErrInvalidInteger)
		}
		v.Int = n
	case ShapeRaw:
	default:
		return nil, NewDecodeError(startOffset, fmt.Sprintf("primitive %s mapped to %s", id, shape), ErrUnmappedTag)
	}

	return v, nil
}

// nested turns truncation inside an already-complete value into a length
// error: the enclosing length promised bytes that are not there.
func nested(err error, offset int) error {
	if errors.Is(err, ErrUnexpectedEOF) {
		return NewDecodeError(offset, "nested value exceeds enclosing length", ErrInvalidLength)
	}
	return err
}
