// Package ber implements ASN.1 BER (Basic Encoding Rules) encoding
// as specified in ITU-T X.690.
package ber

// Stream accumulates bytes from a connection and yields complete values as
// soon as they have fully arrived. A Stream belongs to a single connection
// and is not safe for concurrent use.
type Stream struct {
	schema       *Schema
	maxValueSize int
	buf          []byte
}

// NewStream creates a Stream decoding with schema. maxValueSize bounds the
// declared length of a top-level value; zero or less selects DefaultMaxValueSize.
func NewStream(schema *Schema, maxValueSize int) *Stream {
	if maxValueSize <= 0 {
		maxValueSize = DefaultMaxValueSize
	}
	return &Stream{
		schema:       schema,
		maxValueSize: maxValueSize,
	}
}

// Write appends p to the buffer. It never fails.
func (s *Stream) Write(p []byte) (int, error) {
	s.buf = append(s.buf, p...)
	return len(p), nil
}

// Next returns the next complete value and removes exactly its bytes from
// the buffer. It returns (nil, nil) when the buffer holds at most a partial
// value. A decode error leaves the buffer untouched.
func (s *Stream) Next() (*Value, error) {
	v, n, err := decodeOne(s.buf, s.schema, s.maxValueSize)
	if err != nil || v == nil {
		return nil, err
	}

	// Shift the remainder down so the backing array is reused.
	rest := copy(s.buf, s.buf[n:])
	s.buf = s.buf[:rest]
	return v, nil
}

// Buffered returns the number of bytes waiting to form a value.
func (s *Stream) Buffered() int {
	return len(s.buf)
}

// Reset discards any buffered bytes.
func (s *Stream) Reset() {
	s.buf = s.buf[:0]
}
