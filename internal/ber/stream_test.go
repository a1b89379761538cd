package ber

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// streamValues returns a handful of values and their concatenated encoding.
func streamValues(t *testing.T) ([]*Value, []byte) {
	t.Helper()

	values := []*Value{
		Sequence(Integer(1), NewConstructed(ClassApplication, 0,
			Integer(3),
			OctetString("cn=bigshot,dc=bayshorenetworks,dc=com"),
			NewText(ClassContextSpecific, 0, "opensesame"),
		)),
		Sequence(Integer(2), NewConstructed(ClassApplication, 3,
			OctetString("dc=bigdomain,dc=com"),
			NewInteger(ClassUniversal, TagEnumerated, 2),
		)),
		OctetString(string(make([]byte, 200))),
		Sequence(Integer(3), NewText(ClassApplication, 2, "")),
	}

	var data []byte
	for _, v := range values {
		b, err := Encode(v)
		require.NoError(t, err)
		data = append(data, b...)
	}
	return values, data
}

// drain pulls every complete value currently in s.
func drain(t *testing.T, s *Stream) []*Value {
	t.Helper()
	var out []*Value
	for {
		v, err := s.Next()
		require.NoError(t, err)
		if v == nil {
			return out
		}
		out = append(out, v)
	}
}

func TestStream_AllAtOnce(t *testing.T) {
	want, data := streamValues(t)

	s := NewStream(testSchema(), 0)
	_, err := s.Write(data)
	require.NoError(t, err)

	assert.Equal(t, want, drain(t, s))
	assert.Zero(t, s.Buffered())
}

func TestStream_EveryBoundary(t *testing.T) {
	want, data := streamValues(t)

	for split := 0; split <= len(data); split++ {
		s := NewStream(testSchema(), 0)
		var got []*Value

		s.Write(data[:split])
		got = append(got, drain(t, s)...)
		s.Write(data[split:])
		got = append(got, drain(t, s)...)

		require.Equal(t, want, got, "split at %d", split)
		require.Zero(t, s.Buffered())
	}
}

func TestStream_OneByteAtATime(t *testing.T) {
	want, data := streamValues(t)

	// Offsets at which each value becomes complete.
	var ends []int
	off := 0
	for _, v := range want {
		b, err := Encode(v)
		require.NoError(t, err)
		off += len(b)
		ends = append(ends, off)
	}

	s := NewStream(testSchema(), 0)
	var got []*Value
	for i := range data {
		s.Write(data[i : i+1])
		vs := drain(t, s)
		if len(vs) > 0 {
			// Nothing may be decoded before its last byte has arrived.
			require.Len(t, vs, 1)
			require.Equal(t, ends[len(got)], i+1)
		}
		got = append(got, vs...)
	}

	assert.Equal(t, want, got)
}

func TestStream_RandomChunks(t *testing.T) {
	want, data := streamValues(t)
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 200; round++ {
		s := NewStream(testSchema(), 0)
		var got []*Value

		for rest := data; len(rest) > 0; {
			n := 1 + rng.Intn(len(rest))
			s.Write(rest[:n])
			rest = rest[n:]
			got = append(got, drain(t, s)...)
		}

		require.Equal(t, want, got, "round %d", round)
	}
}

func TestStream_ErrorLeavesBuffer(t *testing.T) {
	s := NewStream(testSchema(), 0)
	s.Write([]byte{0x30, 0x80, 0x00, 0x00})

	v, err := s.Next()
	assert.Nil(t, v)
	assert.ErrorIs(t, err, ErrIndefiniteLength)
	assert.Equal(t, 4, s.Buffered())

	s.Reset()
	assert.Zero(t, s.Buffered())
}

func TestStream_MaxValueSize(t *testing.T) {
	s := NewStream(testSchema(), 16)
	s.Write([]byte{0x04, 0x11})

	_, err := s.Next()
	assert.ErrorIs(t, err, ErrValueTooLarge)

	s = NewStream(testSchema(), 16)
	s.Write([]byte{0x04, 0x10})
	v, err := s.Next()
	require.NoError(t, err)
	assert.Nil(t, v)
}
