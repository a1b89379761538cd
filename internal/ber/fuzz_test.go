package ber

import (
	"testing"
)

func FuzzDecodeOne(f *testing.F) {
	seeds := [][]byte{
		{0x30, 0x0C, 0x02, 0x01, 0x01, 0x60, 0x07, 0x02, 0x01, 0x03, 0x04, 0x00, 0x80, 0x00},
		{0x30, 0x05, 0x02, 0x01, 0x02, 0x42, 0x00},
		{0x04, 0x81, 0x80},
		{0x30, 0x80, 0x00, 0x00},
		{0x1F, 0x81},
		{0x02, 0x00},
	}
	for _, s := range seeds {
		f.Add(s)
	}

	schema := NewSchema(ShapeRaw, UniversalShapes())

	f.Fuzz(func(t *testing.T, data []byte) {
		v, n, err := DecodeOne(data, schema)
		if err != nil {
			if v != nil || n != 0 {
				t.Fatalf("error with value: %v %d %v", v, n, err)
			}
			return
		}
		if v == nil {
			if n != 0 {
				t.Fatalf("incomplete input consumed %d bytes", n)
			}
			return
		}
		if n <= 0 || n > len(data) {
			t.Fatalf("consumed %d of %d bytes", n, len(data))
		}

		// Re-encoding is canonical, so it can only be shorter than the
		// input when the input used a non-minimal length or tag form.
		out, err := Encode(v)
		if err != nil {
			t.Fatalf("re-encode: %v", err)
		}
		if len(out) > n {
			t.Fatalf("re-encoded %d bytes from %d", len(out), n)
		}

		back, m, err := DecodeOne(out, schema)
		if err != nil || back == nil || m != len(out) {
			t.Fatalf("decode of re-encoded value: %v %d %v", back, m, err)
		}
	})
}
