package protocol

import (
	"errors"
	"io"
	"testing"
)

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 16383, 16384, 1<<32 - 1, 1<<64 - 1}

	for _, v := range values {
		e := NewEncoder()
		e.WriteUvarint(v)

		d := NewDecoder(e.Bytes())
		got, err := d.ReadUvarint()
		if err != nil {
			t.Fatalf("ReadUvarint(%d) error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d -> %d", v, got)
		}
		if !d.EOF() {
			t.Errorf("decoder not at EOF after reading %d", v)
		}
	}
}

func TestUvarintOverflow(t *testing.T) {
	// 11 continuation bytes exceed the 64-bit range.
	data := []byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x01}
	d := NewDecoder(data)
	if _, err := d.ReadUvarint(); !errors.Is(err, ErrVarintOverflow) {
		t.Errorf("error = %v, want ErrVarintOverflow", err)
	}
}

func TestUvarintIncomplete(t *testing.T) {
	d := NewDecoder([]byte{0x80})
	if _, err := d.ReadUvarint(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	strings := []string{"", "a", "hello world", "/users/42?tab=posts", "héllo wörld 世界"}

	for _, s := range strings {
		e := NewEncoder()
		e.WriteString(s)

		d := NewDecoder(e.Bytes())
		got, err := d.ReadString()
		if err != nil {
			t.Fatalf("ReadString(%q) error: %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q -> %q", s, got)
		}
	}
}

func TestStringLengthExceedsBuffer(t *testing.T) {
	// Declared length 100, only 3 bytes follow.
	e := NewEncoder()
	e.WriteUvarint(100)
	e.WriteBytes([]byte("abc"))

	d := NewDecoder(e.Bytes())
	if _, err := d.ReadString(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestBoolAndFixedWidth(t *testing.T) {
	e := NewEncoder()
	e.WriteBool(true)
	e.WriteBool(false)
	e.WriteUint16(0xBEEF)
	e.WriteUint64(0xDEADBEEFCAFE)

	d := NewDecoder(e.Bytes())
	if v, _ := d.ReadBool(); !v {
		t.Error("first bool should be true")
	}
	if v, _ := d.ReadBool(); v {
		t.Error("second bool should be false")
	}
	if v, _ := d.ReadUint16(); v != 0xBEEF {
		t.Errorf("uint16 = %#x", v)
	}
	if v, _ := d.ReadUint64(); v != 0xDEADBEEFCAFE {
		t.Errorf("uint64 = %#x", v)
	}
	if !d.EOF() {
		t.Error("decoder should be at EOF")
	}
}

func TestReadCollectionCountLimits(t *testing.T) {
	t.Run("count exceeds limit", func(t *testing.T) {
		e := NewEncoder()
		e.WriteUvarint(MaxCollectionCount + 1)
		// Pad so the remaining-bytes check is not the failure.
		e.WriteBytes(make([]byte, 64))

		d := NewDecoder(e.Bytes())
		if _, err := d.ReadCollectionCount(); !errors.Is(err, ErrCollectionTooLarge) {
			t.Errorf("error = %v, want ErrCollectionTooLarge", err)
		}
	})

	t.Run("count exceeds remaining bytes", func(t *testing.T) {
		e := NewEncoder()
		e.WriteUvarint(50)
		e.WriteBytes([]byte("short"))

		d := NewDecoder(e.Bytes())
		if _, err := d.ReadCollectionCount(); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("error = %v, want ErrUnexpectedEOF", err)
		}
	})
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	e.WriteString("first")
	if e.Len() == 0 {
		t.Fatal("encoder should have content")
	}
	e.Reset()
	if e.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", e.Len())
	}
}
