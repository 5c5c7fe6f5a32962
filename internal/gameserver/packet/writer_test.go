package packet

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"
)

func TestWriter_WriteByte(t *testing.T) {
	w := NewWriter(16)

	if err := w.WriteByte(0x42); err != nil {
		t.Fatalf("WriteByte failed: %v", err)
	}
	w.WriteBool(true)
	w.WriteBool(false)

	if !bytes.Equal(w.Bytes(), []byte{0x42, 0x01, 0x00}) {
		t.Errorf("unexpected bytes % X", w.Bytes())
	}
}

func TestWriter_WriteInt(t *testing.T) {
	w := NewWriter(16)

	w.WriteInt(-2)
	w.WriteUint32(0x10000001)

	data := w.Bytes()
	if len(data) != 8 {
		t.Fatalf("expected length 8, got %d", len(data))
	}
	if v := int32(binary.LittleEndian.Uint32(data)); v != -2 {
		t.Errorf("expected -2, got %d", v)
	}
	if v := binary.LittleEndian.Uint32(data[4:]); v != 0x10000001 {
		t.Errorf("expected 0x10000001, got 0x%08X", v)
	}
}

func TestWriter_WriteDouble(t *testing.T) {
	w := NewWriter(16)
	w.WriteDouble(99.75)

	data := w.Bytes()
	if len(data) != 8 {
		t.Fatalf("expected length 8, got %d", len(data))
	}
	if v := math.Float64frombits(binary.LittleEndian.Uint64(data)); v != 99.75 {
		t.Errorf("expected 99.75, got %v", v)
	}
}

func TestWriter_WriteString(t *testing.T) {
	w := NewWriter(16)
	w.WriteString("Ab")

	want := []byte{'A', 0, 'b', 0, 0, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("expected % X, got % X", want, w.Bytes())
	}
}

func TestWriter_WriteString_Surrogates(t *testing.T) {
	w := NewWriter(16)
	w.WriteString("😀") // U+1F600

	want := []byte{0x3D, 0xD8, 0x00, 0xDE, 0, 0}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("expected % X, got % X", want, w.Bytes())
	}

	s, err := NewReader(w.Bytes()).ReadString()
	if err != nil {
		t.Fatalf("ReadString failed: %v", err)
	}
	if s != "😀" {
		t.Errorf("round trip mismatch: %q", s)
	}
}

func TestWriter_Pool(t *testing.T) {
	w := Get()
	w.WriteInt(7)
	if w.Len() != 4 {
		t.Fatalf("expected length 4, got %d", w.Len())
	}
	w.Put()

	w2 := Get()
	defer w2.Put()
	if w2.Len() != 0 {
		t.Errorf("pooled writer must be reset, len=%d", w2.Len())
	}
}
