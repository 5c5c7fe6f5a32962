package testutil

import (
	"encoding/binary"
	"math"
	"testing"
	"unicode/utf16"
)

// AssertPacketOpcode проверяет, что первый байт пакета соответствует ожидаемому opcode.
func AssertPacketOpcode(t testing.TB, expected byte, packet []byte) {
	t.Helper()

	if len(packet) == 0 {
		t.Fatalf("packet is empty, expected opcode 0x%02X", expected)
	}
	if packet[0] != expected {
		t.Fatalf("packet opcode mismatch: expected 0x%02X, got 0x%02X", expected, packet[0])
	}
}

// AssertInt32LE проверяет int32 (little-endian) по смещению.
func AssertInt32LE(t testing.TB, expected int32, packet []byte, offset int) {
	t.Helper()

	if len(packet) < offset+4 {
		t.Fatalf("packet too short: need %d bytes for int32 at offset %d, got %d",
			offset+4, offset, len(packet))
	}
	actual := int32(binary.LittleEndian.Uint32(packet[offset:]))
	if actual != expected {
		t.Fatalf("int32 mismatch at offset %d: expected %d, got %d", offset, expected, actual)
	}
}

// AssertFloat64LE проверяет IEEE 754 double (little-endian) по смещению.
func AssertFloat64LE(t testing.TB, expected float64, packet []byte, offset int) {
	t.Helper()

	if len(packet) < offset+8 {
		t.Fatalf("packet too short: need %d bytes for double at offset %d, got %d",
			offset+8, offset, len(packet))
	}
	actual := math.Float64frombits(binary.LittleEndian.Uint64(packet[offset:]))
	if actual != expected {
		t.Fatalf("double mismatch at offset %d: expected %v, got %v", offset, expected, actual)
	}
}

// AssertByteAtOffset проверяет, что байт в пакете соответствует ожидаемому.
func AssertByteAtOffset(t testing.TB, expected byte, packet []byte, offset int) {
	t.Helper()

	if len(packet) <= offset {
		t.Fatalf("packet too short: need %d bytes, got %d", offset+1, len(packet))
	}
	if packet[offset] != expected {
		t.Fatalf("byte mismatch at offset %d: expected 0x%02X, got 0x%02X", offset, expected, packet[offset])
	}
}

// AssertUTF16String проверяет UTF-16LE строку с нулевым терминатором.
// Возвращает смещение сразу за терминатором.
func AssertUTF16String(t testing.TB, expected string, packet []byte, offset int) int {
	t.Helper()

	nullIdx := -1
	for i := offset; i < len(packet)-1; i += 2 {
		if packet[i] == 0 && packet[i+1] == 0 {
			nullIdx = i
			break
		}
	}
	if nullIdx == -1 {
		t.Fatalf("UTF-16 string at offset %d has no null terminator", offset)
	}

	runes := make([]uint16, (nullIdx-offset)/2)
	for i := range runes {
		runes[i] = binary.LittleEndian.Uint16(packet[offset+i*2:])
	}
	if actual := string(utf16.Decode(runes)); actual != expected {
		t.Fatalf("UTF-16 string mismatch at offset %d: expected %q, got %q", offset, expected, actual)
	}
	return nullIdx + 2
}

// AssertPacketLength проверяет, что длина пакета соответствует ожидаемой.
func AssertPacketLength(t testing.TB, expected int, packet []byte) {
	t.Helper()

	if len(packet) != expected {
		t.Fatalf("packet length mismatch: expected %d bytes, got %d bytes", expected, len(packet))
	}
}
