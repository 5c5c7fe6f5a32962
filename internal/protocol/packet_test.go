package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/healthsync/internal/constants"
	"github.com/udisondev/healthsync/internal/crypto"
)

var dynamicKey = []byte{
	0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10,
}

func newCipher(t *testing.T) *crypto.FrameCipher {
	t.Helper()
	enc, err := crypto.NewFrameCipher(dynamicKey)
	require.NoError(t, err)
	return enc
}

func TestWriteReadPacket_RoundTrip(t *testing.T) {
	enc := newCipher(t)
	payload := []byte{0x10, 0x01, 0x00, 0x00, 0x10, 0xAA, 0xBB, 0xCC, 0xDD}

	buf := make([]byte, constants.PacketHeaderSize+len(payload)+constants.PacketBufferPadding)
	copy(buf[constants.PacketHeaderSize:], payload)

	var wire bytes.Buffer
	require.NoError(t, WritePacket(&wire, enc, buf, len(payload)))

	frame := wire.Bytes()
	assert.Equal(t, len(frame), int(binary.LittleEndian.Uint16(frame)), "header carries total length")
	assert.Zero(t, (len(frame)-constants.PacketHeaderSize)%constants.PacketPaddingAlign)

	got, err := ReadPacket(&wire, enc, make([]byte, constants.DefaultReadBufSize))
	require.NoError(t, err)
	assert.Equal(t, payload, got[:len(payload)])
}

// EncryptInPlace must produce exactly the bytes WritePacket sends.
func TestEncryptInPlace_MatchesWritePacket(t *testing.T) {
	enc := newCipher(t)
	payload := []byte{0xAA, 0xBB, 0xCC, 0xDD}

	buf1 := make([]byte, 64)
	copy(buf1[constants.PacketHeaderSize:], payload)
	n, err := EncryptInPlace(enc, buf1, len(payload))
	require.NoError(t, err)

	buf2 := make([]byte, 64)
	copy(buf2[constants.PacketHeaderSize:], payload)
	var out bytes.Buffer
	require.NoError(t, WritePacket(&out, enc, buf2, len(payload)))

	assert.Equal(t, out.Bytes(), buf1[:n])
}

func TestEncryptInPlace_BufferTooSmall(t *testing.T) {
	_, err := EncryptInPlace(newCipher(t), make([]byte, 10), 100)
	assert.Error(t, err)
}

func TestReadPacket_Corrupted(t *testing.T) {
	enc := newCipher(t)
	buf := make([]byte, 64)
	copy(buf[constants.PacketHeaderSize:], []byte{1, 2, 3, 4, 5})
	n, err := EncryptInPlace(enc, buf, 5)
	require.NoError(t, err)

	buf[n-1] ^= 0xFF
	_, err = ReadPacket(bytes.NewReader(buf[:n]), enc, make([]byte, 64))
	assert.ErrorIs(t, err, ErrChecksum)
}

func TestReadPacket_Errors(t *testing.T) {
	enc := newCipher(t)
	readBuf := make([]byte, 16)

	tests := []struct {
		name string
		wire []byte
	}{
		{"short header", []byte{0x05}},
		{"length below header", []byte{0x01, 0x00}},
		{"empty payload", []byte{0x02, 0x00}},
		{"payload exceeds buffer", []byte{0x40, 0x00}},
		{"truncated payload", []byte{0x0A, 0x00, 1, 2, 3}},
		{"unaligned payload", []byte{0x07, 0x00, 1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadPacket(bytes.NewReader(tt.wire), enc, readBuf)
			assert.Error(t, err)
		})
	}
}

func TestReadPacket_EOF(t *testing.T) {
	_, err := ReadPacket(bytes.NewReader(nil), newCipher(t), make([]byte, 16))
	assert.True(t, errors.Is(err, io.EOF), "clean disconnect is detectable: %v", err)
}

func TestWriteReadPlain(t *testing.T) {
	payload := []byte{0x2E, 0x01, 0x00, 0x00, 0x00}

	var wire bytes.Buffer
	require.NoError(t, WritePlain(&wire, payload))
	assert.Equal(t, []byte{0x07, 0x00}, wire.Bytes()[:2])

	got, err := ReadPlain(&wire, make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func BenchmarkWritePacket(b *testing.B) {
	b.ReportAllocs()

	enc, err := crypto.NewFrameCipher(dynamicKey)
	if err != nil {
		b.Fatal(err)
	}
	buf := make([]byte, constants.WriteBufSize)

	b.ResetTimer()
	for range b.N {
		if err := WritePacket(io.Discard, enc, buf, 20); err != nil {
			b.Fatal(err)
		}
	}
}
