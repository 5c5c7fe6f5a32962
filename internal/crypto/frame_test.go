package crypto

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptedSize(t *testing.T) {
	tests := []struct {
		size int
		want int
	}{
		{1, 8},
		{4, 8},
		{5, 16},
		{12, 16},
		{13, 24},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EncryptedSize(tt.size), "size=%d", tt.size)
	}
}

func TestFrameCipher_RoundTrip(t *testing.T) {
	fc, err := NewFrameCipher(testKey)
	require.NoError(t, err)

	payload := []byte{0x02, 0x01, 0x00, 0x00, 0x10, 0x01, 0x05}
	buf := make([]byte, 64)
	copy(buf[2:], payload)

	n, err := fc.EncryptPacket(buf, 2, len(payload))
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	ok, err := fc.DecryptPacket(buf, 2, n)
	require.NoError(t, err)
	assert.True(t, ok, "checksum must verify")
	assert.Equal(t, payload, buf[2:2+len(payload)])
}

func TestFrameCipher_WrongKey(t *testing.T) {
	enc, err := NewFrameCipher(testKey)
	require.NoError(t, err)
	other := bytes.Clone(testKey)
	other[0] ^= 0xFF
	dec, err := NewFrameCipher(other)
	require.NoError(t, err)

	buf := make([]byte, 32)
	copy(buf, []byte{0x10, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	n, err := enc.EncryptPacket(buf, 0, 10)
	require.NoError(t, err)

	ok, err := dec.DecryptPacket(buf, 0, n)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFrameCipher_Errors(t *testing.T) {
	fc, err := NewFrameCipher(testKey)
	require.NoError(t, err)

	_, err = fc.EncryptPacket(make([]byte, 8), 0, 8)
	assert.Error(t, err, "no room for checksum")

	_, err = fc.DecryptPacket(make([]byte, 12), 0, 12)
	assert.Error(t, err, "unaligned frame")
}

func BenchmarkFrameCipher_EncryptPacket(b *testing.B) {
	b.ReportAllocs()

	fc, err := NewFrameCipher(testKey)
	if err != nil {
		b.Fatal(err)
	}
	buf := make([]byte, 64)

	b.ResetTimer()
	for range b.N {
		if _, err := fc.EncryptPacket(buf, 0, 20); err != nil {
			b.Fatal(err)
		}
	}
}
