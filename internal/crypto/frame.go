package crypto

import (
	"fmt"

	"github.com/udisondev/healthsync/internal/constants"
)

// FrameCipher encrypts and decrypts frame payloads with the session key
// announced in KeyPacket. Both directions use the same scheme:
// checksum appended, zero padding to 8 bytes, Blowfish-ECB.
//
// Unlike a rolling cipher it keeps no per-packet state, so one FrameCipher
// may be shared by the reader and the write pump of a connection.
type FrameCipher struct {
	cipher *BlowfishCipher
}

// NewFrameCipher creates a FrameCipher for the given session key.
func NewFrameCipher(key []byte) (*FrameCipher, error) {
	c, err := NewBlowfishCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating frame cipher: %w", err)
	}
	return &FrameCipher{cipher: c}, nil
}

// EncryptedSize returns how many bytes a payload of size bytes occupies on the wire.
func EncryptedSize(size int) int {
	n := size + constants.PacketChecksumSize
	if n%constants.PacketPaddingAlign != 0 {
		n += constants.PacketPaddingAlign - n%constants.PacketPaddingAlign
	}
	return n
}

// EncryptPacket encrypts data[offset:offset+size] in-place.
// data must have room for the checksum and padding after the payload.
// Returns the encrypted size.
func (fc *FrameCipher) EncryptPacket(data []byte, offset, size int) (int, error) {
	encSize := EncryptedSize(size)
	if offset+encSize > len(data) {
		return 0, fmt.Errorf("encrypt packet: buffer too small (need %d, have %d)", offset+encSize, len(data))
	}

	clear(data[offset+size : offset+encSize])
	AppendChecksum(data, offset, encSize)
	if err := fc.cipher.Encrypt(data, offset, encSize); err != nil {
		return 0, fmt.Errorf("encrypting packet: %w", err)
	}
	return encSize, nil
}

// DecryptPacket decrypts data[offset:offset+size] in-place.
// Returns true if the checksum is valid.
func (fc *FrameCipher) DecryptPacket(data []byte, offset, size int) (bool, error) {
	if size%constants.PacketPaddingAlign != 0 {
		return false, fmt.Errorf("decrypt packet: size %d is not multiple of %d", size, constants.PacketPaddingAlign)
	}
	if err := fc.cipher.Decrypt(data, offset, size); err != nil {
		return false, fmt.Errorf("decrypting packet: %w", err)
	}
	return VerifyChecksum(data, offset, size), nil
}
