package crypto

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blowfish"

	"github.com/udisondev/healthsync/internal/constants"
)

// BlowfishCipher wraps Blowfish ECB encryption/decryption of frame payloads.
// Safe for concurrent use: the expanded key is read-only after creation.
type BlowfishCipher struct {
	cipher *blowfish.Cipher
}

// NewBlowfishCipher creates a new Blowfish ECB cipher from the given key.
func NewBlowfishCipher(key []byte) (*BlowfishCipher, error) {
	c, err := blowfish.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating blowfish cipher: %w", err)
	}
	return &BlowfishCipher{cipher: c}, nil
}

// Encrypt encrypts data[offset:offset+size] in-place. size must be a multiple of 8.
func (b *BlowfishCipher) Encrypt(data []byte, offset, size int) error {
	if err := checkBlocks(data, offset, size); err != nil {
		return fmt.Errorf("blowfish encrypt: %w", err)
	}
	for i := offset; i < offset+size; i += constants.BlowfishBlockSize {
		b.cipher.Encrypt(data[i:i+constants.BlowfishBlockSize], data[i:i+constants.BlowfishBlockSize])
	}
	return nil
}

// Decrypt decrypts data[offset:offset+size] in-place. size must be a multiple of 8.
func (b *BlowfishCipher) Decrypt(data []byte, offset, size int) error {
	if err := checkBlocks(data, offset, size); err != nil {
		return fmt.Errorf("blowfish decrypt: %w", err)
	}
	for i := offset; i < offset+size; i += constants.BlowfishBlockSize {
		b.cipher.Decrypt(data[i:i+constants.BlowfishBlockSize], data[i:i+constants.BlowfishBlockSize])
	}
	return nil
}

func checkBlocks(data []byte, offset, size int) error {
	if size%constants.BlowfishBlockSize != 0 {
		return fmt.Errorf("size %d is not a multiple of %d", size, constants.BlowfishBlockSize)
	}
	if offset < 0 || offset+size > len(data) {
		return fmt.Errorf("offset %d + size %d exceeds data length %d", offset, size, len(data))
	}
	return nil
}

// AppendChecksum writes a 32-bit XOR checksum of data[offset:offset+size-4]
// into the last 4 bytes of the range. size must be a multiple of 4.
func AppendChecksum(data []byte, offset, size int) {
	var checksum uint32
	for i := offset; i < offset+size-constants.PacketChecksumSize; i += 4 {
		checksum ^= binary.LittleEndian.Uint32(data[i:])
	}
	binary.LittleEndian.PutUint32(data[offset+size-constants.PacketChecksumSize:], checksum)
}

// VerifyChecksum verifies that XOR of all 32-bit words in the range equals zero.
func VerifyChecksum(data []byte, offset, size int) bool {
	if size%4 != 0 || size <= constants.PacketChecksumSize {
		return false
	}
	var checksum uint32
	for i := offset; i < offset+size; i += 4 {
		checksum ^= binary.LittleEndian.Uint32(data[i:])
	}
	return checksum == 0
}

// GenerateKey creates a fresh random session key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, constants.BlowfishKeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating blowfish key: %w", err)
	}
	return key, nil
}
