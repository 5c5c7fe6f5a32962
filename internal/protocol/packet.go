package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/udisondev/healthsync/internal/constants"
	"github.com/udisondev/healthsync/internal/crypto"
)

// ErrChecksum is returned by ReadPacket when a frame fails checksum verification.
var ErrChecksum = errors.New("packet checksum verification failed")

// EncryptInPlace encrypts the payload at buf[PacketHeaderSize : PacketHeaderSize+payloadLen]
// and writes the length header. Returns the total frame size (header included).
// buf must have room for header + payload + constants.PacketBufferPadding.
func EncryptInPlace(enc *crypto.FrameCipher, buf []byte, payloadLen int) (int, error) {
	needed := constants.PacketHeaderSize + crypto.EncryptedSize(payloadLen)
	if len(buf) < needed {
		return 0, fmt.Errorf("encrypt packet: buffer too small (need %d, have %d)", needed, len(buf))
	}
	if needed > constants.MaxPacketSize {
		return 0, fmt.Errorf("encrypt packet: frame size %d exceeds %d", needed, constants.MaxPacketSize)
	}

	encSize, err := enc.EncryptPacket(buf, constants.PacketHeaderSize, payloadLen)
	if err != nil {
		return 0, fmt.Errorf("encrypting packet: %w", err)
	}

	totalLen := constants.PacketHeaderSize + encSize
	binary.LittleEndian.PutUint16(buf[:constants.PacketHeaderSize], uint16(totalLen))
	return totalLen, nil
}

// WritePacket encrypts payload in-place and writes the frame to w.
// Precondition: payload lives at buf[constants.PacketHeaderSize : constants.PacketHeaderSize+payloadLen].
func WritePacket(w io.Writer, enc *crypto.FrameCipher, buf []byte, payloadLen int) error {
	totalLen, err := EncryptInPlace(enc, buf, payloadLen)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf[:totalLen]); err != nil {
		return fmt.Errorf("writing packet: %w", err)
	}
	return nil
}

// ReadPacket reads one encrypted frame from r into buf.
// Returns a subslice of buf with the decrypted payload (without the length
// header; checksum and padding are still at the end).
func ReadPacket(r io.Reader, enc *crypto.FrameCipher, buf []byte) ([]byte, error) {
	payload, err := readFrame(r, buf)
	if err != nil {
		return nil, err
	}

	ok, err := enc.DecryptPacket(payload, 0, len(payload))
	if err != nil {
		return nil, fmt.Errorf("decrypting packet: %w", err)
	}
	if !ok {
		return nil, ErrChecksum
	}
	return payload, nil
}

// WritePlain writes an unencrypted frame. Only KeyPacket travels this way.
func WritePlain(w io.Writer, payload []byte) error {
	totalLen := constants.PacketHeaderSize + len(payload)
	if totalLen > constants.MaxPacketSize {
		return fmt.Errorf("write plain packet: frame size %d exceeds %d", totalLen, constants.MaxPacketSize)
	}

	frame := make([]byte, totalLen)
	binary.LittleEndian.PutUint16(frame, uint16(totalLen))
	copy(frame[constants.PacketHeaderSize:], payload)

	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("writing plain packet: %w", err)
	}
	return nil
}

// ReadPlain reads one unencrypted frame from r into buf.
func ReadPlain(r io.Reader, buf []byte) ([]byte, error) {
	return readFrame(r, buf)
}

func readFrame(r io.Reader, buf []byte) ([]byte, error) {
	var header [constants.PacketHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("reading packet header: %w", err)
	}

	totalLen := int(binary.LittleEndian.Uint16(header[:]))
	if totalLen < constants.PacketHeaderSize {
		return nil, fmt.Errorf("invalid packet length: %d", totalLen)
	}

	payloadLen := totalLen - constants.PacketHeaderSize
	if payloadLen == 0 {
		return nil, fmt.Errorf("empty packet")
	}
	if payloadLen > len(buf) {
		return nil, fmt.Errorf("packet payload %d exceeds buffer size %d", payloadLen, len(buf))
	}

	payload := buf[:payloadLen]
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("reading packet payload: %w", err)
	}
	return payload, nil
}
