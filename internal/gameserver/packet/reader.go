package packet

import (
	"encoding/binary"
	"fmt"
	"math"
	"unicode/utf16"
)

// MaxStringLength ограничивает длину строки в UTF-16 code units (имя сущности).
const MaxStringLength = 64

// Reader provides methods for reading packet data.
// Uses Little-Endian byte order for all multi-byte values.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new packet reader.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, fmt.Errorf("ReadByte: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBool reads a byte and reports whether it is non-zero.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, fmt.Errorf("ReadBool: %w", err)
	}
	return b != 0, nil
}

// ReadInt reads an int32 (4 bytes, LE).
func (r *Reader) ReadInt() (int32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

// ReadUint32 reads a uint32 (4 bytes, LE). Object IDs and sequence numbers use it.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, fmt.Errorf("ReadUint32: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	val := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return val, nil
}

// ReadDouble reads a float64 (8 bytes, LE).
func (r *Reader) ReadDouble() (float64, error) {
	if r.pos+8 > len(r.data) {
		return 0, fmt.Errorf("ReadDouble: not enough data (pos=%d, len=%d)", r.pos, len(r.data))
	}
	bits := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

// ReadString reads a UTF-16LE null-terminated string of at most MaxStringLength units.
func (r *Reader) ReadString() (string, error) {
	units := make([]uint16, 0, 16)

	for {
		if r.pos+2 > len(r.data) {
			return "", fmt.Errorf("ReadString: unexpected end of data (pos=%d, len=%d)", r.pos, len(r.data))
		}

		u := binary.LittleEndian.Uint16(r.data[r.pos:])
		r.pos += 2

		if u == 0 {
			break
		}
		if len(units) == MaxStringLength {
			return "", fmt.Errorf("ReadString: string longer than %d units", MaxStringLength)
		}
		units = append(units, u)
	}

	return string(utf16.Decode(units)), nil
}

// ReadBytes reads n bytes (ZERO-COPY: returns subslice of internal data).
// Caller MUST NOT modify returned bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("ReadBytes: negative count %d", n)
	}
	if r.pos+n > len(r.data) {
		return nil, fmt.Errorf("ReadBytes: not enough data (pos=%d, need=%d, len=%d)", r.pos, n, len(r.data))
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// Position returns the current read position.
func (r *Reader) Position() int {
	return r.pos
}
