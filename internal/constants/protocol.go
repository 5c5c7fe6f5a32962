package constants

// Wire protocol constants shared by the authority server and proxies.

// ProtocolRevision is sent in KeyPacket; a proxy refuses to talk to a different revision.
const ProtocolRevision = 0x0001

// Blowfish Cipher Constants
const (
	// BlowfishKeySize is the per-connection session key size in bytes (128-bit)
	BlowfishKeySize = 16

	// BlowfishBlockSize is the Blowfish block size in bytes (64-bit)
	BlowfishBlockSize = 8
)

// Packet Structure Constants
//
// Frame layout:
//
//	[length uint16 LE, includes header][payload]
//
// After KeyPacket the payload is encrypted: opcode + body, XOR checksum
// appended, zero-padded to PacketPaddingAlign, Blowfish-ECB.
const (
	// PacketHeaderSize is the packet length header size (2 bytes, little-endian uint16)
	PacketHeaderSize = 2

	// PacketChecksumSize is the XOR checksum size in bytes (32-bit)
	PacketChecksumSize = 4

	// PacketPaddingAlign is the padding alignment for encrypted packets (Blowfish requires 8-byte blocks)
	PacketPaddingAlign = 8

	// PacketBufferPadding is the extra buffer space for checksum and padding
	PacketBufferPadding = 16

	// MaxPacketSize is the largest frame the uint16 header can describe
	MaxPacketSize = 0xFFFF
)

// Buffer Pool Size Constants
const (
	// DefaultSendBufSize is the default encode buffer size for outgoing packets
	DefaultSendBufSize = 512

	// DefaultReadBufSize is the default read buffer size for incoming packets
	DefaultReadBufSize = 1024

	// WriteBufSize is the pooled buffer size for encrypted outgoing frames
	WriteBufSize = DefaultSendBufSize + PacketHeaderSize + PacketBufferPadding
)
