package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
)

// ============================================================================
// XDR Encoding Helpers - Go Types → Wire Format
// ============================================================================

// WriteXDROpaque encodes variable-length opaque data: length + data + padding.
//
// Per RFC 4506 Section 4.10 (Variable-Length Opaque Data):
// Format: [length:uint32][data:bytes][padding:bytes]
//
// Example:
//
//	[]byte{0x01, 0x02, 0x03} → [00 00 00 03][01 02 03][00] (8 bytes total)
func WriteXDROpaque(buf *bytes.Buffer, data []byte) error {
	if uint64(len(data)) > math.MaxUint32 {
		return fmt.Errorf("write opaque: length %d exceeds uint32", len(data))
	}
	length := uint32(len(data))
	if err := binary.Write(buf, binary.BigEndian, length); err != nil {
		return fmt.Errorf("write opaque length: %w", err)
	}

	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write opaque data: %w", err)
	}

	return WriteXDRPadding(buf, length)
}

// WriteXDRString encodes a string: length + data + padding.
//
// Per RFC 4506 Section 4.11 (String), the layout is identical to
// variable-length opaque data.
//
// Example:
//
//	"hi" (2 bytes)   → [00 00 00 02][68 69][00 00] (8 bytes total)
//	"test" (4 bytes) → [00 00 00 04][74 65 73 74] (8 bytes total)
func WriteXDRString(buf *bytes.Buffer, s string) error {
	if uint64(len(s)) > math.MaxUint32 {
		return fmt.Errorf("write string: length %d exceeds uint32", len(s))
	}
	length := uint32(len(s))
	if err := binary.Write(buf, binary.BigEndian, length); err != nil {
		return fmt.Errorf("write string length: %w", err)
	}

	if _, err := buf.WriteString(s); err != nil {
		return fmt.Errorf("write string data: %w", err)
	}

	return WriteXDRPadding(buf, length)
}

// WriteFixedOpaque encodes fixed-length opaque data of exactly size bytes
// followed by padding. No length prefix is written.
//
// Per RFC 4506 Section 4.9 (Fixed-Length Opaque Data).
func WriteFixedOpaque(buf *bytes.Buffer, data []byte, size uint32) error {
	if uint32(len(data)) != size {
		return fmt.Errorf("write fixed opaque: got %d bytes, want %d", len(data), size)
	}
	if _, err := buf.Write(data); err != nil {
		return fmt.Errorf("write fixed opaque: %w", err)
	}
	return WriteXDRPadding(buf, size)
}

// WriteXDRPadding writes the zero bytes that align dataLen bytes of
// variable-length data to a 4-byte boundary.
//
// Example:
//
//	dataLen=3 → writes 1 padding byte
//	dataLen=4 → writes 0 padding bytes
//	dataLen=5 → writes 3 padding bytes
func WriteXDRPadding(buf *bytes.Buffer, dataLen uint32) error {
	if padding := Pad(dataLen); padding > 0 {
		var pad [3]byte
		if _, err := buf.Write(pad[:padding]); err != nil {
			return fmt.Errorf("write padding: %w", err)
		}
	}
	return nil
}

// WriteUint32 encodes a 32-bit unsigned integer in big-endian byte order.
//
// Per RFC 4506 Section 4.2 (Unsigned Integer).
func WriteUint32(buf *bytes.Buffer, v uint32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint32: %w", err)
	}
	return nil
}

// WriteUint64 encodes a 64-bit unsigned integer in big-endian byte order.
//
// Per RFC 4506 Section 4.5 (Unsigned Hyper Integer).
func WriteUint64(buf *bytes.Buffer, v uint64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write uint64: %w", err)
	}
	return nil
}

// WriteInt32 encodes a 32-bit signed integer in two's complement,
// big-endian byte order.
//
// Per RFC 4506 Section 4.1 (Integer).
func WriteInt32(buf *bytes.Buffer, v int32) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write int32: %w", err)
	}
	return nil
}

// WriteInt64 encodes a 64-bit signed integer in two's complement,
// big-endian byte order.
//
// Per RFC 4506 Section 4.5 (Hyper Integer).
func WriteInt64(buf *bytes.Buffer, v int64) error {
	if err := binary.Write(buf, binary.BigEndian, v); err != nil {
		return fmt.Errorf("write int64: %w", err)
	}
	return nil
}

// WriteFloat32 encodes an IEEE 754 single-precision float.
//
// Per RFC 4506 Section 4.6 (Floating-Point).
func WriteFloat32(buf *bytes.Buffer, v float32) error {
	return WriteUint32(buf, math.Float32bits(v))
}

// WriteFloat64 encodes an IEEE 754 double-precision float.
//
// Per RFC 4506 Section 4.7 (Double-Precision Floating-Point).
func WriteFloat64(buf *bytes.Buffer, v float64) error {
	return WriteUint64(buf, math.Float64bits(v))
}

// WriteBool encodes a boolean as a uint32 where 0 = false and 1 = true.
//
// Per RFC 4506 Section 4.4 (Boolean).
func WriteBool(buf *bytes.Buffer, v bool) error {
	var val uint32
	if v {
		val = 1
	}
	return WriteUint32(buf, val)
}
