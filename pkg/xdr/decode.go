package xdr

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// ============================================================================
// XDR Decoding Helpers - Wire Format → Go Types
// ============================================================================

// DecodeOpaque decodes XDR variable-length opaque data.
//
// Per RFC 4506 Section 4.10 (Variable-Length Opaque Data):
// Format: [length:uint32][data:length bytes][padding:0-3 bytes]
//
// Lengths above MaxOpaqueLength are rejected before any allocation.
// Read errors wrap the underlying io error, so callers can test for
// io.ErrUnexpectedEOF with errors.Is.
func DecodeOpaque(reader io.Reader) ([]byte, error) {
	var length uint32
	if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}

	if length > MaxOpaqueLength {
		return nil, fmt.Errorf("opaque length %d exceeds maximum %d", length, MaxOpaqueLength)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}

	if err := skipPadding(reader, length); err != nil {
		return nil, err
	}

	return data, nil
}

// DecodeFixedOpaque decodes exactly size bytes of fixed-length opaque data
// and skips its padding.
//
// Per RFC 4506 Section 4.9 (Fixed-Length Opaque Data).
func DecodeFixedOpaque(reader io.Reader, size uint32) ([]byte, error) {
	if size > MaxOpaqueLength {
		return nil, fmt.Errorf("fixed opaque size %d exceeds maximum %d", size, MaxOpaqueLength)
	}
	data := make([]byte, size)
	if _, err := io.ReadFull(reader, data); err != nil {
		return nil, fmt.Errorf("read fixed opaque: %w", err)
	}
	if err := skipPadding(reader, size); err != nil {
		return nil, err
	}
	return data, nil
}

// skipPadding consumes the 0-3 alignment bytes that follow length bytes of
// data. XDR padding is at most 3 bytes, so a stack buffer is enough.
func skipPadding(reader io.Reader, length uint32) error {
	padding := Pad(length)
	if padding == 0 {
		return nil
	}
	var padBuf [3]byte
	if _, err := io.ReadFull(reader, padBuf[:padding]); err != nil {
		return fmt.Errorf("skip padding: %w", err)
	}
	return nil
}

// DecodeString decodes an XDR variable-length string.
//
// Per RFC 4506 Section 4.11 (String):
// Strings use the same encoding as opaque data.
func DecodeString(reader io.Reader) (string, error) {
	data, err := DecodeOpaque(reader)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeUint32 decodes a 32-bit unsigned integer.
func DecodeUint32(reader io.Reader) (uint32, error) {
	var v uint32
	if err := binary.Read(reader, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint32: %w", err)
	}
	return v, nil
}

// DecodeUint64 decodes a 64-bit unsigned integer.
func DecodeUint64(reader io.Reader) (uint64, error) {
	var v uint64
	if err := binary.Read(reader, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read uint64: %w", err)
	}
	return v, nil
}

// DecodeInt32 decodes a 32-bit signed integer.
func DecodeInt32(reader io.Reader) (int32, error) {
	var v int32
	if err := binary.Read(reader, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read int32: %w", err)
	}
	return v, nil
}

// DecodeInt64 decodes a 64-bit signed integer.
func DecodeInt64(reader io.Reader) (int64, error) {
	var v int64
	if err := binary.Read(reader, binary.BigEndian, &v); err != nil {
		return 0, fmt.Errorf("read int64: %w", err)
	}
	return v, nil
}

// DecodeFloat32 decodes an IEEE 754 single-precision float.
func DecodeFloat32(reader io.Reader) (float32, error) {
	bits, err := DecodeUint32(reader)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// DecodeFloat64 decodes an IEEE 754 double-precision float.
func DecodeFloat64(reader io.Reader) (float64, error) {
	bits, err := DecodeUint64(reader)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

// DecodeBool decodes an XDR boolean.
//
// Per RFC 4506 Section 4.4 (Boolean) only 0 and 1 are valid; any other
// value is rejected rather than coerced so that re-encoding is lossless.
func DecodeBool(reader io.Reader) (bool, error) {
	v, err := DecodeUint32(reader)
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, fmt.Errorf("invalid boolean value %d", v)
	}
}
