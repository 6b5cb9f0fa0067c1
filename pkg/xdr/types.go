// Package xdr provides the primitive XDR (External Data Representation)
// field codec per RFC 4506.
//
// The union package builds discriminated-union encoders on top of these
// helpers; they are also exported so that custom field types can write and
// read their own wire format with the same padding and bounds rules.
//
// Key characteristics of XDR:
//   - Big-endian byte order for all multi-byte integers
//   - 4-byte alignment for all data types
//   - Variable-length data is preceded by a 4-byte length
//   - Strings and opaque data are padded to 4-byte boundaries
//
// Reference: RFC 4506 - XDR: External Data Representation Standard
// https://tools.ietf.org/html/rfc4506
package xdr

import (
	"bytes"
	"io"
)

// MaxOpaqueLength bounds variable-length opaque data, strings and arrays on
// decode so that a hostile length prefix cannot force a huge allocation.
const MaxOpaqueLength = 1024 * 1024 // 1 MiB

// Encoder is implemented by types that can encode themselves to XDR format.
type Encoder interface {
	EncodeXDR(buf *bytes.Buffer) error
}

// Decoder is implemented by types that can decode themselves from XDR format.
type Decoder interface {
	DecodeXDR(r io.Reader) error
}

// Pad returns the number of zero bytes that follow n bytes of variable-length
// data: (4 - (n % 4)) % 4.
func Pad(n uint32) uint32 {
	return (4 - (n % 4)) % 4
}
