package xdr

import (
	"bytes"
	"encoding/binary"
	"io"
)

// DiscriminantSize is the wire size of a union discriminant.
const DiscriminantSize = 4

// EncodeUnionDiscriminant writes the uint32 discriminant of an XDR union.
//
// Per RFC 4506 Section 4.15 (Discriminated Unions):
// The discriminant is always encoded as a uint32 before the union arm data.
func EncodeUnionDiscriminant(buf *bytes.Buffer, disc uint32) error {
	return WriteUint32(buf, disc)
}

// DecodeUnionDiscriminant reads the uint32 discriminant of an XDR union.
//
// Exactly DiscriminantSize bytes are consumed on success. A short read
// returns io.ErrUnexpectedEOF (or io.EOF when nothing at all was available),
// never a partially assembled value.
func DecodeUnionDiscriminant(r io.Reader) (uint32, error) {
	var b [DiscriminantSize]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
