package union

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/algebnaly/xdr-brk-enum/pkg/xdr"
)

// ============================================================================
// Encoding
// ============================================================================

// Encode appends the XDR encoding of v to buf: the variant's discriminant
// followed by its payload fields in declaration order.
//
// Encoding is all-or-nothing. The value is assembled in a scratch buffer
// and buf is only touched once every field has been written, so a failed
// call never leaves a truncated union behind.
func (r *Resolved) Encode(buf *bytes.Buffer, v Value) error {
	var scratch bytes.Buffer
	err := r.encode(&scratch, v)
	if r.metrics != nil {
		// Unknown names stay out of the variant label.
		variant := ""
		if _, ok := r.byName[v.Variant]; ok {
			variant = v.Variant
		}
		r.metrics.RecordEncode(r.name, variant, scratch.Len(), codeLabel(err))
	}
	if err != nil {
		return err
	}

	_, _ = buf.Write(scratch.Bytes())
	return nil
}

// Marshal returns the XDR encoding of v.
func (r *Resolved) Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Resolved) encode(w *bytes.Buffer, v Value) error {
	i, ok := r.byName[v.Variant]
	if !ok {
		return &Error{Code: ErrUnknownVariant, Union: r.name, Variant: v.Variant}
	}
	rv := r.variants[i]

	if len(v.Fields) != len(rv.fields) {
		return &Error{
			Code:    ErrInvalidValue,
			Union:   r.name,
			Variant: rv.Name,
			Message: fmt.Sprintf("got %d fields, want %d", len(v.Fields), len(rv.fields)),
		}
	}

	if rv.DefaultArm {
		return r.encodeDefaultArm(w, rv, v.Fields[0])
	}

	if err := xdr.EncodeUnionDiscriminant(w, rv.Discriminant); err != nil {
		return &Error{Code: ErrFieldEncode, Union: r.name, Variant: rv.Name, Field: "discriminant", Err: err}
	}

	for idx, f := range rv.fields {
		if err := f.Type.Encode(w, v.Fields[idx]); err != nil {
			return &Error{
				Code:    ErrFieldEncode,
				Union:   r.name,
				Variant: rv.Name,
				Field:   f.label(idx),
				Err:     err,
			}
		}
	}
	return nil
}

// encodeDefaultArm writes the carried discriminant with no payload. The
// value may not collide with a named variant, otherwise it would decode as
// that variant.
func (r *Resolved) encodeDefaultArm(w *bytes.Buffer, rv ResolvedVariant, field any) error {
	d, err := toUint32(field)
	if err != nil {
		return &Error{Code: ErrFieldEncode, Union: r.name, Variant: rv.Name, Field: "0", Err: err}
	}
	if j, taken := r.byDisc[d]; taken {
		return &Error{
			Code:    ErrInvalidValue,
			Union:   r.name,
			Variant: rv.Name,
			Value:   int64(d),
			Message: fmt.Sprintf("discriminant %d belongs to variant %s", d, r.variants[j].Name),
		}
	}
	if err := xdr.EncodeUnionDiscriminant(w, d); err != nil {
		return &Error{Code: ErrFieldEncode, Union: r.name, Variant: rv.Name, Field: "discriminant", Err: err}
	}
	return nil
}

// ============================================================================
// Decoding
// ============================================================================

// Decode reads one union value from rd.
//
// The discriminant is read first. A short read fails with ErrUnexpectedEOF;
// a discriminant with no variant fails with ErrUnknownDiscriminant after
// consuming exactly those four bytes, unless the union has a default arm.
// Payload fields are then read in declaration order. Field errors are
// wrapped in ErrFieldDecode with the variant and field for context.
//
// On error the zero Value is returned; no partially decoded value escapes.
// The reader's position after an error is unspecified and it should be
// discarded.
func (r *Resolved) Decode(rd io.Reader) (Value, error) {
	cr := &countingReader{r: rd}
	v, err := r.decode(cr)
	if r.metrics != nil {
		r.metrics.RecordDecode(r.name, v.Variant, cr.n, codeLabel(err))
	}
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// Unmarshal decodes exactly one value from data. Bytes left over after the
// value are reported as ErrTrailingData.
func (r *Resolved) Unmarshal(data []byte) (Value, error) {
	rd := bytes.NewReader(data)
	v, err := r.Decode(rd)
	if err != nil {
		return Value{}, err
	}
	if rd.Len() > 0 {
		return Value{}, &Error{
			Code:    ErrTrailingData,
			Union:   r.name,
			Variant: v.Variant,
			Message: fmt.Sprintf("%d unread bytes", rd.Len()),
		}
	}
	return v, nil
}

func (r *Resolved) decode(rd io.Reader) (Value, error) {
	d, err := xdr.DecodeUnionDiscriminant(rd)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Value{}, &Error{Code: ErrUnexpectedEOF, Union: r.name, Message: "reading discriminant", Err: err}
		}
		return Value{}, &Error{Code: ErrFieldDecode, Union: r.name, Field: "discriminant", Err: err}
	}

	i, ok := r.byDisc[d]
	if !ok {
		if r.defaultArm >= 0 {
			return Value{Variant: r.variants[r.defaultArm].Name, Fields: []any{d}}, nil
		}
		return Value{}, &Error{Code: ErrUnknownDiscriminant, Union: r.name, Value: int64(d)}
	}

	rv := r.variants[i]
	if len(rv.fields) == 0 {
		return Value{Variant: rv.Name}, nil
	}

	fields := make([]any, len(rv.fields))
	for idx, f := range rv.fields {
		fv, err := f.Type.Decode(rd)
		if err != nil {
			return Value{}, &Error{
				Code:    ErrFieldDecode,
				Union:   r.name,
				Variant: rv.Name,
				Field:   f.label(idx),
				Err:     err,
			}
		}
		fields[idx] = fv
	}
	return Value{Variant: rv.Name, Fields: fields}, nil
}

// countingReader counts consumed bytes for metrics.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

// ============================================================================
// Value Helpers
// ============================================================================

// NewValue builds a Value for a unit or struct variant from named fields,
// placing them in declaration order. Tuple variants take positional fields
// and must be built directly.
func (r *Resolved) NewValue(variant string, fields map[string]any) (Value, error) {
	rv, ok := r.Variant(variant)
	if !ok {
		return Value{}, &Error{Code: ErrUnknownVariant, Union: r.name, Variant: variant}
	}

	switch rv.Payload.Kind() {
	case KindUnit:
		if len(fields) > 0 {
			return Value{}, &Error{Code: ErrInvalidValue, Union: r.name, Variant: variant, Message: "unit variant takes no fields"}
		}
		return Value{Variant: variant}, nil
	case KindTuple:
		return Value{}, &Error{Code: ErrInvalidValue, Union: r.name, Variant: variant, Message: "tuple variant takes positional fields"}
	}

	out := make([]any, len(rv.fields))
	for i, f := range rv.fields {
		fv, ok := fields[f.Name]
		if !ok {
			return Value{}, &Error{Code: ErrInvalidValue, Union: r.name, Variant: variant, Field: f.Name, Message: "missing field"}
		}
		out[i] = fv
	}
	if len(fields) != len(rv.fields) {
		for name := range fields {
			if !hasField(rv.fields, name) {
				return Value{}, &Error{Code: ErrInvalidValue, Union: r.name, Variant: variant, Field: name, Message: "unknown field"}
			}
		}
	}
	return Value{Variant: variant, Fields: out}, nil
}

// FieldValue returns the named field of a struct variant value.
func (r *Resolved) FieldValue(v Value, name string) (any, bool) {
	rv, ok := r.Variant(v.Variant)
	if !ok || len(v.Fields) != len(rv.fields) {
		return nil, false
	}
	for i, f := range rv.fields {
		if f.Name == name {
			return v.Fields[i], true
		}
	}
	return nil, false
}

func hasField(fields []Field, name string) bool {
	for _, f := range fields {
		if f.Name == name {
			return true
		}
	}
	return false
}
