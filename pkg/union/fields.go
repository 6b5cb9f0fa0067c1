package union

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/algebnaly/xdr-brk-enum/pkg/xdr"
	"github.com/google/uuid"
	goxdr "github.com/rasky/go-xdr/xdr2"
)

// ============================================================================
// Built-in Field Types
//
// Encoders accept the canonical Go type and any lossless conversion to it
// (so values decoded from JSON, where every number is a float64, encode
// correctly). Decoders always return the canonical type listed below.
// ============================================================================

var (
	// Int32 is an XDR int. Canonical type: int32.
	Int32 FieldType = int32Type{}

	// Uint32 is an XDR unsigned int. Canonical type: uint32.
	Uint32 FieldType = uint32Type{}

	// Int64 is an XDR hyper. Canonical type: int64.
	Int64 FieldType = int64Type{}

	// Uint64 is an XDR unsigned hyper. Canonical type: uint64.
	Uint64 FieldType = uint64Type{}

	// Bool is an XDR bool. Canonical type: bool.
	Bool FieldType = boolType{}

	// Float32 is an XDR float. Canonical type: float32.
	Float32 FieldType = float32Type{}

	// Float64 is an XDR double. Canonical type: float64.
	Float64 FieldType = float64Type{}

	// String is an XDR string. Canonical type: string.
	String FieldType = stringType{}

	// Opaque is XDR variable-length opaque data. Canonical type: []byte.
	Opaque FieldType = opaqueType{}

	// UUID is a 16-byte fixed opaque. Canonical type: uuid.UUID.
	UUID FieldType = uuidType{}
)

type int32Type struct{}

func (int32Type) Name() string { return "int32" }

func (int32Type) Encode(buf *bytes.Buffer, v any) error {
	n, err := toInt64(v)
	if err != nil {
		return err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return fmt.Errorf("value %d overflows int32", n)
	}
	return xdr.WriteInt32(buf, int32(n))
}

func (int32Type) Decode(r io.Reader) (any, error) { return xdr.DecodeInt32(r) }

type uint32Type struct{}

func (uint32Type) Name() string { return "uint32" }

func (uint32Type) Encode(buf *bytes.Buffer, v any) error {
	n, err := toUint32(v)
	if err != nil {
		return err
	}
	return xdr.WriteUint32(buf, n)
}

func (uint32Type) Decode(r io.Reader) (any, error) { return xdr.DecodeUint32(r) }

type int64Type struct{}

func (int64Type) Name() string { return "int64" }

func (int64Type) Encode(buf *bytes.Buffer, v any) error {
	n, err := toInt64(v)
	if err != nil {
		return err
	}
	return xdr.WriteInt64(buf, n)
}

func (int64Type) Decode(r io.Reader) (any, error) { return xdr.DecodeInt64(r) }

type uint64Type struct{}

func (uint64Type) Name() string { return "uint64" }

func (uint64Type) Encode(buf *bytes.Buffer, v any) error {
	n, err := toUint64(v)
	if err != nil {
		return err
	}
	return xdr.WriteUint64(buf, n)
}

func (uint64Type) Decode(r io.Reader) (any, error) { return xdr.DecodeUint64(r) }

type boolType struct{}

func (boolType) Name() string { return "bool" }

func (boolType) Encode(buf *bytes.Buffer, v any) error {
	b, ok := v.(bool)
	if !ok {
		return typeError("bool", v)
	}
	return xdr.WriteBool(buf, b)
}

func (boolType) Decode(r io.Reader) (any, error) { return xdr.DecodeBool(r) }

type float32Type struct{}

func (float32Type) Name() string { return "float32" }

func (float32Type) Encode(buf *bytes.Buffer, v any) error {
	switch f := v.(type) {
	case float32:
		return xdr.WriteFloat32(buf, f)
	case float64:
		if float64(float32(f)) != f && !math.IsNaN(f) {
			return fmt.Errorf("value %g is not representable as float32", f)
		}
		return xdr.WriteFloat32(buf, float32(f))
	}
	n, err := toInt64(v)
	if err != nil {
		return typeError("float32", v)
	}
	if float64(float32(n)) != float64(n) {
		return fmt.Errorf("value %d is not representable as float32", n)
	}
	return xdr.WriteFloat32(buf, float32(n))
}

func (float32Type) Decode(r io.Reader) (any, error) { return xdr.DecodeFloat32(r) }

type float64Type struct{}

func (float64Type) Name() string { return "float64" }

func (float64Type) Encode(buf *bytes.Buffer, v any) error {
	switch f := v.(type) {
	case float64:
		return xdr.WriteFloat64(buf, f)
	case float32:
		return xdr.WriteFloat64(buf, float64(f))
	}
	n, err := toInt64(v)
	if err != nil {
		return typeError("float64", v)
	}
	return xdr.WriteFloat64(buf, float64(n))
}

func (float64Type) Decode(r io.Reader) (any, error) { return xdr.DecodeFloat64(r) }

type stringType struct{}

func (stringType) Name() string { return "string" }

func (stringType) Encode(buf *bytes.Buffer, v any) error {
	switch s := v.(type) {
	case string:
		return xdr.WriteXDRString(buf, s)
	case []byte:
		return xdr.WriteXDRString(buf, string(s))
	}
	return typeError("string", v)
}

func (stringType) Decode(r io.Reader) (any, error) { return xdr.DecodeString(r) }

type opaqueType struct{}

func (opaqueType) Name() string { return "opaque" }

func (opaqueType) Encode(buf *bytes.Buffer, v any) error {
	b, err := toBytes(v)
	if err != nil {
		return err
	}
	return xdr.WriteXDROpaque(buf, b)
}

func (opaqueType) Decode(r io.Reader) (any, error) { return xdr.DecodeOpaque(r) }

// FixedOpaque returns fixed-length opaque data of exactly size bytes.
// Canonical type: []byte.
func FixedOpaque(size uint32) FieldType {
	return fixedOpaqueType{size: size}
}

type fixedOpaqueType struct {
	size uint32
}

func (t fixedOpaqueType) Name() string { return fmt.Sprintf("opaque[%d]", t.size) }

func (t fixedOpaqueType) Encode(buf *bytes.Buffer, v any) error {
	b, err := toBytes(v)
	if err != nil {
		return err
	}
	return xdr.WriteFixedOpaque(buf, b, t.size)
}

func (t fixedOpaqueType) Decode(r io.Reader) (any, error) { return xdr.DecodeFixedOpaque(r, t.size) }

type uuidType struct{}

func (uuidType) Name() string { return "uuid" }

func (uuidType) Encode(buf *bytes.Buffer, v any) error {
	var id uuid.UUID
	switch u := v.(type) {
	case uuid.UUID:
		id = u
	case [16]byte:
		id = u
	case []byte:
		parsed, err := uuid.FromBytes(u)
		if err != nil {
			return fmt.Errorf("invalid uuid bytes: %w", err)
		}
		id = parsed
	case string:
		parsed, err := uuid.Parse(u)
		if err != nil {
			return fmt.Errorf("invalid uuid %q: %w", u, err)
		}
		id = parsed
	default:
		return typeError("uuid", v)
	}
	return xdr.WriteFixedOpaque(buf, id[:], 16)
}

func (uuidType) Decode(r io.Reader) (any, error) {
	b, err := xdr.DecodeFixedOpaque(r, 16)
	if err != nil {
		return nil, err
	}
	return uuid.FromBytes(b)
}

// ============================================================================
// Composite Field Types
// ============================================================================

// Optional returns XDR optional-data of elem (RFC 4506 Section 4.19): a
// bool presence flag followed by the value when present. A nil value is
// absent and decodes back to nil.
//
// elem must not itself be optional: a present-but-absent inner value would
// decode as absent. Resolve rejects such fields.
func Optional(elem FieldType) FieldType {
	return optionalType{elem: elem}
}

type optionalType struct {
	elem FieldType
}

func (t optionalType) Name() string { return t.elem.Name() + "?" }

func (t optionalType) Encode(buf *bytes.Buffer, v any) error {
	if v == nil {
		return xdr.WriteBool(buf, false)
	}
	if err := xdr.WriteBool(buf, true); err != nil {
		return err
	}
	return t.elem.Encode(buf, v)
}

func (t optionalType) Decode(r io.Reader) (any, error) {
	present, err := xdr.DecodeBool(r)
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	return t.elem.Decode(r)
}

// Array returns an XDR variable-length array of elem. Encoders accept any
// slice; decoders return []any.
func Array(elem FieldType) FieldType {
	return arrayType{elem: elem}
}

type arrayType struct {
	elem FieldType
}

func (t arrayType) Name() string { return t.elem.Name() + "[]" }

func (t arrayType) Encode(buf *bytes.Buffer, v any) error {
	if v == nil {
		return xdr.WriteUint32(buf, 0)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return typeError(t.Name(), v)
	}
	if uint64(rv.Len()) > xdr.MaxOpaqueLength {
		return fmt.Errorf("array length %d exceeds maximum %d", rv.Len(), xdr.MaxOpaqueLength)
	}
	if err := xdr.WriteUint32(buf, uint32(rv.Len())); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Encode(buf, rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (t arrayType) Decode(r io.Reader) (any, error) {
	n, err := xdr.DecodeUint32(r)
	if err != nil {
		return nil, err
	}
	if n > xdr.MaxOpaqueLength {
		return nil, fmt.Errorf("array length %d exceeds maximum %d", n, xdr.MaxOpaqueLength)
	}
	out := make([]any, 0, min(n, 1024))
	for i := uint32(0); i < n; i++ {
		elem, err := t.elem.Decode(r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, elem)
	}
	return out, nil
}

// Nested embeds another resolved union as a field. Canonical type: Value.
func Nested(r *Resolved) FieldType {
	return nestedType{union: r}
}

type nestedType struct {
	union *Resolved
}

func (t nestedType) Name() string { return t.union.Name() }

func (t nestedType) Encode(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case Value:
		return t.union.Encode(buf, val)
	case *Value:
		if val == nil {
			return typeError(t.Name(), v)
		}
		return t.union.Encode(buf, *val)
	}
	return typeError(t.Name(), v)
}

func (t nestedType) Decode(r io.Reader) (any, error) { return t.union.Decode(r) }

// Marshaled returns a field type that encodes a Go struct T with reflection
// based XDR marshaling: exported fields in declaration order, Go types
// mapped to their XDR counterparts. Encoders accept T or *T; decoders
// return T.
func Marshaled[T any]() FieldType {
	return marshaledType[T]{}
}

type marshaledType[T any] struct{}

func (marshaledType[T]) Name() string { return reflect.TypeFor[T]().String() }

func (t marshaledType[T]) Encode(buf *bytes.Buffer, v any) error {
	var ptr *T
	switch val := v.(type) {
	case T:
		ptr = &val
	case *T:
		if val == nil {
			return typeError(t.Name(), v)
		}
		ptr = val
	default:
		return typeError(t.Name(), v)
	}

	if enc, ok := any(ptr).(xdr.Encoder); ok {
		return enc.EncodeXDR(buf)
	}
	_, err := goxdr.Marshal(buf, ptr)
	return err
}

func (marshaledType[T]) Decode(r io.Reader) (any, error) {
	var out T
	if dec, ok := any(&out).(xdr.Decoder); ok {
		if err := dec.DecodeXDR(r); err != nil {
			return nil, err
		}
		return out, nil
	}
	if _, err := goxdr.Unmarshal(r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ============================================================================
// Type Inspection
// ============================================================================

// IsOpaque reports whether t is variable-length or fixed-length opaque
// data.
func IsOpaque(t FieldType) bool {
	switch t.(type) {
	case opaqueType, fixedOpaqueType:
		return true
	}
	return false
}

// IsOptional reports whether t was built with Optional.
func IsOptional(t FieldType) bool {
	_, ok := t.(optionalType)
	return ok
}

// Elem returns the element type of an Optional or Array field type.
func Elem(t FieldType) (FieldType, bool) {
	switch x := t.(type) {
	case optionalType:
		return x.elem, true
	case arrayType:
		return x.elem, true
	}
	return nil, false
}

// NestedUnion returns the union embedded by a Nested field type.
func NestedUnion(t FieldType) (*Resolved, bool) {
	if x, ok := t.(nestedType); ok {
		return x.union, true
	}
	return nil, false
}

// nestedOptional reports whether t holds an optional directly inside
// another optional, anywhere in its element chain.
func nestedOptional(t FieldType) bool {
	elem, ok := Elem(t)
	if !ok {
		return false
	}
	if IsOptional(t) && IsOptional(elem) {
		return true
	}
	return nestedOptional(elem)
}

// ============================================================================
// Conversion Helpers
// ============================================================================

func typeError(want string, v any) error {
	return fmt.Errorf("cannot encode %T as %s", v, want)
}

func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	}
	return nil, typeError("opaque", v)
}

// toInt64 converts any integer kind, or an integral float, to int64.
func toInt64(v any) (int64, error) {
	if n, ok := v.(json.Number); ok {
		return n.Int64()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, fmt.Errorf("value %d overflows int64", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return 0, fmt.Errorf("value %g is not an integer", f)
		}
		return int64(f), nil
	}
	return 0, typeError("integer", v)
}

// toUint64 converts any non-negative integer kind, or an integral float,
// to uint64.
func toUint64(v any) (uint64, error) {
	if n, ok := v.(json.Number); ok {
		return strconv.ParseUint(n.String(), 10, 64)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		if i < 0 {
			return 0, fmt.Errorf("value %d is negative", i)
		}
		return uint64(i), nil
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return 0, fmt.Errorf("value %g is not an unsigned integer", f)
		}
		return uint64(f), nil
	}
	return 0, typeError("unsigned integer", v)
}

func toUint32(v any) (uint32, error) {
	n, err := toUint64(v)
	if err != nil {
		return 0, err
	}
	if n > math.MaxUint32 {
		return 0, fmt.Errorf("value %d overflows uint32", n)
	}
	return uint32(n), nil
}
