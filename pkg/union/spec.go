// Package union implements XDR discriminated unions ("enums") whose variants
// carry typed payloads.
//
// A union is described once by a Spec: an ordered list of variants, each
// with an optional explicit discriminant and a payload Shape. Resolve turns
// the Spec into a Resolved union, assigning every variant a unique uint32
// discriminant with the usual enum numbering rules:
//
//   - the first implicit variant is 0
//   - an explicit discriminant v resets the counter, the next implicit
//     variant gets v+1
//   - an implicit variant takes the counter and advances it by one
//
// The Resolved union then encodes and decodes Values on the wire as
//
//	[discriminant:uint32][field 0][field 1]...
//
// with every field written by its FieldType in declaration order.
//
// Resolved unions are immutable and safe for concurrent use. Each Encode or
// Decode call must use its own buffer or reader.
package union

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
)

// ============================================================================
// Field Types
// ============================================================================

// FieldType encodes and decodes a single payload field.
//
// The union package never looks inside a field; it only asks the FieldType
// to write a value or read one back. Implementations must honor XDR
// padding so that the whole stream stays 4-byte aligned.
type FieldType interface {
	// Name is a human-readable type name used in errors and listings.
	Name() string

	// Encode appends the XDR encoding of v to buf.
	Encode(buf *bytes.Buffer, v any) error

	// Decode reads one value from r.
	Decode(r io.Reader) (any, error)
}

// Field is a payload field. Name is empty for tuple fields.
type Field struct {
	Name string
	Type FieldType
}

// label returns the field name, or its position when unnamed.
func (f Field) label(index int) string {
	if f.Name != "" {
		return f.Name
	}
	return strconv.Itoa(index)
}

// ============================================================================
// Payload Shapes
// ============================================================================

// ShapeKind identifies a payload shape.
type ShapeKind int

const (
	KindUnit ShapeKind = iota
	KindTuple
	KindStruct
)

func (k ShapeKind) String() string {
	switch k {
	case KindUnit:
		return "unit"
	case KindTuple:
		return "tuple"
	case KindStruct:
		return "struct"
	default:
		return fmt.Sprintf("ShapeKind(%d)", int(k))
	}
}

// Shape is the payload of a variant. It is a closed set: Unit, Tuple and
// Struct are the only implementations.
type Shape interface {
	Kind() ShapeKind
	// Fields returns the payload fields in wire order.
	Fields() []Field
	sealed()
}

// Unit is a payload with no fields.
type Unit struct{}

func (Unit) Kind() ShapeKind { return KindUnit }
func (Unit) Fields() []Field { return nil }
func (Unit) sealed()         {}

// Tuple is a payload of positional fields.
type Tuple []FieldType

func (Tuple) Kind() ShapeKind { return KindTuple }

func (t Tuple) Fields() []Field {
	fields := make([]Field, len(t))
	for i, ft := range t {
		fields[i] = Field{Type: ft}
	}
	return fields
}

func (Tuple) sealed() {}

// Struct is a payload of named fields. Names only matter for diagnostics;
// the wire order is the declaration order.
type Struct []Field

func (Struct) Kind() ShapeKind  { return KindStruct }
func (s Struct) Fields() []Field { return append([]Field(nil), s...) }
func (Struct) sealed()          {}

// ============================================================================
// Discriminant Expressions
// ============================================================================

// Expr is an explicit discriminant. It must be evaluable without runtime
// state; an Evaluator turns it into an integer during resolution.
type Expr interface {
	String() string
}

// Literal is an integer literal discriminant.
type Literal int64

func (l Literal) String() string { return strconv.FormatInt(int64(l), 10) }

// ConstFunc is a named constant function, evaluated once during resolution.
// An error from Fn makes the discriminant unevaluable.
type ConstFunc struct {
	Label string
	Fn    func() (int64, error)
}

func (c ConstFunc) String() string {
	if c.Label != "" {
		return c.Label + "()"
	}
	return "func()"
}

// Expression is the source text of a constant expression such as
// "BASE + 1" or "1 << 4". The default evaluator cannot evaluate it; use
// the consteval package.
type Expression string

func (e Expression) String() string { return string(e) }

// ============================================================================
// Variants and Unions
// ============================================================================

// VariantSpec declares one variant of a union.
type VariantSpec struct {
	// Name is unique within the union.
	Name string

	// Discriminant is the explicit discriminant, or nil for an implicit one.
	Discriminant Expr

	// Payload is the variant's payload shape. Nil is treated as Unit.
	Payload Shape

	// DefaultArm marks the catch-all variant. It must carry exactly one
	// uint32 tuple field, which holds the discriminant on the wire.
	DefaultArm bool
}

// shape returns the payload shape, defaulting to Unit.
func (v VariantSpec) shape() Shape {
	if v.Payload == nil {
		return Unit{}
	}
	return v.Payload
}

// Spec describes a union in declaration order.
type Spec struct {
	Name     string
	Variants []VariantSpec
}

// Value is a live instance of a union: the variant name plus its payload
// fields in declaration order. Unit variants have no fields.
type Value struct {
	Variant string
	Fields  []any
}

// String renders the value for logs and CLI output.
func (v Value) String() string {
	if len(v.Fields) == 0 {
		return v.Variant
	}
	return fmt.Sprintf("%s%v", v.Variant, v.Fields)
}
