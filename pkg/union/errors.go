package union

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents the type of error that occurred.
type ErrorCode int

const (
	// ErrUnevaluableDiscriminant indicates an explicit discriminant could not
	// be evaluated as a constant.
	ErrUnevaluableDiscriminant ErrorCode = iota + 1

	// ErrDiscriminantOverflow indicates a discriminant outside [0, 2^32-1].
	ErrDiscriminantOverflow

	// ErrDuplicateDiscriminant indicates two variants resolved to the same
	// discriminant.
	ErrDuplicateDiscriminant

	// ErrInvalidDefinition indicates a malformed union definition: empty or
	// duplicate variant names, nil field types, or a bad default arm.
	ErrInvalidDefinition

	// ErrUnexpectedEOF indicates the input ended inside the discriminant.
	ErrUnexpectedEOF

	// ErrUnknownDiscriminant indicates a decoded discriminant that maps to
	// no variant.
	ErrUnknownDiscriminant

	// ErrUnknownVariant indicates a value naming a variant the union lacks.
	ErrUnknownVariant

	// ErrInvalidValue indicates a value whose payload does not match its
	// variant's shape.
	ErrInvalidValue

	// ErrFieldEncode indicates a field codec failed while encoding.
	ErrFieldEncode

	// ErrFieldDecode indicates a field codec failed while decoding.
	ErrFieldDecode

	// ErrTrailingData indicates bytes left over after a complete value.
	ErrTrailingData
)

// String returns a human-readable name for the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrUnevaluableDiscriminant:
		return "UnevaluableDiscriminant"
	case ErrDiscriminantOverflow:
		return "DiscriminantOverflow"
	case ErrDuplicateDiscriminant:
		return "DuplicateDiscriminant"
	case ErrInvalidDefinition:
		return "InvalidDefinition"
	case ErrUnexpectedEOF:
		return "UnexpectedEof"
	case ErrUnknownDiscriminant:
		return "UnknownDiscriminant"
	case ErrUnknownVariant:
		return "UnknownVariant"
	case ErrInvalidValue:
		return "InvalidValue"
	case ErrFieldEncode:
		return "FieldEncode"
	case ErrFieldDecode:
		return "FieldDecode"
	case ErrTrailingData:
		return "TrailingData"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// IsDefinition reports whether the code is raised while resolving a union
// definition, as opposed to while encoding or decoding a value.
func (c ErrorCode) IsDefinition() bool {
	switch c {
	case ErrUnevaluableDiscriminant, ErrDiscriminantOverflow,
		ErrDuplicateDiscriminant, ErrInvalidDefinition:
		return true
	}
	return false
}

// Error is returned by every operation in this package.
type Error struct {
	Code ErrorCode

	// Union is the union name.
	Union string

	// Variant is the offending variant, when known.
	Variant string

	// Other is the variant that already held Value, for duplicates.
	Other string

	// Field is the field name or position, for field errors.
	Field string

	// Value is the discriminant involved, when meaningful.
	Value int64

	// Message adds detail not captured by the other fields.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Code.String())
	if e.Union != "" {
		fmt.Fprintf(&b, " in union %s", e.Union)
	}

	switch e.Code {
	case ErrDuplicateDiscriminant:
		fmt.Fprintf(&b, ": variants %s and %s both resolve to %d", e.Other, e.Variant, e.Value)
	case ErrDiscriminantOverflow:
		fmt.Fprintf(&b, ": variant %s discriminant %d does not fit in 32 bits", e.Variant, e.Value)
	case ErrUnknownDiscriminant:
		fmt.Fprintf(&b, ": %d", e.Value)
	default:
		if e.Variant != "" {
			fmt.Fprintf(&b, ": variant %s", e.Variant)
		}
		if e.Field != "" {
			fmt.Fprintf(&b, " field %s", e.Field)
		}
	}

	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsCode reports whether err, or any error it wraps, is an *Error with the
// given code.
func IsCode(err error, code ErrorCode) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Code == code
}

// CodeOf returns the code of the first *Error in err's chain, or zero.
func CodeOf(err error) ErrorCode {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Code
	}
	return 0
}

// codeLabel returns the code name for metrics labels, empty for nil.
func codeLabel(err error) string {
	if err == nil {
		return ""
	}
	if code := CodeOf(err); code != 0 {
		return code.String()
	}
	return "Other"
}
