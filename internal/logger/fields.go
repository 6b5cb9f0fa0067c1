package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so that output can
// be filtered by union or variant.
const (
	// ========================================================================
	// Union Definitions
	// ========================================================================
	KeyUnion        = "union"        // Union name
	KeyVariant      = "variant"      // Variant name
	KeyVariants     = "variants"     // Number of variants in a union
	KeyDiscriminant = "discriminant" // Resolved or decoded discriminant
	KeyField        = "field"        // Payload field name or position
	KeyConstant     = "constant"     // Named constant used in a discriminant

	// ========================================================================
	// Codec Operations
	// ========================================================================
	KeyOperation = "operation" // resolve, encode, decode
	KeyBytes     = "bytes"     // Number of bytes written or consumed
	KeyHex       = "hex"       // Hex dump of a (short) buffer
	KeySource    = "source"    // Input source: argument, stdin, file

	// ========================================================================
	// Configuration
	// ========================================================================
	KeyConfigPath = "config_path" // Configuration file path

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Error code name
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// Union returns a slog.Attr for a union name
func Union(name string) slog.Attr {
	return slog.String(KeyUnion, name)
}

// Variant returns a slog.Attr for a variant name
func Variant(name string) slog.Attr {
	return slog.String(KeyVariant, name)
}

// Variants returns a slog.Attr for the number of variants in a union
func Variants(n int) slog.Attr {
	return slog.Int(KeyVariants, n)
}

// Constant returns a slog.Attr for a named constant
func Constant(name string) slog.Attr {
	return slog.String(KeyConstant, name)
}

// Discriminant returns a slog.Attr for a discriminant value
func Discriminant(d uint32) slog.Attr {
	return slog.Uint64(KeyDiscriminant, uint64(d))
}

// Field returns a slog.Attr for a payload field name or position
func Field(name string) slog.Attr {
	return slog.String(KeyField, name)
}

// Bytes returns a slog.Attr for a byte count
func Bytes(n int) slog.Attr {
	return slog.Int(KeyBytes, n)
}

// Hex returns a slog.Attr with data formatted as hex, truncated to 64 bytes
func Hex(data []byte) slog.Attr {
	const limit = 64
	if len(data) > limit {
		return slog.String(KeyHex, fmt.Sprintf("%x...", data[:limit]))
	}
	return slog.String(KeyHex, fmt.Sprintf("%x", data))
}

// Err returns a slog.Attr for an error. A nil error yields an empty attr,
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for an error code name
func ErrorCode(code string) slog.Attr {
	return slog.String(KeyErrorCode, code)
}

// ConfigPath returns a slog.Attr for a configuration file path
func ConfigPath(path string) slog.Attr {
	return slog.String(KeyConfigPath, path)
}

// DurationMs returns a slog.Attr for a duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
