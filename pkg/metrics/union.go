// Package metrics defines the observability hooks used by the union codec.
//
// Implementations live in sub-packages (see metrics/prometheus). Every hook
// is optional: pass nil wherever a UnionMetrics is accepted to disable
// collection with zero overhead.
package metrics

// Outcome labels used by UnionMetrics implementations.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// UnionMetrics provides observability for union resolution and
// encode/decode operations.
//
// Example usage:
//
//	// With metrics enabled
//	m := prometheus.NewUnionMetrics(registry)
//	resolved, err := union.Resolve(spec, union.WithMetrics(m))
//
//	// Without metrics (zero overhead)
//	resolved, err := union.Resolve(spec)
type UnionMetrics interface {
	// RecordResolve records a resolution attempt of a union definition.
	//
	// Parameters:
	//   - union: Union name
	//   - errorCode: Error code name if resolution failed, empty if successful
	RecordResolve(union string, errorCode string)

	// RecordEncode records a completed encode call.
	//
	// Parameters:
	//   - union: Union name
	//   - variant: Variant name (may be empty when the variant was unknown)
	//   - bytes: Number of bytes written, including the discriminant
	//   - errorCode: Error code name if encoding failed, empty if successful
	RecordEncode(union string, variant string, bytes int, errorCode string)

	// RecordDecode records a completed decode call.
	//
	// Parameters:
	//   - union: Union name
	//   - variant: Variant name (empty when the discriminant was not matched)
	//   - bytes: Number of bytes consumed, including the discriminant
	//   - errorCode: Error code name if decoding failed, empty if successful
	RecordDecode(union string, variant string, bytes int, errorCode string)
}

// Outcome maps an error code label to the outcome label.
func Outcome(errorCode string) string {
	if errorCode == "" {
		return OutcomeOK
	}
	return OutcomeError
}
