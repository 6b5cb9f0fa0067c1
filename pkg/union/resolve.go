package union

import (
	"fmt"
	"math"

	"github.com/algebnaly/xdr-brk-enum/pkg/metrics"
)

// ============================================================================
// Constant Evaluation
// ============================================================================

// Evaluator turns an explicit discriminant expression into an integer.
// It is only consulted during resolution, never while encoding or decoding.
type Evaluator interface {
	EvalConst(expr Expr) (int64, error)
}

// LiteralEvaluator evaluates Literal and ConstFunc discriminants. Any other
// expression is reported as unevaluable.
type LiteralEvaluator struct{}

// EvalConst implements Evaluator.
func (LiteralEvaluator) EvalConst(expr Expr) (int64, error) {
	switch e := expr.(type) {
	case Literal:
		return int64(e), nil
	case ConstFunc:
		if e.Fn == nil {
			return 0, fmt.Errorf("constant function %s has no body", e)
		}
		return e.Fn()
	default:
		return 0, fmt.Errorf("cannot evaluate %T %q without a constant evaluator", expr, expr.String())
	}
}

// ============================================================================
// Resolve Options
// ============================================================================

type resolveOptions struct {
	evaluator Evaluator
	metrics   metrics.UnionMetrics
}

// ResolveOption configures Resolve.
type ResolveOption func(*resolveOptions)

// WithEvaluator sets the evaluator for explicit discriminants.
// The default is LiteralEvaluator.
func WithEvaluator(ev Evaluator) ResolveOption {
	return func(o *resolveOptions) {
		if ev != nil {
			o.evaluator = ev
		}
	}
}

// WithMetrics attaches metrics to the resolution and to every encode and
// decode performed by the resolved union. Nil disables collection.
func WithMetrics(m metrics.UnionMetrics) ResolveOption {
	return func(o *resolveOptions) {
		o.metrics = m
	}
}

// ============================================================================
// Resolved Union
// ============================================================================

// ResolvedVariant is a variant with its final discriminant.
type ResolvedVariant struct {
	Name         string
	Discriminant uint32
	Payload      Shape

	// Explicit is true when the discriminant was declared, not counted.
	Explicit bool

	// DefaultArm marks the catch-all variant; Discriminant is unused.
	DefaultArm bool

	fields []Field
}

// Resolved is a union whose discriminants have been assigned. It drives all
// encode and decode operations and is never mutated after Resolve returns.
type Resolved struct {
	name       string
	variants   []ResolvedVariant
	byName     map[string]int
	byDisc     map[uint32]int
	defaultArm int
	metrics    metrics.UnionMetrics
}

// Resolve assigns a discriminant to every variant of spec.
//
// Variants are walked in declaration order with a counter starting at 0.
// An explicit discriminant is evaluated and resets the counter to its
// value plus one; an implicit variant takes the counter and advances it.
// Every discriminant must fit in a uint32 and be unique.
//
// Resolve is deterministic and never panics; definition problems are
// returned as *Error with one of the definition codes.
func Resolve(spec *Spec, opts ...ResolveOption) (*Resolved, error) {
	o := resolveOptions{evaluator: LiteralEvaluator{}}
	for _, opt := range opts {
		opt(&o)
	}

	r, err := resolve(spec, o.evaluator)
	if o.metrics != nil && spec != nil {
		o.metrics.RecordResolve(spec.Name, codeLabel(err))
	}
	if err != nil {
		return nil, err
	}

	r.metrics = o.metrics
	return r, nil
}

// MustResolve is like Resolve but panics on error. It is intended for
// package-level variables holding unions known to be well formed.
func MustResolve(spec *Spec, opts ...ResolveOption) *Resolved {
	r, err := Resolve(spec, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func resolve(spec *Spec, ev Evaluator) (*Resolved, error) {
	if spec == nil {
		return nil, &Error{Code: ErrInvalidDefinition, Message: "nil union spec"}
	}
	if spec.Name == "" {
		return nil, &Error{Code: ErrInvalidDefinition, Message: "union name is empty"}
	}
	if len(spec.Variants) == 0 {
		return nil, &Error{Code: ErrInvalidDefinition, Union: spec.Name, Message: "union has no variants"}
	}

	r := &Resolved{
		name:       spec.Name,
		variants:   make([]ResolvedVariant, 0, len(spec.Variants)),
		byName:     make(map[string]int, len(spec.Variants)),
		byDisc:     make(map[uint32]int, len(spec.Variants)),
		defaultArm: -1,
	}

	var next int64
	for i, vs := range spec.Variants {
		if err := checkVariant(spec.Name, vs); err != nil {
			return nil, err
		}
		if _, dup := r.byName[vs.Name]; dup {
			return nil, &Error{
				Code:    ErrInvalidDefinition,
				Union:   spec.Name,
				Variant: vs.Name,
				Message: "duplicate variant name",
			}
		}
		r.byName[vs.Name] = i

		shape := vs.shape()
		rv := ResolvedVariant{
			Name:       vs.Name,
			Payload:    shape,
			DefaultArm: vs.DefaultArm,
			fields:     shape.Fields(),
		}

		if vs.DefaultArm {
			if err := checkDefaultArm(spec.Name, vs, r); err != nil {
				return nil, err
			}
			r.defaultArm = i
			r.variants = append(r.variants, rv)
			continue
		}

		v := next
		if vs.Discriminant != nil {
			val, err := ev.EvalConst(vs.Discriminant)
			if err != nil {
				return nil, &Error{
					Code:    ErrUnevaluableDiscriminant,
					Union:   spec.Name,
					Variant: vs.Name,
					Message: fmt.Sprintf("expression %q", vs.Discriminant.String()),
					Err:     err,
				}
			}
			v = val
			rv.Explicit = true
		}

		if v < 0 || v > math.MaxUint32 {
			return nil, &Error{
				Code:    ErrDiscriminantOverflow,
				Union:   spec.Name,
				Variant: vs.Name,
				Value:   v,
			}
		}
		next = v + 1

		d := uint32(v)
		if j, taken := r.byDisc[d]; taken {
			return nil, &Error{
				Code:    ErrDuplicateDiscriminant,
				Union:   spec.Name,
				Variant: vs.Name,
				Other:   r.variants[j].Name,
				Value:   v,
			}
		}
		r.byDisc[d] = i
		rv.Discriminant = d
		r.variants = append(r.variants, rv)
	}

	return r, nil
}

// checkVariant validates a variant's name and payload.
func checkVariant(union string, vs VariantSpec) error {
	if vs.Name == "" {
		return &Error{Code: ErrInvalidDefinition, Union: union, Message: "variant name is empty"}
	}

	seen := make(map[string]struct{})
	for i, f := range vs.shape().Fields() {
		if f.Type == nil {
			return &Error{
				Code:    ErrInvalidDefinition,
				Union:   union,
				Variant: vs.Name,
				Field:   f.label(i),
				Message: "field type is nil",
			}
		}
		if nestedOptional(f.Type) {
			return &Error{
				Code:    ErrInvalidDefinition,
				Union:   union,
				Variant: vs.Name,
				Field:   f.label(i),
				Message: "optional of optional is ambiguous on the wire",
			}
		}
		if vs.shape().Kind() != KindStruct {
			continue
		}
		if f.Name == "" {
			return &Error{
				Code:    ErrInvalidDefinition,
				Union:   union,
				Variant: vs.Name,
				Field:   f.label(i),
				Message: "struct field name is empty",
			}
		}
		if _, dup := seen[f.Name]; dup {
			return &Error{
				Code:    ErrInvalidDefinition,
				Union:   union,
				Variant: vs.Name,
				Field:   f.Name,
				Message: "duplicate field name",
			}
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// checkDefaultArm enforces the catch-all variant rules.
func checkDefaultArm(union string, vs VariantSpec, r *Resolved) error {
	fail := func(msg string) error {
		return &Error{Code: ErrInvalidDefinition, Union: union, Variant: vs.Name, Message: msg}
	}

	if r.defaultArm >= 0 {
		return fail("only one default arm is allowed")
	}
	if vs.Discriminant != nil {
		return fail("default arm cannot declare a discriminant")
	}
	tuple, ok := vs.Payload.(Tuple)
	if !ok || len(tuple) != 1 {
		return fail("default arm must have exactly one unnamed uint32 field")
	}
	if _, ok := tuple[0].(uint32Type); !ok {
		return fail("default arm must have exactly one unnamed uint32 field")
	}
	return nil
}

// ============================================================================
// Introspection
// ============================================================================

// Name returns the union name.
func (r *Resolved) Name() string {
	return r.name
}

// Variants returns the variants in declaration order.
func (r *Resolved) Variants() []ResolvedVariant {
	return append([]ResolvedVariant(nil), r.variants...)
}

// Variant returns the named variant.
func (r *Resolved) Variant(name string) (ResolvedVariant, bool) {
	i, ok := r.byName[name]
	if !ok {
		return ResolvedVariant{}, false
	}
	return r.variants[i], true
}

// Discriminant returns the discriminant of the named variant. The default
// arm has no fixed discriminant and reports false.
func (r *Resolved) Discriminant(name string) (uint32, bool) {
	i, ok := r.byName[name]
	if !ok || r.variants[i].DefaultArm {
		return 0, false
	}
	return r.variants[i].Discriminant, true
}

// VariantFor returns the variant mapped to discriminant d. The default arm
// is not returned; it only applies during decoding.
func (r *Resolved) VariantFor(d uint32) (ResolvedVariant, bool) {
	i, ok := r.byDisc[d]
	if !ok {
		return ResolvedVariant{}, false
	}
	return r.variants[i], true
}

// DefaultArm returns the catch-all variant, if the union has one.
func (r *Resolved) DefaultArm() (ResolvedVariant, bool) {
	if r.defaultArm < 0 {
		return ResolvedVariant{}, false
	}
	return r.variants[r.defaultArm], true
}
