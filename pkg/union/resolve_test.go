package union

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// discriminants returns name -> discriminant for every non-default variant.
func discriminants(t *testing.T, r *Resolved) map[string]uint32 {
	t.Helper()
	out := make(map[string]uint32)
	for _, v := range r.Variants() {
		if v.DefaultArm {
			continue
		}
		out[v.Name] = v.Discriminant
	}
	return out
}

func implicit(name string) VariantSpec {
	return VariantSpec{Name: name}
}

func explicit(name string, d int64) VariantSpec {
	return VariantSpec{Name: name, Discriminant: Literal(d)}
}

// ============================================================================
// Counter Rules
// ============================================================================

func TestResolve_Numbering(t *testing.T) {
	tests := []struct {
		name     string
		variants []VariantSpec
		want     map[string]uint32
	}{
		{
			name:     "AllImplicit",
			variants: []VariantSpec{implicit("A"), implicit("B"), implicit("C")},
			want:     map[string]uint32{"A": 0, "B": 1, "C": 2},
		},
		{
			name:     "ExplicitResetsCounter",
			variants: []VariantSpec{implicit("A"), implicit("B"), explicit("C", 100), implicit("D")},
			want:     map[string]uint32{"A": 0, "B": 1, "C": 100, "D": 101},
		},
		{
			name:     "ExplicitFirst",
			variants: []VariantSpec{explicit("A", 7), implicit("B")},
			want:     map[string]uint32{"A": 7, "B": 8},
		},
		{
			name:     "ExplicitGoingBackwards",
			variants: []VariantSpec{explicit("A", 10), explicit("B", 3), implicit("C")},
			want:     map[string]uint32{"A": 10, "B": 3, "C": 4},
		},
		{
			name:     "ExplicitZeroBeforeImplicit",
			variants: []VariantSpec{explicit("B", 0), implicit("A"), explicit("C", 100)},
			want:     map[string]uint32{"A": 1, "B": 0, "C": 100},
		},
		{
			name:     "MaxUint32Last",
			variants: []VariantSpec{implicit("A"), explicit("B", math.MaxUint32)},
			want:     map[string]uint32{"A": 0, "B": math.MaxUint32},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Resolve(&Spec{Name: "U", Variants: tt.variants})
			require.NoError(t, err)
			assert.Equal(t, tt.want, discriminants(t, r))
		})
	}
}

func TestResolve_ExplicitFlag(t *testing.T) {
	r, err := Resolve(&Spec{Name: "U", Variants: []VariantSpec{implicit("A"), explicit("B", 5)}})
	require.NoError(t, err)

	a, _ := r.Variant("A")
	b, _ := r.Variant("B")
	assert.False(t, a.Explicit)
	assert.True(t, b.Explicit)
}

func TestResolve_Deterministic(t *testing.T) {
	spec := &Spec{Name: "U", Variants: []VariantSpec{implicit("A"), explicit("B", 9), implicit("C")}}

	first := MustResolve(spec)
	for i := 0; i < 10; i++ {
		again := MustResolve(spec)
		assert.Equal(t, discriminants(t, first), discriminants(t, again))
	}
}

// ============================================================================
// Definition Errors
// ============================================================================

func TestResolve_DuplicateDiscriminant(t *testing.T) {
	_, err := Resolve(&Spec{
		Name:     "U",
		Variants: []VariantSpec{implicit("A"), explicit("B", 5), explicit("C", 4), implicit("D")},
	})
	require.Error(t, err)

	var ue *Error
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, ErrDuplicateDiscriminant, ue.Code)
	assert.Equal(t, "U", ue.Union)
	assert.Equal(t, "D", ue.Variant)
	assert.Equal(t, "B", ue.Other)
	assert.Equal(t, int64(5), ue.Value)
	assert.Contains(t, err.Error(), "variants B and D both resolve to 5")
}

func TestResolve_ScenarioImplicitFirstCollides(t *testing.T) {
	// A takes 0 implicitly, then B claims 0 explicitly.
	_, err := Resolve(&Spec{
		Name:     "U",
		Variants: []VariantSpec{implicit("A"), explicit("B", 0), explicit("C", 100)},
	})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrDuplicateDiscriminant))
}

func TestResolve_Overflow(t *testing.T) {
	tests := []struct {
		name     string
		variants []VariantSpec
		value    int64
		variant  string
	}{
		{
			name:     "ExplicitTooLarge",
			variants: []VariantSpec{explicit("A", math.MaxUint32+1)},
			value:    math.MaxUint32 + 1,
			variant:  "A",
		},
		{
			name:     "Negative",
			variants: []VariantSpec{explicit("A", -1)},
			value:    -1,
			variant:  "A",
		},
		{
			name:     "ImplicitAfterMax",
			variants: []VariantSpec{explicit("A", math.MaxUint32), implicit("B")},
			value:    math.MaxUint32 + 1,
			variant:  "B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(&Spec{Name: "U", Variants: tt.variants})
			require.Error(t, err)

			var ue *Error
			require.True(t, errors.As(err, &ue))
			assert.Equal(t, ErrDiscriminantOverflow, ue.Code)
			assert.Equal(t, tt.variant, ue.Variant)
			assert.Equal(t, tt.value, ue.Value)
		})
	}
}

func TestResolve_Unevaluable(t *testing.T) {
	cause := errors.New("lookup failed")

	tests := []struct {
		name string
		expr Expr
	}{
		{"ConstFuncError", ConstFunc{Label: "base", Fn: func() (int64, error) { return 0, cause }}},
		{"ConstFuncNil", ConstFunc{Label: "missing"}},
		{"ExpressionWithoutEvaluator", Expression("BASE + 1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(&Spec{Name: "U", Variants: []VariantSpec{{Name: "A", Discriminant: tt.expr}}})
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrUnevaluableDiscriminant))
			assert.True(t, CodeOf(err).IsDefinition())
		})
	}

	t.Run("CauseIsWrapped", func(t *testing.T) {
		_, err := Resolve(&Spec{Name: "U", Variants: []VariantSpec{
			{Name: "A", Discriminant: ConstFunc{Fn: func() (int64, error) { return 0, cause }}},
		}})
		assert.ErrorIs(t, err, cause)
	})
}

func TestResolve_ConstFunc(t *testing.T) {
	r, err := Resolve(&Spec{Name: "U", Variants: []VariantSpec{
		{Name: "A", Discriminant: ConstFunc{Label: "base", Fn: func() (int64, error) { return 40, nil }}},
		implicit("B"),
	}})
	require.NoError(t, err)
	assert.Equal(t, map[string]uint32{"A": 40, "B": 41}, discriminants(t, r))
}

type fixedEvaluator map[string]int64

func (f fixedEvaluator) EvalConst(expr Expr) (int64, error) {
	v, ok := f[expr.String()]
	if !ok {
		return 0, errors.New("unknown")
	}
	return v, nil
}

func TestResolve_WithEvaluator(t *testing.T) {
	r, err := Resolve(&Spec{Name: "U", Variants: []VariantSpec{
		{Name: "A", Discriminant: Expression("TWELVE")},
		implicit("B"),
	}}, WithEvaluator(fixedEvaluator{"TWELVE": 12}))
	require.NoError(t, err)
	assert.Equal(t, map[string]uint32{"A": 12, "B": 13}, discriminants(t, r))
}

func TestResolve_InvalidDefinition(t *testing.T) {
	tests := []struct {
		name string
		spec *Spec
		msg  string
	}{
		{"NilSpec", nil, "nil union spec"},
		{"EmptyName", &Spec{Variants: []VariantSpec{implicit("A")}}, "union name is empty"},
		{"NoVariants", &Spec{Name: "U"}, "no variants"},
		{"EmptyVariantName", &Spec{Name: "U", Variants: []VariantSpec{implicit("")}}, "variant name is empty"},
		{"DuplicateVariantName", &Spec{Name: "U", Variants: []VariantSpec{implicit("A"), implicit("A")}}, "duplicate variant name"},
		{"NilTupleField", &Spec{Name: "U", Variants: []VariantSpec{{Name: "A", Payload: Tuple{nil}}}}, "field type is nil"},
		{"EmptyStructFieldName", &Spec{Name: "U", Variants: []VariantSpec{{Name: "A", Payload: Struct{{Type: Int32}}}}}, "struct field name is empty"},
		{"DuplicateStructField", &Spec{Name: "U", Variants: []VariantSpec{
			{Name: "A", Payload: Struct{{Name: "x", Type: Int32}, {Name: "x", Type: Int32}}},
		}}, "duplicate field name"},
		{"OptionalOfOptional", &Spec{Name: "U", Variants: []VariantSpec{
			{Name: "A", Payload: Tuple{Optional(Optional(Int32))}},
		}}, "optional of optional"},
		{"OptionalOfOptionalInArray", &Spec{Name: "U", Variants: []VariantSpec{
			{Name: "A", Payload: Struct{{Name: "xs", Type: Array(Optional(Optional(String)))}}},
		}}, "optional of optional"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.spec)
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrInvalidDefinition))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestMustResolve_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustResolve(&Spec{Name: "U", Variants: []VariantSpec{explicit("A", -5)}})
	})
}

// ============================================================================
// Default Arm
// ============================================================================

func defaultArm(name string) VariantSpec {
	return VariantSpec{Name: name, Payload: Tuple{Uint32}, DefaultArm: true}
}

func TestResolve_DefaultArm(t *testing.T) {
	r, err := Resolve(&Spec{Name: "U", Variants: []VariantSpec{
		implicit("A"), defaultArm("Other"), implicit("B"),
	}})
	require.NoError(t, err)

	// The default arm does not consume a counter value.
	assert.Equal(t, map[string]uint32{"A": 0, "B": 1}, discriminants(t, r))

	arm, ok := r.DefaultArm()
	require.True(t, ok)
	assert.Equal(t, "Other", arm.Name)
	assert.True(t, arm.DefaultArm)

	_, ok = r.Discriminant("Other")
	assert.False(t, ok)
}

func TestResolve_DefaultArmRules(t *testing.T) {
	tests := []struct {
		name     string
		variants []VariantSpec
		msg      string
	}{
		{"Two", []VariantSpec{defaultArm("X"), defaultArm("Y")}, "only one default arm"},
		{"WithDiscriminant", []VariantSpec{{Name: "X", Payload: Tuple{Uint32}, DefaultArm: true, Discriminant: Literal(3)}}, "cannot declare a discriminant"},
		{"Unit", []VariantSpec{{Name: "X", DefaultArm: true}}, "exactly one unnamed uint32 field"},
		{"WrongType", []VariantSpec{{Name: "X", Payload: Tuple{Int32}, DefaultArm: true}}, "exactly one unnamed uint32 field"},
		{"TwoFields", []VariantSpec{{Name: "X", Payload: Tuple{Uint32, Uint32}, DefaultArm: true}}, "exactly one unnamed uint32 field"},
		{"Struct", []VariantSpec{{Name: "X", Payload: Struct{{Name: "d", Type: Uint32}}, DefaultArm: true}}, "exactly one unnamed uint32 field"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(&Spec{Name: "U", Variants: tt.variants})
			require.Error(t, err)
			assert.True(t, IsCode(err, ErrInvalidDefinition))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

// ============================================================================
// Introspection
// ============================================================================

func TestResolved_Introspection(t *testing.T) {
	r := MustResolve(&Spec{Name: "Msg", Variants: []VariantSpec{
		implicit("Ping"),
		{Name: "Data", Payload: Tuple{Opaque}},
		{Name: "Move", Discriminant: Literal(10), Payload: Struct{{Name: "x", Type: Int32}, {Name: "y", Type: Int32}}},
	}})

	assert.Equal(t, "Msg", r.Name())

	names := make([]string, 0)
	for _, v := range r.Variants() {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"Ping", "Data", "Move"}, names)

	d, ok := r.Discriminant("Move")
	require.True(t, ok)
	assert.Equal(t, uint32(10), d)

	_, ok = r.Discriminant("Nope")
	assert.False(t, ok)

	v, ok := r.VariantFor(1)
	require.True(t, ok)
	assert.Equal(t, "Data", v.Name)
	assert.Equal(t, KindTuple, v.Payload.Kind())

	_, ok = r.VariantFor(2)
	assert.False(t, ok)

	_, ok = r.DefaultArm()
	assert.False(t, ok)

	move, ok := r.Variant("Move")
	require.True(t, ok)
	assert.Equal(t, KindStruct, move.Payload.Kind())
	assert.Len(t, move.Payload.Fields(), 2)

	ping, _ := r.Variant("Ping")
	assert.Equal(t, KindUnit, ping.Payload.Kind())
}

func TestResolved_VariantsIsCopy(t *testing.T) {
	r := MustResolve(&Spec{Name: "U", Variants: []VariantSpec{implicit("A")}})
	vs := r.Variants()
	vs[0].Name = "changed"

	v, ok := r.VariantFor(0)
	require.True(t, ok)
	assert.Equal(t, "A", v.Name)
}

func TestErrorCode_String(t *testing.T) {
	assert.Equal(t, "UnexpectedEof", ErrUnexpectedEOF.String())
	assert.Equal(t, "DuplicateDiscriminant", ErrDuplicateDiscriminant.String())
	assert.Equal(t, "Unknown(99)", ErrorCode(99).String())
	assert.False(t, ErrUnknownDiscriminant.IsDefinition())
	assert.True(t, ErrDiscriminantOverflow.IsDefinition())
	assert.Equal(t, ErrorCode(0), CodeOf(errors.New("plain")))
}
