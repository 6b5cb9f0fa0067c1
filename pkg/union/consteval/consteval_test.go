package consteval

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/algebnaly/xdr-brk-enum/pkg/union"
)

// ============================================================================
// Eval
// ============================================================================

func TestEval(t *testing.T) {
	e := New(map[string]int64{"BASE": 100, "SHIFT": 4})

	tests := []struct {
		src  string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"0x10", 16},
		{"0o17", 15},
		{"0b101", 5},
		{"1_000", 1000},
		{"BASE", 100},
		{"BASE + 1", 101},
		{"(BASE - 1) * 2", 198},
		{"-7", -7},
		{"+7", 7},
		{"^0", -1},
		{"7 / 2", 3},
		{"-7 / 2", -3},
		{"7 % 3", 1},
		{"1 << SHIFT", 16},
		{"256 >> SHIFT", 16},
		{"0xF0 & 0x3C", 0x30},
		{"0xF0 | 0x0F", 0xFF},
		{"0xF0 ^ 0xFF", 0x0F},
		{"0xFF &^ 0x0F", 0xF0},
		{"1 << 32 - 1", math.MaxUint32},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := e.Eval(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	e := New(map[string]int64{"BASE": 100})

	tests := []struct {
		name string
		src  string
		msg  string
	}{
		{"Syntax", "1 +", "parse"},
		{"UnknownIdent", "MISSING + 1", "undefined constant MISSING"},
		{"DivByZero", "BASE / 0", "division by zero"},
		{"RemByZero", "BASE % (1 - 1)", "division by zero"},
		{"Float", "1.5", "unsupported literal"},
		{"String", `"x"`, "unsupported literal"},
		{"Call", "len(BASE)", "unsupported expression"},
		{"Compare", "BASE == 1", "unsupported binary operator"},
		{"Not", "!BASE", "unsupported unary operator"},
		{"NegativeShift", "1 << -1", "invalid shift count"},
		{"HugeShift", "1 << 65", "exceeds"},
		{"Int64Overflow", "1 << 63", "does not fit in int64"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Eval(tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestEval_IntermediateExceedsInt64(t *testing.T) {
	e := New(nil)

	got, err := e.Eval("(1 << 64) >> 60")
	require.NoError(t, err)
	assert.Equal(t, int64(16), got)
}

// ============================================================================
// Define / Lookup
// ============================================================================

func TestDefine(t *testing.T) {
	e := New(nil)

	v, err := e.Define("A", "10")
	require.NoError(t, err)
	assert.Equal(t, int64(10), v)

	v, err = e.Define("B", "A * 2")
	require.NoError(t, err)
	assert.Equal(t, int64(20), v)

	got, ok := e.Lookup("B")
	assert.True(t, ok)
	assert.Equal(t, int64(20), got)

	assert.Equal(t, []string{"A", "B"}, e.Names())

	t.Run("Redefine", func(t *testing.T) {
		_, err := e.Define("A", "1")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already defined")
	})

	t.Run("InvalidName", func(t *testing.T) {
		for _, name := range []string{"", "1x", "a-b", "func"} {
			_, err := e.Define(name, "1")
			assert.Error(t, err, name)
		}
	})

	t.Run("BadExpression", func(t *testing.T) {
		_, err := e.Define("C", "NOPE")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "constant C")
		_, ok := e.Lookup("C")
		assert.False(t, ok)
	})
}

func TestNew_CopiesTable(t *testing.T) {
	table := map[string]int64{"X": 1}
	e := New(table)
	table["X"] = 2

	got, ok := e.Lookup("X")
	require.True(t, ok)
	assert.Equal(t, int64(1), got)
}

// ============================================================================
// EvalConst
// ============================================================================

func TestEvalConst(t *testing.T) {
	e := New(map[string]int64{"BASE": 7})

	t.Run("Literal", func(t *testing.T) {
		v, err := e.EvalConst(union.Literal(3))
		require.NoError(t, err)
		assert.Equal(t, int64(3), v)
	})

	t.Run("ConstFunc", func(t *testing.T) {
		v, err := e.EvalConst(union.ConstFunc{Label: "five", Fn: func() (int64, error) { return 5, nil }})
		require.NoError(t, err)
		assert.Equal(t, int64(5), v)
	})

	t.Run("Expression", func(t *testing.T) {
		v, err := e.EvalConst(union.Expression("BASE << 1"))
		require.NoError(t, err)
		assert.Equal(t, int64(14), v)
	})

	t.Run("Nil", func(t *testing.T) {
		_, err := e.EvalConst(nil)
		assert.Error(t, err)
	})
}

func TestEvalConst_WithResolve(t *testing.T) {
	e := New(map[string]int64{"FIRST": 10})

	r, err := union.Resolve(&union.Spec{
		Name: "Op",
		Variants: []union.VariantSpec{
			{Name: "A", Discriminant: union.Expression("FIRST")},
			{Name: "B"},
			{Name: "C", Discriminant: union.Expression("FIRST * 10")},
		},
	}, union.WithEvaluator(e))
	require.NoError(t, err)

	for name, want := range map[string]uint32{"A": 10, "B": 11, "C": 100} {
		d, ok := r.Discriminant(name)
		require.True(t, ok, name)
		assert.Equal(t, want, d, name)
	}

	_, err = union.Resolve(&union.Spec{
		Name:     "Bad",
		Variants: []union.VariantSpec{{Name: "A", Discriminant: union.Expression("UNKNOWN")}},
	}, union.WithEvaluator(e))
	require.Error(t, err)
	assert.True(t, union.IsCode(err, union.ErrUnevaluableDiscriminant))
}

func TestEvaluator_Concurrent(t *testing.T) {
	e := New(map[string]int64{"BASE": 1})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := e.Eval("BASE + 1")
			assert.NoError(t, err)
			assert.Equal(t, int64(2), v)
			_ = e.Names()
		}()
	}
	wg.Wait()
}
