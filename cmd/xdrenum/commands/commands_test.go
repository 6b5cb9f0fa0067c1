package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/algebnaly/xdr-brk-enum/pkg/union"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
logging:
  level: ERROR
constants:
  - name: BASE
    value: "100"
unions:
  - name: Message
    variants:
      - name: B
        discriminant: "0"
        fields: [string]
      - name: A
      - name: C
        discriminant: BASE
        struct:
          - {name: x, type: int32}
          - {name: y, type: float64}
      - name: Other
        default_arm: true
  - name: Envelope
    variants:
      - name: Wrapped
        fields: "Message, opaque"
`

func TestMain(m *testing.M) {
	isInteractive = func() bool { return false }
	os.Exit(m.Run())
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the root command with args and returns everything written
// to stdout and stderr.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default, since cobra keeps flag
// values between executions of the same command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, Version+"\n", out)

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "xdrenum "+Version)
	assert.Contains(t, out, "Go version:")
}

func TestResolve(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	t.Run("ListsUnions", func(t *testing.T) {
		out, err := execute(t, "resolve", "--config", cfg)
		require.NoError(t, err)
		assert.Contains(t, out, "Message")
		assert.Contains(t, out, "Envelope")
		assert.Contains(t, out, "Other")
	})

	t.Run("VariantTable", func(t *testing.T) {
		out, err := execute(t, "resolve", "Message", "--config", cfg)
		require.NoError(t, err)
		assert.Contains(t, out, "0x00000064")
		assert.Contains(t, out, "explicit")
		assert.Contains(t, out, "implicit")
		assert.Contains(t, out, "default arm")
		assert.Contains(t, out, "{x int32, y float64}")
	})

	t.Run("JSON", func(t *testing.T) {
		out, err := execute(t, "resolve", "Message", "--config", cfg, "-o", "json")
		require.NoError(t, err)

		var variants []variantSummary
		require.NoError(t, json.Unmarshal([]byte(out), &variants))
		require.Len(t, variants, 4)

		got := map[string]uint32{}
		for _, v := range variants {
			if v.Discriminant != nil {
				got[v.Name] = *v.Discriminant
			}
		}
		assert.Equal(t, map[string]uint32{"B": 0, "A": 1, "C": 100}, got)
		assert.True(t, variants[3].DefaultArm)
		assert.Nil(t, variants[3].Discriminant)
	})

	t.Run("UnknownUnion", func(t *testing.T) {
		_, err := execute(t, "resolve", "Nope", "--config", cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not registered")
	})

	t.Run("DuplicateDiscriminant", func(t *testing.T) {
		bad := writeConfig(t, `
unions:
  - name: Bad
    variants:
      - name: A
      - name: B
        discriminant: "0"
`)
		_, err := execute(t, "resolve", "--config", bad)
		require.Error(t, err)
		assert.True(t, union.IsCode(err, union.ErrDuplicateDiscriminant))
	})

	t.Run("MissingConfig", func(t *testing.T) {
		_, err := execute(t, "resolve", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestEncode(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"Unit", []string{"--variant", "A"}, "00000001"},
		{"Tuple", []string{"--variant", "B", "--fields", `["hi"]`}, "00000000 00000002 68690000"},
		{"SingleScalar", []string{"--variant", "B", "--fields", `"hi"`}, "00000000 00000002 68690000"},
		{"StructByName", []string{"--variant", "C", "--fields", `{"y": 2, "x": 1}`}, "00000064 00000001 40000000 00000000"},
		{"StructPositional", []string{"--variant", "C", "--fields", `[1, 2.0]`}, "00000064 00000001 40000000 00000000"},
		{"DefaultArm", []string{"--variant", "Other", "--fields", `[7]`}, "00000007"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"encode", "--config", cfg, "--union", "Message"}, tt.args...)
			out, err := execute(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want+"\n", out)
		})
	}

	t.Run("Nested", func(t *testing.T) {
		out, err := execute(t, "encode", "--config", cfg, "--union", "Envelope", "--variant", "Wrapped",
			"--fields", `[{"variant": "A"}, "6162"]`)
		require.NoError(t, err)
		assert.Equal(t, "00000000 00000001 00000002 61620000\n", out)
	})

	t.Run("DebugLog", func(t *testing.T) {
		out, err := execute(t, "encode", "--config", cfg, "--union", "Message", "--variant", "A", "--log-level", "debug")
		require.NoError(t, err)
		assert.Contains(t, out, "Value encoded")
		assert.Contains(t, out, "duration_ms")

		_, err = execute(t, "encode", "--config", cfg, "--union", "Message", "--variant", "Other",
			"--fields", "[1]", "--log-level", "debug")
		require.Error(t, err)
	})

	t.Run("JSONOutput", func(t *testing.T) {
		out, err := execute(t, "encode", "--config", cfg, "--union", "Message", "--variant", "A", "-o", "json")
		require.NoError(t, err)

		var res encodeResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, encodeResult{Union: "Message", Variant: "A", Discriminant: 1, Bytes: 4, Hex: "00000001"}, res)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := execute(t, "encode", "--config", cfg, "--variant", "A")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--union is required")

		_, err = execute(t, "encode", "--config", cfg, "--union", "Message")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--variant is required")

		_, err = execute(t, "encode", "--config", cfg, "--union", "Message", "--variant", "Z")
		assert.True(t, union.IsCode(err, union.ErrUnknownVariant))

		_, err = execute(t, "encode", "--config", cfg, "--union", "Message", "--variant", "Other", "--fields", "[0]")
		assert.True(t, union.IsCode(err, union.ErrInvalidValue))

		_, err = execute(t, "encode", "--config", cfg, "--union", "Message", "--variant", "B", "--fields", "[")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid JSON fields")
	})
}

func TestDecode(t *testing.T) {
	cfg := writeConfig(t, testConfig)

	t.Run("Struct", func(t *testing.T) {
		out, err := execute(t, "decode", "--config", cfg, "--union", "Message", "-o", "json",
			"00000064", "00000001", "0x4000000000000000")
		require.NoError(t, err)

		var view valueView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Equal(t, "C", view.Variant)
		assert.Equal(t, uint32(100), view.Discriminant)
		require.Len(t, view.Fields, 2)
		assert.Equal(t, "x", view.Fields[0].Name)
		assert.Equal(t, "int32", view.Fields[0].Type)
		assert.EqualValues(t, 1, view.Fields[0].Value)
		assert.EqualValues(t, 2, view.Fields[1].Value)
	})

	t.Run("Table", func(t *testing.T) {
		out, err := execute(t, "decode", "--config", cfg, "--union", "Message", "00000000 00000002 68690000")
		require.NoError(t, err)
		assert.Contains(t, out, "Variant")
		assert.Contains(t, out, "B")
		assert.Contains(t, out, "hi")
	})

	t.Run("DefaultArm", func(t *testing.T) {
		out, err := execute(t, "decode", "--config", cfg, "--union", "Message", "-o", "json", "00000007")
		require.NoError(t, err)

		var view valueView
		require.NoError(t, json.Unmarshal([]byte(out), &view))
		assert.Equal(t, "Other", view.Variant)
		assert.True(t, view.DefaultArm)
		assert.Equal(t, uint32(7), view.Discriminant)
	})

	t.Run("Nested", func(t *testing.T) {
		out, err := execute(t, "decode", "--config", cfg, "--union", "Envelope", "-o", "json",
			"00000000 00000001 00000002 61620000")
		require.NoError(t, err)
		assert.Contains(t, out, `"variant": "A"`)
		assert.Contains(t, out, `"value": "6162"`)
	})

	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "value.bin")
		require.NoError(t, os.WriteFile(path, []byte{0, 0, 0, 1}, 0644))

		out, err := execute(t, "decode", "--config", cfg, "--union", "Message", "--file", path, "-o", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "variant: A")
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := execute(t, "decode", "--config", cfg, "--union", "Message", "00000001", "00")
		assert.True(t, union.IsCode(err, union.ErrTrailingData))

		_, err = execute(t, "decode", "--config", cfg, "--union", "Message", "0000")
		assert.True(t, union.IsCode(err, union.ErrUnexpectedEOF))

		_, err = execute(t, "decode", "--config", cfg, "--union", "Message", "zz")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid hex")

		_, err = execute(t, "decode", "--config", cfg, "--union", "Message")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no input")

		_, err = execute(t, "decode", "--config", cfg, "00000001")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "union")
	})
}

func TestMetricsDump(t *testing.T) {
	cfg := writeConfig(t, "metrics:\n  enabled: true\n"+testConfig)

	out, err := execute(t, "encode", "--config", cfg, "--union", "Message", "--variant", "A")
	require.NoError(t, err)
	assert.Contains(t, out, "00000001")
	assert.Contains(t, out, `xdrenum_union_encode_total{outcome="ok",union="Message",variant="A"} 1`)
	assert.Contains(t, out, `xdrenum_union_resolve_total{outcome="ok",union="Message"} 1`)

	t.Run("FailedDecode", func(t *testing.T) {
		out, err := execute(t, "decode", "--config", cfg, "--union", "Message", "00000009")
		require.Error(t, err)
		assert.Contains(t, out, `xdrenum_union_decode_total{outcome="error",union="Message",variant=""} 1`)
		assert.Contains(t, out, `error_code="UnknownDiscriminant"`)
	})

	t.Run("FailedEncode", func(t *testing.T) {
		out, err := execute(t, "encode", "--config", cfg, "--union", "Message", "--variant", "Z")
		require.Error(t, err)
		assert.Contains(t, out, `xdrenum_union_encode_total{outcome="error",union="Message",variant=""} 1`)
	})
}

// TestDecodeOutputEncodes feeds the field values printed by decode back
// into encode and expects the original bytes.
func TestDecodeOutputEncodes(t *testing.T) {
	cfg := writeConfig(t, testConfig+`  - name: Blob
    variants:
      - name: D
        fields: [opaque]
      - name: F
        struct:
          - {name: tag, type: "opaque[3]"}
          - {name: more, type: "opaque?"}
`)

	tests := []struct {
		name  string
		union string
		hex   string
	}{
		{"Opaque", "Blob", "00000000 00000002 dead0000"},
		{"FixedAndOptional", "Blob", "00000001 abcdef00 00000001 00000001 ff000000"},
		{"OptionalAbsent", "Blob", "00000001 abcdef00 00000000"},
		{"NestedWithOpaque", "Envelope", "00000000 00000001 00000002 61620000"},
		{"NestedWithString", "Envelope", "00000000 00000000 00000002 68690000 00000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "decode", "--config", cfg, "--union", tt.union, "-o", "json", tt.hex)
			require.NoError(t, err)

			var view valueView
			require.NoError(t, json.Unmarshal([]byte(out), &view))
			values := make([]any, len(view.Fields))
			for i, f := range view.Fields {
				values[i] = f.Value
			}
			fields, err := json.Marshal(values)
			require.NoError(t, err)

			out, err = execute(t, "encode", "--config", cfg, "--union", tt.union,
				"--variant", view.Variant, "--fields", string(fields))
			require.NoError(t, err)
			assert.Equal(t, tt.hex+"\n", out)
		})
	}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	out, err := execute(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration written to "+path)

	_, err = execute(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)

	out, err = execute(t, "config", "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Validation: OK")
	assert.Contains(t, out, "Unions:          1")

	out, err = execute(t, "resolve", "Message", "--config", path, "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Point"`)
	assert.Contains(t, out, `"discriminant": 100`)

	out, err = execute(t, "config", "schema")
	require.NoError(t, err)
	assert.Contains(t, out, "xdrenum Configuration")
	assert.Contains(t, out, "default_arm")
}

func TestParseValue(t *testing.T) {
	u := union.MustResolve(&union.Spec{
		Name: "U",
		Variants: []union.VariantSpec{
			{Name: "Big", Payload: union.Tuple{union.Uint64}},
			{Name: "List", Payload: union.Tuple{union.Array(union.Int32)}},
			{Name: "Blobs", Payload: union.Struct{
				{Name: "one", Type: union.Opaque},
				{Name: "many", Type: union.Array(union.Optional(union.FixedOpaque(2)))},
			}},
		},
	})

	v, err := parseValue(u, "Big", "18446744073709551615")
	require.NoError(t, err)
	assert.Equal(t, []any{uint64(18446744073709551615)}, v.Fields)

	v, err = parseValue(u, "List", "[[1, 2]]")
	require.NoError(t, err)
	assert.Equal(t, []any{[]any{int64(1), int64(2)}}, v.Fields)

	_, err = parseValue(u, "Big", "1 2")
	assert.Error(t, err)

	_, err = parseValue(u, "List", `[{"fields": []}]`)
	assert.Error(t, err)

	t.Run("OpaqueIsHex", func(t *testing.T) {
		want := []any{[]byte{0xde, 0xad}, []any{[]byte{0xbe, 0xef}, nil}}

		v, err := parseValue(u, "Blobs", `{"one": "dead", "many": ["beef", null]}`)
		require.NoError(t, err)
		assert.Equal(t, want, v.Fields)

		v, err = parseValue(u, "Blobs", `["0xdead", ["BEEF", null]]`)
		require.NoError(t, err)
		assert.Equal(t, want, v.Fields)

		_, err = parseValue(u, "Blobs", `["hello", []]`)
		assert.ErrorContains(t, err, "opaque data")
	})
}
