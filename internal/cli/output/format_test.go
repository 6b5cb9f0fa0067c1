package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Format
		wantErr bool
	}{
		{name: "table", input: "table", want: FormatTable},
		{name: "empty defaults to table", input: "", want: FormatTable},
		{name: "json", input: "json", want: FormatJSON},
		{name: "JSON uppercase", input: "JSON", want: FormatJSON},
		{name: "yaml", input: "yaml", want: FormatYAML},
		{name: "yml alias", input: "yml", want: FormatYAML},
		{name: "whitespace trimmed", input: "  table  ", want: FormatTable},
		{name: "invalid format", input: "xml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrinter_Print(t *testing.T) {
	data := NewTableData("Variant", "Discriminant")
	data.AddRow("Ping", "0")

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(data))
		assert.Contains(t, buf.String(), "VARIANT")
		assert.Contains(t, buf.String(), "Ping")
	})

	t.Run("TableFallsBackToJSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatTable, false).Print(map[string]int{"a": 1}))
		assert.JSONEq(t, `{"a": 1}`, buf.String())
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatJSON, false).Print(map[string]string{"variant": "Ping"}))
		assert.JSONEq(t, `{"variant": "Ping"}`, buf.String())
	})

	t.Run("YAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewPrinter(&buf, FormatYAML, false).Print(map[string]string{"variant": "Ping"}))
		assert.Equal(t, "variant: Ping\n", buf.String())
	})

	t.Run("Unknown", func(t *testing.T) {
		var buf bytes.Buffer
		assert.Error(t, NewPrinter(&buf, Format("xml"), false).Print(data))
	})
}

func TestPrinter_Status(t *testing.T) {
	var plain bytes.Buffer
	p := NewPrinter(&plain, FormatTable, false)
	p.Success("ok")
	p.Warning("careful")
	p.Error("failed")
	assert.Equal(t, "ok\ncareful\nfailed\n", plain.String())

	var colored bytes.Buffer
	NewPrinter(&colored, FormatTable, true).Success("ok")
	assert.Equal(t, "\033[32mok\033[0m\n", colored.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, KeyValueTable(&buf, [][2]string{
		{"Union", "Message"},
		{"Variant", "Ping"},
	}))

	out := buf.String()
	assert.Contains(t, out, "Union")
	assert.Contains(t, out, "Message")
	assert.Contains(t, out, "Variant")
}

func TestHexWords(t *testing.T) {
	assert.Equal(t, "", HexWords(nil))
	assert.Equal(t, "00000001", HexWords([]byte{0, 0, 0, 1}))
	assert.Equal(t, "00000000 00000002 68690000", HexWords([]byte{0, 0, 0, 0, 0, 0, 0, 2, 'h', 'i', 0, 0}))
	assert.Equal(t, "00000000 0102", HexWords([]byte{0, 0, 0, 0, 1, 2}))
}

func TestParseHex(t *testing.T) {
	for _, in := range []string{"00000001", "0x00000001", "0000 0001", " 00\n00\t00 01 ", "0x0000 0x0001"} {
		got, err := ParseHex(in)
		require.NoError(t, err, in)
		assert.Equal(t, []byte{0, 0, 0, 1}, got, in)
	}

	_, err := ParseHex("0g")
	assert.Error(t, err)
	_, err = ParseHex("123")
	assert.Error(t, err)
}
