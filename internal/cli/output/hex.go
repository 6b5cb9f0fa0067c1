package output

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// HexWords renders XDR data as space-separated 4-byte words, the unit of
// XDR alignment, e.g. "00000000 00000002 68690000".
func HexWords(data []byte) string {
	var b strings.Builder
	for i := 0; i < len(data); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(hex.EncodeToString(data[i:min(i+4, len(data))]))
	}
	return b.String()
}

// ParseHex parses hex input, ignoring whitespace and a 0x prefix on each
// word, so that HexWords output can be pasted back in.
func ParseHex(s string) ([]byte, error) {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.TrimPrefix(strings.TrimPrefix(w, "0x"), "0X")
	}
	data, err := hex.DecodeString(strings.Join(words, ""))
	if err != nil {
		return nil, fmt.Errorf("invalid hex input: %w", err)
	}
	return data, nil
}
