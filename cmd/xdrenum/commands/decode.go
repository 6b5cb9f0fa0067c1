package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/algebnaly/xdr-brk-enum/cmd/xdrenum/cmdutil"
	"github.com/algebnaly/xdr-brk-enum/internal/cli/output"
	"github.com/algebnaly/xdr-brk-enum/internal/logger"
	"github.com/spf13/cobra"
)

var (
	decodeUnion string
	decodeFile  string
)

var decodeCmd = &cobra.Command{
	Use:   "decode [hex...]",
	Short: "Decode XDR bytes into a union value",
	Long: `Decode one union value from XDR bytes.

The bytes are given as hex arguments (whitespace and a 0x prefix are
ignored, so the output of "xdrenum encode" can be pasted back) or read
raw from a file with --file. Use "--file -" to read from stdin.

The input must hold exactly one value; trailing bytes are an error.

Examples:
  # Decode hex words
  xdrenum decode --union Message 00000000 00000002 68690000

  # Decode a binary file
  xdrenum decode --union Message --file message.bin -o json`,
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringVarP(&decodeUnion, "union", "u", "", "Union name (required)")
	decodeCmd.Flags().StringVar(&decodeFile, "file", "", "Read raw XDR bytes from file (- for stdin)")
	_ = decodeCmd.MarkFlagRequired("union")
}

func runDecode(cmd *cobra.Command, args []string) error {
	data, source, err := decodeInput(cmd, args)
	if err != nil {
		return err
	}

	session, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = session.FlushMetrics(cmd.ErrOrStderr()) }()

	p, err := cmdutil.GetPrinter(cmd)
	if err != nil {
		return err
	}

	u, err := session.Schema.Union(decodeUnion)
	if err != nil {
		return err
	}

	lc := logger.NewLogContext("decode", u.Name()).WithSource(source)
	ctx := logger.WithContext(cmd.Context(), lc)

	start := time.Now()
	value, err := u.Unmarshal(data)
	if err != nil {
		attrs := append([]any{logger.Bytes(len(data)), logger.Hex(data)}, errorAttrs(err, start)...)
		logger.DebugCtx(ctx, "Decode failed", attrs...)
		return err
	}
	logger.DebugCtx(logger.WithContext(ctx, lc.WithVariant(value.Variant)), "Value decoded",
		logger.Bytes(len(data)),
		logger.Discriminant(discriminantOf(u, value)),
		logger.DurationMs(logger.Duration(start)))

	view := newValueView(u, value)
	if p.Format() == output.FormatTable {
		variant := view.Variant
		if view.DefaultArm {
			variant += " (default arm)"
		}
		pairs := [][2]string{
			{"Union", view.Union},
			{"Variant", variant},
			{"Discriminant", strconv.FormatUint(uint64(view.Discriminant), 10)},
		}
		if err := output.KeyValueTable(p.Writer(), pairs); err != nil {
			return err
		}
		if len(view.Fields) > 0 {
			p.Println()
			if err := p.Print(view); err != nil {
				return err
			}
		}
		return nil
	}
	return p.Print(view)
}

// decodeInput returns the bytes to decode and a label for where they came
// from.
func decodeInput(cmd *cobra.Command, args []string) ([]byte, string, error) {
	switch {
	case decodeFile != "" && len(args) > 0:
		return nil, "", fmt.Errorf("give either hex arguments or --file, not both")
	case decodeFile == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, "stdin", nil
	case decodeFile != "":
		data, err := os.ReadFile(decodeFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read input file: %w", err)
		}
		return data, "file", nil
	case len(args) == 0:
		return nil, "", fmt.Errorf("no input: give hex arguments or --file")
	}

	data, err := output.ParseHex(strings.Join(args, " "))
	if err != nil {
		return nil, "", err
	}
	return data, "argument", nil
}
