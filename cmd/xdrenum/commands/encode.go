package commands

import (
	"fmt"
	"time"

	"github.com/algebnaly/xdr-brk-enum/cmd/xdrenum/cmdutil"
	"github.com/algebnaly/xdr-brk-enum/internal/cli/output"
	"github.com/algebnaly/xdr-brk-enum/internal/cli/prompt"
	"github.com/algebnaly/xdr-brk-enum/internal/logger"
	"github.com/algebnaly/xdr-brk-enum/pkg/schema"
	"github.com/algebnaly/xdr-brk-enum/pkg/union"
	"github.com/spf13/cobra"
)

// isInteractive reports whether missing input may be prompted for.
var isInteractive = prompt.Interactive

var (
	encodeUnion   string
	encodeVariant string
	encodeFields  string
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Encode a union value to XDR",
	Long: `Encode a union value and print its XDR bytes as hex words.

Fields are given as JSON: an array in declaration order, an object keyed
by field name for struct variants, or a single value for one-field
variants. Nested union fields are written {"variant": "Name", "fields": [...]}.
Opaque fields are hex strings, so the values printed by "xdrenum decode"
can be passed back in.

When --union or --variant is missing and the terminal is interactive, you
are prompted for them.

Examples:
  # Unit variant
  xdrenum encode --union Message --variant Ping

  # Tuple variant
  xdrenum encode --union Message --variant Text --fields '["hello"]'

  # Struct variant
  xdrenum encode --union Message --variant Point --fields '{"x": 1, "y": 2.5}'`,
	RunE: runEncode,
}

func init() {
	encodeCmd.Flags().StringVarP(&encodeUnion, "union", "u", "", "Union name")
	encodeCmd.Flags().StringVar(&encodeVariant, "variant", "", "Variant name")
	encodeCmd.Flags().StringVarP(&encodeFields, "fields", "f", "", "Payload fields as JSON")
}

// encodeResult is printed for the json and yaml output formats.
type encodeResult struct {
	Union        string `json:"union" yaml:"union"`
	Variant      string `json:"variant" yaml:"variant"`
	Discriminant uint32 `json:"discriminant" yaml:"discriminant"`
	Bytes        int    `json:"bytes" yaml:"bytes"`
	Hex          string `json:"hex" yaml:"hex"`
}

func runEncode(cmd *cobra.Command, args []string) error {
	session, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = session.FlushMetrics(cmd.ErrOrStderr()) }()

	p, err := cmdutil.GetPrinter(cmd)
	if err != nil {
		return err
	}

	u, value, err := encodeInput(session.Schema)
	if err != nil {
		return err
	}

	lc := logger.NewLogContext("encode", u.Name()).WithVariant(value.Variant)
	ctx := logger.WithContext(cmd.Context(), lc)

	start := time.Now()
	data, err := u.Marshal(value)
	if err != nil {
		logger.DebugCtx(ctx, "Encode failed", errorAttrs(err, start)...)
		return err
	}
	logger.DebugCtx(ctx, "Value encoded",
		logger.Bytes(len(data)),
		logger.Hex(data),
		logger.DurationMs(logger.Duration(start)))

	if p.Format() == output.FormatTable {
		p.Println(output.HexWords(data))
		return nil
	}
	return p.Print(encodeResult{
		Union:        u.Name(),
		Variant:      value.Variant,
		Discriminant: discriminantOf(u, value),
		Bytes:        len(data),
		Hex:          output.HexWords(data),
	})
}

// encodeInput collects the union, variant and fields from flags, prompting
// for whatever is missing when running interactively.
func encodeInput(s *schema.Schema) (*union.Resolved, union.Value, error) {
	interactive := isInteractive()

	name := encodeUnion
	if name == "" {
		if !interactive {
			return nil, union.Value{}, fmt.Errorf("--union is required")
		}
		options := make([]prompt.SelectOption, 0)
		for _, n := range s.Registry.Names() {
			options = append(options, prompt.SelectOption{Label: n, Value: n})
		}
		if len(options) == 0 {
			return nil, union.Value{}, fmt.Errorf("no unions defined")
		}
		var err error
		if name, err = prompt.Select("Union", options); err != nil {
			return nil, union.Value{}, err
		}
	}

	u, err := s.Union(name)
	if err != nil {
		return nil, union.Value{}, err
	}

	variant := encodeVariant
	if variant == "" {
		if !interactive {
			return nil, union.Value{}, fmt.Errorf("--variant is required")
		}
		options := make([]prompt.SelectOption, 0)
		for _, rv := range u.Variants() {
			options = append(options, prompt.SelectOption{
				Label:       rv.Name,
				Value:       rv.Name,
				Description: payloadString(rv.Payload),
			})
		}
		if variant, err = prompt.Select("Variant", options); err != nil {
			return nil, union.Value{}, err
		}
	}

	fields := encodeFields
	rv, ok := u.Variant(variant)
	if fields == "" && ok && len(rv.Payload.Fields()) > 0 && interactive {
		label := fmt.Sprintf("Fields %s (JSON)", payloadString(rv.Payload))
		fields, err = prompt.InputWithValidation(label, func(in string) error {
			_, err := parseValue(u, variant, in)
			return err
		})
		if err != nil {
			return nil, union.Value{}, err
		}
	}

	value, err := parseValue(u, variant, fields)
	if err != nil {
		return nil, union.Value{}, err
	}
	return u, value, nil
}
