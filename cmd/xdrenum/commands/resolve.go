package commands

import (
	"fmt"
	"strconv"

	"github.com/algebnaly/xdr-brk-enum/cmd/xdrenum/cmdutil"
	"github.com/algebnaly/xdr-brk-enum/internal/cli/output"
	"github.com/algebnaly/xdr-brk-enum/pkg/union"
	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [union]",
	Short: "Show resolved discriminants",
	Long: `Show the discriminant assigned to every variant of a union.

Without an argument, lists the unions defined in the configuration.

Examples:
  # List all unions
  xdrenum resolve --config unions.yaml

  # Show the discriminants of one union
  xdrenum resolve Message --config unions.yaml

  # As JSON
  xdrenum resolve Message -o json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

// unionList is the listing printed when no union is named.
type unionList []unionSummary

type unionSummary struct {
	Name       string `json:"name" yaml:"name"`
	Variants   int    `json:"variants" yaml:"variants"`
	DefaultArm string `json:"default_arm,omitempty" yaml:"default_arm,omitempty"`
}

// Headers implements output.TableRenderer.
func (l unionList) Headers() []string {
	return []string{"UNION", "VARIANTS", "DEFAULT ARM"}
}

// Rows implements output.TableRenderer.
func (l unionList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, u := range l {
		def := u.DefaultArm
		if def == "" {
			def = "-"
		}
		rows = append(rows, []string{u.Name, strconv.Itoa(u.Variants), def})
	}
	return rows
}

// variantList is the resolved discriminant table of one union.
type variantList []variantSummary

type variantSummary struct {
	Name         string  `json:"name" yaml:"name"`
	Discriminant *uint32 `json:"discriminant,omitempty" yaml:"discriminant,omitempty"`
	Explicit     bool    `json:"explicit" yaml:"explicit"`
	DefaultArm   bool    `json:"default_arm,omitempty" yaml:"default_arm,omitempty"`
	Kind         string  `json:"kind" yaml:"kind"`
	Payload      string  `json:"payload" yaml:"payload"`
}

// Headers implements output.TableRenderer.
func (l variantList) Headers() []string {
	return []string{"VARIANT", "DISCRIMINANT", "HEX", "SOURCE", "PAYLOAD"}
}

// Rows implements output.TableRenderer.
func (l variantList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, v := range l {
		disc, hexDisc, source := "*", "-", "default arm"
		if v.Discriminant != nil {
			disc = strconv.FormatUint(uint64(*v.Discriminant), 10)
			hexDisc = fmt.Sprintf("0x%08x", *v.Discriminant)
			source = "implicit"
			if v.Explicit {
				source = "explicit"
			}
		}
		rows = append(rows, []string{v.Name, disc, hexDisc, source, v.Payload})
	}
	return rows
}

func newVariantList(u *union.Resolved) variantList {
	variants := u.Variants()
	list := make(variantList, 0, len(variants))
	for _, rv := range variants {
		s := variantSummary{
			Name:       rv.Name,
			Explicit:   rv.Explicit,
			DefaultArm: rv.DefaultArm,
			Kind:       rv.Payload.Kind().String(),
			Payload:    payloadString(rv.Payload),
		}
		if !rv.DefaultArm {
			d := rv.Discriminant
			s.Discriminant = &d
		}
		list = append(list, s)
	}
	return list
}

func runResolve(cmd *cobra.Command, args []string) error {
	session, err := cmdutil.Load(cmd)
	if err != nil {
		return err
	}

	p, err := cmdutil.GetPrinter(cmd)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		reg := session.Schema.Registry
		list := make(unionList, 0, len(reg.Names()))
		for _, name := range reg.Names() {
			u := reg.MustGet(name)
			s := unionSummary{Name: name, Variants: len(u.Variants())}
			if def, ok := u.DefaultArm(); ok {
				s.DefaultArm = def.Name
			}
			list = append(list, s)
		}
		if len(list) == 0 && p.Format() == output.FormatTable {
			p.Warning("No unions defined")
			return session.FlushMetrics(cmd.ErrOrStderr())
		}
		if err := p.Print(list); err != nil {
			return err
		}
		return session.FlushMetrics(cmd.ErrOrStderr())
	}

	u, err := session.Schema.Union(args[0])
	if err != nil {
		return err
	}
	if err := p.Print(newVariantList(u)); err != nil {
		return err
	}
	return session.FlushMetrics(cmd.ErrOrStderr())
}
