package config

import (
	"fmt"

	"github.com/algebnaly/xdr-brk-enum/pkg/config"
	"github.com/algebnaly/xdr-brk-enum/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the xdrenum configuration file.

Checks for syntax errors, missing required fields and invalid values,
then resolves every union so that duplicate or out of range
discriminants and unknown field types are reported as well.

Examples:
  # Validate default config
  xdrenum config validate

  # Validate specific config file
  xdrenum config validate --config ./unions.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	s, err := schema.Build(cfg)
	if err != nil {
		return err
	}

	// Determine path for display
	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
	}

	var warnings []string
	if len(cfg.Unions) == 0 {
		warnings = append(warnings, "No unions defined")
	}
	for _, name := range s.Registry.Names() {
		if len(s.Registry.MustGet(name).Variants()) == 1 {
			warnings = append(warnings, fmt.Sprintf("Union %s has a single variant", name))
		}
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Constants:       %d\n", len(cfg.Constants))
	_, _ = fmt.Fprintf(out, "  Unions:          %d\n", len(cfg.Unions))
	_, _ = fmt.Fprintf(out, "  Log level:       %s\n", cfg.Logging.Level)
	_, _ = fmt.Fprintf(out, "  Metrics:         %t\n", cfg.Metrics.Enabled)

	return nil
}
