// Package config implements the "xdrenum config" commands.
package config

import (
	"github.com/spf13/cobra"
)

// Cmd is the parent command for configuration management.
var Cmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Create, validate and describe the xdrenum configuration file.

The configuration declares named constants and the unions to resolve.`,
}

func init() {
	Cmd.AddCommand(initCmd)
	Cmd.AddCommand(validateCmd)
	Cmd.AddCommand(schemaCmd)
}
