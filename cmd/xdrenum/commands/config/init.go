package config

import (
	"fmt"
	"os"

	"github.com/algebnaly/xdr-brk-enum/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Write an example configuration with one union covering every payload
shape: a tuple, a unit, a struct and a default arm.

Examples:
  # Create the default config
  xdrenum config init

  # Create a config at a specific path
  xdrenum config init --config ./unions.yaml`,
	RunE: runConfigInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	// Get config path from parent's persistent flag
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(configPath); err == nil && !initForce {
		return fmt.Errorf("configuration file already exists: %s\n\n"+
			"Use --force to overwrite it", configPath)
	}

	if err := config.SaveConfig(config.GetExampleConfig(), configPath); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", configPath)
	return nil
}
