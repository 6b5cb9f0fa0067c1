package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents the xdrenum configuration.
//
// This structure captures:
//   - Logging configuration
//   - Metrics collection
//   - Named integer constants usable in discriminant expressions
//   - Union definitions
//
// Configuration sources (in order of precedence):
//  1. CLI flags (highest priority)
//  2. Environment variables (XDRENUM_*)
//  3. Configuration file (YAML)
//  4. Default values (lowest priority)
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics controls Prometheus metrics collection
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Constants are evaluated in order; each may refer to the ones before it.
	Constants []ConstantConfig `mapstructure:"constants" validate:"unique=Name,dive" yaml:"constants,omitempty"`

	// Unions are resolved in order; a union may embed any union defined
	// before it by using its name as a field type.
	Unions []UnionConfig `mapstructure:"unions" validate:"unique=Name,dive" yaml:"unions,omitempty"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format
	// Valid values: text, json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output specifies where logs are written
	// Valid values: stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// MetricsConfig controls metrics collection.
// When Enabled is false, no metrics are collected (zero overhead).
type MetricsConfig struct {
	// Enabled turns on collection; the CLI dumps the collected metrics to
	// stderr when a command finishes.
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

// ConstantConfig is a named integer constant.
type ConstantConfig struct {
	// Name must be a valid identifier
	Name string `mapstructure:"name" validate:"required" yaml:"name"`

	// Value is a constant expression, e.g. "100" or "BASE << 4"
	Value string `mapstructure:"value" validate:"required" yaml:"value"`
}

// UnionConfig defines one union.
type UnionConfig struct {
	// Name is unique across the file
	Name string `mapstructure:"name" validate:"required" yaml:"name"`

	// Variants in declaration order
	Variants []VariantConfig `mapstructure:"variants" validate:"required,min=1,unique=Name,dive" yaml:"variants"`
}

// VariantConfig defines one variant of a union.
//
// The payload is either a tuple (Fields, a list of type names) or a struct
// (Struct, a list of named fields). With neither the variant is a unit.
type VariantConfig struct {
	// Name is unique within the union
	Name string `mapstructure:"name" validate:"required" yaml:"name"`

	// Discriminant is an optional constant expression. When empty the
	// variant takes the next implicit value.
	Discriminant string `mapstructure:"discriminant" validate:"excluded_if=DefaultArm true" yaml:"discriminant,omitempty"`

	// DefaultArm marks the catch-all variant receiving unknown
	// discriminants. It must declare exactly one uint32 tuple field.
	DefaultArm bool `mapstructure:"default_arm" yaml:"default_arm,omitempty"`

	// Fields lists tuple field types. A comma-separated string is accepted
	// as well, e.g. "int32, string".
	Fields []string `mapstructure:"fields" validate:"excluded_with=Struct,dive,required" yaml:"fields,omitempty"`

	// Struct lists named fields
	Struct []FieldConfig `mapstructure:"struct" validate:"unique=Name,dive" yaml:"struct,omitempty"`
}

// FieldConfig is a named struct field.
type FieldConfig struct {
	Name string `mapstructure:"name" validate:"required" yaml:"name"`
	Type string `mapstructure:"type" validate:"required" yaml:"type"`
}

// Union returns the union definition with the given name.
func (c *Config) Union(name string) (*UnionConfig, bool) {
	for i := range c.Unions {
		if c.Unions[i].Name == name {
			return &c.Unions[i], true
		}
	}
	return nil, false
}

// Load loads configuration from file, environment, and defaults.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (XDRENUM_*)
//  2. Configuration file
//  3. Default values
//
// Parameters:
//   - configPath: Path to config file (empty string uses default location)
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: Configuration loading or validation error
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setupViper(v, configPath)

	configFileFound, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}

	// If no config file was found, use defaults
	if !configFileFound {
		cfg := GetDefaultConfig()
		return cfg, nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration with helpful error messages.
// Unlike Load, a missing file is an error rather than a fallback to
// defaults, since commands that need union definitions cannot run without one.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Create one with your union definitions, or specify a file:\n"+
				"  xdrenum <command> --config /path/to/unions.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the specified file path in YAML.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// envKeys are the settings that can be overridden from the environment.
var envKeys = []string{
	"logging.level",
	"logging.format",
	"logging.output",
	"metrics.enabled",
}

// setupViper configures viper with environment variables and config file settings.
func setupViper(v *viper.Viper, configPath string) {
	// Environment variables use XDRENUM_ prefix and underscores
	// Example: XDRENUM_LOGGING_LEVEL=DEBUG
	v.SetEnvPrefix("XDRENUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only applies to keys viper already knows about, so the
	// scalar settings are bound explicitly for Unmarshal to see them.
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default location: $XDG_CONFIG_HOME/xdrenum/config.yaml
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
}

// readConfigFile reads the configuration file if it exists.
// Returns (fileFound, error) where fileFound indicates if a config file was found.
func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		// Explicit config file that doesn't exist
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}

	return true, nil
}

// configDecodeHooks returns a combined decode hook for all custom types.
func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		fieldListDecodeHook(),
	)
}

// fieldListDecodeHook returns a mapstructure decode hook that accepts a
// comma-separated string where a list of field types is expected, so
// `fields: "int32, string"` and `fields: [int32, string]` are equivalent.
func fieldListDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf([]string{}) {
			return data, nil
		}

		s := strings.TrimSpace(data.(string))
		if s == "" {
			return []string{}, nil
		}

		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	}
}

// getConfigDir returns the configuration directory path.
//
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config, or falls back to current
// directory (.) if home directory cannot be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "xdrenum")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, ".config", "xdrenum")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
