package config

import "strings"

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyUnionDefaults(cfg.Unions)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stderr"
	}
}

// applyUnionDefaults normalizes union definitions.
func applyUnionDefaults(unions []UnionConfig) {
	for i := range unions {
		for j := range unions[i].Variants {
			v := &unions[i].Variants[j]
			v.Discriminant = strings.TrimSpace(v.Discriminant)

			// A default arm always carries the received discriminant.
			if v.DefaultArm && len(v.Fields) == 0 && len(v.Struct) == 0 {
				v.Fields = []string{"uint32"}
			}
		}
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
//
// This is useful for:
//   - Generating sample configuration files
//   - Testing
//   - Documentation
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// GetExampleConfig returns the default configuration plus a small set of
// unions covering every payload shape. It is what "xdrenum config init"
// writes.
func GetExampleConfig() *Config {
	cfg := GetDefaultConfig()
	cfg.Constants = []ConstantConfig{
		{Name: "POINT_BASE", Value: "100"},
	}
	cfg.Unions = []UnionConfig{
		{
			Name: "Message",
			Variants: []VariantConfig{
				{Name: "Text", Discriminant: "0", Fields: []string{"string"}},
				{Name: "Ping"},
				{Name: "Point", Discriminant: "POINT_BASE", Struct: []FieldConfig{
					{Name: "x", Type: "int32"},
					{Name: "y", Type: "float64"},
				}},
				{Name: "Unknown", DefaultArm: true, Fields: []string{"uint32"}},
			},
		},
	}
	return cfg
}
