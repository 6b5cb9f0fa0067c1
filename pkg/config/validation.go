package config

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the configuration against its struct tags.
//
// Only the shape of the file is checked here. Whether the unions actually
// resolve (discriminant collisions, unknown field types) is decided when
// they are built by the schema package.
func Validate(cfg *Config) error {
	return getValidator().Struct(cfg)
}
