package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// loadFromEnv overrides configuration with environment variables declared in
// the env struct tags. Unset variables leave the file/default value untouched.
func loadFromEnv(config *Config) error {
	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
