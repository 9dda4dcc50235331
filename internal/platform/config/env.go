// Package config holds process-level configuration helpers shared by the
// server and the CLI.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// ParseEnv overlays target with values from environment variables named by
// its `env` struct tags. Fields whose variable is unset keep their value.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
