package config

import (
	"time"

	pconfig "github.com/dmitrijs2005/noteshelf/internal/platform/config"
)

// Config holds runtime settings for the noteshelf CLI.
type Config struct {
	ServerEndpointAddr string        `env:"NOTESHELF_SERVER_ADDR"`
	RequestTimeout     time.Duration `env:"NOTESHELF_REQUEST_TIMEOUT"`
	SessionDir         string        `env:"NOTESHELF_SESSION_DIR"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.SessionDir = ".noteshelf"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if err := pconfig.ParseEnv(cfg); err != nil {
		panic(err)
	}
	parseFlags(cfg)
	return cfg
}
