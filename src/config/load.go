package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

// EnvAPIKey overrides llm.api_key so the secret can stay out of the config
// file.
const EnvAPIKey = "OCCAM_API_KEY"

// Load reads the config file at path, applies environment overrides, and
// validates the result. A missing file is not an error: defaults apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		meta, err := toml.DecodeFile(path, cfg)
		switch {
		case os.IsNotExist(err):
			// fall through to defaults
		case err != nil:
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		default:
			if undecoded := meta.Undecoded(); len(undecoded) > 0 {
				return nil, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
			}
		}
	}

	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.LLM.APIKey = key
	}
	if cfg.Owner == "" {
		cfg.Owner = cfg.Signal.Number
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints and cross-field requirements.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if c.Signal.Enabled && c.Signal.Number == "" {
		return fmt.Errorf("configuration validation failed: signal.number is required when signal is enabled")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}
