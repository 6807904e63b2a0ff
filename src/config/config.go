// Package config loads and validates the assistant configuration from a TOML
// file, environment overrides, and XDG defaults.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Config is the full assistant configuration.
type Config struct {
	// Owner is the trusted sender identity. Defaults to the Signal number.
	Owner string `toml:"owner"`

	LLM    LLMConfig    `toml:"llm"`
	Store  StoreConfig  `toml:"store"`
	Tools  ToolsConfig  `toml:"tools"`
	Signal SignalConfig `toml:"signal"`
	CLI    CLIConfig    `toml:"cli"`
	Google GoogleConfig `toml:"google"`
}

// LLMConfig configures the model backend and completion loop.
type LLMConfig struct {
	Model         string `toml:"model"`
	BaseURL       string `toml:"base_url" validate:"omitempty,url"`
	APIKey        string `toml:"api_key"`
	MaxTokens     int    `toml:"max_tokens" validate:"gte=1"`
	MaxToolRounds int    `toml:"max_tool_rounds" validate:"gte=1"`
	Timezone      string `toml:"timezone"`
}

// StoreConfig configures conversation persistence.
type StoreConfig struct {
	Path       string `toml:"path"`
	MaxHistory int    `toml:"max_history" validate:"gte=0"`
}

// ToolsConfig configures tool dispatch.
type ToolsConfig struct {
	Timeout Duration `toml:"timeout"`
}

// SignalConfig configures the Signal channel.
type SignalConfig struct {
	Enabled bool   `toml:"enabled"`
	Number  string `toml:"number"`
	APIURL  string `toml:"api_url" validate:"omitempty,url"`
}

// CLIConfig configures the interactive CLI channel.
type CLIConfig struct {
	Enabled bool `toml:"enabled"`
}

// GoogleConfig configures the calendar tool collaborator.
type GoogleConfig struct {
	Credentials string `toml:"credentials"`
	CalendarID  string `toml:"calendar_id"`
}

// Duration is a time.Duration that unmarshals from TOML strings like "60s".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// Value returns the wrapped time.Duration.
func (d Duration) Value() time.Duration { return time.Duration(d) }

// Default returns the configuration used when no file overrides anything.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:         "claude-sonnet-4-20250514",
			MaxTokens:     4096,
			MaxToolRounds: 8,
			Timezone:      "America/Toronto",
		},
		Store: StoreConfig{
			Path:       filepath.Join(xdg.StateHome, "occam", "occam.db"),
			MaxHistory: 50,
		},
		Tools: ToolsConfig{
			Timeout: Duration(60 * time.Second),
		},
		Signal: SignalConfig{
			APIURL: "http://signal-api:8080",
		},
		CLI: CLIConfig{
			Enabled: true,
		},
		Google: GoogleConfig{
			Credentials: "data/google-service-account.json",
			CalendarID:  "primary",
		},
	}
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.LLM.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.LLM.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.LLM.Timezone, err)
	}
	return loc, nil
}
