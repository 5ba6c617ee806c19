// Package config holds the generator settings: the terminal, the data
// sources and where tables are written.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"gopkg.in/yaml.v3"
)

// env var names
const (
	_APPNAME       = "MMLCD"
	EnvOutDir      = _APPNAME + "_OUTDIR"
	EnvPrefix      = _APPNAME + "_PREFIX"
	EnvSrc         = _APPNAME + "_SRC"
	EnvLogLevel    = _APPNAME + "_LOG_LEVEL"
	EnvLCGEndpoint = _APPNAME + "_LCG_URL"
	EnvProxy       = _APPNAME + "_PROXY"
)

// Config ...
type Config struct {
	Terminal    TerminalConfig `yaml:"terminal"`
	RateCenters []string       `yaml:"rate_centers,omitempty"`
	Data        DataConfig     `yaml:"data"`
	Output      OutputConfig   `yaml:"output"`
	Log         LogConfig      `yaml:"log"`
}

// TerminalConfig identifies the payphone the tables are built for.
type TerminalConfig struct {
	NPA     int    `yaml:"npa"`
	NXX     int    `yaml:"nxx"`
	Country string `yaml:"country"` // US, CA; empty = derive from NPA-NXX
	State   string `yaml:"state"`   // US only
}

// DataConfig configures numbering plan sources.
type DataConfig struct {
	Store      string `yaml:"store"`        // source file / region cache directory
	File       string `yaml:"file"`         // explicit source file, skips fetch
	Fetch      bool   `yaml:"fetch"`        // download missing sources
	MaxAgeDays int    `yaml:"max_age_days"` // refresh cached data older than this
	LCGURL     string `yaml:"lcg_url"`      // local calling guide endpoint

	Proxy      string              `yaml:"proxy,omitempty"`        // outbound proxy, empty = environment
	TLSKeyPins map[string][]string `yaml:"tls_key_pins,omitempty"` // per host sha2 keypins
}

// OutputConfig ...
type OutputConfig struct {
	Dir     string   `yaml:"dir"`
	Prefix  string   `yaml:"prefix"`
	Workers int      `yaml:"workers"`
	Tiers   []string `yaml:"tiers,omitempty"` // empty = all
}

// LogConfig ...
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig ...
func DefaultConfig() *Config {
	return &Config{
		Terminal: TerminalConfig{
			NPA:   408,
			NXX:   535,
			State: "CA",
		},
		Data: DataConfig{
			Store:      ".",
			Fetch:      true,
			MaxAgeDays: 14,
			LCGURL:     "https://localcallingguide.com",
		},
		Output: OutputConfig{
			Dir:    ".",
			Prefix: "mm_table",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file yields
// the defaults. Environment overrides are applied last.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save ...
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if env, ok := syscall.Getenv(EnvOutDir); ok && env != "" {
		c.Output.Dir = env
	}
	if env, ok := syscall.Getenv(EnvPrefix); ok && env != "" {
		c.Output.Prefix = env
	}
	if env, ok := syscall.Getenv(EnvSrc); ok && env != "" {
		c.Data.Store = env
	}
	if env, ok := syscall.Getenv(EnvLogLevel); ok && env != "" {
		c.Log.Level = env
	}
	if env, ok := syscall.Getenv(EnvLCGEndpoint); ok && env != "" {
		c.Data.LCGURL = env
	}
	if env, ok := syscall.Getenv(EnvProxy); ok && env != "" {
		c.Data.Proxy = env
	}
}

// Validate ...
func (c *Config) Validate() error {
	if c.Terminal.NPA < 200 || c.Terminal.NPA > 999 {
		return fmt.Errorf("terminal npa %d out of range 200-999", c.Terminal.NPA)
	}
	if c.Terminal.NXX < 200 || c.Terminal.NXX > 999 {
		return fmt.Errorf("terminal nxx %d out of range 200-999", c.Terminal.NXX)
	}
	switch c.Terminal.Country {
	case "", "US", "CA":
	default:
		return fmt.Errorf("country %q not supported, want US or CA", c.Terminal.Country)
	}
	if c.Output.Prefix == "" {
		return errors.New("output prefix must not be empty")
	}
	if c.Data.MaxAgeDays < 0 {
		return errors.New("max_age_days must not be negative")
	}
	return nil
}
