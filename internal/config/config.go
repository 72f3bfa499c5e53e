// Package config loads and validates the HCL configuration file shared by
// all CLI commands.
package config

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the root configuration.
type Config struct {
	// LogLevel is the hclog level name (trace, debug, info, warn, error).
	LogLevel string `hcl:"log_level,optional"`

	SolidWorks *SolidWorksConfig `hcl:"solidworks,block"`
	Vault      *VaultConfig      `hcl:"vault,block"`
	Journal    *JournalConfig    `hcl:"journal,block"`
}

// SolidWorksConfig configures the application session.
type SolidWorksConfig struct {
	// Version is the application release year, e.g. 2023.
	Version int `hcl:"version"`

	// Headless hides the application window during automation.
	Headless bool `hcl:"headless,optional"`

	// ExportDir overrides the default export destination.
	ExportDir string `hcl:"export_dir,optional"`

	// Scene overrides the background scene asset used while staging.
	Scene string `hcl:"scene,optional"`
}

// VaultConfig configures the vault session.
type VaultConfig struct {
	// Name is the vault logged into, e.g. "My_Vault".
	Name string `hcl:"name"`
}

// JournalConfig configures the local operation journal.
type JournalConfig struct {
	// Path is the sqlite database file. Empty disables journaling.
	Path string `hcl:"path,optional"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel:   "info",
		SolidWorks: &SolidWorksConfig{Version: 2023, Headless: true},
	}
}

// Load parses and validates the configuration file at path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.LogLevel,
			validation.In("trace", "debug", "info", "warn", "error")),
		validation.Field(&c.SolidWorks, validation.Required),
	); err != nil {
		return err
	}

	if err := validation.ValidateStruct(c.SolidWorks,
		validation.Field(&c.SolidWorks.Version,
			validation.Required, validation.Min(1993), validation.Max(2100)),
	); err != nil {
		return fmt.Errorf("solidworks: %w", err)
	}

	if c.Vault != nil {
		if err := validation.ValidateStruct(c.Vault,
			validation.Field(&c.Vault.Name, validation.Required),
		); err != nil {
			return fmt.Errorf("vault: %w", err)
		}
	}
	return nil
}
