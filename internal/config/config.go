package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// SchemaEntry is one `[[schemas]]` catalog entry: a file-pattern
// association to a schema URI, optionally scoped to a named sub-tree
// (spec §4.5 item 1, e.g. `pyproject.toml`'s `tool.tombi`).
type SchemaEntry struct {
	Path string `mapstructure:"path"`
	URI  string `mapstructure:"schema"`
	Root string `mapstructure:"root"`
}

// Config is `tombi.toml`'s own top-level shape (spec §6.2).
type Config struct {
	TOMLVersion string        `mapstructure:"toml-version"`
	Schemas     []SchemaEntry `mapstructure:"schemas"`
	CatalogURLs []string      `mapstructure:"schema-catalogs"`
	Format      map[string]any `mapstructure:"format"`
	Lint        map[string]any `mapstructure:"lint"`
}

// knownTopLevelKeys is the closed set `tombi.toml` recognizes. Anything
// else is rejected (spec §6.2 "strict-by-design... unknown keys are
// errors"), mirroring the teacher's `validateConfig` pass.
var knownTopLevelKeys = map[string]bool{
	"toml-version":    true,
	"schemas":         true,
	"schema-catalogs": true,
	"format":          true,
	"lint":            true,
}

// Load reads path (typically "tombi.toml") via viper. A missing file
// yields an empty Config, not an error — the CLI and LSP both run
// schema-less by default.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := rejectUnknownKeys(v.AllSettings()); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config %s: %w", path, err)
	}
	return cfg, nil
}

func rejectUnknownKeys(settings map[string]any) error {
	for key := range settings {
		if !knownTopLevelKeys[key] {
			return fmt.Errorf("unknown config key %q", key)
		}
	}
	return nil
}
