// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// DefaultConfigFile is read from the working directory when no --config
// flag is given.
const DefaultConfigFile = "sqlcraft.yaml"

// EnvPrefix is the prefix of the environment variables overriding the
// configuration, as in SQLCRAFT_FORMAT=json.
const EnvPrefix = "SQLCRAFT_"

// Output formats.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatTable = "table"
)

// Config holds the settings of the render command.
type Config struct {
	// Format is the output format: text, json or table.
	Format string `koanf:"format"`
	// Inline writes arguments into the SQL as literals.
	Inline bool `koanf:"inline"`
	// QuoteAll double quotes every identifier.
	QuoteAll bool `koanf:"quote_all"`
	// Watch renders again whenever a description file changes.
	Watch bool `koanf:"watch"`
	// Debounce is how long to wait for changes to settle in watch mode.
	Debounce time.Duration `koanf:"debounce"`
	// LogLevel is one of debug, info, warn or error.
	LogLevel string `koanf:"log_level"`
}

var defaults = map[string]any{
	"format":    FormatText,
	"inline":    false,
	"quote_all": false,
	"watch":     false,
	"debounce":  100 * time.Millisecond,
	"log_level": "warn",
}

// LoadConfig loads the configuration. From lowest to highest precedence:
// defaults, the config file, SQLCRAFT_ environment variables and the flags
// explicitly set on the command line.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("cannot load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("cannot read config file %s: %w", cfgFile, err)
		}
	}

	// SQLCRAFT_QUOTE_ALL -> quote_all. Variables that name no setting are
	// ignored.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if _, ok := defaults[key]; !ok {
			return ""
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("cannot load environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || f.Name == "config" {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("cannot load flags: %w", err)
		}
	}

	var cfg Config
	err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			WeaklyTypedInput: true,
			ErrorUnused:      true,
			Result:           &cfg,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cannot decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings have acceptable values.
func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON, FormatTable:
	default:
		return fmt.Errorf("invalid format %q: must be one of text, json, table", c.Format)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("invalid debounce %s: must not be negative", c.Debounce)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}
