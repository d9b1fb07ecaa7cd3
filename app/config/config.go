// Package config loads blogport settings from defaults, an optional YAML
// file, BLOGPORT_* environment variables and command-line overrides, in
// increasing order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const EnvPrefix = "BLOGPORT"

var validate = validator.New()

type Config struct {
	Store  StoreConfig  `mapstructure:"store"`
	Import ImportConfig `mapstructure:"import"`
	Server ServerConfig `mapstructure:"server"`
}

type StoreConfig struct {
	Path        string        `mapstructure:"path" validate:"required"`
	OpenTimeout time.Duration `mapstructure:"open_timeout" validate:"gte=0"`
}

type ImportConfig struct {
	Collection         string `mapstructure:"collection" validate:"required"`
	SiteURL            string `mapstructure:"site_url" validate:"required,url"`
	Timezone           string `mapstructure:"timezone" validate:"required"`
	RewriteMap         string `mapstructure:"rewrite_map"`
	SyndicationMarker  string `mapstructure:"syndication_marker"`
	KeepSyndicated     bool   `mapstructure:"keep_syndicated"`
	MaxAccountAttempts int    `mapstructure:"max_account_attempts" validate:"gte=1"`
	PasswordCost       int    `mapstructure:"password_cost" validate:"gte=4,lte=31"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
}

// Defaults returns the settings used when nothing else is configured.
func Defaults() map[string]interface{} {
	return map[string]interface{}{
		"store.path":                  "data/badger",
		"store.open_timeout":          "10s",
		"import.collection":           "main",
		"import.site_url":             "http://localhost:8080",
		"import.timezone":             "America/New_York",
		"import.rewrite_map":          "rewrite.map",
		"import.syndication_marker":   "| The Effective Altruism Blog",
		"import.keep_syndicated":      false,
		"import.max_account_attempts": 100,
		"import.password_cost":        10,
		"server.addr":                 ":8080",
	}
}

// Load reads configuration. file may be empty. Overrides are applied last
// and keyed like the file, e.g. "import.collection".
func Load(file string, overrides map[string]interface{}) (*Config, error) {
	v := viper.New()
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", file, err)
		}
	}

	for key, value := range overrides {
		v.Set(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings, including that the timezone exists.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Import.Location(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Location resolves the export timezone.
func (c ImportConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
