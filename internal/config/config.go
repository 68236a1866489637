// Package config provides configuration management for sitekit using Viper
// for loading from .sitekit.yml, SITEKIT_* environment variables, and
// command-line flags, plus the build-mode gate and the source/build
// directory map.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode      Mode          `mapstructure:"-"`
	Root      string        `mapstructure:"root"`
	Server    ServerConfig  `mapstructure:"server"`
	Theme     string        `mapstructure:"theme"`     // theme file path, relative to root
	JSEntry   string        `mapstructure:"js_entry"`  // entry file name under src/assets/js
	Namespace string        `mapstructure:"namespace"` // template namespace object path
	Watch     WatchConfig   `mapstructure:"watch"`
	Log       LoggingConfig `mapstructure:"log"`

	Dirs Dirs `mapstructure:"-"`
}

type ServerConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	NoOpen bool   `mapstructure:"no-open"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load builds the configuration from whatever viper has accumulated (config
// file, SITEKIT_* environment, bound flags), applies defaults, resolves the
// build mode from NODE_ENV, and computes the directory map.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Theme == "" {
		cfg.Theme = "theme.yml"
	}
	if cfg.JSEntry == "" {
		cfg.JSEntry = "main.js"
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "App.templates"
	}
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 100 * time.Millisecond
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = viper.GetString("log-level")
	}

	cfg.Mode = ModeFromEnv()
	cfg.Dirs = DefaultDirs(cfg.Root)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d is not in valid range 0-65535", cfg.Server.Port)
	}
	for _, ch := range []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"} {
		if strings.Contains(cfg.Server.Host, ch) {
			return fmt.Errorf("server host contains dangerous character: %s", ch)
		}
	}
	if strings.Contains(filepath.Clean(cfg.Namespace), "..") {
		return fmt.Errorf("namespace contains path traversal: %s", cfg.Namespace)
	}
	for _, part := range strings.Split(cfg.Namespace, ".") {
		if part == "" {
			return fmt.Errorf("namespace has empty segment: %q", cfg.Namespace)
		}
	}
	return nil
}
