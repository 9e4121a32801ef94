// Package config loads viewer settings from abyss.toml, ABYSS_*
// environment variables, and defaults, in that order of precedence
// below command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config is the resolved viewer configuration
type Config struct {
	// Source is the dataset root: an http(s) base URL or a local
	// directory path
	Source string `mapstructure:"source"`

	// Backend is the live-render server base URL; empty disables
	// live rendering
	Backend string `mapstructure:"backend"`

	// Dataset preselects a dataset id from the index
	Dataset string `mapstructure:"dataset"`

	// Autoplay starts path playback once the first view loads
	Autoplay bool `mapstructure:"autoplay"`

	// Sound enables audio feedback cues
	Sound bool `mapstructure:"sound"`

	LogFile  string `mapstructure:"log_file"`
	LogLevel string `mapstructure:"log_level"`
}

// Load reads configuration. file overrides the default search path
// (".", "$HOME/.config/abyss") when non-empty; a missing config file
// is not an error, the defaults and environment still apply
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("abyss")
	v.SetConfigType("toml")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/abyss")
	}

	v.SetEnvPrefix("ABYSS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("source", "http://localhost:8000")
	v.SetDefault("backend", "")
	v.SetDefault("dataset", "")
	v.SetDefault("autoplay", false)
	v.SetDefault("sound", false)
	v.SetDefault("log_file", "abyss.log")
	v.SetDefault("log_level", "info")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// NewLogger builds the file logger. The terminal belongs to the
// viewer, so logs always go to a rotated file
func NewLogger(cfg *Config) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
	})

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
