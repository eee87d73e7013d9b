// Package config loads PyLearn settings from defaults, an optional YAML
// file, a .env file and PYLEARN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the resolved application configuration.
type Config struct {
	DB        DBConfig        `mapstructure:"db"`
	User      UserConfig      `mapstructure:"user"`
	Log       LogConfig       `mapstructure:"log"`
	Validator ValidatorConfig `mapstructure:"validator"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type UserConfig struct {
	ID int64 `mapstructure:"id"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Console bool   `mapstructure:"console"`
}

type ValidatorConfig struct {
	Scorer            string  `mapstructure:"scorer"`
	TypingThreshold   float64 `mapstructure:"typing_threshold"`
	ExerciseThreshold float64 `mapstructure:"exercise_threshold"`
}

// EnvPrefix prefixes every environment override, e.g. PYLEARN_LOG_LEVEL.
const EnvPrefix = "PYLEARN"

func setDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "")
	v.SetDefault("user.id", 1)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.console", false)
	v.SetDefault("validator.scorer", "positional")
	v.SetDefault("validator.typing_threshold", 0.8)
	v.SetDefault("validator.exercise_threshold", 0.7)
}

// Load reads configuration. An explicit path must exist; otherwise
// config.yaml is looked up in $XDG_CONFIG_HOME/pylearn and the working
// directory and skipped when absent. A .env file in the working directory
// is loaded first without overriding variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	if c.User.ID <= 0 {
		return fmt.Errorf("user.id must be positive, got %d", c.User.ID)
	}
	switch strings.ToLower(c.Validator.Scorer) {
	case "", "positional", "levenshtein":
	default:
		return fmt.Errorf("unknown validator.scorer %q", c.Validator.Scorer)
	}
	for name, t := range map[string]float64{
		"validator.typing_threshold":   c.Validator.TypingThreshold,
		"validator.exercise_threshold": c.Validator.ExerciseThreshold,
	} {
		if t < 0 || t > 1 {
			return fmt.Errorf("%s must be within [0, 1], got %v", name, t)
		}
	}
	return nil
}

func configDir() (string, error) {
	if d := os.Getenv("XDG_CONFIG_HOME"); d != "" {
		return filepath.Join(d, "pylearn"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "pylearn"), nil
}
