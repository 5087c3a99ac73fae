package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Guards  GuardsConfig  `mapstructure:"guards"`
}

type LoggingConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

type GuardsConfig struct {
	IgnoreErrors bool             `mapstructure:"ignore_errors"`
	EmojiGuard   EmojiGuardConfig `mapstructure:"emoji_guard"`
}

type EmojiGuardConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxExamples int  `mapstructure:"max_examples"`
}

var globalConfig Config

// Load reads hooks.yaml if one is present and fills in defaults otherwise.
// A missing config file is not an error: a hook must stay runnable with no
// setup beyond the binary itself.
func Load(configPath string) error {
	viper.SetConfigName("hooks")
	viper.SetConfigType("yaml")
	if configPath != "" {
		viper.AddConfigPath(configPath)
	}
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	setDefaultValues()

	viper.SetEnvPrefix("CLAUDE_HOOKS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("error reading config file hooks.yaml: %w", err)
		}
	}

	if err := viper.Unmarshal(&globalConfig); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return nil
}

func setDefaultValues() {
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
	viper.SetDefault("guards.ignore_errors", true)
	viper.SetDefault("guards.emoji_guard.enabled", true)
	viper.SetDefault("guards.emoji_guard.max_examples", 3)
}

func GetConfig() *Config {
	return &globalConfig
}
