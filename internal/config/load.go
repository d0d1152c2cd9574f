package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables read by Load.
const EnvPrefix = "KANJI"

// ErrInvalidConfig is returned when the loaded configuration fails validation.
var ErrInvalidConfig = errors.New("config validation failed")

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("storage.engine", EngineJSON)
	v.SetDefault("storage.path", "kanji-trainer.json")
	v.SetDefault("storage.database_url", "")

	v.SetDefault("session.question_count", 10)
	v.SetDefault("session.phase_policy", PhasePolicySingle)
	v.SetDefault("session.milestone_interval", 20)
	v.SetDefault("session.feedback_delay", "1200ms")
	v.SetDefault("session.reward_popup_delay", "2000ms")
	v.SetDefault("session.food_popup_delay", "2000ms")
	v.SetDefault("session.food_after_exit_delay", "300ms")
	v.SetDefault("session.evolution.transform", "1s")
	v.SetDefault("session.evolution.reveal", "3s")
	v.SetDefault("session.evolution.complete", "4s")

	v.SetDefault("rewards.seed", []string{"アイスクリーム", "映画鑑賞", "ゲーム30分"})

	v.SetDefault("random.seed", 0)
}

// Load reads configuration from defaults, an optional config file and
// KANJI_ environment variables, in increasing order of precedence.
//
// When configFile is empty, kanji-trainer.yaml is looked up in the working
// directory and $HOME/.config/kanji-trainer; a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("kanji-trainer")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/kanji-trainer")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks struct constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	switch c.Storage.Engine {
	case EngineJSON, EngineSQLite:
		if strings.TrimSpace(c.Storage.Path) == "" {
			return fmt.Errorf("%w: storage.path is required for the %s engine", ErrInvalidConfig, c.Storage.Engine)
		}
	}
	return nil
}
