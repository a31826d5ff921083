package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	configName = ".display-switcher"
	envPrefix  = "DISPLAY_SWITCHER"
)

type Config struct {
	ProfilesFile    string        `mapstructure:"profiles_file"`
	LogLevel        string        `mapstructure:"log_level"`
	QueryAttempts   int           `mapstructure:"query_attempts"`
	QueryRetryDelay time.Duration `mapstructure:"query_retry_delay"`
	ApplyDPI        bool          `mapstructure:"apply_dpi"`
	ApplyTopology   bool          `mapstructure:"apply_topology"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("profiles_file", filepath.Join("~", "Display Profiles", "profiles.json"))
	v.SetDefault("log_level", "info")
	v.SetDefault("query_attempts", 3)
	v.SetDefault("query_retry_delay", "100ms")
	v.SetDefault("apply_dpi", true)
	v.SetDefault("apply_topology", true)
}

// Load reads the config file, then DISPLAY_SWITCHER_* environment variables.
// An empty path means ~/.display-switcher.yaml; a missing default file is not
// an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	expanded, err := homedir.Expand(cfg.ProfilesFile)
	if err != nil {
		return nil, fmt.Errorf("expand profiles_file: %w", err)
	}
	cfg.ProfilesFile = expanded

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	if c.QueryAttempts < 1 {
		return fmt.Errorf("query_attempts must be at least 1, got %d", c.QueryAttempts)
	}
	if c.QueryRetryDelay < 0 {
		return fmt.Errorf("query_retry_delay must not be negative")
	}
	if strings.TrimSpace(c.ProfilesFile) == "" {
		return errors.New("profiles_file is empty")
	}
	return nil
}

func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
