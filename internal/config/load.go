package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. TASKIFY_SERVER_PORT.
const EnvPrefix = "TASKIFY"

var defaults = map[string]any{
	"server.port":                        8080,
	"server.log_level":                   "info",
	"server.shutdown_timeout_seconds":    10,
	"database.driver":                    "pgx",
	"database.url":                       "",
	"database.max_open_conns":            25,
	"database.max_idle_conns":            25,
	"database.conn_max_lifetime_minutes": 5,
	"auth.jwt_secret":                    "",
	"auth.token_lifetime_minutes":        60 * 24,
	"auth.bcrypt_cost":                   10,
	"redis.addr":                         "",
	"redis.password":                     "",
	"redis.db":                           0,
	"redis.board_ttl_seconds":            60,
	"mail.host":                          "",
	"mail.port":                          587,
	"mail.username":                      "",
	"mail.password":                      "",
	"mail.from":                          "",
	"jobs.worker_count":                  2,
	"jobs.queue_size":                    100,
	"app.base_url":                       "",
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the file.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path searches
// the working directory for config.yaml and tolerates its absence.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
