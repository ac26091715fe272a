package server

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/elskow/medtrack/internal/config"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// EnvPrefix is prepended to every environment override, e.g.
// MEDTRACK_DATABASE_PASSWORD overrides database.password.
const EnvPrefix = "MEDTRACK"

func LoadConfig() (*config.AppConfig, error) {
	return LoadConfigFrom("./config/server")
}

func LoadConfigFrom(dir string) (*config.AppConfig, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = EnvDevelopment
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config config.AppConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Load environment-specific overrides, e.g. [database.testing]
	if envSettings := v.GetStringMap(fmt.Sprintf("database.%s", env)); len(envSettings) > 0 {
		if err := v.UnmarshalKey(fmt.Sprintf("database.%s", env), &config.Database); err != nil {
			return nil, fmt.Errorf("error unmarshaling env config: %w", err)
		}
	}

	// Comma separated lists arrive as a single string from the environment.
	config.Server.AllowedHosts = splitList(config.Server.AllowedHosts)
	config.Server.CORSOrigins = splitList(config.Server.CORSOrigins)

	if err := validateConfig(&config, env); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.mode", "debug")

	v.SetDefault("grpc.enabled", false)
	v.SetDefault("grpc.port", "9000")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("auth.session_duration", 2*time.Hour)
	v.SetDefault("auth.cookie_secure", true)
	v.SetDefault("auth.lockout_threshold", 5)

	v.SetDefault("security.csrf_enabled", true)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.sweep_interval", 5*time.Minute)
	v.SetDefault("rate_limit.idle_ttl", 10*time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.rotation_hours", 24)
	v.SetDefault("log.max_age_days", 7)
}

func validateConfig(cfg *config.AppConfig, env string) error {
	if cfg.Auth.SessionSecret == "" {
		if env == EnvProduction {
			return errors.New("auth.session_secret must be set in production")
		}
		cfg.Auth.SessionSecret = "insecure-development-secret"
	}
	if cfg.Auth.LockoutThreshold <= 0 {
		return fmt.Errorf("auth.lockout_threshold must be positive, got %d", cfg.Auth.LockoutThreshold)
	}
	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	return nil
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
