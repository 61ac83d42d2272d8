package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr        string
		Environment string
	}
	Database struct {
		Path string
	}
	Auth struct {
		SessionSecret string
		TokenTTLHours int
	}
}

// IsProduction reports whether the server runs in a production-like
// environment. It controls the Secure attribute on the session cookie.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// Load reads configuration from environment variables and optional config files.
// The session secret has no default on purpose: callers must treat an empty
// value as a fatal startup error.
func Load() (Config, error) {
	_ = godotenv.Load() // optional .env, never overrides real env

	v := viper.New()
	v.SetEnvPrefix("AUTHGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("database.path", "data/authgate.db")
	v.SetDefault("auth.sessionsecret", "")
	v.SetDefault("auth.tokenttlhours", 24*7)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
