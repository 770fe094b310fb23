package config

import (
	"fmt"
	"net/url"

	"github.com/spf13/viper"
)

type Config struct {
	Env              string `mapstructure:"ENV"`
	DatabaseURL      string `mapstructure:"DATABASE_URL"`
	PostgresUsername string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPassword string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresServer   string `mapstructure:"POSTGRES_SERVER"`
	PostgresDatabase string `mapstructure:"POSTGRES_DATABASE"`
	DataDir          string `mapstructure:"DATA_DIR"`
	OpenAIAPIKey     string `mapstructure:"OPENAI_API_KEY"`
	OpenAIModel      string `mapstructure:"OPENAI_MODEL"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("DATA_DIR", ".")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("POSTGRES_USERNAME")
	v.BindEnv("POSTGRES_PASSWORD")
	v.BindEnv("POSTGRES_SERVER")
	v.BindEnv("POSTGRES_DATABASE")
	v.BindEnv("DATA_DIR")
	v.BindEnv("OPENAI_API_KEY")
	v.BindEnv("OPENAI_MODEL")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// ResolveDatabaseURL returns DATABASE_URL when set, otherwise composes a
// connection URL from the POSTGRES_* parts.
func (c *Config) ResolveDatabaseURL() (string, error) {
	if c.DatabaseURL != "" {
		return c.DatabaseURL, nil
	}
	if c.PostgresUsername == "" || c.PostgresServer == "" || c.PostgresDatabase == "" {
		return "", fmt.Errorf("set DATABASE_URL, or POSTGRES_USERNAME, POSTGRES_PASSWORD, POSTGRES_SERVER and POSTGRES_DATABASE")
	}
	u := url.URL{
		Scheme: "postgresql",
		User:   url.UserPassword(c.PostgresUsername, c.PostgresPassword),
		Host:   c.PostgresServer,
		Path:   "/" + c.PostgresDatabase,
	}
	return u.String(), nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}
