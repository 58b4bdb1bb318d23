// Package config loads application configuration with viper.
//
// Values come from (highest priority first): environment variables prefixed
// with SOUNDRISE_, an optional config.yaml in the working directory or
// ./configs, and built-in defaults. The JWT secret has no default; the
// server refuses to start without one.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port           int           `mapstructure:"port"`
	DBPath         string        `mapstructure:"db_path"`
	UploadDir      string        `mapstructure:"upload_dir"`
	Production     bool          `mapstructure:"production"`
	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTIssuer      string        `mapstructure:"jwt_issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	AdminEmail     string        `mapstructure:"admin_email"` // promoted to ADMIN at startup when set
}

// Load reads configuration and validates the parts the server cannot run
// without. A missing config file is fine; a missing JWT secret is not.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("db_path", "data/soundrise.db")
	v.SetDefault("upload_dir", "public")
	v.SetDefault("production", false)
	v.SetDefault("jwt_issuer", "soundrise")
	v.SetDefault("access_token_ttl", time.Hour)
	v.SetDefault("admin_email", "")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.SetEnvPrefix("soundrise")
	v.AutomaticEnv()
	// jwt_secret has no default, so AutomaticEnv alone never surfaces it
	// through Unmarshal. Bind it explicitly.
	if err := v.BindEnv("jwt_secret"); err != nil {
		return nil, fmt.Errorf("config: binding jwt_secret: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("config: jwt_secret is required (set SOUNDRISE_JWT_SECRET)")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("config: invalid port %d", cfg.Port)
	}
	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("config: access_token_ttl must be positive, got %s", cfg.AccessTokenTTL)
	}

	return &cfg, nil
}
