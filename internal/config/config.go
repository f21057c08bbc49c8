package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultAllowOrigin is what the ingestion endpoint answers in
// Access-Control-Allow-Origin unless configured otherwise.
const DefaultAllowOrigin = "*"

// Config holds application configuration
type Config struct {
	DatabaseURL      string
	DatabaseDriver   string // "postgres" or "sqlite"; empty means detect from DatabaseURL
	Port             string
	SecureCookies    bool
	TrackAllowOrigin string
	MetricsEnabled   bool
}

// Load loads configuration from multiple sources with priority:
// 1. Command flags (set via LoadWithOverrides)
// 2. Config file (./booster.toml or $XDG_CONFIG_HOME/booster/booster.toml)
// 3. Environment variables (a .env file in the working directory is read first)
func Load() (*Config, error) {
	return LoadWithOverrides("", "")
}

// LoadWithOverrides loads config and applies flag overrides
func LoadWithOverrides(databaseURL, port string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	v := newBaseViper()
	_ = v.ReadInConfig()
	return buildConfig(v, databaseURL, port), nil
}

// loadDotEnv never overrides variables that are already set in the environment.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("booster")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	// XDG base directory, resolved by hand so tests can point it at a temp dir
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "booster"))
	}

	return v
}

func buildConfig(v *viper.Viper, overrideDatabaseURL, overridePort string) *Config {
	cfg := &Config{
		Port:             "3000",
		SecureCookies:    true, // Default to secure (safe for production/HTTPS proxies)
		TrackAllowOrigin: DefaultAllowOrigin,
		MetricsEnabled:   true,
	}

	// Apply config file values
	if v.IsSet("database_url") {
		cfg.DatabaseURL = v.GetString("database_url")
	}
	if v.IsSet("database_driver") {
		cfg.DatabaseDriver = v.GetString("database_driver")
	}
	if v.IsSet("port") {
		cfg.Port = v.GetString("port")
	}
	if v.IsSet("secure_cookies") {
		cfg.SecureCookies = v.GetBool("secure_cookies")
	}
	if v.IsSet("track_allow_origin") {
		if origin, err := SanitizeAllowOrigin(v.GetString("track_allow_origin")); err == nil {
			cfg.TrackAllowOrigin = origin
		}
	}
	if v.IsSet("metrics_enabled") {
		cfg.MetricsEnabled = v.GetBool("metrics_enabled")
	}

	// Environment fallback (only if not configured)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseDriver == "" {
		cfg.DatabaseDriver = os.Getenv("DATABASE_DRIVER")
	}
	if !v.IsSet("port") {
		if envPort := os.Getenv("PORT"); envPort != "" {
			cfg.Port = envPort
		}
	}
	if !v.IsSet("secure_cookies") {
		if envSecure := os.Getenv("SECURE_COOKIES"); envSecure != "" {
			cfg.SecureCookies = envSecure == "true"
		}
	}
	if !v.IsSet("track_allow_origin") {
		if envOrigin := os.Getenv("TRACK_ALLOW_ORIGIN"); envOrigin != "" {
			if origin, err := SanitizeAllowOrigin(envOrigin); err == nil {
				cfg.TrackAllowOrigin = origin
			}
		}
	}
	if !v.IsSet("metrics_enabled") {
		if envMetrics := os.Getenv("METRICS_ENABLED"); envMetrics != "" {
			cfg.MetricsEnabled = envMetrics != "false"
		}
	}

	// Apply overrides (flags) last
	if overrideDatabaseURL != "" {
		cfg.DatabaseURL = overrideDatabaseURL
	}
	if overridePort != "" {
		cfg.Port = overridePort
	}

	return cfg
}
