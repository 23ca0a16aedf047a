package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	GinMode  string
	Database Database
	Auth     Auth
	CacheTTL time.Duration
}

type Database struct {
	Driver   string // sqlite | postgres
	Path     string // sqlite file
	URL      string // postgres DSN
	LogLevel string
}

type Auth struct {
	Secret            string
	AdminUsername     string
	AdminPasswordHash string
	TokenTTL          time.Duration
}

// Enabled is false when no signing secret is configured; routes are then open.
func (a Auth) Enabled() bool { return a.Secret != "" }

// Load reads .env (optional) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: .env not found, using process environment")
	}

	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("gin_mode", "")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "dmc_inventory.db")
	v.SetDefault("db.url", "")
	v.SetDefault("db.log_level", "warn")
	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.admin_username", "admin")
	v.SetDefault("auth.admin_password_hash", "")
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("cache.ttl", "0s")

	binds := map[string][]string{
		"port":                     {"PORT"},
		"gin_mode":                 {"GIN_MODE"},
		"db.driver":                {"DB_DRIVER"},
		"db.path":                  {"DB_PATH"},
		"db.url":                   {"DATABASE_URL", "DB_URL"},
		"db.log_level":             {"DB_LOG_LEVEL"},
		"auth.secret":              {"AUTH_SECRET"},
		"auth.admin_username":      {"ADMIN_USERNAME"},
		"auth.admin_password_hash": {"ADMIN_PASSWORD_HASH"},
		"auth.token_ttl":           {"TOKEN_TTL"},
		"cache.ttl":                {"CACHE_TTL"},
	}
	for key, envs := range binds {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		Port:    v.GetString("port"),
		GinMode: v.GetString("gin_mode"),
		Database: Database{
			Driver:   strings.ToLower(strings.TrimSpace(v.GetString("db.driver"))),
			Path:     v.GetString("db.path"),
			URL:      v.GetString("db.url"),
			LogLevel: v.GetString("db.log_level"),
		},
		Auth: Auth{
			Secret:            v.GetString("auth.secret"),
			AdminUsername:     v.GetString("auth.admin_username"),
			AdminPasswordHash: v.GetString("auth.admin_password_hash"),
			TokenTTL:          v.GetDuration("auth.token_ttl"),
		},
		CacheTTL: v.GetDuration("cache.ttl"),
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DriverSQLite
	}
	return cfg, nil
}
