package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	DB      DBConfig
	JWT     JWTConfig
	Storage StorageConfig
	Postal  PostalConfig
	Seed    SeedConfig
	Alerts  AlertsConfig
	CORS    CORSConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	AppName     string `mapstructure:"app_name"`
	Environment string `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the connection string. DATABASE_URL style URLs win over the discrete fields.
func (d *DBConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

// JWTConfig holds token signing settings. IdleTimeout expires a session
// that has not sent a heartbeat for that long; zero disables the check.
type JWTConfig struct {
	Secret      string        `mapstructure:"secret"`
	Expiry      time.Duration `mapstructure:"expiry"`
	Issuer      string        `mapstructure:"issuer"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig selects the blob store used for product images and branding assets.
type StorageConfig struct {
	Driver        string `mapstructure:"driver"` // "local" or "s3"
	LocalDir      string `mapstructure:"local_dir"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	S3            S3Config
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// PostalConfig configures the postal-code lookup client.
type PostalConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SeedConfig is the bootstrap administrator created on an empty database.
type SeedConfig struct {
	AdminEmail    string `mapstructure:"admin_email"`
	AdminPassword string `mapstructure:"admin_password"`
	AdminName     string `mapstructure:"admin_name"`
}

// AlertsConfig controls the background alert scan. A zero interval disables it.
type AlertsConfig struct {
	ScanInterval time.Duration `mapstructure:"scan_interval"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	SQLLevel string `mapstructure:"sql_level"`
}

// Load reads configuration from environment variables with the ESTAMPA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ESTAMPA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", "3000")
	v.SetDefault("server.app_name", "Estampa Fina Back-office")
	v.SetDefault("server.environment", "development")

	v.SetDefault("db.url", "")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "estampa")
	v.SetDefault("db.password", "estampa")
	v.SetDefault("db.name", "estampa_fina")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "America/Sao_Paulo")
	v.SetDefault("db.max_open", 100)
	v.SetDefault("db.max_idle", 10)

	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("jwt.issuer", "estampa-fina")
	v.SetDefault("jwt.idle_timeout", "0s")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.local_dir", "./uploads")
	v.SetDefault("storage.public_base_url", "/uploads")
	v.SetDefault("storage.s3.region", "sa-east-1")
	v.SetDefault("storage.s3.bucket", "estampa-fina-assets")
	v.SetDefault("storage.s3.endpoint", "")

	v.SetDefault("postal.base_url", "https://viacep.com.br/ws")
	v.SetDefault("postal.timeout", "5s")

	v.SetDefault("seed.admin_email", "admin@estampafina.com.br")
	v.SetDefault("seed.admin_password", "admin123")
	v.SetDefault("seed.admin_name", "Administrador")

	v.SetDefault("alerts.scan_interval", "15m")

	v.SetDefault("cors.allowed_origins", "*")
	v.SetDefault("log.sql_level", "warn")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "ESTAMPA_SERVER_PORT",
		"server.app_name":         "ESTAMPA_SERVER_APP_NAME",
		"server.environment":      "ESTAMPA_SERVER_ENVIRONMENT",
		"db.url":                  "DATABASE_URL",
		"db.host":                 "ESTAMPA_DB_HOST",
		"db.port":                 "ESTAMPA_DB_PORT",
		"db.user":                 "ESTAMPA_DB_USER",
		"db.password":             "ESTAMPA_DB_PASSWORD",
		"db.name":                 "ESTAMPA_DB_NAME",
		"db.sslmode":              "ESTAMPA_DB_SSLMODE",
		"db.timezone":             "ESTAMPA_DB_TIMEZONE",
		"db.max_open":             "ESTAMPA_DB_MAX_OPEN",
		"db.max_idle":             "ESTAMPA_DB_MAX_IDLE",
		"jwt.secret":              "ESTAMPA_JWT_SECRET",
		"jwt.expiry":              "ESTAMPA_JWT_EXPIRY",
		"jwt.issuer":              "ESTAMPA_JWT_ISSUER",
		"jwt.idle_timeout":        "ESTAMPA_JWT_IDLE_TIMEOUT",
		"storage.driver":          "ESTAMPA_STORAGE_DRIVER",
		"storage.local_dir":       "ESTAMPA_STORAGE_LOCAL_DIR",
		"storage.public_base_url": "ESTAMPA_STORAGE_PUBLIC_BASE_URL",
		"storage.s3.region":       "ESTAMPA_S3_REGION",
		"storage.s3.bucket":       "ESTAMPA_S3_BUCKET",
		"storage.s3.endpoint":     "ESTAMPA_S3_ENDPOINT",
		"storage.s3.access_key":   "ESTAMPA_S3_ACCESS_KEY",
		"storage.s3.secret_key":   "ESTAMPA_S3_SECRET_KEY",
		"postal.base_url":         "ESTAMPA_POSTAL_BASE_URL",
		"postal.timeout":          "ESTAMPA_POSTAL_TIMEOUT",
		"seed.admin_email":        "ESTAMPA_SEED_ADMIN_EMAIL",
		"seed.admin_password":     "ESTAMPA_SEED_ADMIN_PASSWORD",
		"seed.admin_name":         "ESTAMPA_SEED_ADMIN_NAME",
		"alerts.scan_interval":    "ESTAMPA_ALERTS_SCAN_INTERVAL",
		"cors.allowed_origins":    "ESTAMPA_CORS_ALLOWED_ORIGINS",
		"log.sql_level":           "ESTAMPA_LOG_SQL_LEVEL",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Hosting platforms inject PORT; honour it unless the prefixed key is set.
	if port := os.Getenv("PORT"); port != "" && os.Getenv("ESTAMPA_SERVER_PORT") == "" {
		cfg.Server.Port = port
	}

	if cfg.Storage.Driver != "local" && cfg.Storage.Driver != "s3" {
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}

	return cfg, nil
}
