package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/agencycrm-backend/internal/data/db"
	"github.com/yungbote/agencycrm-backend/internal/observability"
	"github.com/yungbote/agencycrm-backend/internal/platform/envutil"
	"github.com/yungbote/agencycrm-backend/internal/platform/logger"
)

type Config struct {
	Port        string
	Environment string

	DB db.Config

	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// Location is the fallback time zone for callers without X-Timezone.
	Location    *time.Location
	CORSOrigins []string

	SessionPurgeInterval time.Duration
	Otel                 observability.OtelConfig
}

// fileConfig is the optional YAML file named by CONFIG_FILE. Its values
// replace the built-in defaults; environment variables still win.
type fileConfig struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	Database    struct {
		Driver     string `yaml:"driver"`
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		User       string `yaml:"user"`
		Password   string `yaml:"password"`
		Name       string `yaml:"name"`
		SSLMode    string `yaml:"sslmode"`
		SQLitePath string `yaml:"sqlite_path"`
		MaxOpen    int    `yaml:"max_open_conns"`
	} `yaml:"database"`
	Auth struct {
		AccessTTL  int `yaml:"access_token_ttl"`
		RefreshTTL int `yaml:"refresh_token_ttl"`
	} `yaml:"auth"`
	Timezone    string   `yaml:"timezone"`
	CORSOrigins []string `yaml:"cors_origins"`
	Otel        struct {
		Enabled     bool    `yaml:"enabled"`
		Endpoint    string  `yaml:"endpoint"`
		SampleRatio float64 `yaml:"sample_ratio"`
	} `yaml:"otel"`
}

func defaultFileConfig() fileConfig {
	var fc fileConfig
	fc.Port = "8080"
	fc.Environment = "development"
	fc.Database.Driver = db.DriverPostgres
	fc.Database.Host = "localhost"
	fc.Database.Port = "5432"
	fc.Database.User = "postgres"
	fc.Database.Name = "agencycrm"
	fc.Database.SQLitePath = "agencycrm.db"
	fc.Auth.AccessTTL = 3600
	fc.Auth.RefreshTTL = 86400
	fc.Timezone = "UTC"
	fc.Otel.SampleRatio = 1
	return fc
}

func readFileConfig(path string) (fileConfig, error) {
	fc := defaultFileConfig()
	if strings.TrimSpace(path) == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func LoadConfig(log *logger.Logger) (Config, error) {
	if err := envutil.LoadDotEnv(log); err != nil {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	fc, err := readFileConfig(envutil.GetEnv("CONFIG_FILE", "", log))
	if err != nil {
		return Config{}, err
	}

	tzName := envutil.GetEnv("APP_TIMEZONE", fc.Timezone, log)
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return Config{}, fmt.Errorf("APP_TIMEZONE %q: %w", tzName, err)
	}

	environment := envutil.GetEnv("APP_ENV", fc.Environment, log)
	secret := envutil.GetEnv("JWT_SECRET_KEY", "", log)
	if secret == "" {
		if environment == "production" {
			return Config{}, fmt.Errorf("JWT_SECRET_KEY is required in production")
		}
		secret = "insecure-development-secret"
		log.Warn("JWT_SECRET_KEY not set, using development secret")
	}

	cfg := Config{
		Port:        envutil.GetEnv("PORT", fc.Port, log),
		Environment: environment,
		DB: db.Config{
			Driver:           envutil.GetEnv("DB_DRIVER", fc.Database.Driver, log),
			PostgresHost:     envutil.GetEnv("POSTGRES_HOST", fc.Database.Host, log),
			PostgresPort:     envutil.GetEnv("POSTGRES_PORT", fc.Database.Port, log),
			PostgresUser:     envutil.GetEnv("POSTGRES_USER", fc.Database.User, log),
			PostgresPassword: envutil.GetEnv("POSTGRES_PASSWORD", fc.Database.Password, nil),
			PostgresName:     envutil.GetEnv("POSTGRES_NAME", fc.Database.Name, log),
			PostgresSSLMode:  envutil.GetEnv("POSTGRES_SSLMODE", fc.Database.SSLMode, log),
			SQLitePath:       envutil.GetEnv("SQLITE_PATH", fc.Database.SQLitePath, log),
			MaxOpenConns:     envutil.GetEnvAsInt("DB_MAX_OPEN_CONNS", fc.Database.MaxOpen, log),
			SlowThreshold:    envutil.GetEnvAsSeconds("DB_SLOW_QUERY_SECONDS", time.Second, log),
		},
		JWTSecretKey:         secret,
		AccessTokenTTL:       envutil.GetEnvAsSeconds("ACCESS_TOKEN_TTL", time.Duration(fc.Auth.AccessTTL)*time.Second, log),
		RefreshTokenTTL:      envutil.GetEnvAsSeconds("REFRESH_TOKEN_TTL", time.Duration(fc.Auth.RefreshTTL)*time.Second, log),
		Location:             loc,
		CORSOrigins:          envutil.GetEnvAsList("CORS_ORIGINS", fc.CORSOrigins, log),
		SessionPurgeInterval: envutil.GetEnvAsSeconds("SESSION_PURGE_INTERVAL", time.Hour, log),
		Otel: observability.OtelConfig{
			Enabled:     envutil.GetEnvAsBool("OTEL_ENABLED", fc.Otel.Enabled, log),
			ServiceName: envutil.GetEnv("OTEL_SERVICE_NAME", "agencycrm", log),
			Environment: environment,
			Endpoint:    envutil.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", fc.Otel.Endpoint, log),
			Insecure:    envutil.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", true, log),
			Headers:     observability.ParseHeaders(envutil.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", nil)),
			SampleRatio: fc.Otel.SampleRatio,
		},
	}
	return cfg, nil
}
