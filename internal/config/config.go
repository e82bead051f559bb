package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Database      DatabaseConfig
	AI            AIConfig
	Export        ExportConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds the defaults a connection form starts from.
type DatabaseConfig struct {
	Dialect          string
	Host             string
	Port             string
	User             string
	Password         string
	Name             string
	RemoteURI        string
	ConnectTimeout   time.Duration
	SchemaSampleRows int
	ConnMaxIdleTime  time.Duration
	ConnMaxLifetime  time.Duration
}

type AIConfig struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

type ExportConfig struct {
	Enabled     bool
	ObjectStore ObjectStoreConfig
}

type ObjectStoreConfig struct {
	Endpoint         string
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	UseSSL           bool
	Prefix           string
	AutoCreateBucket bool
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
	LogFile  string
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("SQLTRANSLATOR_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid SQLTRANSLATOR_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	// POSTGRE_URI is the legacy name for the hosted database URI.
	if err := applyString(lookup, "POSTGRE_URI", &cfg.Database.RemoteURI); err != nil {
		return Config{}, err
	}

	steps := []func() error{
		func() error { return applyString(lookup, "SQLTRANSLATOR_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "SQLTRANSLATOR_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "SQLTRANSLATOR_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "SQLTRANSLATOR_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_DB_DIALECT", &cfg.Database.Dialect) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_DB_HOST", &cfg.Database.Host) },
		func() error { return applyPort(lookup, "SQLTRANSLATOR_DB_PORT", &cfg.Database.Port) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_DB_USER", &cfg.Database.User) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_DB_PASSWORD", &cfg.Database.Password) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_DB_NAME", &cfg.Database.Name) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_REMOTE_DB_URI", &cfg.Database.RemoteURI) },
		func() error {
			return applyDuration(lookup, "SQLTRANSLATOR_DB_CONNECT_TIMEOUT", &cfg.Database.ConnectTimeout)
		},
		func() error {
			return applyInt(lookup, "SQLTRANSLATOR_SCHEMA_SAMPLE_ROWS", &cfg.Database.SchemaSampleRows)
		},
		func() error {
			return applyDuration(lookup, "SQLTRANSLATOR_DB_CONN_MAX_IDLE_TIME", &cfg.Database.ConnMaxIdleTime)
		},
		func() error {
			return applyDuration(lookup, "SQLTRANSLATOR_DB_CONN_MAX_LIFETIME", &cfg.Database.ConnMaxLifetime)
		},
		func() error { return applyString(lookup, "SQLTRANSLATOR_AI_PROVIDER", &cfg.AI.Provider) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_AI_BASE_URL", &cfg.AI.BaseURL) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_AI_API_KEY", &cfg.AI.APIKey) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_AI_MODEL", &cfg.AI.Model) },
		func() error { return applyFloat(lookup, "SQLTRANSLATOR_AI_TEMPERATURE", &cfg.AI.Temperature) },
		func() error { return applyDuration(lookup, "SQLTRANSLATOR_AI_TIMEOUT", &cfg.AI.Timeout) },
		func() error { return applyBool(lookup, "SQLTRANSLATOR_EXPORT_ENABLED", &cfg.Export.Enabled) },
		func() error {
			return applyString(lookup, "SQLTRANSLATOR_OBJECTSTORE_ENDPOINT", &cfg.Export.ObjectStore.Endpoint)
		},
		func() error {
			return applyString(lookup, "SQLTRANSLATOR_OBJECTSTORE_REGION", &cfg.Export.ObjectStore.Region)
		},
		func() error {
			return applyString(lookup, "SQLTRANSLATOR_OBJECTSTORE_BUCKET", &cfg.Export.ObjectStore.Bucket)
		},
		func() error {
			return applyString(lookup, "SQLTRANSLATOR_OBJECTSTORE_ACCESS_KEY", &cfg.Export.ObjectStore.AccessKeyID)
		},
		func() error {
			return applyString(lookup, "SQLTRANSLATOR_OBJECTSTORE_SECRET_KEY", &cfg.Export.ObjectStore.SecretAccessKey)
		},
		func() error {
			return applyBool(lookup, "SQLTRANSLATOR_OBJECTSTORE_USE_SSL", &cfg.Export.ObjectStore.UseSSL)
		},
		func() error {
			return applyString(lookup, "SQLTRANSLATOR_OBJECTSTORE_PREFIX", &cfg.Export.ObjectStore.Prefix)
		},
		func() error {
			return applyBool(lookup, "SQLTRANSLATOR_OBJECTSTORE_AUTO_CREATE_BUCKET", &cfg.Export.ObjectStore.AutoCreateBucket)
		},
		func() error { return applyBool(lookup, "SQLTRANSLATOR_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "SQLTRANSLATOR_LOG_LEVEL", &cfg.Observability.LogLevel) },
		func() error { return applyString(lookup, "SQLTRANSLATOR_LOG_FILE", &cfg.Observability.LogFile) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Config{}, err
		}
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Database.SchemaSampleRows < 0 {
		return Config{}, fmt.Errorf("schema sample rows must be >= 0")
	}
	if cfg.Export.Enabled && cfg.Export.ObjectStore.Bucket == "" {
		return Config{}, fmt.Errorf("export bucket is required when export is enabled")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "sqltranslator-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Dialect:          "mysql",
			Host:             "localhost",
			Port:             "3307",
			User:             "root",
			Name:             "",
			ConnectTimeout:   5 * time.Second,
			SchemaSampleRows: 3,
			ConnMaxIdleTime:  5 * time.Minute,
			ConnMaxLifetime:  30 * time.Minute,
		},
		AI: AIConfig{
			Provider:    "mistral",
			Model:       "mistral-small-latest",
			Temperature: 0,
			Timeout:     60 * time.Second,
		},
		Export: ExportConfig{
			Enabled: false,
			ObjectStore: ObjectStoreConfig{
				Endpoint:         "localhost:9000",
				Region:           "us-east-1",
				Bucket:           "sqltranslator",
				AccessKeyID:      "minio",
				SecretAccessKey:  "miniostorage",
				UseSSL:           false,
				Prefix:           "",
				AutoCreateBucket: true,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Export.ObjectStore.UseSSL = true
		cfg.Export.ObjectStore.AutoCreateBucket = false
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

// applyPort keeps the value as text but rejects anything that is not a port number.
func applyPort(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value := strings.TrimSpace(raw)
	port, err := strconv.Atoi(value)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	*dst = value
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyFloat(lookup LookupFunc, key string, dst *float64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
