package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	Registration RegistrationConfig
	Session      SessionConfig
	Notification NotificationConfig
	Telemetry    TelemetryConfig

	SnowflakeNode int64
}

type RegistrationConfig struct {
	BaseURL string
	Path    string
	Timeout time.Duration
}

type SessionConfig struct {
	Store         string
	SQLitePath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	KeyPrefix     string
	TTL           time.Duration
}

type NotificationConfig struct {
	Platform   string
	GatewayURL string
	Namespace  string
	Permission string
	Timeout    time.Duration
}

type TelemetryConfig struct {
	OtelEnabled          bool
	OtelExporterEndpoint string
	OtelExporterProtocol string
	MetricsAddr          string
}

const (
	SessionStoreMemory = "memory"
	SessionStoreSQLite = "sqlite"
	SessionStoreRedis  = "redis"

	NotificationPlatformLocal    = "local"
	NotificationPlatformSocketIO = "socketio"
)

var defaults = map[string]any{
	"app_service":                 "telematch",
	"app_version":                 "0.1.0",
	"environment":                 "development",
	"log_level":                   "info",
	"registration_base_url":       "http://localhost:3000",
	"registration_path":           "/api/register-user",
	"registration_timeout":        "15s",
	"session_store":               SessionStoreSQLite,
	"session_sqlite_path":         "telematch.db",
	"redis_addr":                  "localhost:6379",
	"redis_password":              "",
	"redis_db":                    0,
	"session_key_prefix":          "telematch:session:",
	"session_ttl":                 "0s",
	"notification_platform":       NotificationPlatformLocal,
	"notification_gateway_url":    "http://localhost:4000/push",
	"notification_namespace":      "/",
	"notification_permission":     "granted",
	"notification_timeout":        "15s",
	"otel_enabled":                false,
	"otel_exporter_otlp_endpoint": "localhost:4317",
	"otel_exporter_otlp_protocol": "grpc",
	"metrics_addr":                "",
	"snowflake_node":              1,
}

// Load loads configuration from the environment, a .env file and an optional
// telematch.yml.
// flagKeys maps command line flags onto config keys. Flags win over the
// environment and the config file when set.
var flagKeys = map[string]string{
	"log-level":               "log_level",
	"registration-url":        "registration_base_url",
	"session-store":           "session_store",
	"notification-platform":   "notification_platform",
	"notification-permission": "notification_permission",
	"metrics-addr":            "metrics_addr",
}

// RegisterFlags adds the config override flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("log-level", "", "log level (debug, info, warn, error)")
	fs.String("registration-url", "", "registration endpoint base URL")
	fs.String("session-store", "", "session store: memory, sqlite or redis")
	fs.String("notification-platform", "", "push platform: local or socketio")
	fs.String("notification-permission", "", "permission answer of the local push platform")
	fs.String("metrics-addr", "", "listen address for the prometheus endpoint")
}

func Load() (Config, error) {
	return LoadWithFlags(nil)
}

// LoadWithFlags reads .env, the environment, an optional telematch.yml and
// any flags registered with RegisterFlags.
func LoadWithFlags(fs *pflag.FlagSet) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("telematch")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/telematch")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if fs != nil {
		for flag, key := range flagKeys {
			if f := fs.Lookup(flag); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, err
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) Config {
	return Config{
		AppName:     v.GetString("app_service"),
		AppVersion:  v.GetString("app_version"),
		Environment: v.GetString("environment"),
		LogLevel:    strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		Registration: RegistrationConfig{
			BaseURL: strings.TrimRight(strings.TrimSpace(v.GetString("registration_base_url")), "/"),
			Path:    normalizePath(v.GetString("registration_path")),
			Timeout: v.GetDuration("registration_timeout"),
		},
		Session: SessionConfig{
			Store:         normalizeChoice(v.GetString("session_store"), SessionStoreSQLite, SessionStoreMemory, SessionStoreSQLite, SessionStoreRedis),
			SQLitePath:    strings.TrimSpace(v.GetString("session_sqlite_path")),
			RedisAddr:     strings.TrimSpace(v.GetString("redis_addr")),
			RedisPassword: v.GetString("redis_password"),
			RedisDB:       v.GetInt("redis_db"),
			KeyPrefix:     v.GetString("session_key_prefix"),
			TTL:           v.GetDuration("session_ttl"),
		},
		Notification: NotificationConfig{
			Platform:   normalizeChoice(v.GetString("notification_platform"), NotificationPlatformLocal, NotificationPlatformLocal, NotificationPlatformSocketIO),
			GatewayURL: strings.TrimSpace(v.GetString("notification_gateway_url")),
			Namespace:  strings.TrimSpace(v.GetString("notification_namespace")),
			Permission: strings.ToLower(strings.TrimSpace(v.GetString("notification_permission"))),
			Timeout:    v.GetDuration("notification_timeout"),
		},
		Telemetry: TelemetryConfig{
			OtelEnabled:          v.GetBool("otel_enabled"),
			OtelExporterEndpoint: strings.TrimSpace(v.GetString("otel_exporter_otlp_endpoint")),
			OtelExporterProtocol: strings.ToLower(strings.TrimSpace(v.GetString("otel_exporter_otlp_protocol"))),
			MetricsAddr:          strings.TrimSpace(v.GetString("metrics_addr")),
		},
		SnowflakeNode: v.GetInt64("snowflake_node"),
	}
}

// IsProduction reports whether the configured environment is production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

func normalizePath(raw string) string {
	path := strings.TrimSpace(raw)
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return path
}

func normalizeChoice(raw, def string, allowed ...string) string {
	value := strings.ToLower(strings.TrimSpace(raw))
	for _, candidate := range allowed {
		if value == candidate {
			return value
		}
	}
	return def
}
