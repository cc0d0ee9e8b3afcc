package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// AQUEDUCT_DATABASE_PASSWORD for database.password.
const EnvPrefix = "AQUEDUCT"

// Config holds all application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Log       LogConfig       `mapstructure:"log"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Billing   BillingConfig   `mapstructure:"billing"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Port string `mapstructure:"port"`
}

// IsProduction reports whether the stricter production checks apply
func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// DatabaseConfig holds the PostgreSQL connection and pool settings.
// Lifetimes are expressed in minutes.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port for the Redis client
func (r RedisConfig) Addr() string {
	return r.Host + ":" + strconv.Itoa(r.Port)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
	Output string `mapstructure:"output"` // stdout, stderr, or a file path
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	MaxHeaderBytes    int           `mapstructure:"max_header_bytes"`
	MaxBodySize       int64         `mapstructure:"max_body_size"`
	RateLimitEnabled  bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
	CORSAllowOrigins  []string      `mapstructure:"cors_allow_origins"`
	CORSAllowMethods  []string      `mapstructure:"cors_allow_methods"`
	CORSAllowHeaders  []string      `mapstructure:"cors_allow_headers"`
	TrustedProxies    []string      `mapstructure:"trusted_proxies"`
}

// BillingConfig tunes the billing engine
type BillingConfig struct {
	LockBackend               string        `mapstructure:"lock_backend"` // redis or memory
	LockTTL                   time.Duration `mapstructure:"lock_ttl"`
	LockKeyPrefix             string        `mapstructure:"lock_key_prefix"`
	LockAllowInMemoryFallback bool          `mapstructure:"lock_allow_in_memory_fallback"`
	ImportMaxErrors           int           `mapstructure:"import_max_errors"`
	AuditThreshold            float64       `mapstructure:"audit_threshold"` // consumption / average ratio
	Currency                  string        `mapstructure:"currency"`
}

type TelemetryConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	CollectorEndpoint string        `mapstructure:"collector_endpoint"`
	SamplingRatio     float64       `mapstructure:"sampling_ratio"`
	ServiceName       string        `mapstructure:"service_name"`
	Insecure          bool          `mapstructure:"insecure"`
	DBTraceEnabled    bool          `mapstructure:"db_trace_enabled"`
	DBLogFullSQL      bool          `mapstructure:"db_log_full_sql"`
	DBSlowQueryThresh time.Duration `mapstructure:"db_slow_query_threshold"`
}

// defaults doubles as the key registry: viper only resolves environment
// overrides for keys it already knows about, so every key is listed here
// even when its zero value is the default.
var defaults = map[string]any{
	"app.name": "aqueduct-billing",
	"app.env":  "development",
	"app.port": "8080",

	"database.host":               "localhost",
	"database.port":               5432,
	"database.user":               "postgres",
	"database.password":           "",
	"database.dbname":             "aqueduct",
	"database.sslmode":            "disable",
	"database.max_open_conns":     25,
	"database.max_idle_conns":     5,
	"database.conn_max_lifetime":  60,
	"database.conn_max_idle_time": 30,

	"redis.host":     "localhost",
	"redis.port":     6379,
	"redis.password": "",
	"redis.db":       0,

	"log.level":  "info",
	"log.format": "console",
	"log.output": "stdout",

	"http.read_timeout":        15 * time.Second,
	"http.write_timeout":       15 * time.Second,
	"http.idle_timeout":        60 * time.Second,
	"http.max_header_bytes":    1 << 20,
	"http.max_body_size":       int64(10 << 20),
	"http.rate_limit_enabled":  false,
	"http.rate_limit_requests": 100,
	"http.rate_limit_window":   time.Minute,
	// no origin is allowed until one is configured
	"http.cors_allow_origins": []string{},
	"http.cors_allow_methods": []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
	"http.cors_allow_headers": []string{"Content-Type", "Authorization", "X-Request-ID"},
	"http.trusted_proxies":    []string{},

	"billing.lock_backend":                  "redis",
	"billing.lock_ttl":                      30 * time.Second,
	"billing.lock_key_prefix":               "aqueduct:lock:",
	"billing.lock_allow_in_memory_fallback": false,
	"billing.import_max_errors":             100,
	"billing.audit_threshold":               1.5,
	"billing.currency":                      "PYG",

	"telemetry.enabled":                 false,
	"telemetry.collector_endpoint":      "localhost:4317",
	"telemetry.sampling_ratio":          1.0,
	"telemetry.service_name":            "aqueduct-billing",
	"telemetry.insecure":                false,
	"telemetry.db_trace_enabled":        false,
	"telemetry.db_log_full_sql":         false,
	"telemetry.db_slow_query_threshold": 200 * time.Millisecond,
}

// Load resolves the configuration from, in increasing priority, the built-in
// defaults, an optional config.toml and AQUEDUCT_* environment variables.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("toml")
	for _, dir := range []string{".", "./backend", "/app"} {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	db := c.Database
	switch {
	case db.MaxOpenConns <= 0:
		return errors.New("database.max_open_conns must be positive")
	case db.MaxIdleConns < 0:
		return errors.New("database.max_idle_conns cannot be negative")
	case db.MaxIdleConns > db.MaxOpenConns:
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			db.MaxIdleConns, db.MaxOpenConns)
	}

	if c.App.IsProduction() {
		if err := c.validateProduction(); err != nil {
			return err
		}
	}

	b := c.Billing
	switch {
	case b.LockBackend != "redis" && b.LockBackend != "memory":
		return fmt.Errorf("billing.lock_backend must be 'redis' or 'memory', got %q", b.LockBackend)
	case b.LockTTL < time.Second:
		return fmt.Errorf("billing.lock_ttl must be at least 1s, got %s", b.LockTTL)
	case b.AuditThreshold <= 0:
		return errors.New("billing.audit_threshold must be positive")
	case b.ImportMaxErrors < 0:
		return errors.New("billing.import_max_errors cannot be negative")
	case strings.TrimSpace(b.Currency) == "":
		return errors.New("billing.currency is required")
	}

	if r := c.Telemetry.SamplingRatio; r < 0 || r > 1 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", r)
	}
	return nil
}

func (c *Config) validateProduction() error {
	if c.Database.Password == "" {
		return errors.New("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return errors.New("database.sslmode cannot be 'disable' in production")
	}
	if slices.Contains(c.HTTP.CORSAllowOrigins, "*") {
		return errors.New("http.cors_allow_origins cannot contain '*' in production")
	}
	if c.Telemetry.DBLogFullSQL {
		return errors.New("telemetry.db_log_full_sql must be false in production")
	}
	if c.Billing.LockBackend == "memory" || c.Billing.LockAllowInMemoryFallback {
		return errors.New("billing locks must be backed by redis in production")
	}
	return nil
}

// DSN returns a postgres:// URL with the credentials escaped
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     d.DBName,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}
