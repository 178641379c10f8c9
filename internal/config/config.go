// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverPostgres = "postgres"
	DriverREST     = "rest"
	DriverMemory   = "memory"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Site      SiteConfig      `mapstructure:"site"`
	Routes    RoutesConfig    `mapstructure:"routes"`
	Store     StoreConfig     `mapstructure:"store"`
	DB        DBConfig        `mapstructure:"db"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port                     int `mapstructure:"port"`
	ReadHeaderTimeoutSeconds int `mapstructure:"read_header_timeout_seconds"`
	ShutdownTimeoutSeconds   int `mapstructure:"shutdown_timeout_seconds"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// SiteConfig holds the publication values embedded into previews.
type SiteConfig struct {
	Domain            string `mapstructure:"domain"`
	Name              string `mapstructure:"name"`
	TwitterHandle     string `mapstructure:"twitter_handle"`
	FallbackAuthor    string `mapstructure:"fallback_author"`
	FallbackImagePath string `mapstructure:"fallback_image_path"`
	FacebookAppID     string `mapstructure:"facebook_app_id"`
	Locale            string `mapstructure:"locale"`
}

// RoutesConfig sets the mount points of the preview entry points.
type RoutesConfig struct {
	EdgePath string `mapstructure:"edge_path"`
}

// StoreConfig selects the article backend.
type StoreConfig struct {
	Driver   string `mapstructure:"driver"`
	SeedFile string `mapstructure:"seed_file"`
}

// DBConfig controls direct access to the article table.
type DBConfig struct {
	DSN                    string `mapstructure:"dsn"`
	Table                  string `mapstructure:"table"`
	MaxConns               int32  `mapstructure:"max_conns"`
	MinConns               int32  `mapstructure:"min_conns"`
	MaxConnLifetimeSeconds int    `mapstructure:"max_conn_lifetime_seconds"`
}

// BackendConfig points at the managed backend's REST API.
type BackendConfig struct {
	URL    string `mapstructure:"url"`
	APIKey string `mapstructure:"api_key"`
	Table  string `mapstructure:"table"`
	Schema string `mapstructure:"schema"`
}

// CacheConfig enables the Redis lookup cache when RedisURL is set.
type CacheConfig struct {
	RedisURL   string `mapstructure:"redis_url"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
	Prefix     string `mapstructure:"prefix"`
}

// TelemetryConfig configures OpenTelemetry tracing export.
type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Insecure     bool   `mapstructure:"insecure"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PREVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_header_timeout_seconds", 5)
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("logging.development", false)
	v.SetDefault("site.domain", "luukumag.com")
	v.SetDefault("site.name", "Luuku Magazine")
	v.SetDefault("site.twitter_handle", "@luukumag")
	v.SetDefault("site.fallback_author", "Luuku Magazine Editorial Team")
	v.SetDefault("site.fallback_image_path", "/logo.png")
	v.SetDefault("site.facebook_app_id", "000000000000000")
	v.SetDefault("site.locale", "en_US")
	v.SetDefault("routes.edge_path", "/functions/v1/article-preview")
	v.SetDefault("store.driver", DriverPostgres)
	v.SetDefault("store.seed_file", "")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "articles")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("db.max_conn_lifetime_seconds", 1800)
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.table", "articles")
	v.SetDefault("backend.schema", "")
	v.SetDefault("cache.redis_url", "")
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.prefix", "article-preview")
	v.SetDefault("telemetry.service_name", "article-preview")
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.insecure", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	domain := strings.ToLower(c.Site.Domain)
	switch {
	case domain == "":
		return fmt.Errorf("site.domain is required")
	case strings.Contains(domain, "://") || strings.ContainsAny(domain, "/ "):
		return fmt.Errorf("site.domain must be a bare host name, got %q", c.Site.Domain)
	case strings.HasPrefix(domain, "www."):
		return fmt.Errorf("site.domain must not include the www subdomain")
	}
	if !strings.HasPrefix(c.Routes.EdgePath, "/") {
		return fmt.Errorf("routes.edge_path must start with /")
	}
	switch c.Store.Driver {
	case DriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn must be set when store.driver is %q", DriverPostgres)
		}
		if !identifierPattern.MatchString(c.DB.Table) {
			return fmt.Errorf("db.table %q is not a valid identifier", c.DB.Table)
		}
	case DriverREST:
		if c.Backend.URL == "" || c.Backend.APIKey == "" {
			return fmt.Errorf("backend.url and backend.api_key must be set when store.driver is %q", DriverREST)
		}
		if !identifierPattern.MatchString(c.Backend.Table) {
			return fmt.Errorf("backend.table %q is not a valid identifier", c.Backend.Table)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("store.driver must be one of postgres, rest, memory; got %q", c.Store.Driver)
	}
	if c.Cache.RedisURL != "" && c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache.ttl_seconds must be > 0 when cache.redis_url is set")
	}
	return nil
}

// CacheTTL converts the cache TTL into a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// ShutdownTimeout converts the shutdown grace period into a duration.
func (c Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}
