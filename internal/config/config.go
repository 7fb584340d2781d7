package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	StorageBackendRedis  = "redis"
	StorageBackendMemory = "memory"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// redis
	RedisHost string `toml:"redis_host"`
	RedisPort string `toml:"redis_port"`

	// postgres
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`

	// timers
	// StorageBackend is where timer state and workout drafts are kept: redis | memory
	StorageBackend  string `toml:"storage_backend"`
	TimersNamespace string `toml:"timers_namespace"`

	// auto-save
	WorkoutsApiURL        string   `toml:"workouts_api_url"`
	AutoSaveTimeout       Duration `toml:"auto_save_timeout"`
	QueryCacheTTL         Duration `toml:"query_cache_ttl"`
	WriteRateLimitPerMin  int      `toml:"write_rate_limit_per_min"`
	AllowedOrigins        []string `toml:"allowed_origins"`
	ShutdownWaitAutoSaves Duration `toml:"shutdown_wait_auto_saves"`
}

// Duration allows durations like "15s" in TOML files.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
	case "prod", "production":
		cfg = t.Production
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML file at path and returns the config for the given environment,
// with defaults applied to the fields left empty.
func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	if cfg.Environment == "" {
		cfg.Environment = strings.ToLower(env)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 9000
	}
	if c.StorageBackend == "" {
		c.StorageBackend = StorageBackendRedis
	}
	if c.TimersNamespace == "" {
		c.TimersNamespace = "default"
	}
	if c.WorkoutsApiURL == "" {
		c.WorkoutsApiURL = fmt.Sprintf("http://%s:%d", c.Host, c.Port)
	}
	if c.AutoSaveTimeout.Duration == 0 {
		c.AutoSaveTimeout.Duration = 30 * time.Second
	}
	if c.QueryCacheTTL.Duration == 0 {
		c.QueryCacheTTL.Duration = 5 * time.Minute
	}
	if c.WriteRateLimitPerMin == 0 {
		c.WriteRateLimitPerMin = 60
	}
	if c.ShutdownWaitAutoSaves.Duration == 0 {
		c.ShutdownWaitAutoSaves.Duration = 10 * time.Second
	}
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case StorageBackendRedis, StorageBackendMemory:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.StorageBackend)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}
