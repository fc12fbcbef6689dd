package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	platformstrings "curpkit/pkg/platform/strings"
)

// Server captures HTTP server level configuration. An empty JWTSigningKey
// disables bearer-token authentication on /v1.
type Server struct {
	Addr            string        `yaml:"addr"`
	JWTSigningKey   string        `yaml:"jwt_signing_key"`
	JWTIssuer       string        `yaml:"jwt_issuer"`
	JWTAudience     string        `yaml:"jwt_audience"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Log selects the slog handler.
type Log struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RedisConfig configures the issued-code cache. Empty URL keeps the cache in memory.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// PostgresConfig configures the audit table. Empty DSN disables it.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// KafkaConfig configures audit streaming. No brokers disables it.
type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	Topic             string   `yaml:"topic"`
	Partitions        int32    `yaml:"partitions"`
	ReplicationFactor int16    `yaml:"replication_factor"`
	// ConsumerGroup, when set, runs a consumer that materializes the topic
	// into Postgres.
	ConsumerGroup string `yaml:"consumer_group"`
}

// CacheConfig bounds how long an issued code is remembered.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// BatchConfig bounds batch requests.
type BatchConfig struct {
	MaxItems    int `yaml:"max_items"`
	Concurrency int `yaml:"concurrency"`
}

// AuditConfig sizes the async publisher buffer.
type AuditConfig struct {
	BufferSize int `yaml:"buffer_size"`
}

// RateLimitConfig sets per-client request budgets on /v1 by endpoint class.
type RateLimitConfig struct {
	Enabled bool          `yaml:"enabled"`
	Window  time.Duration `yaml:"window"`
	Read    int           `yaml:"read"`
	Write   int           `yaml:"write"`
	Batch   int           `yaml:"batch"`
}

// Config is the full runtime configuration.
type Config struct {
	Server    Server          `yaml:"server"`
	Log       Log             `yaml:"log"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Cache     CacheConfig     `yaml:"cache"`
	Batch     BatchConfig     `yaml:"batch"`
	Audit     AuditConfig     `yaml:"audit"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// EnvConfigFile names the optional YAML file applied before env overrides.
const EnvConfigFile = "CURP_CONFIG_FILE"

// Default returns the development configuration.
func Default() Config {
	return Config{
		Server: Server{
			Addr:            ":8080",
			JWTIssuer:       "curpkit",
			JWTAudience:     "curp-api",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: Log{Level: "info", Format: "json"},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  500 * time.Millisecond,
			WriteTimeout: 500 * time.Millisecond,
		},
		Kafka: KafkaConfig{
			Topic:             "curp.audit",
			Partitions:        3,
			ReplicationFactor: 1,
		},
		Cache: CacheConfig{TTL: 5 * time.Minute},
		Batch: BatchConfig{MaxItems: 500, Concurrency: 8},
		Audit: AuditConfig{BufferSize: 1024},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Window:  time.Minute,
			Read:    300,
			Write:   120,
			Batch:   10,
		},
	}
}

// FromEnv builds a Config from defaults and environment variables only.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Load applies defaults, then the YAML file named by CURP_CONFIG_FILE, then
// environment variables.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func applyFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Server.Addr, "CURP_ADDR")
	setString(&cfg.Server.JWTSigningKey, "CURP_JWT_SIGNING_KEY")
	setString(&cfg.Server.JWTIssuer, "CURP_JWT_ISSUER")
	setString(&cfg.Server.JWTAudience, "CURP_JWT_AUDIENCE")
	setString(&cfg.Log.Level, "CURP_LOG_LEVEL")
	setString(&cfg.Log.Format, "CURP_LOG_FORMAT")
	setString(&cfg.Redis.URL, "CURP_REDIS_URL")
	setString(&cfg.Postgres.DSN, "CURP_POSTGRES_DSN")
	setString(&cfg.Kafka.Topic, "CURP_KAFKA_TOPIC")
	setString(&cfg.Kafka.ConsumerGroup, "CURP_KAFKA_CONSUMER_GROUP")
	if v := os.Getenv("CURP_KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = platformstrings.SplitList(v)
	}

	var errs []error
	errs = append(errs,
		setDuration(&cfg.Server.ShutdownTimeout, "CURP_SHUTDOWN_TIMEOUT"),
		setDuration(&cfg.Cache.TTL, "CURP_CACHE_TTL"),
		setInt(&cfg.Batch.MaxItems, "CURP_BATCH_MAX_ITEMS"),
		setInt(&cfg.Batch.Concurrency, "CURP_BATCH_CONCURRENCY"),
		setInt(&cfg.Audit.BufferSize, "CURP_AUDIT_BUFFER"),
		setBool(&cfg.RateLimit.Enabled, "CURP_RATE_LIMIT_ENABLED"),
		setDuration(&cfg.RateLimit.Window, "CURP_RATE_LIMIT_WINDOW"),
		setInt(&cfg.RateLimit.Read, "CURP_RATE_LIMIT_READ"),
		setInt(&cfg.RateLimit.Write, "CURP_RATE_LIMIT_WRITE"),
		setInt(&cfg.RateLimit.Batch, "CURP_RATE_LIMIT_BATCH"),
	)
	return errors.Join(errs...)
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q must be debug, info, warn or error", c.Log.Level))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or text", c.Log.Format))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, errors.New("cache.ttl must be positive"))
	}
	if c.Batch.MaxItems <= 0 {
		errs = append(errs, errors.New("batch.max_items must be positive"))
	}
	if c.Batch.Concurrency <= 0 {
		errs = append(errs, errors.New("batch.concurrency must be positive"))
	}
	if c.Audit.BufferSize < 0 {
		errs = append(errs, errors.New("audit.buffer_size must not be negative"))
	}
	if c.RateLimit.Enabled {
		if c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("rate_limit.window must be positive"))
		}
		if c.RateLimit.Read <= 0 || c.RateLimit.Write <= 0 || c.RateLimit.Batch <= 0 {
			errs = append(errs, errors.New("rate_limit budgets must be positive"))
		}
	}
	if len(c.Kafka.Brokers) > 0 && c.Kafka.Topic == "" {
		errs = append(errs, errors.New("kafka.topic is required when brokers are set"))
	}
	if c.Kafka.ConsumerGroup != "" && c.Postgres.DSN == "" {
		errs = append(errs, errors.New("kafka.consumer_group requires postgres.dsn"))
	}
	return errors.Join(errs...)
}

// AuthEnabled reports whether /v1 requires bearer tokens.
func (c Config) AuthEnabled() bool {
	return c.Server.JWTSigningKey != ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = b
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = d
	return nil
}
