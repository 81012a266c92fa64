// Package config loads service settings from the environment, optionally
// seeded from dotenv files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/olyamironova/orderbook/internal/idgen"
)

type Config struct {
	Symbol   string
	HTTPAddr string
	GRPCAddr string
	IDScheme string

	PostgresURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	RateLimit       time.Duration
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// GetEnv reads key and parses it as the type of defaultValue.
// An unset variable yields defaultValue.
func GetEnv[T any](key string, defaultValue T) (T, error) {
	v, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}

	var err error
	var parsed any

	switch any(defaultValue).(type) {
	case string:
		return any(v).(T), nil
	case int:
		parsed, err = strconv.Atoi(v)
	case bool:
		parsed, err = strconv.ParseBool(v)
	case time.Duration:
		parsed, err = time.ParseDuration(v)
	default:
		return defaultValue, fmt.Errorf("unsupported type for env var %s: %T", key, defaultValue)
	}

	if err != nil {
		return defaultValue, fmt.Errorf("failed to parse env %s as %T: %w", key, defaultValue, err)
	}
	return parsed.(T), nil
}

// Load reads the given dotenv files (missing ones are skipped) and then the
// environment. Variables already set win over file values.
func Load(files ...string) (*Config, error) {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var (
		cfg  Config
		errs []error
	)
	str := func(key, def string) string {
		v, err := GetEnv(key, def)
		errs = append(errs, err)
		return v
	}
	num := func(key string, def int) int {
		v, err := GetEnv(key, def)
		errs = append(errs, err)
		return v
	}
	dur := func(key string, def time.Duration) time.Duration {
		v, err := GetEnv(key, def)
		errs = append(errs, err)
		return v
	}

	cfg.Symbol = str("SYMBOL", "BTC-USD")
	cfg.HTTPAddr = str("HTTP_ADDR", ":8080")
	cfg.GRPCAddr = str("GRPC_ADDR", ":9090")
	cfg.IDScheme = str("ID_SCHEME", idgen.SchemeUUID)
	cfg.PostgresURL = str("POSTGRES_URL", "")
	cfg.RedisAddr = str("REDIS_ADDR", "")
	cfg.RedisPassword = str("REDIS_PASSWORD", "")
	cfg.RedisDB = num("REDIS_DB", 0)
	cfg.CacheTTL = dur("CACHE_TTL", 30*time.Second)
	cfg.KafkaBrokers = splitList(str("KAFKA_BROKERS", ""))
	cfg.KafkaTopic = str("KAFKA_TOPIC", "orderbook.trades")
	cfg.RateLimit = dur("RATE_LIMIT", 100*time.Millisecond)
	cfg.LogLevel = str("LOG_LEVEL", "info")
	cfg.LogFormat = str("LOG_FORMAT", "json")
	cfg.ShutdownTimeout = dur("SHUTDOWN_TIMEOUT", 10*time.Second)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Symbol) == "" {
		errs = append(errs, errors.New("SYMBOL must not be empty"))
	}
	if _, err := idgen.New(c.IDScheme); err != nil {
		errs = append(errs, err)
	}
	// a sequence restarts at 1 on every boot and would reuse persisted ids
	if c.IDScheme == idgen.SchemeSequence && c.PostgresURL != "" {
		errs = append(errs, errors.New("ID_SCHEME=sequence cannot be used with POSTGRES_URL"))
	}
	if len(c.KafkaBrokers) > 0 && c.KafkaTopic == "" {
		errs = append(errs, errors.New("KAFKA_TOPIC must be set when KAFKA_BROKERS is"))
	}
	if c.RateLimit < 0 {
		errs = append(errs, errors.New("RATE_LIMIT must not be negative"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT must be positive"))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	return errors.Join(errs...)
}

func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return lvl, nil
}

// NewLogger builds the process logger described by LogLevel and LogFormat.
func (c *Config) NewLogger() *slog.Logger {
	lvl, _ := c.Level()
	opts := &slog.HandlerOptions{Level: lvl}
	if c.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
