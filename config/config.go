package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"savings-calculator/domain"
	"savings-calculator/logging"
	"savings-calculator/service"
)

const (
	EnvAddr      = "SAVINGS_ADDR"
	EnvRedisAddr = "SAVINGS_REDIS_ADDR"
	EnvVariant   = "SAVINGS_VARIANT"
	EnvTarget    = "SAVINGS_TARGET"
)

// Duration decodes "30s"-style strings from both TOML and YAML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ServerConfig struct {
	Addr            string   `toml:"addr" yaml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     Duration `toml:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout" yaml:"shutdown_timeout"`
}

type RedisConfig struct {
	Enabled    bool     `toml:"enabled" yaml:"enabled"`
	Addr       string   `toml:"addr" yaml:"addr"`
	Password   string   `toml:"password" yaml:"password"`
	DB         int      `toml:"db" yaml:"db"`
	SessionTTL Duration `toml:"session_ttl" yaml:"session_ttl"`
}

type RateLimitConfig struct {
	Capacity int      `toml:"capacity" yaml:"capacity"`
	Refill   Duration `toml:"refill" yaml:"refill"`
}

// CalculatorConfig selects the policy table for new sessions.
type CalculatorConfig struct {
	Variant       string `toml:"variant" yaml:"variant"`
	Target        string `toml:"target" yaml:"target"`
	AutoCalculate bool   `toml:"auto_calculate" yaml:"auto_calculate"`
}

type LogConfig struct {
	Level     string `toml:"level" yaml:"level"`
	NoColor   bool   `toml:"no_color" yaml:"no_color"`
	Timestamp bool   `toml:"timestamp" yaml:"timestamp"`
}

type Config struct {
	Server     ServerConfig     `toml:"server" yaml:"server"`
	Redis      RedisConfig      `toml:"redis" yaml:"redis"`
	RateLimit  RateLimitConfig  `toml:"rate_limit" yaml:"rate_limit"`
	Calculator CalculatorConfig `toml:"calculator" yaml:"calculator"`
	Log        LogConfig        `toml:"log" yaml:"log"`
}

func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     Duration{15 * time.Second},
			WriteTimeout:    Duration{15 * time.Second},
			IdleTimeout:     Duration{60 * time.Second},
			ShutdownTimeout: Duration{10 * time.Second},
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			SessionTTL: Duration{service.DefaultSessionTTL},
		},
		RateLimit: RateLimitConfig{
			Capacity: service.DefaultRateLimitCapacity,
			Refill:   Duration{service.DefaultRateLimitRefill},
		},
		Calculator: CalculatorConfig{
			Variant:       string(domain.VariantTwoField),
			AutoCalculate: true,
		},
		Log: LogConfig{
			Level:     "info",
			Timestamp: true,
		},
	}
}

// Load reads a TOML or YAML file over the defaults, picked by extension.
// An empty path returns the defaults. Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		meta, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			sort.Strings(keys)
			return Config{}, fmt.Errorf("config parse failed (%s): unknown keys %s", path, strings.Join(keys, ", "))
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config load failed (%s): %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("config load failed (%s): unsupported extension", path)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides selected settings from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvAddr)); v != "" {
		c.Server.Addr = v
	}
	if v := strings.TrimSpace(getenv(EnvRedisAddr)); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := strings.TrimSpace(getenv(EnvVariant)); v != "" {
		c.Calculator.Variant = v
	}
	if v := strings.TrimSpace(getenv(EnvTarget)); v != "" {
		c.Calculator.Target = v
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config invalid: server.addr is required")
	}
	if c.Server.ReadTimeout.Duration <= 0 || c.Server.WriteTimeout.Duration <= 0 {
		return errors.New("config invalid: server timeouts must be > 0")
	}
	if c.Redis.Enabled && strings.TrimSpace(c.Redis.Addr) == "" {
		return errors.New("config invalid: redis.addr is required when redis is enabled")
	}
	if ttl := c.Redis.SessionTTL.Duration; ttl <= 0 || ttl > service.MaxSessionTTL {
		return fmt.Errorf("config invalid: redis.session_ttl must be in (0, %s]", service.MaxSessionTTL)
	}
	if c.RateLimit.Capacity <= 0 {
		return errors.New("config invalid: rate_limit.capacity must be > 0")
	}
	if c.RateLimit.Refill.Duration <= 0 {
		return errors.New("config invalid: rate_limit.refill must be > 0")
	}
	if _, err := c.Policy(); err != nil {
		return fmt.Errorf("config invalid: calculator: %w", err)
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		return fmt.Errorf("config invalid: log.level %q", c.Log.Level)
	}
	return nil
}

// Policy builds the default dispatch table for new sessions.
func (c Config) Policy() (domain.Policy, error) {
	variant, err := domain.ParseVariant(c.Calculator.Variant)
	if err != nil {
		return domain.Policy{}, err
	}
	target, err := domain.ParseField(c.Calculator.Target)
	if err != nil {
		return domain.Policy{}, err
	}
	return domain.PolicyFor(variant, target, c.Calculator.AutoCalculate)
}

// LogOptions converts the log section for logging.Configure.
func (c Config) LogOptions() logging.Options {
	opts := logging.DefaultOptions()
	if level, ok := logging.ParseLevel(c.Log.Level); ok {
		opts.Level = level
	}
	opts.NoColor = c.Log.NoColor
	opts.Timestamp = c.Log.Timestamp
	return opts
}
