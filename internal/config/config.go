package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Session  SessionConfig  `mapstructure:"session"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Server   ServerConfig   `mapstructure:"server"`
	Report   ReportConfig   `mapstructure:"report"`
	Log      LogConfig      `mapstructure:"log"`
}

type UpstreamConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	PredictPath    string        `mapstructure:"predict_path"`
	ReportPath     string        `mapstructure:"report_path"`
	Timeout        time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxReportBytes int64         `mapstructure:"max_report_bytes" validate:"gte=0"`
	Breaker        BreakerConfig `mapstructure:"breaker"`
}

type BreakerConfig struct {
	MaxRequests         int           `mapstructure:"max_requests" validate:"gte=0"`
	Interval            time.Duration `mapstructure:"interval"`
	Timeout             time.Duration `mapstructure:"timeout"`
	ConsecutiveFailures int           `mapstructure:"consecutive_failures" validate:"gte=0"`
}

type SessionConfig struct {
	Backend         string        `mapstructure:"backend" validate:"oneof=memory redis"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Secret          string        `mapstructure:"secret"`
	// EncryptionKey is a hex AES key; when set cached results are sealed.
	EncryptionKey   string        `mapstructure:"encryption_key" validate:"omitempty,hexadecimal"`
	CookieName      string        `mapstructure:"cookie_name" validate:"required"`
	CookieSecure    bool          `mapstructure:"cookie_secure"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	Prefix       string        `mapstructure:"prefix"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"gte=0,lte=65535"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RateLimit      float64       `mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst      int           `mapstructure:"rate_burst" validate:"gte=0"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	MetricsPath    string        `mapstructure:"metrics_path"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes" validate:"gte=0"`
}

type ReportConfig struct {
	OutputDir string `mapstructure:"output_dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// envOverrides are the conventional variables set by hosting platforms.
// They win over both the config file and LIVER_* variables.
type envOverrides struct {
	Port          int    `envconfig:"PORT"`
	RedisURL      string `envconfig:"REDIS_URL"`
	UpstreamURL   string `envconfig:"PREDICTION_API_URL"`
	SessionSecret string `envconfig:"SESSION_SECRET"`
	EncryptionKey string `envconfig:"SESSION_ENCRYPTION_KEY"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("upstream.base_url", "http://localhost:8000")
	v.SetDefault("upstream.predict_path", "/predict")
	v.SetDefault("upstream.report_path", "/download_pdf")
	v.SetDefault("upstream.timeout", 30*time.Second)
	v.SetDefault("upstream.max_report_bytes", 32<<20)
	v.SetDefault("upstream.breaker.max_requests", 1)
	v.SetDefault("upstream.breaker.interval", time.Minute)
	v.SetDefault("upstream.breaker.timeout", 30*time.Second)
	v.SetDefault("upstream.breaker.consecutive_failures", 5)

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", 12*time.Hour)
	v.SetDefault("session.cleanup_interval", 10*time.Minute)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.encryption_key", "")
	v.SetDefault("session.cookie_name", "liver_session")
	v.SetDefault("session.cookie_secure", false)

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.prefix", "liver-report:session:")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", 100*time.Millisecond)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 1)

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.rate_limit", 10)
	v.SetDefault("server.rate_burst", 20)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.metrics_path", "/metrics")
	v.SetDefault("server.max_body_bytes", 64<<10)

	v.SetDefault("report.output_dir", ".")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// LoadConfig reads config.yaml from path, or from . and ./config when path
// is empty. A missing default file is not an error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("LIVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	config.applyOverrides(env)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyOverrides(env envOverrides) {
	if env.Port != 0 {
		c.Server.Port = env.Port
	}
	if env.RedisURL != "" {
		c.Redis.URL = env.RedisURL
	}
	if env.UpstreamURL != "" {
		c.Upstream.BaseURL = env.UpstreamURL
	}
	if env.SessionSecret != "" {
		c.Session.Secret = env.SessionSecret
	}
	if env.EncryptionKey != "" {
		c.Session.EncryptionKey = env.EncryptionKey
	}
}

// Validate checks field constraints and the cross-section rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Session.Backend == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("invalid config: redis.url is required when session.backend is redis")
	}
	return nil
}
