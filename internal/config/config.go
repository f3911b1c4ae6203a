// Package config loads the web front end settings from the environment,
// an optional .env file and built-in defaults, in that order of precedence.
package config

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/ulule/limiter/v3"
)

const (
	envPrefix = "VITRINE"

	defaultEnvFile         = ".env"
	defaultHTTPAddr        = ":8080"
	defaultBackendTimeout  = 15 * time.Second
	defaultPublicURL       = "http://localhost:8080"
	defaultLocale          = "tr"
	defaultEnvironment     = "local"
	defaultLoginRateLimit  = "10-M"
	defaultLogLevel        = "info"
	defaultShutdownTimeout = 10 * time.Second
	minHashKeyLength       = 32
)

// Config is the resolved process configuration.
type Config struct {
	HTTPAddr        string
	BackendURL      string
	BackendTimeout  time.Duration
	PublicURL       string
	Environment     string
	DefaultLocale   string
	LogLevel        string
	ShutdownTimeout time.Duration

	Session   SessionConfig
	RateLimit RateLimitConfig

	// DevStaticBackend serves the seeded in-memory catalog instead of calling BackendURL.
	DevStaticBackend bool
}

// SessionConfig carries the cookie keys.
type SessionConfig struct {
	HashKey  []byte
	BlockKey []byte
	Secure   bool
	// Ephemeral is set when local keys were generated at startup.
	Ephemeral bool
}

// RateLimitConfig holds formatted limiter rates such as "10-M".
type RateLimitConfig struct {
	Login string
}

// Local reports whether the process runs on a developer machine.
func (c Config) Local() bool {
	return c.Environment == defaultEnvironment
}

// ValidationError lists the fields that are missing or invalid.
type ValidationError struct {
	fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns the offending field names.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile reads the given .env file; an empty path disables it.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies values that take precedence over everything else.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load resolves the configuration.
func Load(_ context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{envFile: defaultEnvFile, useSystemEnv: true}
	for _, opt := range opts {
		opt(&options)
	}

	v := viper.New()
	v.SetDefault("http_addr", defaultHTTPAddr)
	v.SetDefault("backend_url", "")
	v.SetDefault("backend_timeout", defaultBackendTimeout.String())
	v.SetDefault("public_url", defaultPublicURL)
	v.SetDefault("session_hash_key", "")
	v.SetDefault("session_block_key", "")
	v.SetDefault("session_secure", "")
	v.SetDefault("default_locale", defaultLocale)
	v.SetDefault("environment", defaultEnvironment)
	v.SetDefault("login_rate_limit", defaultLoginRateLimit)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("shutdown_timeout", defaultShutdownTimeout.String())
	v.SetDefault("dev_static_backend", false)

	dotEnv, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}
	if len(dotEnv) > 0 {
		if err := v.MergeConfigMap(stripPrefix(dotEnv)); err != nil {
			return Config{}, fmt.Errorf("config: merge %s: %w", options.envFile, err)
		}
	}
	if options.useSystemEnv {
		v.SetEnvPrefix(envPrefix)
		v.AutomaticEnv()
	}
	for key, value := range stripPrefix(options.envMap) {
		v.Set(key, value)
	}

	cfg := Config{
		HTTPAddr:         strings.TrimSpace(v.GetString("http_addr")),
		BackendURL:       strings.TrimRight(strings.TrimSpace(v.GetString("backend_url")), "/"),
		BackendTimeout:   v.GetDuration("backend_timeout"),
		PublicURL:        strings.TrimRight(strings.TrimSpace(v.GetString("public_url")), "/"),
		Environment:      strings.ToLower(strings.TrimSpace(v.GetString("environment"))),
		DefaultLocale:    strings.ToLower(strings.TrimSpace(v.GetString("default_locale"))),
		LogLevel:         strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		ShutdownTimeout:  v.GetDuration("shutdown_timeout"),
		DevStaticBackend: v.GetBool("dev_static_backend"),
		Session: SessionConfig{
			HashKey:  []byte(v.GetString("session_hash_key")),
			BlockKey: []byte(v.GetString("session_block_key")),
		},
		RateLimit: RateLimitConfig{
			Login: strings.TrimSpace(v.GetString("login_rate_limit")),
		},
	}

	// Cookies default to Secure everywhere but on a developer machine.
	if raw := strings.TrimSpace(v.GetString("session_secure")); raw == "" {
		cfg.Session.Secure = !cfg.Local()
	} else {
		cfg.Session.Secure = v.GetBool("session_secure")
	}

	if len(cfg.Session.HashKey) == 0 && cfg.Local() {
		cfg.Session.HashKey = randomKey(minHashKeyLength)
		cfg.Session.BlockKey = randomKey(32)
		cfg.Session.Ephemeral = true
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config) error {
	var missing []string

	if cfg.HTTPAddr == "" {
		missing = append(missing, "HTTPAddr")
	}
	if !cfg.DevStaticBackend && !absoluteHTTPURL(cfg.BackendURL) {
		missing = append(missing, "BackendURL")
	}
	if cfg.BackendTimeout <= 0 {
		missing = append(missing, "BackendTimeout")
	}
	if !absoluteHTTPURL(cfg.PublicURL) {
		missing = append(missing, "PublicURL")
	}
	if len(cfg.Session.HashKey) < minHashKeyLength {
		missing = append(missing, "Session.HashKey")
	}
	switch len(cfg.Session.BlockKey) {
	case 0, 16, 24, 32:
	default:
		missing = append(missing, "Session.BlockKey")
	}
	switch cfg.DefaultLocale {
	case "tr", "en":
	default:
		missing = append(missing, "DefaultLocale")
	}
	if _, err := limiter.NewRateFromFormatted(cfg.RateLimit.Login); err != nil {
		missing = append(missing, "RateLimit.Login")
	}
	if cfg.ShutdownTimeout <= 0 {
		missing = append(missing, "ShutdownTimeout")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

// stripPrefix maps VITRINE_HTTP_ADDR style names to viper keys. Names without
// the prefix are ignored.
func stripPrefix(values map[string]string) map[string]any {
	out := make(map[string]any, len(values))
	prefix := envPrefix + "_"
	for key, value := range values {
		upper := strings.ToUpper(strings.TrimSpace(key))
		if !strings.HasPrefix(upper, prefix) {
			continue
		}
		out[strings.ToLower(strings.TrimPrefix(upper, prefix))] = value
	}
	return out
}

func absoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func randomKey(n int) []byte {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		fmt.Fprintf(os.Stderr, "config: generate session key: %v\n", err)
		panic(err)
	}
	return buf
}
