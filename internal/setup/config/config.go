package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrInvalidProxy          = errors.New("invalid proxy url")
)

// RepositoryVersion is the repository version tag for config file references.
const RepositoryVersion = "v0.3.0"

// CurrentVersion is the current version of the config file.
const CurrentVersion = 1

// FileName is the name of the config file looked up in every search path.
const FileName = "deeplweb.toml"

// Default endpoints of the web translator.
const (
	DefaultRPCURL   = "https://www2.deepl.com/jsonrpc"
	DefaultStateURL = "https://w.deepl.com/web"
)

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version        int            `koanf:"version"`
	Debug          Debug          `koanf:"debug"`
	CircuitBreaker CircuitBreaker `koanf:"circuit_breaker"`
	Retry          Retry          `koanf:"retry"`
	Redis          Redis          `koanf:"redis"`
	Cache          Cache          `koanf:"cache"`
	Provider       Provider       `koanf:"provider"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Also write logs to stderr.
	Console bool `koanf:"console"`
	// Forward error logs to OpenTelemetry as spans.
	EnableTracing bool `koanf:"enable_tracing"`
}

// CircuitBreaker contains circuit breaker configuration.
type CircuitBreaker struct {
	// Maximum number of requests allowed to pass through when the circuit is half-open.
	MaxRequests uint32 `koanf:"max_requests"`
	// The cyclic period of the closed state for the circuit breaker to clear the internal counts.
	Interval int `koanf:"interval"`
	// The period of the open state after which the state of the circuit breaker becomes half-open.
	Timeout int `koanf:"timeout"`
}

// Retry contains caller-side retry configuration. The client itself never
// retries a request.
type Retry struct {
	// Maximum retry attempts.
	MaxRetries uint64 `koanf:"max_retries"`
	// Initial retry delay in milliseconds.
	Delay int `koanf:"delay"`
	// Maximum retry delay in milliseconds.
	MaxDelay int `koanf:"max_delay"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Use Redis at all.
	Enabled bool `koanf:"enabled"`
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port number.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
	// Turn off client side caching, for servers without RESP3 tracking.
	DisableCache bool `koanf:"disable_cache"`
}

// Cache contains translation cache configuration.
type Cache struct {
	// Time to live of a cached translation in seconds.
	TTL int `koanf:"ttl"`
}

// Provider contains the web translator settings.
type Provider struct {
	// JSON-RPC endpoint.
	RPCURL string `koanf:"rpc_url"`
	// Client state handshake endpoint.
	StateURL string `koanf:"state_url"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Minimum spacing between two requests of one session in milliseconds.
	MinInterval int `koanf:"min_interval"`
	// Languages sent as the user's preferred languages.
	PreferredLangs []string `koanf:"preferred_langs"`
	// Split sentences locally instead of asking the service.
	LocalSplit bool `koanf:"local_split"`
	// Quality hint attached to every job.
	Quality string `koanf:"quality"`
	// User agent sent with every request.
	UserAgent string `koanf:"user_agent"`
	// Proxy URLs requests are rotated over. Requests go out directly when empty.
	Proxies []string `koanf:"proxies"`
	// Time in milliseconds a proxy is skipped after it timed out.
	UnhealthyDuration int `koanf:"unhealthy_duration"`
}

// RequestTimeoutDuration returns the request timeout as a duration.
func (p *Provider) RequestTimeoutDuration() time.Duration {
	return time.Duration(p.RequestTimeout) * time.Millisecond
}

// MinIntervalDuration returns the request spacing as a duration.
func (p *Provider) MinIntervalDuration() time.Duration {
	return time.Duration(p.MinInterval) * time.Millisecond
}

// UnhealthyDurationValue returns the proxy unhealthy period as a duration.
func (p *Provider) UnhealthyDurationValue() time.Duration {
	return time.Duration(p.UnhealthyDuration) * time.Millisecond
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{Version: CurrentVersion}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig loads the configuration from the first search path holding a
// config file. Returns the config along with the used config directory.
func LoadConfig() (*Config, string, error) {
	// Get user's home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	// List search paths
	configPaths := []string{
		".deeplweb",
		homeDir + "/.deeplweb/config",
		"/etc/deeplweb/config",
		"config",
		".",
	}

	return LoadFrom(configPaths)
}

// LoadFrom loads the configuration from the first of paths holding a config file.
func LoadFrom(configPaths []string) (*Config, string, error) {
	k := koanf.New(".")

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/%s", path, FileName)
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}

	if usedConfigPath == "" {
		return nil, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, FileName)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion(config.Version, CurrentVersion); err != nil {
		return nil, "", err
	}

	if err := config.validate(); err != nil {
		return nil, "", err
	}

	config.applyDefaults()

	return &config, usedConfigPath, nil
}

// applyDefaults fills every unset field with its default value.
func (c *Config) applyDefaults() {
	if c.Debug.LogLevel == "" {
		c.Debug.LogLevel = "info"
	}

	if c.Debug.MaxLogsToKeep <= 0 {
		c.Debug.MaxLogsToKeep = 10
	}

	if c.CircuitBreaker.MaxRequests == 0 {
		c.CircuitBreaker.MaxRequests = 1
	}

	if c.CircuitBreaker.Interval <= 0 {
		c.CircuitBreaker.Interval = 60000
	}

	if c.CircuitBreaker.Timeout <= 0 {
		c.CircuitBreaker.Timeout = 30000
	}

	if c.Retry.Delay <= 0 {
		c.Retry.Delay = 5000
	}

	if c.Retry.MaxDelay <= 0 {
		c.Retry.MaxDelay = 30000
	}

	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}

	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}

	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 86400
	}

	p := &c.Provider
	if p.RPCURL == "" {
		p.RPCURL = DefaultRPCURL
	}

	if p.StateURL == "" {
		p.StateURL = DefaultStateURL
	}

	if p.RequestTimeout <= 0 {
		p.RequestTimeout = 15000
	}

	// The service blocks clients that send faster than this.
	if p.MinInterval <= 0 {
		p.MinInterval = 5000
	}

	if len(p.PreferredLangs) == 0 {
		p.PreferredLangs = []string{"EN", "FR"}
	}

	if p.UnhealthyDuration <= 0 {
		p.UnhealthyDuration = 60000
	}

	if p.UserAgent == "" {
		p.UserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
	}
}

// validate rejects values that cannot be used as configured.
func (c *Config) validate() error {
	for _, proxy := range c.Provider.Proxies {
		u, err := url.Parse(proxy)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidProxy, proxy)
		}
	}
	return nil
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: %s", ErrConfigVersionMissing, FileName)
	}

	if current != expected {
		return fmt.Errorf(
			"%w: %s (got: %d, expected: %d)\n"+
				"Please update your config file from: https://github.com/robalyx/deeplweb/tree/%s/config/%s",
			ErrConfigVersionMismatch,
			FileName,
			current,
			expected,
			RepositoryVersion,
			FileName,
		)
	}

	return nil
}
