// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Upload   UploadConfig
	Fetch    FetchConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Trace    TraceConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 0 for SSE)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// UploadConfig holds hash-file upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 10MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"10485760"`

	// AllowedExtensions is a comma-separated list of accepted file extensions
	AllowedExtensions []string `env:"UPLOAD_ALLOWED_EXTENSIONS" default:".csv"`

	// PreviewRows is the number of rows returned in the upload preview (default: 5)
	PreviewRows int `env:"UPLOAD_PREVIEW_ROWS" default:"5"`

	// Retention is how long parsed files are kept before a fetch job starts (default: 30m)
	Retention time.Duration `env:"UPLOAD_RETENTION" default:"30m"`
}

// FetchConfig holds explorer API and fetch job settings.
type FetchConfig struct {
	// BaseURL is the Subscan API base URL
	BaseURL string `env:"FETCH_BASE_URL" default:"https://polkadot.api.subscan.io"`

	// APIKey is an optional Subscan API key passed through as X-API-Key
	APIKey string `env:"FETCH_API_KEY"`

	// RequestDelay is the fixed sleep between consecutive API calls (default: 400ms)
	RequestDelay time.Duration `env:"FETCH_REQUEST_DELAY" default:"400ms"`

	// HTTPTimeout is the per-call timeout for explorer requests (default: 30s)
	HTTPTimeout time.Duration `env:"FETCH_HTTP_TIMEOUT" default:"30s"`

	// JobTimeout is the maximum duration for a single fetch job (default: 1h)
	JobTimeout time.Duration `env:"FETCH_JOB_TIMEOUT" default:"1h"`

	// MaxConcurrentJobs is the maximum number of parallel fetch jobs (default: 3)
	MaxConcurrentJobs int `env:"FETCH_MAX_CONCURRENT_JOBS" default:"3"`

	// MaxWaitTime is how long to wait for a job slot (default: 10s)
	MaxWaitTime time.Duration `env:"FETCH_MAX_WAIT_TIME" default:"10s"`

	// ResultRetention is how long completed job results stay available (default: 30m)
	ResultRetention time.Duration `env:"FETCH_RESULT_RETENTION" default:"30m"`

	// CacheTTL is how long explorer responses are cached per hash (default: 10m)
	CacheTTL time.Duration `env:"FETCH_CACHE_TTL" default:"10m"`
}

// MinRequestDelay and MaxRequestDelay bound the per-job delay override.
const (
	MinRequestDelay = 100 * time.Millisecond
	MaxRequestDelay = 2 * time.Second
)

// ClampDelay bounds a requested inter-request delay to the allowed range.
// A zero delay falls back to the configured default.
func (c *FetchConfig) ClampDelay(d time.Duration) time.Duration {
	if d == 0 {
		d = c.RequestDelay
	}
	if d < MinRequestDelay {
		return MinRequestDelay
	}
	if d > MaxRequestDelay {
		return MaxRequestDelay
	}
	return d
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// TraceConfig holds OpenTelemetry tracing settings.
type TraceConfig struct {
	// Endpoint is the OTLP HTTP endpoint. Empty disables tracing (noop provider).
	Endpoint string `env:"TRACE_OTLP_ENDPOINT"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
