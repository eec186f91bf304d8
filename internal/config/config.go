package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable.
const EnvPrefix = "RICECAST"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Upload    UploadConfig    `yaml:"upload" envconfig:"UPLOAD"`
	Forecast  ForecastConfig  `yaml:"forecast" envconfig:"FORECAST"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host" envconfig:"HOST"`
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// UploadConfig bounds uploads and the dataset cache.
type UploadConfig struct {
	MaxBytes      int64         `yaml:"max_bytes" envconfig:"MAX_BYTES"`
	SessionTTL    time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL"`
	MaxSessions   int           `yaml:"max_sessions" envconfig:"MAX_SESSIONS"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SWEEP_INTERVAL"`
}

// ForecastConfig holds model settings and the choices offered to users.
type ForecastConfig struct {
	PriceFloor     float64   `yaml:"price_floor" envconfig:"PRICE_FLOOR"`
	WindowSize     int       `yaml:"window_size" envconfig:"WINDOW_SIZE"`
	Horizons       []int     `yaml:"horizons" envconfig:"HORIZONS"`
	Alphas         []float64 `yaml:"alphas" envconfig:"ALPHAS"`
	DefaultHorizon int       `yaml:"default_horizon" envconfig:"DEFAULT_HORIZON"`
	DefaultAlpha   float64   `yaml:"default_alpha" envconfig:"DEFAULT_ALPHA"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	ServiceName    string  `yaml:"service_name" envconfig:"SERVICE_NAME"`
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  20 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     20,
				Burst:   40,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/ricecast.log",
		},
		Upload: UploadConfig{
			MaxBytes:      10 << 20, // 10MB
			SessionTTL:    30 * time.Minute,
			MaxSessions:   256,
			SweepInterval: time.Minute,
		},
		Forecast: ForecastConfig{
			PriceFloor:     12000,
			WindowSize:     30,
			Horizons:       []int{7, 14, 30},
			Alphas:         []float64{0.2, 0.5, 0.8},
			DefaultHorizon: 7,
			DefaultAlpha:   0.5,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "ricecast",
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}

// Load resolves configuration from defaults, the config file and the environment.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML file. An empty path skips the file.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays YAML values onto cfg; keys absent from the file keep
// their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid server port: %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, errors.New("server read timeout must be positive"))
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server write timeout must be positive"))
	}
	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("at least one allowed origin must be specified"))
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate limit rps and burst must be positive"))
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file":
	default:
		errs = append(errs, fmt.Errorf("invalid logging output: %q", c.Logging.Output))
	}
	// Only JSON logs are produced.
	c.Logging.Format = "json"
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/ricecast.log"
	}

	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("upload max bytes must be positive"))
	}

	f := c.Forecast
	if f.PriceFloor < 0 {
		errs = append(errs, fmt.Errorf("price floor must not be negative: %v", f.PriceFloor))
	}
	if f.WindowSize <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive: %d", f.WindowSize))
	}
	if len(f.Horizons) == 0 || slices.ContainsFunc(f.Horizons, func(h int) bool { return h <= 0 }) {
		errs = append(errs, fmt.Errorf("horizons must be positive: %v", f.Horizons))
	}
	if len(f.Alphas) == 0 || slices.ContainsFunc(f.Alphas, func(a float64) bool { return a <= 0 || a > 1 }) {
		errs = append(errs, fmt.Errorf("alphas must be in (0, 1]: %v", f.Alphas))
	}
	if !slices.Contains(f.Horizons, f.DefaultHorizon) {
		errs = append(errs, fmt.Errorf("default horizon %d not in %v", f.DefaultHorizon, f.Horizons))
	}
	if !slices.Contains(f.Alphas, f.DefaultAlpha) {
		errs = append(errs, fmt.Errorf("default alpha %v not in %v", f.DefaultAlpha, f.Alphas))
	}

	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("sample ratio must be in [0, 1]: %v", c.Telemetry.SampleRatio))
	}

	return errors.Join(errs...)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if p := os.Getenv(EnvPrefix + "_CONFIG"); p != "" {
		return p
	}

	for _, location := range []string{"config.yaml", "configs/config.yaml"} {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return "" // No config file found, use env vars only
}
