package config

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/vango-dev/vstore/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vstore.json"

	// EnvFileName is the dotenv file loaded next to the configuration file.
	EnvFileName = ".env"

	// DefaultPort is the default server port.
	DefaultPort = 3000

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultDevtoolsPath is the default devtools WebSocket path.
	DefaultDevtoolsPath = "/_vstore/devtools"

	// DefaultMetricsPath is the default Prometheus scrape path.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "vstore"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "vstore"

	// TracingExporterStdout writes finished spans as JSON to stderr.
	TracingExporterStdout = "stdout"

	// TracingExporterGlobal uses the global tracer provider, which the
	// embedder is expected to configure.
	TracingExporterGlobal = "global"

	// DefaultShutdownTimeout is the default graceful shutdown timeout.
	DefaultShutdownTimeout = "10s"
)

// Config represents the complete vstore.json configuration.
type Config struct {
	// Server contains HTTP server configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Devtools contains devtools bridge configuration.
	Devtools DevtoolsConfig `json:"devtools,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Hydration contains the initial hydration payload location.
	Hydration HydrationConfig `json:"hydration,omitempty"`

	// Log contains logging configuration.
	Log LogConfig `json:"log,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`
}

// DevtoolsConfig contains devtools bridge settings.
type DevtoolsConfig struct {
	// Enabled mounts the devtools WebSocket endpoint.
	Enabled bool `json:"enabled,omitempty"`

	// Path is the URL path of the WebSocket endpoint.
	Path string `json:"path,omitempty"`

	// Filter is an expression selecting which mutations are emitted.
	Filter string `json:"filter,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled registers the store metrics and mounts the scrape endpoint.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`

	// Path is the URL path of the scrape endpoint.
	Path string `json:"path,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled traces store initializations.
	Enabled bool `json:"enabled,omitempty"`

	// TracerName is the name of the tracer.
	TracerName string `json:"tracerName,omitempty"`

	// Exporter selects where spans go: "stdout" (default) or "global".
	Exporter string `json:"exporter,omitempty"`
}

// HydrationConfig contains hydration settings.
type HydrationConfig struct {
	// File is a JSON file mapping store identifiers to state. It seeds
	// every scope created by the server.
	File string `json:"file,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn or error.
	Level string `json:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            DefaultHost,
			Port:            DefaultPort,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Devtools: DevtoolsConfig{
			Path: DefaultDevtoolsPath,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
			Path:      DefaultMetricsPath,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
			Exporter:   TracingExporterStdout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from the specified directory: vstore.json if
// present, then .env, then VSTORE_* overrides. A missing vstore.json yields
// the defaults.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)

	cfg := New()
	if _, err := os.Stat(configPath); err == nil {
		if cfg, err = LoadFile(configPath); err != nil {
			return nil, err
		}
	}

	if err := LoadEnvFile(filepath.Join(dir, EnvFileName)); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads configuration from the specified file path. Environment
// overrides are not applied.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E120").
			WithDetail("Cannot read " + path).
			Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// LoadEnvFile loads a dotenv file into the process environment. Variables
// already set are kept. A missing file is not an error.
func LoadEnvFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.New("E121").
			WithDetail("Failed to parse " + path).
			Wrap(err)
	}
	return nil
}

// envOverride maps one VSTORE_* variable onto the config.
type envOverride struct {
	key   string
	apply func(c *Config, value string) error
}

var envOverrides = []envOverride{
	{"VSTORE_HOST", func(c *Config, v string) error { c.Server.Host = v; return nil }},
	{"VSTORE_PORT", func(c *Config, v string) error { return parseInt(v, &c.Server.Port) }},
	{"VSTORE_DEVTOOLS", func(c *Config, v string) error { return parseBool(v, &c.Devtools.Enabled) }},
	{"VSTORE_DEVTOOLS_FILTER", func(c *Config, v string) error { c.Devtools.Filter = v; return nil }},
	{"VSTORE_METRICS", func(c *Config, v string) error { return parseBool(v, &c.Metrics.Enabled) }},
	{"VSTORE_METRICS_NAMESPACE", func(c *Config, v string) error { c.Metrics.Namespace = v; return nil }},
	{"VSTORE_TRACING", func(c *Config, v string) error { return parseBool(v, &c.Tracing.Enabled) }},
	{"VSTORE_TRACING_EXPORTER", func(c *Config, v string) error { c.Tracing.Exporter = v; return nil }},
	{"VSTORE_HYDRATION_FILE", func(c *Config, v string) error { c.Hydration.File = v; return nil }},
	{"VSTORE_LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"VSTORE_LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = v; return nil }},
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}

// ApplyEnv overrides config values with non-empty VSTORE_* variables.
func (c *Config) ApplyEnv() error {
	for _, o := range envOverrides {
		value := os.Getenv(o.key)
		if value == "" {
			continue
		}
		if err := o.apply(c, value); err != nil {
			return errors.New("E121").
				WithDetailf("%s=%q", o.key, value).
				Wrap(err)
		}
	}
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if c.Devtools.Path == "" {
		c.Devtools.Path = DefaultDevtoolsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = TracingExporterStdout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E122").
			WithDetail("Port must be between 0 and 65535")
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return errors.New("E122").
			WithDetailf("Invalid shutdownTimeout %q", c.Server.ShutdownTimeout)
	}
	if !strings.HasPrefix(c.Devtools.Path, "/") {
		return errors.New("E122").
			WithDetailf("devtools.path %q must start with /", c.Devtools.Path)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E122").
			WithDetailf("metrics.path %q must start with /", c.Metrics.Path)
	}
	switch c.Tracing.Exporter {
	case TracingExporterStdout, TracingExporterGlobal:
	default:
		return errors.New("E122").
			WithDetailf("tracing.exporter %q must be %q or %q", c.Tracing.Exporter, TracingExporterStdout, TracingExporterGlobal)
	}
	if _, ok := logLevels[c.Log.Level]; !ok {
		return errors.New("E122").
			WithDetailf("Unknown log level %q", c.Log.Level).
			WithSuggestion("Use debug, info, warn or error")
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return errors.New("E122").
			WithDetailf("Unknown log format %q", c.Log.Format).
			WithSuggestion("Use text or json")
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// Address returns the address string for the server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// ShutdownTimeout returns the parsed shutdown timeout, falling back to the
// default on an invalid value.
func (c *Config) ShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		d, _ = time.ParseDuration(DefaultShutdownTimeout)
	}
	return d
}

// NewLogger builds the logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: logLevels[c.Log.Level]}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// HydrationPath returns the hydration file path, resolved against the
// config directory. It is "" when no file is configured.
func (c *Config) HydrationPath() string {
	if c.Hydration.File == "" || filepath.IsAbs(c.Hydration.File) {
		return c.Hydration.File
	}
	return filepath.Join(c.Dir(), c.Hydration.File)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
