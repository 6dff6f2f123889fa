package vstore

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vstore/pkg/composer"
	"github.com/vango-dev/vstore/pkg/devtools"
	"github.com/vango-dev/vstore/pkg/store"
)

// =============================================================================
// Configuration Types
// =============================================================================

// Config is the main application configuration.
type Config struct {
	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Runtime is the store runtime the App installs its hooks on.
	// If nil, a new runtime is created.
	Runtime *store.Runtime

	// Observers are added to the runtime. A logging observer using Logger
	// is always added.
	Observers []store.Observer

	// Hydration seeds scopes created with a nil payload.
	Hydration composer.HydrationData

	// Devtools configures the devtools bridge.
	Devtools DevtoolsConfig

	// Metrics configures Prometheus metrics.
	Metrics MetricsConfig
}

// DevtoolsConfig configures the devtools bridge.
type DevtoolsConfig struct {
	// Enabled installs the bridge and mounts the WebSocket endpoint.
	Enabled bool

	// Path is the URL path of the WebSocket endpoint.
	// Default: "/_vstore/devtools".
	Path string

	// Filter is an expression over identifier and action selecting the
	// mutations sent to clients. Empty means all.
	Filter string
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled registers the store metrics and mounts the scrape endpoint.
	Enabled bool

	// Namespace is the metrics namespace.
	// Default: "vstore".
	Namespace string

	// Path is the URL path of the scrape endpoint.
	// Default: "/metrics".
	Path string

	// Registry receives the store metrics and is served on Path.
	// If nil, the default Prometheus registry is used.
	Registry *prometheus.Registry
}

// DefaultDevtoolsPath is the default devtools WebSocket path.
const DefaultDevtoolsPath = "/_vstore/devtools"

// DefaultMetricsPath is the default metrics path.
const DefaultMetricsPath = "/metrics"

func (c *Config) applyDefaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Runtime == nil {
		c.Runtime = store.NewRuntime()
	}
	if c.Devtools.Path == "" {
		c.Devtools.Path = DefaultDevtoolsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "vstore"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
}

// devtoolsOptions returns the bridge options for this configuration.
func (c *Config) devtoolsOptions() []devtools.Option {
	return []devtools.Option{
		devtools.WithLogger(c.Logger),
		devtools.WithFilter(c.Devtools.Filter),
	}
}
