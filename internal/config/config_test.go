package config

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vstore/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Devtools.Enabled {
		t.Error("Devtools should be disabled by default")
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics should be enabled by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// A missing vstore.json yields the defaults.
	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load without config: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}

	configJSON := `{
  "server": {"host": "0.0.0.0", "port": 8080},
  "devtools": {"enabled": true, "filter": "action != \"Tick\""},
  "hydration": {"file": "state.json"}
}
`
	configPath := filepath.Join(tmpDir, ConfigFileName)
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err = Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Address() != "0.0.0.0:8080" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if !cfg.Devtools.Enabled || cfg.Devtools.Filter != `action != "Tick"` {
		t.Errorf("Devtools = %+v", cfg.Devtools)
	}
	if cfg.Devtools.Path != DefaultDevtoolsPath {
		t.Errorf("Devtools.Path = %q, want default", cfg.Devtools.Path)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q, want default", cfg.Metrics.Namespace)
	}
	if got, want := cfg.HydrationPath(), filepath.Join(tmpDir, "state.json"); got != want {
		t.Errorf("HydrationPath() = %q, want %q", got, want)
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(tmpDir)
	if !stderrors.Is(err, errors.New("E120")) {
		t.Errorf("Expected E120, got %v", err)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), ConfigFileName))
	if !stderrors.Is(err, errors.New("E120")) {
		t.Errorf("Expected E120, got %v", err)
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected the cause to be kept, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("VSTORE_PORT", "9000")
	t.Setenv("VSTORE_DEVTOOLS", "true")
	t.Setenv("VSTORE_METRICS", "false")
	t.Setenv("VSTORE_LOG_LEVEL", "debug")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if !cfg.Devtools.Enabled {
		t.Error("VSTORE_DEVTOOLS should enable devtools")
	}
	if cfg.Metrics.Enabled {
		t.Error("VSTORE_METRICS should disable metrics")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	tests := map[string]string{
		"VSTORE_PORT":     "eighty",
		"VSTORE_DEVTOOLS": "sometimes",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			err := New().ApplyEnv()
			if !stderrors.Is(err, errors.New("E121")) {
				t.Fatalf("Expected E121, got %v", err)
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("Error should name %s: %v", key, err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	tmpDir := t.TempDir()
	env := "VSTORE_LOG_FORMAT=json\n"
	if err := os.WriteFile(filepath.Join(tmpDir, EnvFileName), []byte(env), 0644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("VSTORE_LOG_FORMAT") })

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json from .env", cfg.Log.Format)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"shutdown timeout", func(c *Config) { c.Server.ShutdownTimeout = "soon" }},
		{"devtools path", func(c *Config) { c.Devtools.Path = "devtools" }},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }},
		{"log level", func(c *Config) { c.Log.Level = "loud" }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
		{"tracing exporter", func(c *Config) { c.Tracing.Exporter = "jaeger" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			if err := cfg.Validate(); !stderrors.Is(err, errors.New("E122")) {
				t.Errorf("Expected E122, got %v", err)
			}
		})
	}
}

func TestTracingExporterDefault(t *testing.T) {
	cfg := New()
	if cfg.Tracing.Exporter != TracingExporterStdout {
		t.Errorf("Tracing.Exporter = %q", cfg.Tracing.Exporter)
	}

	t.Setenv("VSTORE_TRACING_EXPORTER", TracingExporterGlobal)
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatal(err)
	}
	if cfg.Tracing.Exporter != TracingExporterGlobal {
		t.Errorf("VSTORE_TRACING_EXPORTER not applied: %q", cfg.Tracing.Exporter)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestShutdownTimeout(t *testing.T) {
	cfg := New()
	cfg.Server.ShutdownTimeout = "3s"
	if got := cfg.ShutdownTimeout(); got != 3*time.Second {
		t.Errorf("ShutdownTimeout() = %v", got)
	}
	cfg.Server.ShutdownTimeout = "bad"
	if got := cfg.ShutdownTimeout(); got != 10*time.Second {
		t.Errorf("ShutdownTimeout() fallback = %v", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("Info should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("Expected JSON output, got %q", out)
	}
}

func TestExists(t *testing.T) {
	tmpDir := t.TempDir()
	if Exists(tmpDir) {
		t.Error("Exists should be false for an empty directory")
	}
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if !Exists(tmpDir) {
		t.Error("Exists should be true")
	}
}
