package main

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/vstore"
	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/internal/demo"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHydrateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	payload := `{"Cart": {"items": ["apple"]}, "Cart/Counter": {"count": 1}}`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "hydrate", path)
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}

	var exported map[string]json.RawMessage
	if err := json.Unmarshal([]byte(out), &exported); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	var cart demo.CartState
	if err := json.Unmarshal(exported["Cart"], &cart); err != nil {
		t.Fatal(err)
	}
	if len(cart.Items) != 1 || !cart.Open {
		t.Errorf("Cart = %+v, want hydrated items and initial open flag", cart)
	}

	var counter demo.CounterState
	if err := json.Unmarshal(exported["Cart/Counter"], &counter); err != nil {
		t.Fatal(err)
	}
	if counter.Count != 1 {
		t.Errorf("Cart/Counter = %+v", counter)
	}
	if _, ok := exported["Counter"]; !ok {
		t.Error("top-level Counter should be exported too")
	}
}

func TestHydrateStdin(t *testing.T) {
	out, err := execute(t, `{"Counter": {"count": 3}}`, "hydrate", "-")
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if !strings.Contains(out, `"count": 3`) {
		t.Errorf("output = %s", out)
	}
}

func TestHydrateErrors(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		code  string
	}{
		{"no args", "", []string{"hydrate"}, "E140"},
		{"missing file", "", []string{"hydrate", filepath.Join(t.TempDir(), "nope.json")}, "E221"},
		{"not an object", `[1, 2]`, []string{"hydrate", "-"}, "E221"},
		{"bad state", `{"Counter": {"count": "x"}}`, []string{"hydrate", "-"}, "E221"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.stdin, tt.args...)
			if !stderrors.Is(err, errors.New(tt.code)) {
				t.Errorf("Expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version = %q", out)
	}
}

func TestAppConfig(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "state.json"), []byte(`{"Counter": {"count": 2}}`), 0644); err != nil {
		t.Fatal(err)
	}
	cfgJSON := `{"devtools": {"enabled": true, "filter": "true"}, "tracing": {"enabled": true}, "hydration": {"file": "state.json"}}`
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFileName), []byte(cfgJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	appCfg, err := appConfig(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}

	if !appCfg.Devtools.Enabled || appCfg.Devtools.Filter != "true" {
		t.Errorf("Devtools = %+v", appCfg.Devtools)
	}
	if len(appCfg.Observers) != 1 {
		t.Errorf("expected the tracing observer, got %d observers", len(appCfg.Observers))
	}
	if string(appCfg.Hydration["Counter"]) != `{"count": 2}` {
		t.Errorf("Hydration = %v", appCfg.Hydration)
	}
}

func TestTracingStdoutExporter(t *testing.T) {
	cfg := config.New()
	cfg.Tracing.Enabled = true
	cfg.Metrics.Enabled = false

	var spans bytes.Buffer
	tp, shutdown, err := tracerProvider(cfg, &spans)
	if err != nil {
		t.Fatal(err)
	}
	if tp == nil {
		t.Fatal("Expected a tracer provider for the stdout exporter")
	}

	appCfg, err := appConfig(cfg, tp)
	if err != nil {
		t.Fatal(err)
	}
	app, err := vstore.New(appCfg)
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	stores := demo.New(app.Runtime())
	if _, err := stores.Counter.Use(); err != nil {
		t.Fatal(err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(spans.String(), "store.init Counter") {
		t.Errorf("Expected the init span on the exporter, got %q", spans.String())
	}
}

func TestTracingGlobalExporter(t *testing.T) {
	cfg := config.New()
	cfg.Tracing.Enabled = true
	cfg.Tracing.Exporter = config.TracingExporterGlobal

	tp, shutdown, err := tracerProvider(cfg, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if tp != nil {
		t.Error("The global exporter should leave the provider to otel.GetTracerProvider")
	}
	if err := shutdown(context.Background()); err != nil {
		t.Error(err)
	}
}
