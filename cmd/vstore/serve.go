package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vstore"
	"github.com/vango-dev/vstore/internal/config"
	"github.com/vango-dev/vstore/internal/demo"
	"github.com/vango-dev/vstore/pkg/composer"
	"github.com/vango-dev/vstore/pkg/middleware"
	"github.com/vango-dev/vstore/pkg/store"
)

func serveCmd() *cobra.Command {
	var (
		dir      string
		port     int
		host     string
		devtools bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo stores",
		Long: `Serve the demo stores over HTTP.

Configuration is read from vstore.json and .env in --dir, and
VSTORE_* environment variables. Flags override both.

With tracing enabled, store spans are written to stderr as JSON
(tracing.exporter "stdout"). Set tracing.exporter to "global" to use
the process-wide OpenTelemetry provider instead.

Endpoints:
  GET /_vstore/scopes                  live scopes and their stores
  GET /_vstore/scopes/{id}/hydration   hydration export of one scope
  GET /_vstore/devtools                devtools WebSocket
  GET /metrics                         Prometheus metrics

Examples:
  vstore serve
  vstore serve --port=8080 --devtools`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(dir)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if devtools {
				cfg.Devtools.Enabled = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg)
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory containing vstore.json")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from vstore.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vstore.json)")
	cmd.Flags().BoolVar(&devtools, "devtools", false, "Enable the devtools endpoint")

	return cmd
}

// appConfig translates the file configuration into an App configuration.
// tp receives store spans when tracing is enabled; nil means the global
// provider.
func appConfig(cfg *config.Config, tp trace.TracerProvider) (vstore.Config, error) {
	logger := cfg.NewLogger(os.Stderr)

	var hydration composer.HydrationData
	if path := cfg.HydrationPath(); path != "" {
		data, err := readHydration(path, nil)
		if err != nil {
			return vstore.Config{}, err
		}
		hydration = data
	}

	var observers []store.Observer
	if cfg.Tracing.Enabled {
		observers = append(observers, middleware.OpenTelemetry(
			middleware.WithTracerName(cfg.Tracing.TracerName),
			middleware.WithTracerProvider(tp),
		))
	}

	return vstore.Config{
		Logger:    logger,
		Observers: observers,
		Hydration: hydration,
		Devtools: vstore.DevtoolsConfig{
			Enabled: cfg.Devtools.Enabled,
			Path:    cfg.Devtools.Path,
			Filter:  cfg.Devtools.Filter,
		},
		Metrics: vstore.MetricsConfig{
			Enabled:   cfg.Metrics.Enabled,
			Namespace: cfg.Metrics.Namespace,
			Path:      cfg.Metrics.Path,
		},
	}, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	tp, shutdownTracing, err := tracerProvider(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer func() {
		_ = shutdownTracing(context.Background())
	}()

	appCfg, err := appConfig(cfg, tp)
	if err != nil {
		return err
	}
	app, err := vstore.New(appCfg)
	if err != nil {
		return err
	}
	defer app.Close()

	// One scope with the demo stores so the endpoints have something to show.
	stores := demo.New(app.Runtime())
	scope := app.NewScope(nil)
	if _, err := stores.ProvideAll(scope.Owner()); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:    cfg.Address(),
		Handler: app.Handler(),
	}

	out := os.Stdout
	printBanner(out)
	success(out, "Listening on http://%s", cfg.Address())
	info(out, "Demo scope %s", scope.ID())
	if cfg.Devtools.Enabled {
		info(out, "Devtools at ws://%s%s", cfg.Address(), cfg.Devtools.Path)
	}
	if cfg.Metrics.Enabled {
		info(out, "Metrics at http://%s%s", cfg.Address(), cfg.Metrics.Path)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	fmt.Fprintln(out, "\n  Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
