package main

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vstore/internal/config"
)

// tracerProvider builds the provider store spans are recorded on. It returns
// a nil provider when tracing is disabled or the global provider is
// configured; shutdown is never nil.
func tracerProvider(cfg *config.Config, w io.Writer) (trace.TracerProvider, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Tracing.Enabled || cfg.Tracing.Exporter != config.TracingExporterStdout {
		return nil, noop, nil
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, noop, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	return tp, tp.Shutdown, nil
}
