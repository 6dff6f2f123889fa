package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/vstore/pkg/store"
)

// Default tracer name for vstore.
const defaultTracerName = "vstore"

// OTelConfig configures the OpenTelemetry observer.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "vstore").
	TracerName string

	// TracerProvider supplies the tracer.
	// Default: the global provider.
	TracerProvider trace.TracerProvider

	// Filter determines which initializations to trace.
	// If nil, all initializations are traced.
	Filter func(info store.InitInfo) bool

	// AttributeExtractor adds custom attributes to each span.
	AttributeExtractor func(info store.InitInfo) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry observer.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithInitFilter sets a filter function for initializations.
func WithInitFilter(filter func(info store.InitInfo) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(info store.InitInfo) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

type tracingObserver struct {
	config OTelConfig
	tracer trace.Tracer
}

// OpenTelemetry creates an observer that traces every store
// initialization.
//
// The observer:
//   - Starts a span named "store.init <identifier>" with the store name,
//     id, identifier and nesting depth as attributes
//   - Parents spans of nested stores under the enclosing store's span
//   - Records errors and panics and sets the span status
func OpenTelemetry(opts ...OTelOption) store.Observer {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}
	return &tracingObserver{config: config, tracer: tracer}
}

type spanKey struct{}

// InitStart implements store.Observer.
func (o *tracingObserver) InitStart(ctx context.Context, info store.InitInfo) context.Context {
	if o.config.Filter != nil && !o.config.Filter(info) {
		// Hide the enclosing store's span from this InitEnd.
		return context.WithValue(ctx, spanKey{}, nil)
	}

	attrs := []attribute.KeyValue{
		attribute.String("vstore.store", info.Name),
		attribute.String("vstore.identifier", info.Identifier),
		attribute.Int("vstore.depth", info.Depth),
		attribute.Bool("vstore.scoped", info.Owner != nil),
	}
	if info.ID != "" {
		attrs = append(attrs, attribute.String("vstore.id", info.ID))
	}
	if o.config.AttributeExtractor != nil {
		attrs = append(attrs, o.config.AttributeExtractor(info)...)
	}

	spanCtx, span := o.tracer.Start(ctx, "store.init "+info.Identifier,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return context.WithValue(spanCtx, spanKey{}, span)
}

// InitEnd implements store.Observer.
func (o *tracingObserver) InitEnd(ctx context.Context, info store.InitInfo, err error) {
	span, ok := ctx.Value(spanKey{}).(trace.Span)
	if !ok {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
