// Package middleware provides store observers for production use.
//
// Each constructor returns a store.Observer. Pass them to the runtime with
// store.WithObserver, or list them in vstore.Config.Observers:
//
//	rt := store.NewRuntime(
//	    store.WithObserver(middleware.Logging(logger)),
//	    store.WithObserver(middleware.Prometheus(middleware.WithNamespace("shop"))),
//	    store.WithObserver(middleware.OpenTelemetry()),
//	)
//
// # Prometheus Metrics
//
// The Prometheus observer collects:
//   - vstore_store_inits_total: initializations by store and status
//   - vstore_store_init_duration_seconds: initialization duration histogram
//   - vstore_store_init_errors_total: failures by store and error code
//   - vstore_active_stores: stores whose scope has not been disposed
//
// Expose them with promhttp:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// The OpenTelemetry observer starts one span per initialization named
// "store.init <identifier>". A store initialized inside another store's
// setup gets a child span. Setup functions can reach the active span through
// Setup.Context:
//
//	span := trace.SpanFromContext(s.Context())
//	span.SetAttributes(attribute.Int("cart.items", n))
//
// The tracer comes from the global provider unless WithTracerProvider is
// used. Configure it in main before initializing stores:
//
//	otel.SetTracerProvider(tp)
package middleware
