// Package config provides configuration parsing for vstore servers.
//
// The configuration is stored in vstore.json in the working directory.
// A .env file next to it is loaded into the environment, and VSTORE_*
// environment variables override values from the file.
//
// # Configuration File Structure
//
//	{
//	  "server": {
//	    "host": "localhost",
//	    "port": 3000,
//	    "shutdownTimeout": "10s"
//	  },
//	  "devtools": {
//	    "enabled": true,
//	    "path": "/_vstore/devtools",
//	    "filter": "action != \"Tick\""
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "vstore",
//	    "path": "/metrics"
//	  },
//	  "tracing": {
//	    "enabled": false,
//	    "tracerName": "vstore",
//	    "exporter": "stdout"
//	  },
//	  "hydration": {
//	    "file": "hydration.json"
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  }
//	}
//
// # Environment
//
//	VSTORE_HOST, VSTORE_PORT, VSTORE_DEVTOOLS, VSTORE_DEVTOOLS_FILTER,
//	VSTORE_METRICS, VSTORE_METRICS_NAMESPACE, VSTORE_TRACING,
//	VSTORE_TRACING_EXPORTER,
//	VSTORE_HYDRATION_FILE, VSTORE_LOG_LEVEL, VSTORE_LOG_FORMAT
//
// # Tracing
//
// With tracing enabled, the "stdout" exporter installs an OpenTelemetry SDK
// tracer provider writing spans to stderr. "global" uses
// otel.GetTracerProvider(); an embedder that picks it must install its own
// provider with otel.SetTracerProvider, otherwise spans are dropped.
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
