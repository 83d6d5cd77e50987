// Package bcapp provides a batteries-included content server built on [bcontent].
//
// # Overview
//
// bcapp handles the boilerplate of running content handlers as an HTTP service: environment
// parsing, structured logging, OpenTelemetry tracing, an S3-aware file resolver and graceful
// shutdown. A complete server can be created in a single call:
//
//	bcapp.NewApp[bcapp.BaseEnvironment](func(m *bcapp.Mux) error {
//	    return m.Configure("GET /", "content_file", "index.html")
//	}).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    bcapp.BaseEnvironment
//	    Banner string `env:"BANNER"`
//	}
//
// BaseEnvironment provides the following environment variables:
//
//	| Variable                | Required | Default   | Description                                      |
//	|-------------------------|----------|-----------|--------------------------------------------------|
//	| BC_PORT                 | Yes      | -         | Port the HTTP server listens on                  |
//	| BC_SERVICE_NAME         | Yes      | -         | Service name for logging and tracing             |
//	| BC_READINESS_CHECK_PATH | No       | /health   | Health check endpoint path                       |
//	| BC_LOG_LEVEL            | No       | info      | Log level (debug, info, warn, error)             |
//	| BC_OTEL_EXPORTER        | No       | stdout    | Trace exporter: "stdout", "xrayudp" or "none"    |
//	| BC_WRITE_TIMEOUT        | No       | 30s       | Server write timeout, bounds each request        |
//	| BC_LOCATIONS            | No       | -         | "pattern=directive [arg]" pairs, ";" separated   |
//	| BC_MEMORY_LIMIT         | No       | -1        | Max bytes of in-memory segments, -1 is unlimited |
//	| BC_FILE_ROOT            | No       | -         | Directory relative file paths are resolved in    |
//	| AWS_REGION              | No       | us-east-1 | Region of the S3 client                          |
//
// # Locations
//
// Every location is a mux pattern with a directive from an installed module. The built-in
// content module provides content_text, content_file and content_file_trailer:
//
//	BC_LOCATIONS="GET /hello=content_text hi;GET /doc=content_file_trailer s3://bucket/doc.txt"
//
// Paths starting with s3:// are served from S3, the object is headed once per request to determine
// its size and streamed with a ranged GetObject. Paths starting with http:// or https:// are
// served from an origin server the same way, through a transport that propagates the trace.
// Other paths are opened below BC_FILE_ROOT.
//
// # Modules
//
// Additional directives are installed with [WithModule]. Modules that implement
// [bcontent.Starter] or [bcontent.Stopper] are started before the server accepts requests and
// stopped after it drained.
//
// # Request Context
//
// Content middleware can use [Log] for a trace-correlated logger and [Span] for the span that
// wraps the content handler. Each content request gets a deadline derived from BC_WRITE_TIMEOUT,
// see [TimeoutConfig].
//
// # Testing
//
// The bcapptest package builds the same graph on top of fxtest:
//
//	bcapptest.SetBaseEnv(t, 18081)
//	app := bcapptest.New[bcapp.BaseEnvironment](t, routing)
//	app.RequireStart()
//	t.Cleanup(app.RequireStop)
package bcapp
