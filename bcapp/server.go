package bcapp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the HTTP server.
type ServerConfig struct {
	HealthHandler func(http.ResponseWriter, *http.Request)
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Mux        *Mux
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// NewServer creates an HTTP server that answers the readiness check itself and hands every other
// request to the content mux.
func NewServer(params ServerParams, cfg ServerConfig) *http.Server {
	// Tracing is disabled for the readiness path to avoid noisy orphan traces from probes.
	healthPath := params.Env.readinessCheckPath()
	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}

	root := http.NewServeMux()
	root.HandleFunc(healthPath, healthHandler)
	root.Handle("/", params.Mux)

	handler := withTracing(params.TracerProv, params.Propagator, params.Env.serviceName(), healthPath)(root)

	tc := TimeoutConfig{WriteTimeout: params.Env.writeTimeout()}
	readHeaderTimeout, readTimeout, writeTimeout, idleTimeout := tc.ServerTimeouts()

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", params.Env.port()),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// startServerHook registers lifecycle hooks for the HTTP server. Module start hooks run before
// the server accepts requests, module stop hooks after it has drained.
func startServerHook(lc fx.Lifecycle, server *http.Server, mux *Mux, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := mux.Start(ctx); err != nil {
				return err
			}

			logger.Info("starting server", zap.String("addr", server.Addr), zap.Strings("directives", mux.Directives()))
			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return errors.CombineErrors(server.Shutdown(ctx), mux.Stop(ctx))
		},
	})
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
