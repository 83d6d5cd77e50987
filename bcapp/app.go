package bcapp

import (
	"context"
	"net/http"

	"github.com/advdv/bcontent"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// App wraps an fx.App for lifecycle management.
type App struct {
	app *fx.App
}

// AppConfig holds configuration for the app.
type AppConfig struct {
	ServerConfig
	FxOptions []fx.Option
}

// Option configures the App.
type Option func(*AppConfig)

// WithFx adds fx options for dependency injection.
func WithFx(fxOpts ...fx.Option) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fxOpts...)
	}
}

// WithModule installs a module next to the built-in content module. Its directives become
// configurable and its lifecycle hooks run with the server.
func WithModule(mod bcontent.Module) Option {
	return func(c *AppConfig) {
		c.FxOptions = append(c.FxOptions, fx.Provide(fx.Annotate(
			func() bcontent.Module { return mod },
			fx.ResultTags(`group:"`+ModuleGroup+`"`),
		)))
	}
}

// WithHealthHandler sets a custom health check handler.
// If not set, a default handler returning 200 OK is used.
func WithHealthHandler(h func(http.ResponseWriter, *http.Request)) Option {
	return func(c *AppConfig) {
		c.HealthHandler = h
	}
}

// FxOptions returns the fx options that make up the app's dependency graph.
func FxOptions[E Environment](routing any, opts ...Option) []fx.Option {
	var cfg AppConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	baseOpts := make([]fx.Option, 0, 14+len(cfg.FxOptions))
	baseOpts = append(baseOpts, []fx.Option{
		fx.NopLogger,
		fx.Provide(ParseEnv[E]()),
		fx.Provide(func(e E) Environment { return e }),
		fx.Provide(func(e E) (*zap.Logger, error) { return NewLogger(e) }),
		fx.Provide(NewTracerProvider),
		fx.Provide(NewPropagator),
		fx.Provide(provideAWSConfig),
		fx.Provide(provideS3Client),
		fx.Provide(NewHTTPTransport),
		fx.Provide(provideResolver),
		fx.Provide(NewMux),
		fx.Supply(cfg.ServerConfig),
		fx.Provide(NewServer),
		fx.Invoke(startServerHook),
	}...)

	if routing != nil {
		baseOpts = append(baseOpts, fx.Invoke(routing))
	}

	return append(baseOpts, cfg.FxOptions...)
}

// NewApp creates a batteries-included content server with dependency injection.
//
// The routing function can request any types that are provided via fx options, usually the
// *Mux to configure locations on. It may be nil when BC_LOCATIONS covers everything.
//
// Example:
//
//	bcapp.NewApp[Env](func(m *bcapp.Mux) error {
//	    return m.Configure("GET /hello", "content_text", "hi")
//	}).Run()
func NewApp[E Environment](routing any, opts ...Option) *App {
	return &App{
		app: fx.New(FxOptions[E](routing, opts...)...),
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() {
	a.app.Run()
}

// Start starts the application with the given context.
func (a *App) Start(ctx context.Context) error {
	if err := a.app.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.app.StopTimeout())
	defer cancel()

	return a.app.Stop(stopCtx)
}
