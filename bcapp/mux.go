package bcapp

import (
	"net/http"
	"sort"
	"strings"

	"github.com/advdv/bcontent"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ModuleGroup is the fx value group modules are collected from, see [WithModule].
const ModuleGroup = "bcontent_modules"

// Mux is an alias for bcontent.ServeMux.
type Mux = bcontent.ServeMux

// MuxParams holds the dependencies for creating the content mux.
type MuxParams struct {
	fx.In

	Env        Environment
	Logger     *zap.Logger
	TracerProv trace.TracerProvider
	Resolver   bcontent.Resolver
	Modules    []bcontent.Module `group:"bcontent_modules"`
}

// NewMux creates the content mux. Request middleware is installed first, then the built-in
// content module and any grouped modules, and finally the locations from BC_LOCATIONS.
func NewMux(params MuxParams) (*Mux, error) {
	mux := bcontent.NewServeMuxWith(newContentLogger(params.Logger), http.NewServeMux(), bcontent.NewScope("main"))

	tc := TimeoutConfig{WriteTimeout: params.Env.writeTimeout()}
	mux.Use(
		withRequestDep(params.Logger),
		withContentTracing(params.TracerProv),
		WithRequestDeadline(tc.RequestTimeout()),
	)

	mods := append([]bcontent.Module{&bcontent.ContentModule{
		Resolver:    params.Resolver,
		MemoryLimit: params.Env.memoryLimit(),
	}}, params.Modules...)
	if err := mux.Install(mods...); err != nil {
		return nil, errors.Wrap(err, "install modules")
	}

	if err := ConfigureLocations(mux, params.Env.locations()); err != nil {
		return nil, err
	}

	return mux, nil
}

// ConfigureLocations applies a "directive [arg]" value to the scope of each pattern, in pattern
// order.
func ConfigureLocations(mux *Mux, locs map[string]string) error {
	patterns := lo.Keys(locs)
	sort.Strings(patterns)

	for _, pattern := range patterns {
		fields := strings.SplitN(strings.TrimSpace(locs[pattern]), " ", 2)
		if fields[0] == "" {
			return errors.Mark(errors.Newf("location %q: no directive", pattern), bcontent.ErrInvalidDirective)
		}

		args := lo.FilterMap(fields[1:], func(arg string, _ int) (string, bool) {
			arg = strings.TrimSpace(arg)
			return arg, arg != ""
		})

		if err := mux.Configure(pattern, fields[0], args...); err != nil {
			return errors.Wrapf(err, "location %q", pattern)
		}
	}

	return nil
}
