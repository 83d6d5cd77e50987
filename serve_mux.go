package bcontent

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// ServeMux is an HTTP multiplexer that hosts content handlers. Every registered pattern owns a
// configuration scope nested in the main scope; directives applied to the scope decide which
// handler serves the pattern.
type ServeMux struct {
	logs Logger
	main *Scope
	mux  *http.ServeMux

	mu          sync.RWMutex
	directives  map[string]Directive
	modules     []Module
	locations   map[string]*Scope
	middlewares struct {
		captured bool
		buffered []Middleware
	}
}

// NewServeMux creates a new ServeMux with the built-in content module installed.
func NewServeMux() *ServeMux {
	m := NewServeMuxWith(NewNopLogger(), http.NewServeMux(), NewScope("main"))
	if err := m.Install(NewContentModule()); err != nil {
		panic("bcontent: " + err.Error())
	}

	return m
}

// NewServeMuxWith creates a ServeMux with custom settings and no modules installed.
func NewServeMuxWith(logger Logger, baseMux *http.ServeMux, main *Scope) *ServeMux {
	return &ServeMux{
		logs:       logger,
		main:       main,
		mux:        baseMux,
		directives: map[string]Directive{},
		locations:  map[string]*Scope{},
	}
}

// Main returns the main scope. Directives applied to it serve every location that has no
// binding of its own.
func (m *ServeMux) Main() *Scope { return m.main }

// Install adds the directives of the given modules. Directive names must be unique across
// modules.
func (m *ServeMux) Install(mods ...Module) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, mod := range mods {
		for _, d := range mod.Directives() {
			if _, exists := m.directives[d.Name]; exists {
				return errors.Mark(errors.Newf("module %q: directive %q", mod.Name(), d.Name),
					ErrDuplicateDirective)
			}
		}

		for _, d := range mod.Directives() {
			m.directives[d.Name] = d
		}

		m.modules = append(m.modules, mod)
	}

	return nil
}

// Directives returns the sorted names of all installed directives.
func (m *ServeMux) Directives() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := lo.Keys(m.directives)
	sort.Strings(names)

	return names
}

// Use allows providing of middleware.
func (m *ServeMux) Use(mw ...Middleware) {
	m.ensureNoUseAfterHandle()
	m.middlewares.buffered = append(m.middlewares.buffered, mw...)
}

// Location returns the scope of pattern, registering the pattern on first use.
func (m *ServeMux) Location(pattern string) *Scope {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sc, ok := m.locations[pattern]; ok {
		return sc
	}

	sc := m.main.Child(pattern)
	m.locations[pattern] = sc
	m.handle(pattern, sc)

	return sc
}

// Configure applies the named directive with args to the scope of pattern.
func (m *ServeMux) Configure(pattern, directive string, args ...string) error {
	return m.ConfigureScope(m.Location(pattern), directive, args...)
}

// ConfigureScope applies the named directive with args to the given scope.
func (m *ServeMux) ConfigureScope(sc *Scope, directive string, args ...string) error {
	m.mu.RLock()
	d, ok := m.directives[directive]
	known := lo.Keys(m.directives)
	m.mu.RUnlock()

	if !ok {
		sort.Strings(known)
		return errors.Mark(errors.Newf("no directive named: %q, got: %v", directive, known), ErrUnknownDirective)
	}

	return Register(sc, d, args...)
}

// Handle binds h directly to the scope of pattern.
func (m *ServeMux) Handle(pattern string, h Handler) {
	m.Location(pattern).Bind(h)
}

// Start runs the start hooks of installed modules in installation order. When a hook fails the
// modules started before it are stopped again, in reverse order.
func (m *ServeMux) Start(ctx context.Context) error {
	mods := m.installed()
	for i, mod := range mods {
		s, ok := mod.(Starter)
		if !ok {
			continue
		}

		if err := s.Start(ctx); err != nil {
			return errors.CombineErrors(errors.Wrapf(err, "start module %q", mod.Name()),
				stopModules(ctx, mods[:i]))
		}
	}

	return nil
}

// Stop runs the stop hooks of installed modules in reverse installation order. All hooks run
// and their errors are combined.
func (m *ServeMux) Stop(ctx context.Context) error {
	return stopModules(ctx, m.installed())
}

func stopModules(ctx context.Context, mods []Module) (errs error) {
	for i := len(mods) - 1; i >= 0; i-- {
		if s, ok := mods[i].(Stopper); ok {
			if err := s.Stop(ctx); err != nil {
				errs = errors.CombineErrors(errs, errors.Wrapf(err, "stop module %q", mods[i].Name()))
			}
		}
	}

	return errs
}

// ServeHTTP makes the server mux implement the http.Handler interface.
func (m *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.mux.ServeHTTP(w, r)
}

func (m *ServeMux) installed() []Module {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]Module(nil), m.modules...)
}

func (m *ServeMux) handle(pattern string, sc *Scope) {
	m.middlewares.captured = true
	mws := m.middlewares.buffered

	m.mux.Handle(pattern, ToStd(HandlerFunc(func(
		ctx context.Context, r Request, hw HeaderTransmitter, bw BodyTransmitter,
	) Outcome {
		h := sc.Lookup()
		if h == nil {
			h = unbound(sc.Name())
		}

		return Wrap(h, mws...).ServeContent(ctx, r, hw, bw)
	}), m.logs))
}

// unbound aborts every request to a location without a content handler.
func unbound(name string) Handler {
	return HandlerFunc(func(context.Context, Request, HeaderTransmitter, BodyTransmitter) Outcome {
		return Outcome{State: StateAborted, Err: NewError(CodeNotFound,
			errors.Mark(errors.Newf("no content handler for %q", name), ErrNotFound))}
	})
}

func (m *ServeMux) ensureNoUseAfterHandle() {
	if m.middlewares.captured {
		panic("bcontent: cannot call Use() after registering a location")
	}
}

var _ http.Handler = &ServeMux{}
