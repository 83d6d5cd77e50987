package bcontent

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// Default values of the built-in directives.
const (
	DefaultText    = "Hello World!"
	DefaultTrailer = "extra fee"
)

// Directive binds a configuration token to a content handler. It accepts zero or one
// argument: the body text in [ModeStaticText], the file path in the file modes.
type Directive struct {
	Name string
	Mode Mode

	// Text is the body served in static text mode when no argument is given.
	Text string
	// Path is resolved in the file modes when no argument is given.
	Path string
	// Trailer is appended in file trailer mode.
	Trailer string

	// MemoryLimit bounds memory segments, negative means unlimited.
	MemoryLimit int
	// Resolver replaces the local file system resolver when set.
	Resolver Resolver
}

// TextDirective returns the static text directive with the given name.
func TextDirective(name string) Directive {
	return Directive{Name: name, Mode: ModeStaticText, Text: DefaultText, MemoryLimit: -1}
}

// FileDirective returns the file directive with the given name.
func FileDirective(name string) Directive {
	return Directive{Name: name, Mode: ModeFile, MemoryLimit: -1}
}

// FileTrailerDirective returns the file plus trailer directive with the given name.
func FileTrailerDirective(name string) Directive {
	return Directive{Name: name, Mode: ModeFileTrailer, Trailer: DefaultTrailer, MemoryLimit: -1}
}

// Build validates args and returns the handler the directive binds.
func (d Directive) Build(args ...string) (Handler, error) {
	if d.Name == "" {
		return nil, errors.Mark(errors.New("directive without a name"), ErrInvalidDirective)
	}

	if len(args) > 1 {
		return nil, errors.Mark(errors.Newf("%q takes at most 1 argument, got %d", d.Name, len(args)),
			ErrTooManyArguments)
	}

	opts := []ComposerOption{WithChainBuilder(NewChainBuilder(d.MemoryLimit))}
	if d.Resolver != nil {
		opts = append(opts, WithResolver(d.Resolver))
	}

	switch d.Mode {
	case ModeStaticText:
		text := d.Text
		if len(args) == 1 {
			text = args[0]
		}
		opts = append(opts, WithText(text))
	case ModeFile, ModeFileTrailer:
		path := d.Path
		if len(args) == 1 {
			path = args[0]
		}

		if path == "" {
			return nil, errors.Mark(errors.Newf("%q requires a path argument", d.Name), ErrMissingArgument)
		}

		opts = append(opts, WithPath(path), WithTrailer(d.Trailer))
	}

	c, err := NewComposer(d.Mode, opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "directive %q", d.Name)
	}

	return NewContentHandler(c), nil
}

// Slot is the per-scope storage of one directive.
type Slot struct {
	name  string
	scope *Scope

	args    []string
	handler Handler
}

// Name returns the directive name the slot belongs to.
func (s *Slot) Name() string { return s.name }

// Args returns the arguments the slot was populated with.
func (s *Slot) Args() []string {
	s.scope.mu.RLock()
	defer s.scope.mu.RUnlock()

	return append([]string(nil), s.args...)
}

// Populated reports whether a directive has been registered into the slot.
func (s *Slot) Populated() bool { return s.Handler() != nil }

// Handler returns the handler the slot was populated with.
func (s *Slot) Handler() Handler {
	s.scope.mu.RLock()
	defer s.scope.mu.RUnlock()

	return s.handler
}

// Scope is one configuration block. Scopes nest: a scope without a bound handler falls back
// to its parent's.
type Scope struct {
	name   string
	parent *Scope

	mu      sync.RWMutex
	slots   map[string]*Slot
	handler Handler
}

// NewScope inits a top-level scope.
func NewScope(name string) *Scope {
	return &Scope{name: name, slots: map[string]*Slot{}}
}

// Child inits a scope nested in s.
func (s *Scope) Child(name string) *Scope {
	c := NewScope(name)
	c.parent = s

	return c
}

// Name returns the scope's name.
func (s *Scope) Name() string { return s.name }

// Parent returns the enclosing scope, nil for top-level scopes.
func (s *Scope) Parent() *Scope { return s.parent }

// Slot returns the slot for the named directive, creating it when needed.
func (s *Scope) Slot(name string) *Slot {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.slots[name]
	if !ok {
		slot = &Slot{name: name, scope: s}
		s.slots[name] = slot
	}

	return slot
}

// Bind sets the content handler of the scope.
func (s *Scope) Bind(h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Handler returns the content handler bound to this scope itself.
func (s *Scope) Handler() Handler {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.handler
}

// Lookup returns the handler bound to s or the nearest enclosing scope, nil if none is.
func (s *Scope) Lookup() Handler {
	for sc := s; sc != nil; sc = sc.parent {
		if h := sc.Handler(); h != nil {
			return h
		}
	}

	return nil
}

// Register applies directive d with args to scope s. Registering into a slot that is already
// populated is a no-op.
func Register(s *Scope, d Directive, args ...string) error {
	slot := s.Slot(d.Name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if slot.handler != nil {
		return nil
	}

	h, err := d.Build(args...)
	if err != nil {
		return errors.Wrapf(err, "scope %q", s.name)
	}

	slot.args, slot.handler = append([]string(nil), args...), h
	s.handler = h

	return nil
}
