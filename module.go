package bcontent

import "context"

// Module contributes directives to a host. Lifecycle hooks are optional: a module implements
// [Starter] and/or [Stopper] only when it needs them.
type Module interface {
	Name() string
	Directives() []Directive
}

// Starter is implemented by modules that need to run code when the host starts.
type Starter interface {
	Start(ctx context.Context) error
}

// Stopper is implemented by modules that need to run code when the host stops.
type Stopper interface {
	Stop(ctx context.Context) error
}

// ContentModule provides the built-in directives.
type ContentModule struct {
	// Resolver is used by the file directives, the local file system when nil.
	Resolver Resolver
	// MemoryLimit bounds memory segments, negative means unlimited.
	MemoryLimit int
}

// NewContentModule inits the built-in module with the local file system resolver.
func NewContentModule() *ContentModule {
	return &ContentModule{MemoryLimit: -1}
}

func (m *ContentModule) Name() string { return "content" }

// Directives returns content_text, content_file and content_file_trailer.
func (m *ContentModule) Directives() []Directive {
	dirs := []Directive{
		TextDirective("content_text"),
		FileDirective("content_file"),
		FileTrailerDirective("content_file_trailer"),
	}

	for i := range dirs {
		dirs[i].Resolver = m.Resolver
		dirs[i].MemoryLimit = m.MemoryLimit
	}

	return dirs
}

type directiveModule struct {
	name string
	dirs []Directive
}

// NewModule inits a module without lifecycle hooks from a list of directives.
func NewModule(name string, dirs ...Directive) Module {
	return directiveModule{name: name, dirs: dirs}
}

func (m directiveModule) Name() string            { return m.name }
func (m directiveModule) Directives() []Directive { return m.dirs }

var (
	_ Module = &ContentModule{}
	_ Module = directiveModule{}
)
