package bcontent

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
)

// ContentTypePlain is the content type of every composed response.
const ContentTypePlain = "text/plain"

// Mode selects how the body of a response is composed.
type Mode int

const (
	ModeUnknown Mode = iota
	// ModeStaticText serves a fixed in-memory text.
	ModeStaticText
	// ModeFile serves the full contents of a file.
	ModeFile
	// ModeFileTrailer serves the contents of a file followed by a fixed in-memory trailer.
	ModeFileTrailer
)

func (m Mode) String() string {
	switch m {
	case ModeStaticText:
		return "static_text"
	case ModeFile:
		return "file"
	case ModeFileTrailer:
		return "file_trailer"
	default:
		return "unknown"
	}
}

// ResponseDescriptor is the response metadata handed to the header transmitter.
type ResponseDescriptor struct {
	Status      int
	ContentType string
	// ContentLength is the exact body size, or -1 when it is not known upfront.
	ContentLength int64
	HeaderOnly    bool
}

// Composer decides status, content type and length of a response and builds its body chain.
// A Composer is immutable after construction and may serve concurrent requests.
type Composer struct {
	mode     Mode
	text     []byte
	path     string
	trailer  []byte
	resolver Resolver
	builder  *ChainBuilder
}

// ComposerOption configures a [Composer].
type ComposerOption func(*Composer)

// WithText sets the body served in [ModeStaticText].
func WithText(text string) ComposerOption {
	return func(c *Composer) { c.text = []byte(text) }
}

// WithPath sets the path resolved in the file modes.
func WithPath(path string) ComposerOption {
	return func(c *Composer) { c.path = path }
}

// WithTrailer sets the text appended after the file in [ModeFileTrailer].
func WithTrailer(trailer string) ComposerOption {
	return func(c *Composer) { c.trailer = []byte(trailer) }
}

// WithResolver replaces the local file system resolver.
func WithResolver(r Resolver) ComposerOption {
	return func(c *Composer) { c.resolver = r }
}

// WithChainBuilder replaces the default builder, which has no memory limit.
func WithChainBuilder(b *ChainBuilder) ComposerOption {
	return func(c *Composer) { c.builder = b }
}

// NewComposer inits a composer for the given mode.
func NewComposer(mode Mode, opts ...ComposerOption) (*Composer, error) {
	c := &Composer{mode: mode}
	for _, opt := range opts {
		opt(c)
	}

	if c.resolver == nil {
		c.resolver = NewFileResolver()
	}

	if c.builder == nil {
		c.builder = NewChainBuilder(-1)
	}

	switch mode {
	case ModeStaticText:
		if c.text == nil {
			c.text = []byte{}
		}
	case ModeFile:
		if c.path == "" {
			return nil, errors.Mark(errors.Newf("mode %s requires a path", mode), ErrMissingArgument)
		}
	case ModeFileTrailer:
		if c.path == "" {
			return nil, errors.Mark(errors.Newf("mode %s requires a path", mode), ErrMissingArgument)
		}

		if c.trailer == nil {
			c.trailer = []byte{}
		}
	default:
		return nil, errors.Mark(errors.Newf("unsupported mode: %d", int(mode)), ErrInvalidDirective)
	}

	return c, nil
}

// Mode returns the mode the composer was created with.
func (c *Composer) Mode() Mode { return c.mode }

// Compose produces the descriptor and, unless the request is HEAD, the body chain. The
// content length is final once Compose returns and always equals the chain length. On error
// no chain is returned and every resource resolved along the way has been released.
func (c *Composer) Compose(ctx context.Context, r Request) (ResponseDescriptor, Chain, error) {
	desc := ResponseDescriptor{
		Status:        http.StatusOK,
		ContentType:   ContentTypePlain,
		ContentLength: -1,
		HeaderOnly:    r.Method() == http.MethodHead,
	}

	if c.mode == ModeStaticText {
		desc.ContentLength = int64(len(c.text))
		if desc.HeaderOnly {
			return desc, nil, nil
		}

		chain, err := c.builder.BuildMemoryChain(c.text)
		if err != nil {
			return ResponseDescriptor{}, nil, err
		}

		return c.finalize(desc, chain)
	}

	res, err := c.resolver.Resolve(ctx, c.path)
	if err != nil {
		return ResponseDescriptor{}, nil, err
	}

	desc.ContentLength = res.Size()

	var trailer []byte
	if c.mode == ModeFileTrailer {
		trailer = c.trailer
		desc.ContentLength += int64(len(trailer))
	}

	if desc.HeaderOnly {
		_ = res.Close() // only the size was needed
		return desc, nil, nil
	}

	chain, err := c.builder.BuildFileChain(res, trailer)
	if err != nil {
		_ = res.Close()
		return ResponseDescriptor{}, nil, err
	}

	return c.finalize(desc, chain)
}

func (c *Composer) finalize(desc ResponseDescriptor, chain Chain) (ResponseDescriptor, Chain, error) {
	if err := chain.Validate(); err != nil {
		_ = chain.Release()
		return ResponseDescriptor{}, nil, NewError(CodeInternalServerError,
			errors.Mark(errors.Wrap(err, "invalid chain"), ErrResourceUnavailable))
	}

	if n := chain.Len(); n != desc.ContentLength {
		_ = chain.Release()
		return ResponseDescriptor{}, nil, NewError(CodeInternalServerError, errors.Mark(
			errors.Newf("chain length %d does not match content length %d", n, desc.ContentLength),
			ErrResourceUnavailable))
	}

	return desc, chain, nil
}
