package bcontent

import (
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Kind tells what backs the bytes of a [Segment].
type Kind int

const (
	KindMemory Kind = iota
	KindFileRegion
)

func (k Kind) String() string {
	switch k {
	case KindMemory:
		return "memory"
	case KindFileRegion:
		return "file_region"
	default:
		return "unknown"
	}
}

// Segment is one contiguous unit of response body bytes. It is either backed by memory or by
// a region of a resolved [FileResource].
type Segment struct {
	kind   Kind
	text   []byte
	res    *FileResource
	offset int64
	length int64
	final  bool
}

// Kind returns what backs the segment.
func (s *Segment) Kind() Kind { return s.kind }

// IsFinal reports whether this is the last segment of the body.
func (s *Segment) IsFinal() bool { return s.final }

// Len returns the number of body bytes the segment contributes.
func (s *Segment) Len() int64 { return s.length }

// Bytes returns the memory backing of the segment. It is nil for file regions.
func (s *Segment) Bytes() []byte {
	if s.kind != KindMemory {
		return nil
	}

	return s.text
}

// Resource returns the file resource referenced by a file region, nil for memory segments.
func (s *Segment) Resource() *FileResource {
	if s.kind != KindFileRegion {
		return nil
	}

	return s.res
}

// Offset returns the byte offset of a file region within its resource.
func (s *Segment) Offset() int64 { return s.offset }

// Chain is the ordered sequence of segments representing one response body.
type Chain []*Segment

// Len returns the sum of all segment lengths.
func (c Chain) Len() int64 {
	return lo.SumBy(c, func(s *Segment) int64 { return s.length })
}

// Validate checks that the chain is non-empty and that exactly one segment, the last one, is
// marked final.
func (c Chain) Validate() error {
	if len(c) == 0 {
		return errors.New("empty chain")
	}

	finals := lo.CountBy(c, func(s *Segment) bool { return s.final })
	if finals != 1 {
		return errors.Newf("chain has %d final segments, want 1", finals)
	}

	if !c[len(c)-1].final {
		return errors.New("final segment is not the last in chain")
	}

	return nil
}

// Release closes every distinct file resource the chain references. It is called by whoever
// owns the chain when it will not be transmitted, or after transmission completed.
func (c Chain) Release() error {
	var errs error
	for _, res := range lo.Uniq(lo.FilterMap(c, func(s *Segment, _ int) (*FileResource, bool) {
		return s.res, s.kind == KindFileRegion && s.res != nil
	})) {
		errs = errors.CombineErrors(errs, res.Close())
	}

	return errs
}

// ChainBuilder assembles chains. Memory segments copy their source bytes into a buffer
// obtained from the builder, so the source may be reused once the chain is built.
type ChainBuilder struct {
	// MemoryLimit is the largest memory segment the builder will allocate. A negative value
	// means no limit.
	MemoryLimit int
}

// NewChainBuilder inits a builder with the given memory limit.
func NewChainBuilder(memoryLimit int) *ChainBuilder {
	return &ChainBuilder{MemoryLimit: memoryLimit}
}

func (b *ChainBuilder) alloc(n int) ([]byte, error) {
	if b != nil && b.MemoryLimit >= 0 && n > b.MemoryLimit {
		return nil, NewError(CodeInternalServerError, errors.Mark(
			errors.Newf("memory segment of %d bytes exceeds limit of %d", n, b.MemoryLimit),
			ErrResourceUnavailable))
	}

	return make([]byte, n), nil
}

func (b *ChainBuilder) memorySegment(text []byte) (*Segment, error) {
	buf, err := b.alloc(len(text))
	if err != nil {
		return nil, err
	}

	copy(buf, text)

	return &Segment{kind: KindMemory, text: buf, length: int64(len(buf))}, nil
}

// BuildMemoryChain produces a chain of a single final memory segment holding a copy of text.
func (b *ChainBuilder) BuildMemoryChain(text []byte) (Chain, error) {
	seg, err := b.memorySegment(text)
	if err != nil {
		return nil, err
	}

	seg.final = true

	return Chain{seg}, nil
}

// BuildFileChain produces a file region segment spanning the whole resource. When trailer is
// non-nil a final memory segment holding a copy of it is appended, otherwise the file region
// itself is final. The resource is not released when building fails; that remains the
// caller's responsibility.
func (b *ChainBuilder) BuildFileChain(res *FileResource, trailer []byte) (Chain, error) {
	if res == nil {
		return nil, NewError(CodeInternalServerError, errors.Mark(
			errors.New("no resource to build file chain from"), ErrResourceUnavailable))
	}

	region := &Segment{kind: KindFileRegion, res: res, offset: 0, length: res.Size()}
	if trailer == nil {
		region.final = true
		return Chain{region}, nil
	}

	tail, err := b.memorySegment(trailer)
	if err != nil {
		return nil, err
	}

	tail.final = true

	return Chain{region, tail}, nil
}
