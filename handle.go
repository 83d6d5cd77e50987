package bcontent

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Request is the part of a parsed host request the handler reads.
type Request interface {
	Method() string
	// DiscardBody drains any inbound body. Errors should carry the status the host wants to
	// render, see [NewError].
	DiscardBody(ctx context.Context) error
}

// HeaderTransmitter hands response metadata to the host.
type HeaderTransmitter interface {
	SendHeader(ctx context.Context, desc ResponseDescriptor) error
}

// BodyTransmitter takes ownership of a chain and transmits it. After SendBody is called the
// chain, and the resources it references, belong to the transmitter.
type BodyTransmitter interface {
	SendBody(ctx context.Context, chain Chain) error
}

// State is a step in the lifecycle of one request.
type State int

const (
	StateStart State = iota
	StateMethodChecked
	StateBodyDiscarded
	StateComposed
	StateHeaderSent
	StateBodySent
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateMethodChecked:
		return "method_checked"
	case StateBodyDiscarded:
		return "body_discarded"
	case StateComposed:
		return "composed"
	case StateHeaderSent:
		return "header_sent"
	case StateBodySent:
		return "body_sent"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Outcome reports how far a request got and why it stopped.
type Outcome struct {
	State      State
	Descriptor ResponseDescriptor
	// Err is set when State is [StateAborted].
	Err error
	// HeaderSent is true when the header transmitter accepted the descriptor.
	HeaderSent bool
}

// Status returns the http status the client received: the descriptor status once the header
// was sent, the status of Err otherwise.
func (o Outcome) Status() int {
	if o.Err != nil && !o.HeaderSent {
		return StatusOf(o.Err)
	}

	return o.Descriptor.Status
}

// Handler is the content generation callback a host calls for each matching request.
type Handler interface {
	ServeContent(ctx context.Context, r Request, hw HeaderTransmitter, bw BodyTransmitter) Outcome
}

// HandlerFunc allow casting a function to implement [Handler].
type HandlerFunc func(context.Context, Request, HeaderTransmitter, BodyTransmitter) Outcome

// ServeContent implements the [Handler] interface.
func (f HandlerFunc) ServeContent(ctx context.Context, r Request, hw HeaderTransmitter, bw BodyTransmitter) Outcome {
	return f(ctx, r, hw, bw)
}

// ContentHandler drives a request from the method check to the body handoff. Every failure is
// terminal and reported exactly once through the returned [Outcome]; nothing is retried.
type ContentHandler struct {
	composer *Composer
}

// NewContentHandler inits a handler that composes responses with c.
func NewContentHandler(c *Composer) *ContentHandler {
	return &ContentHandler{composer: c}
}

// Composer returns the composer the handler delegates to.
func (h *ContentHandler) Composer() *Composer { return h.composer }

// ServeContent implements the [Handler] interface.
func (h *ContentHandler) ServeContent(
	ctx context.Context, r Request, hw HeaderTransmitter, bw BodyTransmitter,
) Outcome {
	out := Outcome{State: StateStart}

	if m := r.Method(); m != http.MethodGet && m != http.MethodHead {
		return out.abort(NewError(CodeMethodNotAllowed,
			errors.Mark(errors.Newf("method %q", m), ErrMethodNotAllowed)))
	}
	out.State = StateMethodChecked

	if err := r.DiscardBody(ctx); err != nil {
		return out.abort(errors.Mark(err, ErrBodyDiscard))
	}
	out.State = StateBodyDiscarded

	desc, chain, err := h.composer.Compose(ctx, r)
	if err != nil {
		return out.abort(err)
	}
	out.State, out.Descriptor = StateComposed, desc

	if err := hw.SendHeader(ctx, desc); err != nil {
		_ = chain.Release()
		return out.abort(errors.Mark(errors.Wrap(err, "send header"), ErrTransmission))
	}
	out.State, out.HeaderSent = StateHeaderSent, true

	if desc.HeaderOnly {
		return out
	}

	if err := bw.SendBody(ctx, chain); err != nil {
		return out.abort(errors.Mark(errors.Wrap(err, "send body"), ErrTransmission))
	}
	out.State = StateBodySent

	return out
}

func (o Outcome) abort(err error) Outcome {
	o.State, o.Err = StateAborted, err
	return o
}

var _ Handler = &ContentHandler{}
