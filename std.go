package bcontent

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/cockroachdb/errors"
)

// allowedMethods is advertised on method not allowed responses.
const allowedMethods = "GET, HEAD"

// ToStd converts a content handler into a standard library http.Handler. Aborted requests
// for which no header was sent yet are rendered as a plain status text response.
func ToStd(h Handler, logs Logger) http.Handler {
	return http.HandlerFunc(func(resp http.ResponseWriter, req *http.Request) {
		out := h.ServeContent(req.Context(), NewStdRequest(req), NewStdHeaderTransmitter(resp), NewStdBodyTransmitter(resp))
		if out.Err == nil {
			return
		}

		if errors.Is(out.Err, ErrTransmission) {
			logs.LogTransmissionError(out.Err)
		} else {
			logs.LogAborted(req.Method, out.Err)
		}

		if !out.HeaderSent {
			RenderError(resp, out.Err)
		}
	})
}

// RenderError writes the status text response for err.
func RenderError(w http.ResponseWriter, err error) {
	status := StatusOf(err)
	if errors.Is(err, ErrMethodNotAllowed) {
		w.Header().Set("Allow", allowedMethods)
	}

	http.Error(w, http.StatusText(status), status)
}

type stdRequest struct{ req *http.Request }

// NewStdRequest adapts a standard library request.
func NewStdRequest(r *http.Request) Request { return stdRequest{r} }

func (r stdRequest) Method() string { return r.req.Method }

func (r stdRequest) DiscardBody(_ context.Context) error {
	if r.req.Body == nil || r.req.Body == http.NoBody {
		return nil
	}

	defer r.req.Body.Close()

	if _, err := io.Copy(io.Discard, r.req.Body); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return NewError(CodeRequestEntityTooLarge, err)
		}

		return NewError(CodeBadRequest, errors.Wrap(err, "read request body"))
	}

	return nil
}

type stdHeaderTransmitter struct {
	w    http.ResponseWriter
	sent bool
}

// NewStdHeaderTransmitter writes descriptors as response headers of w.
func NewStdHeaderTransmitter(w http.ResponseWriter) HeaderTransmitter {
	return &stdHeaderTransmitter{w: w}
}

func (t *stdHeaderTransmitter) SendHeader(_ context.Context, desc ResponseDescriptor) error {
	if t.sent {
		return errors.New("header already sent")
	}

	hdr := t.w.Header()
	hdr.Set("Content-Type", desc.ContentType)
	if desc.ContentLength >= 0 {
		hdr.Set("Content-Length", strconv.FormatInt(desc.ContentLength, 10))
	}

	t.w.WriteHeader(desc.Status)
	t.sent = true

	return nil
}

type stdBodyTransmitter struct{ w http.ResponseWriter }

// NewStdBodyTransmitter writes chains to w. File regions are copied from their resource
// and every resource is released once the chain has been written.
func NewStdBodyTransmitter(w http.ResponseWriter) BodyTransmitter {
	return stdBodyTransmitter{w}
}

func (t stdBodyTransmitter) SendBody(ctx context.Context, chain Chain) (err error) {
	defer func() { err = errors.CombineErrors(err, chain.Release()) }()

	for i, seg := range chain {
		switch seg.Kind() {
		case KindMemory:
			if _, err := t.w.Write(seg.Bytes()); err != nil {
				return errors.Wrapf(err, "write segment %d", i)
			}
		case KindFileRegion:
			rc, err := seg.Resource().Open(ctx, seg.Offset(), seg.Len())
			if err != nil {
				return errors.Wrapf(err, "open segment %d", i)
			}

			n, err := io.Copy(t.w, rc)
			_ = rc.Close()
			if err != nil {
				return errors.Wrapf(err, "copy segment %d", i)
			}

			if n != seg.Len() {
				return errors.Newf("copy segment %d: short copy of %d/%d bytes", i, n, seg.Len())
			}
		default:
			return errors.Newf("segment %d: unsupported kind %s", i, seg.Kind())
		}
	}

	return nil
}
