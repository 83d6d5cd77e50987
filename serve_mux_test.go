package bcontent_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/advdv/bcontent"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestServeMux(t *testing.T) {
	mux := bcontent.NewServeMux()
	require.Equal(t, []string{"content_file", "content_file_trailer", "content_text"}, mux.Directives())

	require.NoError(t, mux.Configure("GET /hello", "content_text"))
	require.NoError(t, mux.Configure("/file", "content_file_trailer", writeFile(t, 50)))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hello", nil)
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "12", rec.Header().Get("Content-Length"))
	require.Equal(t, "Hello World!", rec.Body.String())

	rec, req = httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/file", nil)
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, strings.Repeat("a", 50)+"extra fee", rec.Body.String())
}

func TestServeMuxConfigureTwice(t *testing.T) {
	mux := bcontent.NewServeMux()
	require.NoError(t, mux.Configure("/hello", "content_text", "first"))
	require.NoError(t, mux.Configure("/hello", "content_text", "second"))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hello", nil)
	mux.ServeHTTP(rec, req)
	require.Equal(t, "first", rec.Body.String())
}

func TestServeMuxUnknownDirective(t *testing.T) {
	mux := bcontent.NewServeMux()

	err := mux.Configure("/x", "content_nope")
	require.True(t, errors.Is(err, bcontent.ErrUnknownDirective))
	require.ErrorContains(t, err, `no directive named: "content_nope"`)
}

func TestServeMuxUnboundLocation(t *testing.T) {
	mux := bcontent.NewServeMux()
	mux.Location("/empty")

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/empty", nil)
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServeMuxUnboundLocationMiddleware(t *testing.T) {
	var seen []bcontent.Outcome

	mux := bcontent.NewServeMux()
	mux.Use(func(next bcontent.Handler) bcontent.Handler {
		return bcontent.HandlerFunc(func(
			ctx context.Context, r bcontent.Request, hw bcontent.HeaderTransmitter, bw bcontent.BodyTransmitter,
		) bcontent.Outcome {
			out := next.ServeContent(ctx, r, hw, bw)
			seen = append(seen, out)
			return out
		})
	})
	mux.Location("/empty")

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/empty", nil)
	mux.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, seen, 1)
	require.Equal(t, bcontent.StateAborted, seen[0].State)
	require.True(t, errors.Is(seen[0].Err, bcontent.ErrNotFound))
}

func TestServeMuxMainScopeFallback(t *testing.T) {
	mux := bcontent.NewServeMux()
	require.NoError(t, mux.ConfigureScope(mux.Main(), "content_text", "from main"))
	mux.Location("/inherits")

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/inherits", nil)
	mux.ServeHTTP(rec, req)
	require.Equal(t, "from main", rec.Body.String())
}

func TestServeMuxInstallDuplicate(t *testing.T) {
	mux := bcontent.NewServeMux()

	err := mux.Install(bcontent.NewModule("mine", bcontent.TextDirective("content_text")))
	require.True(t, errors.Is(err, bcontent.ErrDuplicateDirective))
}

type hookModule struct {
	name  string
	trace *[]string
	err   error
}

func (m hookModule) Name() string                     { return m.name }
func (m hookModule) Directives() []bcontent.Directive { return nil }

func (m hookModule) Start(context.Context) error {
	*m.trace = append(*m.trace, "start "+m.name)
	return m.err
}

func (m hookModule) Stop(context.Context) error {
	*m.trace = append(*m.trace, "stop "+m.name)
	return m.err
}

func TestServeMuxLifecycleHooks(t *testing.T) {
	var trace []string

	mux := bcontent.NewServeMux()
	require.NoError(t, mux.Install(
		hookModule{name: "a", trace: &trace},
		bcontent.NewModule("nohooks"),
		hookModule{name: "b", trace: &trace},
	))

	ctx := context.Background()
	require.NoError(t, mux.Start(ctx))
	require.NoError(t, mux.Stop(ctx))
	require.Equal(t, []string{"start a", "start b", "stop b", "stop a"}, trace)
}

func TestServeMuxStartFailureStopsStarted(t *testing.T) {
	var trace []string

	mux := bcontent.NewServeMux()
	require.NoError(t, mux.Install(
		hookModule{name: "a", trace: &trace},
		hookModule{name: "b", trace: &trace},
		hookModule{name: "c", trace: &trace, err: errors.New("fail c")},
		hookModule{name: "d", trace: &trace},
	))

	err := mux.Start(context.Background())
	require.ErrorContains(t, err, `start module "c"`)
	require.Equal(t, []string{"start a", "start b", "start c", "stop b", "stop a"}, trace)
}

func TestServeMuxStopCombinesErrors(t *testing.T) {
	var trace []string

	mux := bcontent.NewServeMuxWith(bcontent.NewTestLogger(t), http.NewServeMux(), bcontent.NewScope("main"))
	require.NoError(t, mux.Install(
		hookModule{name: "a", trace: &trace, err: errors.New("fail a")},
		hookModule{name: "b", trace: &trace, err: errors.New("fail b")},
	))

	require.ErrorContains(t, mux.Start(context.Background()), `start module "a"`)

	err := mux.Stop(context.Background())
	require.ErrorContains(t, err, `stop module "b"`)
	require.Equal(t, []string{"start a", "stop b", "stop a"}, trace)
}

func TestServeMuxMiddleware(t *testing.T) {
	var seen []bcontent.State

	mux := bcontent.NewServeMux()
	mux.Use(func(next bcontent.Handler) bcontent.Handler {
		return bcontent.HandlerFunc(func(
			ctx context.Context, r bcontent.Request, hw bcontent.HeaderTransmitter, bw bcontent.BodyTransmitter,
		) bcontent.Outcome {
			out := next.ServeContent(ctx, r, hw, bw)
			seen = append(seen, out.State)
			return out
		})
	})
	require.NoError(t, mux.Configure("/hello", "content_text"))

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/hello", nil))
	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/hello", nil))
	require.Equal(t, []bcontent.State{bcontent.StateBodySent, bcontent.StateAborted}, seen)
}

func TestUseAfterLocation(t *testing.T) {
	mux := bcontent.NewServeMux()
	mux.Location("/x")
	require.PanicsWithValue(t, "bcontent: cannot call Use() after registering a location", func() {
		mux.Use(func(h bcontent.Handler) bcontent.Handler { return h })
	})
}

func TestWrapOrder(t *testing.T) {
	var res string
	mw := func(name string) bcontent.Middleware {
		return func(next bcontent.Handler) bcontent.Handler {
			return bcontent.HandlerFunc(func(
				ctx context.Context, r bcontent.Request, hw bcontent.HeaderTransmitter, bw bcontent.BodyTransmitter,
			) bcontent.Outcome {
				res += name + "("
				out := next.ServeContent(ctx, r, hw, bw)
				res += ")" + name
				return out
			})
		}
	}

	inner := bcontent.HandlerFunc(func(
		context.Context, bcontent.Request, bcontent.HeaderTransmitter, bcontent.BodyTransmitter,
	) bcontent.Outcome {
		res += "inner"
		return bcontent.Outcome{}
	})

	rec := &recorder{}
	bcontent.Wrap(inner, mw("1"), mw("2")).ServeContent(context.Background(), &testRequest{method: "GET"}, rec, rec)
	require.Equal(t, "1(2(inner)2)1", res)
}
