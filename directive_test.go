package bcontent_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/advdv/bcontent"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestRegisterIdempotent(t *testing.T) {
	scope := bcontent.NewScope("location")
	dir := bcontent.TextDirective("mytest")

	require.NoError(t, bcontent.Register(scope, dir))
	first := scope.Handler()
	require.NotNil(t, first)

	require.NoError(t, bcontent.Register(scope, dir, "other text"))
	require.Same(t, first, scope.Handler())
	require.Empty(t, scope.Slot("mytest").Args())
}

func TestRegisterMissingArgument(t *testing.T) {
	scope := bcontent.NewScope("location")

	err := bcontent.Register(scope, bcontent.FileDirective("my_file_test"))
	require.True(t, errors.Is(err, bcontent.ErrMissingArgument))
	require.False(t, scope.Slot("my_file_test").Populated())
	require.Nil(t, scope.Handler())
}

func TestRegisterTooManyArguments(t *testing.T) {
	scope := bcontent.NewScope("location")

	err := bcontent.Register(scope, bcontent.FileDirective("my_file_test"), "/a", "/b")
	require.True(t, errors.Is(err, bcontent.ErrTooManyArguments))
	require.Nil(t, scope.Handler())
}

func TestRegisterDefaultPath(t *testing.T) {
	path := writeFile(t, 10)
	dir := bcontent.FileDirective("my_file_test")
	dir.Path = path

	scope := bcontent.NewScope("location")
	require.NoError(t, bcontent.Register(scope, dir))

	rec := &recorder{}
	out := scope.Lookup().ServeContent(context.Background(), &testRequest{method: http.MethodGet}, rec, rec)
	require.NoError(t, out.Err)
	require.Equal(t, int64(10), rec.headers[0].ContentLength)
}

func TestRegisterTextArgument(t *testing.T) {
	scope := bcontent.NewScope("location")
	require.NoError(t, bcontent.Register(scope, bcontent.TextDirective("mytest"), "custom"))
	require.Equal(t, []string{"custom"}, scope.Slot("mytest").Args())

	rec := &recorder{}
	out := scope.Lookup().ServeContent(context.Background(), &testRequest{method: http.MethodGet}, rec, rec)
	require.NoError(t, out.Err)
	require.Equal(t, "custom", rec.body.String())
}

func TestScopeLookupInherits(t *testing.T) {
	main := bcontent.NewScope("main")
	srv := main.Child("server")
	loc := srv.Child("location")

	require.Nil(t, loc.Lookup())
	require.NoError(t, bcontent.Register(srv, bcontent.TextDirective("mytest")))
	require.Same(t, srv.Handler(), loc.Lookup())
	require.Nil(t, loc.Handler())
	require.Same(t, main, srv.Parent())
}

func TestDirectiveWithoutName(t *testing.T) {
	_, err := bcontent.Directive{Mode: bcontent.ModeStaticText}.Build()
	require.True(t, errors.Is(err, bcontent.ErrInvalidDirective))
}

func TestSlotConcurrentRegister(t *testing.T) {
	scope := bcontent.NewScope("location")
	slot := scope.Slot("mytest")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = bcontent.Register(scope, bcontent.TextDirective("mytest"), "text")
		}()
		go func() {
			defer wg.Done()
			_ = slot.Populated()
			_ = slot.Args()
		}()
	}
	wg.Wait()

	require.True(t, slot.Populated())
	require.Equal(t, []string{"text"}, slot.Args())
}
