package bcapp_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bcontent"
	"github.com/advdv/bcontent/bcapp"
	"github.com/stretchr/testify/require"
)

func TestConfigureLocations(t *testing.T) {
	t.Run("configures each pattern", func(t *testing.T) {
		mux := bcontent.NewServeMux()
		require.NoError(t, bcapp.ConfigureLocations(mux, map[string]string{
			"GET /a": "content_text",
			"GET /b": " content_text  hi there ",
		}))

		for path, body := range map[string]string{"/a": bcontent.DefaultText, "/b": "hi there"} {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusOK, rec.Code, path)
			require.Equal(t, body, rec.Body.String(), path)
		}
	})

	t.Run("unknown directive", func(t *testing.T) {
		err := bcapp.ConfigureLocations(bcontent.NewServeMux(), map[string]string{"GET /a": "content_nope"})
		require.ErrorIs(t, err, bcontent.ErrUnknownDirective)
		require.ErrorContains(t, err, `location "GET /a"`)
	})

	t.Run("empty value", func(t *testing.T) {
		err := bcapp.ConfigureLocations(bcontent.NewServeMux(), map[string]string{"GET /a": "  "})
		require.ErrorIs(t, err, bcontent.ErrInvalidDirective)
	})

	t.Run("missing path", func(t *testing.T) {
		err := bcapp.ConfigureLocations(bcontent.NewServeMux(), map[string]string{"GET /a": "content_file"})
		require.ErrorIs(t, err, bcontent.ErrMissingArgument)
	})
}
