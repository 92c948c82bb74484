package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"bloodbank/pkg/testutil"
)

func TestRouterOperationalEndpoints(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(logger, nil)

	testutil.Given(t, "a router with no feature handlers", func(t *testing.T) {
		testutil.When(t, "probing the health endpoint", func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			testutil.Then(t, "it answers ok", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Equal(t, "ok", rec.Body.String())
			})
		})

		testutil.When(t, "scraping metrics", func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			testutil.Then(t, "the prometheus endpoint responds", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, rec.Code)
			})
		})

		testutil.When(t, "requesting an unknown route", func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

			testutil.Then(t, "it is a 404", func(t *testing.T) {
				assert.Equal(t, http.StatusNotFound, rec.Code)
			})
		})
	})
}

func TestRouterRequestIDPropagation(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(logger, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}
