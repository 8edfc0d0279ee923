package middleware_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/luminarygames/embervale-site/internal/middleware"
	"github.com/luminarygames/embervale-site/internal/ratelimit"
)

func TestRateLimitMiddleware(t *testing.T) {
	store := ratelimit.NewMemoryStore(0)
	defer store.Close()
	limiter := ratelimit.New(store)
	policy := ratelimit.Policy{Name: "test", Max: 2, Window: time.Minute}

	e := echo.New()
	e.GET("/limited", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, middleware.RateLimit(limiter, policy))

	hit := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/limited", nil)
		req.Header.Set("User-Agent", "test-agent")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("within budget sets countdown headers", func(t *testing.T) {
		rec := hit()
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))

		rec = hit()
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("over budget gets 429 with retry info", func(t *testing.T) {
		rec := hit()
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))

		var body struct {
			Error      string `json:"error"`
			RetryAfter int    `json:"retryAfter"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "too many requests", body.Error)
		require.Greater(t, body.RetryAfter, 0)
	})

	t.Run("nil limiter passes everything through", func(t *testing.T) {
		open := echo.New()
		open.GET("/open", func(c echo.Context) error {
			return c.String(http.StatusOK, "ok")
		}, middleware.RateLimit(nil, policy))

		for i := 0; i < 5; i++ {
			req := httptest.NewRequest(http.MethodGet, "/open", nil)
			rec := httptest.NewRecorder()
			open.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}
