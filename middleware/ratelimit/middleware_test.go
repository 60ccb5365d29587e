package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimitedEcho(rate int, period time.Duration) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(&Config{
		Store:  NewMemoryStore(),
		Rate:   rate,
		Period: period,
	}))
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	return e
}

func hit(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", ip)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_EnforcesLimit(t *testing.T) {
	e := newLimitedEcho(3, time.Minute)

	for i := 0; i < 3; i++ {
		rec := hit(e, "10.0.0.1")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}

	rec := hit(e, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
}

func TestMiddleware_PerClientKeys(t *testing.T) {
	e := newLimitedEcho(1, time.Minute)

	require.Equal(t, http.StatusOK, hit(e, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(e, "10.0.0.1").Code)

	// another client has its own window
	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.2").Code)
}

func TestMiddleware_WindowResets(t *testing.T) {
	e := newLimitedEcho(1, 30*time.Millisecond)

	require.Equal(t, http.StatusOK, hit(e, "10.0.0.1").Code)
	require.Equal(t, http.StatusTooManyRequests, hit(e, "10.0.0.1").Code)

	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.1").Code)
}

func TestMiddleware_Headers(t *testing.T) {
	e := newLimitedEcho(5, time.Minute)

	rec := hit(e, "10.0.0.1")
	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	reset := time.Now().Add(time.Minute)

	t.Run("missing key", func(t *testing.T) {
		_, _, exists := store.Get("missing")
		assert.False(t, exists)
	})

	t.Run("increment and get", func(t *testing.T) {
		assert.Equal(t, 1, store.Increment("key", reset))
		assert.Equal(t, 2, store.Increment("key", reset))

		count, gotReset, exists := store.Get("key")
		require.True(t, exists)
		assert.Equal(t, 2, count)
		assert.WithinDuration(t, reset, gotReset, time.Second)
	})

	t.Run("expired window reads as missing", func(t *testing.T) {
		store.Increment("stale", time.Now().Add(-time.Second))

		_, _, exists := store.Get("stale")
		assert.False(t, exists)
	})

	t.Run("reset clears the key", func(t *testing.T) {
		store.Reset("key")

		_, _, exists := store.Get("key")
		assert.False(t, exists)
	})
}
