package middleware

import (
	"context"
	"io"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwanystay/pwanystay-api/internal/cache"
	"github.com/pwanystay/pwanystay-api/internal/utils"
)

// memoryCache is an in-process cache.Cache for exercising the middleware
// without Redis.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value   string
	expires time.Time
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]memoryEntry)}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expires) {
		return "", cache.ErrMiss
	}
	return e.value, nil
}

func (m *memoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: value, expires: time.Now().Add(ttl)}
	return nil
}

type countingHandler struct {
	calls int
	serve func(c fiber.Ctx) error
}

func (h *countingHandler) handle(c fiber.Ctx) error {
	h.calls++
	return h.serve(c)
}

func TestCacheMiddlewareMissThenHit(t *testing.T) {
	store := newMemoryCache()
	handler := &countingHandler{serve: func(c fiber.Ctx) error {
		return utils.Success(c, fiber.StatusOK, []string{"a"}, "Resources fetched")
	}}
	app := fiber.New()
	app.Get("/api/resource", handler.handle, CacheMiddleware(store, time.Minute))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/resource?town=Diani", nil))
	require.NoError(t, err)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	first, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, handler.calls)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/resource?town=Diani", nil))
	require.NoError(t, err)
	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))
	assert.Equal(t, "application/json", resp.Header.Get(fiber.HeaderContentType))
	second, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, string(first), string(second), "a hit replays the body verbatim")
	assert.Equal(t, 1, handler.calls, "a hit must not reach the handler")
}

func TestCacheMiddlewareKeyIncludesQueryString(t *testing.T) {
	store := newMemoryCache()
	handler := &countingHandler{serve: func(c fiber.Ctx) error {
		return utils.Success(c, fiber.StatusOK, c.Query("town"), "ok")
	}}
	app := fiber.New()
	app.Get("/api/resource", handler.handle, CacheMiddleware(store, time.Minute))

	_, err := app.Test(httptest.NewRequest("GET", "/api/resource?town=Diani", nil))
	require.NoError(t, err)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/resource?town=Watamu", nil))
	require.NoError(t, err)

	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"), "different query strings are different entries")
	assert.Equal(t, 2, handler.calls)
}

func TestCacheMiddlewareSkipsFailures(t *testing.T) {
	store := newMemoryCache()
	handler := &countingHandler{serve: func(c fiber.Ctx) error {
		return utils.Fail(c, fiber.StatusInternalServerError, "Could not fetch resources")
	}}
	app := fiber.New()
	app.Get("/api/resource", handler.handle, CacheMiddleware(store, time.Minute))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/resource", nil))
	require.NoError(t, err)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))

	resp, err = app.Test(httptest.NewRequest("GET", "/api/resource", nil))
	require.NoError(t, err)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"), "failure envelopes are never cached")
	assert.Equal(t, 2, handler.calls)
}

func TestCacheMiddlewareIgnoresNonGET(t *testing.T) {
	store := newMemoryCache()
	handler := &countingHandler{serve: func(c fiber.Ctx) error {
		return utils.Success(c, fiber.StatusCreated, nil, "Resource created")
	}}
	app := fiber.New()
	app.Post("/api/resource", handler.handle, CacheMiddleware(store, time.Minute))

	resp, err := app.Test(httptest.NewRequest("POST", "/api/resource", nil))
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("X-Cache"))
	assert.Empty(t, store.entries)
}

func TestCacheMiddlewareServesStaleWithinTTL(t *testing.T) {
	store := newMemoryCache()
	value := "before"
	app := fiber.New()
	app.Get("/api/resource", func(c fiber.Ctx) error {
		return utils.Success(c, fiber.StatusOK, value, "ok")
	}, CacheMiddleware(store, time.Minute))

	resp, err := app.Test(httptest.NewRequest("GET", "/api/resource", nil))
	require.NoError(t, err)
	first, _ := io.ReadAll(resp.Body)

	// A write inside the TTL window does not invalidate the entry.
	value = "after"
	resp, err = app.Test(httptest.NewRequest("GET", "/api/resource", nil))
	require.NoError(t, err)
	second, _ := io.ReadAll(resp.Body)

	assert.Equal(t, "HIT", resp.Header.Get("X-Cache"))
	assert.Equal(t, string(first), string(second))
	assert.Contains(t, string(second), "before")
}

func TestCacheMiddlewareExpiredEntryMisses(t *testing.T) {
	store := newMemoryCache()
	handler := &countingHandler{serve: func(c fiber.Ctx) error {
		return utils.Success(c, fiber.StatusOK, nil, "ok")
	}}
	app := fiber.New()
	app.Get("/api/resource", handler.handle, CacheMiddleware(store, 10*time.Millisecond))

	_, err := app.Test(httptest.NewRequest("GET", "/api/resource", nil))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/resource", nil))
	require.NoError(t, err)
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	assert.Equal(t, 2, handler.calls)
}
