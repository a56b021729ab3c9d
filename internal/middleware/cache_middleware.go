package middleware

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/pwanystay/pwanystay-api/internal/cache"
)

// CacheMiddleware memoizes successful GET responses, keyed by the full
// request path and query string. A hit returns the cached JSON body
// verbatim and skips the handler entirely, so a cached response can mask a
// fallback-mode outage until the entry expires. Entries are invalidated by
// TTL only; a write inside the window stays invisible to cached reads
// until expiry.
func CacheMiddleware(store cache.Cache, ttl time.Duration) fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		key := "cache:" + c.OriginalURL()

		if body, err := store.Get(c.Context(), key); err == nil {
			c.Set("X-Cache", "HIT")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.SendString(body)
		}

		if err := c.Next(); err != nil {
			return err
		}

		c.Set("X-Cache", "MISS")

		// Store only bodies whose envelope marks success.
		body := c.Response().Body()
		var envelope struct {
			Success bool `json:"success"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Success {
			if err := store.Set(c.Context(), key, string(body), ttl); err != nil {
				log.Printf("cache: failed to store %s: %v", key, err)
			}
		}
		return nil
	}
}
