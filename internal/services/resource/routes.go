package resource

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers the resource API. List and get are public and
// cached; everything else requires auth. The /my route must be registered
// before /:id.
func (s *ResourceService) SetupRoutes(app *fiber.App, authMiddleware, cacheMiddleware fiber.Handler) {
	api := app.Group("/api/resource")

	api.Get("/", s.ListResources, cacheMiddleware)
	api.Get("/my", s.ListUserResources, authMiddleware)
	api.Get("/:id", s.GetResource, cacheMiddleware)
	api.Post("/", s.CreateResource, authMiddleware)
	api.Put("/:id", s.UpdateResource, authMiddleware)
	api.Delete("/:id", s.DeleteResource, authMiddleware)
}
