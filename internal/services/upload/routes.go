package upload

import (
	"github.com/gofiber/fiber/v3"
)

// SetupRoutes registers the upload API. All routes require auth.
func (s *UploadService) SetupRoutes(app *fiber.App, authMiddleware fiber.Handler) {
	api := app.Group("/api/upload")
	api.Use(authMiddleware)

	api.Post("/", s.UploadSingle)
	api.Post("/multiple", s.UploadMultiple)
	api.Get("/params", s.GenerateUploadParams)
}
