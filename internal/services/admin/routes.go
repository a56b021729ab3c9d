package admin

import (
	"github.com/gofiber/fiber/v3"
	"github.com/pwanystay/pwanystay-api/internal/middleware"
)

// SetupRoutes registers admin auth and the admin management API.
func (s *AdminService) SetupRoutes(app *fiber.App) {
	app.Post("/api/admin/auth/register", s.Register)
	app.Post("/api/admin/auth/login", s.Login)

	api := app.Group("/api/admin")
	api.Use(middleware.AuthMiddleware(s.jwtService))
	api.Use(middleware.RequireAdmin())

	api.Get("/dashboard", s.Dashboard)
	api.Get("/resources", s.ListResources)
	api.Put("/resources/:id", s.UpdateResource)
	api.Delete("/resources/:id", s.DeleteResource)
	api.Get("/users", s.ListUsers)
	api.Put("/users/:id", s.UpdateUser)
	api.Delete("/users/:id", s.DeleteUser)
}
