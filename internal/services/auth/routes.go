package auth

import (
	"github.com/gofiber/fiber/v3"
	"github.com/pwanystay/pwanystay-api/internal/middleware"
)

// SetupRoutes registers the user auth API.
func (s *AuthService) SetupRoutes(app *fiber.App) {
	app.Post("/api/auth/register", s.Register)
	app.Post("/api/auth/login", s.Login)

	protected := app.Group("/api/auth")
	protected.Use(middleware.AuthMiddleware(s.jwtService))
	protected.Get("/profile", s.GetProfile)
	protected.Put("/profile", s.UpdateProfile)
}
