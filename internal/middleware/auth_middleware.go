package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/pwanystay/pwanystay-api/internal/utils"
)

// AuthMiddleware verifies the bearer token and stores the caller's identity
// in the request locals.
func AuthMiddleware(jwtService *utils.JWTService) fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.Fail(c, fiber.StatusUnauthorized, "Access token required")
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return utils.Fail(c, fiber.StatusUnauthorized, "Access token required")
		}

		claims, err := jwtService.ParseClaims(parts[1])
		if err != nil {
			return utils.Fail(c, fiber.StatusForbidden, "Invalid token")
		}

		c.Locals("userID", claims.UserID)
		c.Locals("email", claims.Email)
		c.Locals("role", claims.Role)

		return c.Next()
	}
}

// RequireAdmin gates a route to tokens carrying the admin role. It must run
// after AuthMiddleware.
func RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != "admin" {
			return utils.Fail(c, fiber.StatusForbidden, "Admin access required")
		}
		return c.Next()
	}
}
