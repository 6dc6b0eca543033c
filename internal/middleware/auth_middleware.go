package middleware

import (
	"strings"

	"go-feed-catalog/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// RequireOperator validates the operator JWT and sets the operator name in
// context.
func RequireOperator(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(secret, parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		c.Locals("operator", claims.Operator)
		return c.Next()
	}
}

// Operator returns the name set by RequireOperator.
func Operator(c *fiber.Ctx) string {
	if name, ok := c.Locals("operator").(string); ok && name != "" {
		return name
	}
	return "anonymous"
}
