package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Use installs the global middleware. The request logger goes first so
// recovered panics still get an access log line.
func Use(app *fiber.App, logger *zap.Logger) {
	app.Use(RequestLogger(logger)) // Logging request
	app.Use(recover.New())         // Panic recovery
	app.Use(cors.New())            // CORS
}
