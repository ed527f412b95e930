package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS allows browser clients from origins (comma separated, "*" for any).
// The request id and Content-Disposition are always exposed, plus any
// response headers the routes add.
func CORS(origins string, exposed ...string) fiber.Handler {
	if strings.TrimSpace(origins) == "" {
		origins = "*"
	}
	return cors.New(cors.Config{
		AllowOrigins:  origins,
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept," + RequestIDHeader,
		ExposeHeaders: strings.Join(append([]string{RequestIDHeader, fiber.HeaderContentDisposition}, exposed...), ","),
	})
}
