package handler

import (
	"github.com/gofiber/fiber/v2"

	"docanalyzer/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, analysisSvc service.AnalysisService, exportSvc service.ExportService) {
	app.Get("/health", HealthCheck())
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Post("/analyze", Analyze(analysisSvc))
	api.Post("/export", ExportField(exportSvc))
}

// HealthCheck reports that the process is serving requests.
//
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func HealthCheck() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	}
}

// LivenessProbe is a bodiless probe for orchestrators.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
