package handler

import (
	"github.com/gofiber/fiber/v2"

	"docanalyzer/internal/model"
	"docanalyzer/internal/service"
)

// exportRequest is the body of POST /api/export.
type exportRequest struct {
	Field  string               `json:"field"`
	Format string               `json:"format"`
	Result model.AnalysisResult `json:"result"`
}

// ExportField renders one field of a previous analysis result as a download.
//
// @Summary Export a result field
// @Description Renders one output of an analysis result as txt, md, json or xlsx.
// @Tags analysis
// @Accept json
// @Produce octet-stream
// @Param request body exportRequest true "Field, format and the analysis result"
// @Success 200 {file} file
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /api/export [post]
func ExportField(svc service.ExportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req exportRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		field, err := model.ParseOutputID(req.Field)
		if err != nil {
			return writeServiceError(c, err)
		}
		format, err := service.ParseExportFormat(req.Format)
		if err != nil {
			return writeServiceError(c, err)
		}

		file, err := svc.Export(c.UserContext(), field, format, req.Result)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Attachment(file.Filename)
		c.Set(fiber.HeaderContentType, file.ContentType)
		return c.Status(fiber.StatusOK).Send(file.Data)
	}
}
