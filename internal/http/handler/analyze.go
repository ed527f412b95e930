package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docanalyzer/internal/model"
	"docanalyzer/internal/service"
)

// Multipart field names of the analyze form.
const (
	FieldFile           = "file"
	FieldCrossFiles     = "crossFiles"
	FieldTargetLanguage = "targetLanguage"
	FieldOutputs        = "outputs"
)

// SkippedFilesHeader lists cross-reference files left out of an analysis, as a JSON array.
const SkippedFilesHeader = "X-Skipped-Cross-Files"

const defaultContentType = "application/octet-stream"

// Analyze runs a document analysis from a multipart upload.
//
// @Summary Analyze a document
// @Description Extracts text from a PDF or DOCX and returns the selected outputs produced by the language model.
// @Tags analysis
// @Accept mpfd
// @Produce json
// @Param file formData file true "Main document (PDF or DOCX)"
// @Param crossFiles formData file false "Cross-reference documents"
// @Param targetLanguage formData string true "Language of the generated text"
// @Param outputs formData []string true "translation, summary, key_points, todos, cross_reference, generate_template" collectionFormat(multi)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Failure 502 {object} errorPayload
// @Router /api/analyze [post]
func Analyze(svc service.AnalysisService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "multipart form with a file is required")
		}

		req, err := analysisRequestFromForm(form)
		if err != nil {
			return writeServiceError(c, err)
		}

		out, err := svc.Analyze(c.UserContext(), req)
		if err != nil {
			return writeServiceError(c, err)
		}

		if len(out.Skipped) > 0 {
			if b, err := json.Marshal(out.Skipped); err == nil {
				c.Set(SkippedFilesHeader, string(b))
			}
		}
		return c.Status(fiber.StatusOK).JSON(out.Result)
	}
}

// analysisRequestFromForm keeps the service's validation order: a missing file
// or language is reported before an unknown output identifier.
func analysisRequestFromForm(form *multipart.Form) (model.AnalysisRequest, error) {
	files := form.File[FieldFile]
	if len(files) == 0 {
		return model.AnalysisRequest{}, service.ErrMissingFile
	}
	lang := strings.TrimSpace(firstValue(form.Value[FieldTargetLanguage]))
	if lang == "" {
		return model.AnalysisRequest{}, service.ErrMissingLanguage
	}
	outputs, err := model.ParseOutputs(form.Value[FieldOutputs])
	if err != nil {
		return model.AnalysisRequest{}, err
	}

	main, err := readUpload(files[0])
	if err != nil {
		return model.AnalysisRequest{}, err
	}
	req := model.AnalysisRequest{
		MainFile:       &main,
		TargetLanguage: lang,
		Outputs:        outputs,
	}

	for _, fh := range form.File[FieldCrossFiles] {
		f, err := readUpload(fh)
		if err != nil {
			return model.AnalysisRequest{}, err
		}
		req.CrossFiles = append(req.CrossFiles, f)
	}
	return req, nil
}

func readUpload(fh *multipart.FileHeader) (model.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return model.UploadedFile{}, fmt.Errorf("read upload %q: %w", fh.Filename, err)
	}

	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = defaultContentType
	}
	return model.UploadedFile{Filename: fh.Filename, MIMEType: ct, Data: data}, nil
}

func firstValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
