package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"docanalyzer/internal/model"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported export format")
	ErrFormatNotAllowed  = errors.New("format is not available for this field")
	ErrFieldEmpty        = errors.New("field has no content to export")
)

// ExportFormat is a download format for one result field.
type ExportFormat string

const (
	FormatText     ExportFormat = "txt"
	FormatMarkdown ExportFormat = "md"
	FormatJSON     ExportFormat = "json"
	FormatXLSX     ExportFormat = "xlsx"
)

var contentTypes = map[ExportFormat]string{
	FormatText:     "text/plain; charset=utf-8",
	FormatMarkdown: "text/markdown; charset=utf-8",
	FormatJSON:     "application/json",
	FormatXLSX:     "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ParseExportFormat validates a format name.
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := contentTypes[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders one field of an analysis result as a file.
type ExportService interface {
	Export(ctx context.Context, field model.OutputID, format ExportFormat, result model.AnalysisResult) (*ExportFile, error)
}

type exportService struct{}

// NewExportService constructs a new ExportService.
func NewExportService() ExportService {
	return &exportService{}
}

var fieldTitles = map[model.OutputID]string{
	model.OutputTranslation:      "Translation",
	model.OutputSummary:          "Summary",
	model.OutputKeyPoints:        "Key Points",
	model.OutputTodos:            "To-Do by Department",
	model.OutputCrossReference:   "Cross-Reference",
	model.OutputGenerateTemplate: "Response Template",
}

func (s *exportService) Export(ctx context.Context, field model.OutputID, format ExportFormat, result model.AnalysisResult) (*ExportFile, error) {
	if !field.Valid() {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownOutput, field)
	}
	if _, ok := contentTypes[format]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data []byte
		err  error
	)
	switch field {
	case model.OutputTranslation, model.OutputSummary, model.OutputGenerateTemplate:
		data, err = renderText(field, format, textField(field, result))
	case model.OutputKeyPoints:
		data, err = renderKeyPoints(format, result.KeyPoints())
	case model.OutputTodos:
		data, err = renderTodos(format, result.TodosByDepartment())
	case model.OutputCrossReference:
		data, err = renderCrossReference(format, result.CrossReference())
	}
	if err != nil {
		return nil, err
	}

	return &ExportFile{
		Filename:    field.ResultKey() + "." + string(format),
		ContentType: contentTypes[format],
		Data:        data,
	}, nil
}

func textField(field model.OutputID, r model.AnalysisResult) string {
	switch field {
	case model.OutputTranslation:
		return r.TranslatedText()
	case model.OutputSummary:
		return r.Summary()
	default:
		return r.ResponseTemplate()
	}
}

func renderText(field model.OutputID, format ExportFormat, text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrFieldEmpty
	}
	switch format {
	case FormatText:
		return []byte(text + "\n"), nil
	case FormatMarkdown:
		return []byte("# " + fieldTitles[field] + "\n\n" + text + "\n"), nil
	case FormatJSON:
		return marshalJSON(map[string]string{field.ResultKey(): text})
	default:
		return nil, fmt.Errorf("%w: %s for %s", ErrFormatNotAllowed, format, field)
	}
}

func renderKeyPoints(format ExportFormat, kps []model.KeyPoint) ([]byte, error) {
	if len(kps) == 0 {
		return nil, ErrFieldEmpty
	}
	var b strings.Builder
	switch format {
	case FormatText:
		for _, kp := range kps {
			fmt.Fprintf(&b, "- [%s] %s", kp.Department, kp.Point)
			if len(kp.Tags) > 0 {
				fmt.Fprintf(&b, " (%s)", strings.Join(kp.Tags, ", "))
			}
			b.WriteString("\n")
		}
	case FormatMarkdown:
		b.WriteString("# " + fieldTitles[model.OutputKeyPoints] + "\n\n")
		b.WriteString("| Point | Department | Tags |\n|---|---|---|\n")
		for _, kp := range kps {
			fmt.Fprintf(&b, "| %s | %s | %s |\n", mdCell(kp.Point), kp.Department, mdCell(strings.Join(kp.Tags, ", ")))
		}
	case FormatJSON:
		return marshalJSON(kps)
	case FormatXLSX:
		rows := make([][]any, len(kps))
		for i, kp := range kps {
			rows[i] = []any{kp.Point, string(kp.Department), strings.Join(kp.Tags, ", ")}
		}
		return workbook("Key Points", []any{"Point", "Department", "Tags"}, rows)
	}
	return []byte(b.String()), nil
}

func renderTodos(format ExportFormat, groups []model.DepartmentTodos) ([]byte, error) {
	total := 0
	for _, g := range groups {
		total += len(g.Tasks)
	}
	if total == 0 {
		return nil, ErrFieldEmpty
	}

	var b strings.Builder
	switch format {
	case FormatText:
		for _, g := range groups {
			fmt.Fprintf(&b, "%s\n", g.Department)
			if len(g.Tasks) == 0 {
				b.WriteString("  (no tasks)\n")
			}
			for _, t := range g.Tasks {
				fmt.Fprintf(&b, "  - %s\n", t.Task)
			}
			b.WriteString("\n")
		}
	case FormatMarkdown:
		b.WriteString("# " + fieldTitles[model.OutputTodos] + "\n")
		for _, g := range groups {
			fmt.Fprintf(&b, "\n## %s\n\n", g.Department)
			if len(g.Tasks) == 0 {
				b.WriteString("_No tasks._\n")
			}
			for _, t := range g.Tasks {
				fmt.Fprintf(&b, "- [ ] %s", t.Task)
				if t.SourcePoint != "" {
					fmt.Fprintf(&b, " _(from: %s)_", t.SourcePoint)
				}
				b.WriteString("\n")
			}
		}
	case FormatJSON:
		return marshalJSON(groups)
	case FormatXLSX:
		rows := make([][]any, 0, total)
		for _, g := range groups {
			for _, t := range g.Tasks {
				rows = append(rows, []any{string(g.Department), t.Task, t.SourcePoint})
			}
		}
		return workbook("To-Do", []any{"Department", "Task", "Source Point"}, rows)
	}
	return []byte(b.String()), nil
}

func renderCrossReference(format ExportFormat, findings []model.CrossReferenceFinding) ([]byte, error) {
	if len(findings) == 0 {
		return nil, ErrFieldEmpty
	}
	var b strings.Builder
	switch format {
	case FormatText:
		for i, f := range findings {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "Q: %s\nA: %s\nFound in: %s\nConfidence: %s\n", f.Question, answerOrPlaceholder(f), f.FoundIn, f.Confidence)
		}
	case FormatMarkdown:
		b.WriteString("# " + fieldTitles[model.OutputCrossReference] + "\n\n")
		b.WriteString("| Question | Answer | Found In | Confidence |\n|---|---|---|---|\n")
		for _, f := range findings {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", mdCell(f.Question), mdCell(answerOrPlaceholder(f)), mdCell(f.FoundIn), f.Confidence)
		}
	case FormatJSON:
		return marshalJSON(findings)
	case FormatXLSX:
		rows := make([][]any, len(findings))
		for i, f := range findings {
			rows[i] = []any{f.Question, f.Answer, f.FoundIn, string(f.Confidence)}
		}
		return workbook("Cross-Reference", []any{"Question", "Answer", "Found In", "Confidence"}, rows)
	}
	return []byte(b.String()), nil
}

func answerOrPlaceholder(f model.CrossReferenceFinding) string {
	if f.Answered() {
		return f.Answer
	}
	return "(not answered)"
}

func mdCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func marshalJSON(v any) ([]byte, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return append(b, '\n'), nil
}

// workbook writes a single-sheet spreadsheet with a header row.
func workbook(sheet string, header []any, rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
