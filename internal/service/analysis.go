package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"docanalyzer/internal/extract"
	"docanalyzer/internal/llm"
	"docanalyzer/internal/model"
	"docanalyzer/internal/prompt"
)

var (
	ErrMissingFile           = errors.New("file is required")
	ErrMissingLanguage       = errors.New("target language is required")
	ErrNoOutputs             = errors.New("at least one output must be selected")
	ErrFileTooLarge          = errors.New("file exceeds the maximum size")
	ErrTooManyCrossFiles     = errors.New("too many cross-reference files")
	ErrEmptyDocument         = errors.New("no text could be extracted from the document")
	ErrProviderNotConfigured = errors.New("llm provider credential is not configured")
)

const (
	DefaultMaxFileSize   = 10 << 20
	DefaultMaxCrossFiles = 10
)

// Limits bounds the size of one analysis request.
type Limits struct {
	MaxFileSize   int64
	MaxCrossFiles int
}

// DefaultLimits returns 10 MiB per file and 10 cross-reference files.
func DefaultLimits() Limits {
	return Limits{MaxFileSize: DefaultMaxFileSize, MaxCrossFiles: DefaultMaxCrossFiles}
}

// AnalysisService defines the document analysis use case.
type AnalysisService interface {
	// Analyze validates the request, extracts text, asks the model for the
	// selected outputs and returns its decoded answer. Cross-reference files
	// that cannot be read are skipped and reported, never fatal.
	Analyze(ctx context.Context, req model.AnalysisRequest) (*model.AnalysisOutcome, error)
}

type analysisService struct {
	extractor extract.Extractor
	gateway   llm.Gateway
	limits    Limits
	log       *zap.Logger
}

// NewAnalysisService constructs a new AnalysisService. Zero limits fall back to DefaultLimits.
func NewAnalysisService(extractor extract.Extractor, gateway llm.Gateway, limits Limits, log *zap.Logger) AnalysisService {
	def := DefaultLimits()
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = def.MaxFileSize
	}
	if limits.MaxCrossFiles <= 0 {
		limits.MaxCrossFiles = def.MaxCrossFiles
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &analysisService{extractor: extractor, gateway: gateway, limits: limits, log: log}
}

var tracer = otel.Tracer("docanalyzer/internal/service")

func (s *analysisService) Analyze(ctx context.Context, req model.AnalysisRequest) (_ *model.AnalysisOutcome, err error) {
	ctx, span := tracer.Start(ctx, "AnalysisService.Analyze")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := s.validate(req); err != nil {
		return nil, err
	}
	if !s.gateway.Configured() {
		return nil, ErrProviderNotConfigured
	}

	start := time.Now()
	log := s.log.With(
		zap.String("file", req.MainFile.Filename),
		zap.Strings("outputs", req.Outputs.Strings()),
		zap.String("target_language", req.TargetLanguage),
	)
	span.SetAttributes(
		attribute.StringSlice("analysis.outputs", req.Outputs.Strings()),
		attribute.Int("analysis.cross_files", len(req.CrossFiles)),
	)
	log.Info("analysis.start", zap.Int("cross_files", len(req.CrossFiles)))

	mainText, err := s.extractor.Extract(ctx, req.MainFile.Data, req.MainFile.Filename, req.MainFile.MIMEType)
	if err != nil {
		return nil, fmt.Errorf("extract main document: %w", err)
	}
	if strings.TrimSpace(mainText) == "" {
		return nil, ErrEmptyDocument
	}

	var (
		crossText string
		skipped   []model.SkippedFile
	)
	if req.Outputs.NeedsCrossDocuments() {
		crossText, skipped = assembleCrossText(s.extractCrossFiles(ctx, req.CrossFiles))
		for _, sk := range skipped {
			log.Warn("analysis.cross_file_skipped",
				zap.Int("position", sk.Position),
				zap.String("cross_file", sk.Filename),
				zap.String("reason", sk.Reason),
			)
		}
	}

	p := prompt.Build(req.Outputs, req.TargetLanguage, mainText, crossText)
	span.SetAttributes(attribute.Int("analysis.prompt_chars", len(p.Text)))

	raw, err := s.gateway.Complete(ctx, p.Text)
	if err != nil {
		return nil, fmt.Errorf("complete analysis: %w", err)
	}

	result, err := llm.Decode(raw)
	if err != nil {
		var de *llm.DecodeError
		if errors.As(err, &de) {
			log.Error("analysis.llm_decode_failed", zap.Error(err), zap.String("snippet", de.Snippet))
		}
		return nil, err
	}

	log.Info("analysis.done",
		zap.Int("result_keys", len(result)),
		zap.Int("skipped_cross_files", len(skipped)),
		zap.Int64("latency_ms", time.Since(start).Milliseconds()),
	)
	return &model.AnalysisOutcome{Result: result, Skipped: skipped}, nil
}

// validate runs the checks that need no I/O, in a fixed order.
func (s *analysisService) validate(req model.AnalysisRequest) error {
	if req.MainFile == nil {
		return ErrMissingFile
	}
	if strings.TrimSpace(req.TargetLanguage) == "" {
		return ErrMissingLanguage
	}
	if req.Outputs.Len() == 0 {
		return ErrNoOutputs
	}
	if len(req.CrossFiles) > s.limits.MaxCrossFiles {
		return fmt.Errorf("%w: %d > %d", ErrTooManyCrossFiles, len(req.CrossFiles), s.limits.MaxCrossFiles)
	}
	if req.MainFile.Size() > s.limits.MaxFileSize {
		return fmt.Errorf("%w: %q", ErrFileTooLarge, req.MainFile.Filename)
	}
	for _, f := range req.CrossFiles {
		if f.Size() > s.limits.MaxFileSize {
			return fmt.Errorf("%w: %q", ErrFileTooLarge, f.Filename)
		}
	}
	return nil
}

// crossExtraction is the outcome for one cross-reference file.
type crossExtraction struct {
	position int
	filename string
	text     string
	err      error
}

func (s *analysisService) extractCrossFiles(ctx context.Context, files []model.UploadedFile) []crossExtraction {
	out := make([]crossExtraction, len(files))
	for i, f := range files {
		text, err := s.extractor.Extract(ctx, f.Data, f.Filename, f.MIMEType)
		out[i] = crossExtraction{position: i + 1, filename: f.Filename, text: text, err: err}
	}
	return out
}

// assembleCrossText joins the readable files under numbered headers and
// reports the rest. Positions are the original 1-based upload positions.
func assembleCrossText(results []crossExtraction) (string, []model.SkippedFile) {
	var (
		blocks  []string
		skipped []model.SkippedFile
	)
	for _, r := range results {
		switch {
		case r.err != nil:
			skipped = append(skipped, model.SkippedFile{Position: r.position, Filename: r.filename, Reason: skipReason(r.err)})
		case strings.TrimSpace(r.text) == "":
			skipped = append(skipped, model.SkippedFile{Position: r.position, Filename: r.filename, Reason: "no extractable text"})
		default:
			blocks = append(blocks, fmt.Sprintf("--- Cross-reference document %d (%s) ---\n%s", r.position, r.filename, r.text))
		}
	}
	return strings.Join(blocks, "\n\n"), skipped
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, extract.ErrUnsupportedType):
		return "unsupported file type"
	case errors.Is(err, extract.ErrExtractionFailed):
		return "text extraction failed"
	default:
		return err.Error()
	}
}
