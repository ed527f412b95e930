// Package extract turns uploaded PDF and DOCX bytes into plain text.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedType  = errors.New("unsupported file type")
	ErrExtractionFailed = errors.New("text extraction failed")
)

// Kind is a supported document format.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

const (
	MIMETypePDF = "application/pdf"
	// docxMIMEFragment matches application/vnd.openxmlformats-officedocument.wordprocessingml.document
	// and its template variants.
	docxMIMEFragment = "officedocument.wordprocessingml"
)

// ResolveKind picks the format from the filename extension or the declared
// MIME type. PDF is checked first.
func ResolveKind(filename, mimeType string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(filename))
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch {
	case strings.HasSuffix(name, ".pdf") || mt == MIMETypePDF:
		return KindPDF, nil
	case strings.HasSuffix(name, ".docx") || strings.Contains(mt, docxMIMEFragment):
		return KindDOCX, nil
	default:
		return "", fmt.Errorf("%w: %q (%s)", ErrUnsupportedType, filename, mimeType)
	}
}

// Extractor converts a document into trimmed plain text.
type Extractor interface {
	// Extract returns the text of data. Unknown formats yield ErrUnsupportedType,
	// corrupt content yields ErrExtractionFailed. Empty text is not an error.
	Extract(ctx context.Context, data []byte, filename, mimeType string) (string, error)
}

type documentExtractor struct{}

// New returns the PDF/DOCX extractor.
func New() Extractor {
	return &documentExtractor{}
}

func (e *documentExtractor) Extract(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	kind, err := ResolveKind(filename, mimeType)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var text string
	switch kind {
	case KindPDF:
		text, err = pdfText(data)
	case KindDOCX:
		text, err = docxText(data)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s %q: %v", ErrExtractionFailed, kind, filename, err)
	}
	return strings.TrimSpace(text), nil
}
