// Package model contains the domain types shared by the extraction, prompt,
// LLM and HTTP layers. No I/O happens here.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownOutput is returned when a requested output identifier is not recognized.
var ErrUnknownOutput = errors.New("unknown output")

// OutputID identifies one analysis product the caller can request.
type OutputID string

const (
	OutputTranslation      OutputID = "translation"
	OutputSummary          OutputID = "summary"
	OutputKeyPoints        OutputID = "key_points"
	OutputTodos            OutputID = "todos"
	OutputCrossReference   OutputID = "cross_reference"
	OutputGenerateTemplate OutputID = "generate_template"
)

// Result keys populated by each output.
const (
	KeyTranslatedText    = "translated_text"
	KeySummary           = "summary"
	KeyKeyPoints         = "key_points"
	KeyTodosByDepartment = "todos_by_department"
	KeyCrossReference    = "cross_reference"
	KeyResponseTemplate  = "response_template"
)

// AllOutputs lists every output identifier in canonical order.
var AllOutputs = []OutputID{
	OutputTranslation,
	OutputSummary,
	OutputKeyPoints,
	OutputTodos,
	OutputCrossReference,
	OutputGenerateTemplate,
}

var resultKeys = map[OutputID]string{
	OutputTranslation:      KeyTranslatedText,
	OutputSummary:          KeySummary,
	OutputKeyPoints:        KeyKeyPoints,
	OutputTodos:            KeyTodosByDepartment,
	OutputCrossReference:   KeyCrossReference,
	OutputGenerateTemplate: KeyResponseTemplate,
}

// ResultKey returns the AnalysisResult key the output populates, or "" if unknown.
func (o OutputID) ResultKey() string {
	return resultKeys[o]
}

// Valid reports whether o is one of the six known outputs.
func (o OutputID) Valid() bool {
	_, ok := resultKeys[o]
	return ok
}

// ParseOutputID trims and validates a single identifier.
func ParseOutputID(s string) (OutputID, error) {
	id := OutputID(strings.TrimSpace(s))
	if !id.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOutput, s)
	}
	return id, nil
}

// OutputSelection is the set of outputs requested for one analysis.
type OutputSelection map[OutputID]struct{}

// NewOutputSelection builds a selection from ids. Duplicates collapse.
func NewOutputSelection(ids ...OutputID) OutputSelection {
	s := make(OutputSelection, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// ParseOutputs converts raw form values into a selection. Values may repeat
// or carry comma separated lists; blanks are ignored.
func ParseOutputs(values []string) (OutputSelection, error) {
	s := make(OutputSelection)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			id, err := ParseOutputID(part)
			if err != nil {
				return nil, err
			}
			s[id] = struct{}{}
		}
	}
	return s, nil
}

// Has reports whether id was requested.
func (s OutputSelection) Has(id OutputID) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of distinct outputs requested.
func (s OutputSelection) Len() int {
	return len(s)
}

// NeedsCrossDocuments reports whether any requested output consumes cross-reference text.
func (s OutputSelection) NeedsCrossDocuments() bool {
	return s.Has(OutputCrossReference) || s.Has(OutputGenerateTemplate)
}

// Ordered returns the requested outputs in canonical order.
func (s OutputSelection) Ordered() []OutputID {
	out := make([]OutputID, 0, len(s))
	for _, id := range AllOutputs {
		if s.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

// Strings returns the requested identifiers in canonical order.
func (s OutputSelection) Strings() []string {
	ids := s.Ordered()
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
