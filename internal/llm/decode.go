package llm

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"docanalyzer/internal/model"
)

// SnippetLimit caps the raw text echoed back in a DecodeError.
const SnippetLimit = 500

const emptySnippet = "<empty response>"

// ErrNotObject is the cause when the response parses but is not a JSON object.
var ErrNotObject = errors.New("response is not a JSON object")

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?[ \t]*```$")
)

// DecodeError reports a response that could not be turned into a result.
type DecodeError struct {
	// Snippet is the start of the raw response, for diagnostics.
	Snippet string
	Err     error
}

func (e *DecodeError) Error() string {
	return "decode llm response: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StripFences removes one markdown code fence around the payload, if present.
func StripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Decode parses raw model output into a result. Anything but a JSON object,
// optionally fenced, yields a *DecodeError.
func Decode(raw string) (model.AnalysisResult, error) {
	body := StripFences(raw)

	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		return nil, &DecodeError{Snippet: Snippet(raw), Err: err}
	}
	if result == nil {
		return nil, &DecodeError{Snippet: Snippet(raw), Err: ErrNotObject}
	}
	return result, nil
}

// Snippet returns at most SnippetLimit runes of raw.
func Snippet(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return emptySnippet
	}
	if utf8.RuneCountInString(raw) <= SnippetLimit {
		return raw
	}
	runes := []rune(raw)
	return string(runes[:SnippetLimit])
}
