// Package prompt assembles the instruction text and response schema sent to
// the model. Building is pure: the same inputs always give the same prompt.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"docanalyzer/internal/model"
)

// TemplatePlaceholder marks details the drafted reply cannot fill in.
const TemplatePlaceholder = "[TO BE COMPLETED]"

const (
	mainHeader     = "MAIN DOCUMENT:"
	crossHeader    = "CROSS-REFERENCE DOCUMENTS:"
	noCrossContent = "No cross-reference documents were provided."
)

// Prompt is the built request for one analysis.
type Prompt struct {
	// Schema is the JSON schema the response must follow, embedded in Text.
	Schema string
	// Text is the full prompt sent as the user message.
	Text string
}

// section binds one output to its schema fragment and its instruction.
type section struct {
	output      model.OutputID
	schema      json.RawMessage
	instruction func(language string) string
}

var stringSchema = mustJSON(map[string]any{"type": "string"})

var sections = []section{
	{
		output: model.OutputTranslation,
		schema: stringSchema,
		instruction: func(lang string) string {
			return fmt.Sprintf("translate the complete main document into %s. Keep the structure, headings and numbering; do not summarize or omit anything.", lang)
		},
	},
	{
		output: model.OutputSummary,
		schema: stringSchema,
		instruction: func(lang string) string {
			return fmt.Sprintf("summarize the main document in %s in 8 to 12 sentences, fewer only when the document is very short. Cover its context, the decisions it records, the constraints it imposes and the risks it raises.", lang)
		},
	},
	{
		output: model.OutputKeyPoints,
		schema: mustJSON(map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"point", "department", "tags"},
				"properties": map[string]any{
					"point":      map[string]any{"type": "string"},
					"department": map[string]any{"type": "string", "enum": departmentNames()},
					"tags":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
				},
			},
		}),
		instruction: func(lang string) string {
			return fmt.Sprintf("list the important points of the main document in %s. Assign each point to exactly one department from %s and add short tags such as \"Action Required\", \"Deadline\", \"Financial Impact\" or \"Risk\".",
				lang, strings.Join(departmentNames(), ", "))
		},
	},
	{
		output: model.OutputTodos,
		schema: mustJSON(map[string]any{
			"type":     "object",
			"required": departmentNames(),
			"properties": departmentProperties(map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"task", "source_point"},
					"properties": map[string]any{
						"task":         map[string]any{"type": "string"},
						"source_point": map[string]any{"type": "string"},
					},
				},
			}),
		}),
		instruction: func(lang string) string {
			return fmt.Sprintf("derive concrete action items in %s and group them by department. Include every department key (%s), using an empty array when a department has nothing to do. source_point quotes the passage the task comes from.",
				lang, strings.Join(departmentNames(), ", "))
		},
	},
	{
		output: model.OutputCrossReference,
		schema: mustJSON(map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":     "object",
				"required": []string{"question", "answer", "found_in", "confidence"},
				"properties": map[string]any{
					"question":   map[string]any{"type": "string"},
					"answer":     map[string]any{"type": "string"},
					"found_in":   map[string]any{"type": "string"},
					"confidence": map[string]any{"type": "string", "enum": []string{"high", "medium", "low"}},
				},
			},
		}),
		instruction: func(lang string) string {
			return fmt.Sprintf("identify the questions and open issues raised by the main document and answer each one in %s using only the cross-reference documents. found_in names the document that holds the answer. When no document answers a question, set answer to \"\", confidence to \"low\" and found_in to \"not found\".", lang)
		},
	},
	{
		output: model.OutputGenerateTemplate,
		schema: stringSchema,
		instruction: func(lang string) string {
			return fmt.Sprintf("draft a structured reply to the main document in %s with these parts in order: a greeting, a reference to the inquiry being answered, the key answers taken from the cross-reference documents when they are available, and a closing. Write %s wherever a detail cannot be filled in.", lang, TemplatePlaceholder)
		},
	},
}

// Build produces the prompt for the selected outputs. Sections appear in
// canonical output order. crossText is only included when an output needs it.
func Build(outputs model.OutputSelection, targetLanguage, mainText, crossText string) Prompt {
	selected := make([]section, 0, len(sections))
	for _, s := range sections {
		if outputs.Has(s.output) {
			selected = append(selected, s)
		}
	}
	schema := buildSchema(selected)

	var b strings.Builder
	b.WriteString("You are an analyst of business and institutional documents. Read the main document below and produce only the outputs listed under OUTPUTS.\n\n")
	fmt.Fprintf(&b, "Target language: %s\n\n", targetLanguage)

	b.WriteString("OUTPUTS:\n")
	for _, s := range selected {
		fmt.Fprintf(&b, "- %s: %s\n", s.output.ResultKey(), s.instruction(targetLanguage))
	}
	b.WriteString("\n")

	b.WriteString("RESPONSE FORMAT:\n")
	b.WriteString("Respond with ONLY one valid JSON object that follows this JSON schema. Include every listed key and no other keys. Do not wrap the JSON in markdown code fences and do not add any text before or after it.\n")
	b.WriteString(schema)
	b.WriteString("\n\n")

	b.WriteString(mainHeader)
	b.WriteString("\n")
	b.WriteString(mainText)
	b.WriteString("\n")

	if outputs.NeedsCrossDocuments() {
		b.WriteString("\n")
		b.WriteString(crossHeader)
		b.WriteString("\n")
		if strings.TrimSpace(crossText) == "" {
			b.WriteString(noCrossContent)
		} else {
			b.WriteString(crossText)
		}
		b.WriteString("\n")
	}

	return Prompt{Schema: schema, Text: b.String()}
}

// buildSchema writes one property per line so every key appears exactly once.
func buildSchema(selected []section) string {
	var b strings.Builder
	b.WriteString("{\n  \"type\": \"object\",\n")
	if len(selected) > 0 {
		keys := make([]string, len(selected))
		for i, s := range selected {
			keys[i] = s.output.ResultKey()
		}
		fmt.Fprintf(&b, "  \"required\": %s,\n", mustJSON(keys))
	}
	b.WriteString("  \"properties\": {\n")
	for i, s := range selected {
		fmt.Fprintf(&b, "    %q: %s", s.output.ResultKey(), s.schema)
		if i < len(selected)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("  },\n  \"additionalProperties\": false\n}")
	return b.String()
}

func departmentNames() []string {
	out := make([]string, len(model.Departments))
	for i, d := range model.Departments {
		out[i] = string(d)
	}
	return out
}

func departmentProperties(item map[string]any) map[string]any {
	props := make(map[string]any, len(model.Departments))
	for _, d := range model.Departments {
		props[string(d)] = item
	}
	return props
}

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("prompt: marshal schema: %v", err))
	}
	return b
}
