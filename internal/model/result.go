package model

import (
	"sort"
	"strings"
)

// AnalysisResult is the JSON object decoded from the model response.
// It is passed to clients unchanged; the accessors below give typed,
// tolerant views over the known keys.
type AnalysisResult map[string]any

// Department is an organizational unit a key point or task is routed to.
type Department string

const (
	DepartmentFinance    Department = "Finance"
	DepartmentCompliance Department = "Compliance"
	DepartmentOperations Department = "Operations"
	DepartmentHR         Department = "HR"
	DepartmentBoard      Department = "Board"
	DepartmentIT         Department = "IT"

	// DepartmentUnassigned marks values outside the fixed set.
	DepartmentUnassigned Department = "Unassigned"
)

// Departments lists the fixed departments in canonical order.
var Departments = []Department{
	DepartmentFinance,
	DepartmentCompliance,
	DepartmentOperations,
	DepartmentHR,
	DepartmentBoard,
	DepartmentIT,
}

// ParseDepartment maps s onto the fixed set, ignoring case and surrounding
// space. Anything else is DepartmentUnassigned.
func ParseDepartment(s string) Department {
	s = strings.TrimSpace(s)
	for _, d := range Departments {
		if strings.EqualFold(s, string(d)) {
			return d
		}
	}
	return DepartmentUnassigned
}

// Confidence grades a cross-reference answer.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ParseConfidence normalizes s; unknown values are treated as low.
func ParseConfidence(s string) Confidence {
	switch c := Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case ConfidenceHigh, ConfidenceMedium:
		return c
	default:
		return ConfidenceLow
	}
}

// KeyPoint is one important item extracted from the document.
type KeyPoint struct {
	Point      string     `json:"point"`
	Department Department `json:"department"`
	Tags       []string   `json:"tags"`
}

// TodoItem is one action derived from the document.
type TodoItem struct {
	Task        string `json:"task"`
	SourcePoint string `json:"source_point"`
}

// DepartmentTodos groups the tasks of one department.
type DepartmentTodos struct {
	Department Department `json:"department"`
	Tasks      []TodoItem `json:"tasks"`
}

// CrossReferenceFinding answers one question raised by the main document.
type CrossReferenceFinding struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	FoundIn    string     `json:"found_in"`
	Confidence Confidence `json:"confidence"`
}

// Answered reports whether the supporting documents answered the question.
func (f CrossReferenceFinding) Answered() bool {
	return strings.TrimSpace(f.Answer) != ""
}

// TranslatedText returns the translation, or "" when absent.
func (r AnalysisResult) TranslatedText() string {
	return asString(r[KeyTranslatedText])
}

// Summary returns the summary, or "" when absent.
func (r AnalysisResult) Summary() string {
	return asString(r[KeySummary])
}

// ResponseTemplate returns the drafted reply, or "" when absent.
func (r AnalysisResult) ResponseTemplate() string {
	return asString(r[KeyResponseTemplate])
}

// KeyPoints returns the well-formed key points. Entries without a point are
// dropped; unknown departments become DepartmentUnassigned.
func (r AnalysisResult) KeyPoints() []KeyPoint {
	items, _ := r[KeyKeyPoints].([]any)
	out := make([]KeyPoint, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		point := strings.TrimSpace(asString(m["point"]))
		if point == "" {
			continue
		}
		out = append(out, KeyPoint{
			Point:      point,
			Department: ParseDepartment(asString(m["department"])),
			Tags:       asStringSet(m["tags"]),
		})
	}
	return out
}

// TodosByDepartment returns one group per fixed department in canonical
// order, empty when the model listed nothing for it. Tasks filed under any
// other key are collected into a trailing Unassigned group.
func (r AnalysisResult) TodosByDepartment() []DepartmentTodos {
	raw, _ := r[KeyTodosByDepartment].(map[string]any)

	groups := make([]DepartmentTodos, len(Departments))
	index := make(map[Department]int, len(Departments))
	for i, d := range Departments {
		groups[i] = DepartmentTodos{Department: d, Tasks: []TodoItem{}}
		index[d] = i
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var unassigned []TodoItem
	for _, k := range keys {
		tasks := asTodoItems(raw[k])
		d := ParseDepartment(k)
		if d == DepartmentUnassigned {
			unassigned = append(unassigned, tasks...)
			continue
		}
		groups[index[d]].Tasks = append(groups[index[d]].Tasks, tasks...)
	}
	if len(unassigned) > 0 {
		groups = append(groups, DepartmentTodos{Department: DepartmentUnassigned, Tasks: unassigned})
	}
	return groups
}

// CrossReference returns the findings with a non-empty question.
func (r AnalysisResult) CrossReference() []CrossReferenceFinding {
	items, _ := r[KeyCrossReference].([]any)
	out := make([]CrossReferenceFinding, 0, len(items))
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		q := strings.TrimSpace(asString(m["question"]))
		if q == "" {
			continue
		}
		out = append(out, CrossReferenceFinding{
			Question:   q,
			Answer:     asString(m["answer"]),
			FoundIn:    asString(m["found_in"]),
			Confidence: ParseConfidence(asString(m["confidence"])),
		})
	}
	return out
}

func asTodoItems(v any) []TodoItem {
	items, _ := v.([]any)
	out := make([]TodoItem, 0, len(items))
	for _, it := range items {
		switch t := it.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, TodoItem{Task: s})
			}
		case map[string]any:
			task := strings.TrimSpace(asString(t["task"]))
			if task == "" {
				continue
			}
			out = append(out, TodoItem{Task: task, SourcePoint: asString(t["source_point"])})
		}
	}
	return out
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// asStringSet keeps non-empty strings, first occurrence wins.
func asStringSet(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		s := strings.TrimSpace(asString(it))
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
