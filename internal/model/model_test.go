package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeResult(t *testing.T, raw string) AnalysisResult {
	t.Helper()
	var r AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	return r
}

func TestParseOutputs(t *testing.T) {
	tests := []struct {
		name    string
		values  []string
		want    []string
		wantErr bool
	}{
		{name: "repeated values", values: []string{"summary", "translation"}, want: []string{"translation", "summary"}},
		{name: "comma separated", values: []string{"todos, key_points"}, want: []string{"key_points", "todos"}},
		{name: "duplicates collapse", values: []string{"summary", "summary"}, want: []string{"summary"}},
		{name: "blanks ignored", values: []string{"", " , "}, want: []string{}},
		{name: "unknown id", values: []string{"summary", "poem"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := ParseOutputs(tt.values)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnknownOutput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel.Strings())
		})
	}
}

func TestOutputSelection_NeedsCrossDocuments(t *testing.T) {
	assert.False(t, NewOutputSelection(OutputSummary, OutputTodos).NeedsCrossDocuments())
	assert.True(t, NewOutputSelection(OutputCrossReference).NeedsCrossDocuments())
	assert.True(t, NewOutputSelection(OutputGenerateTemplate).NeedsCrossDocuments())
}

func TestOutputID_ResultKey(t *testing.T) {
	assert.Equal(t, KeyTodosByDepartment, OutputTodos.ResultKey())
	assert.Equal(t, KeyResponseTemplate, OutputGenerateTemplate.ResultKey())
	assert.Empty(t, OutputID("nope").ResultKey())
	for _, id := range AllOutputs {
		assert.True(t, id.Valid(), id)
	}
}

func TestParseDepartment(t *testing.T) {
	assert.Equal(t, DepartmentHR, ParseDepartment(" hr "))
	assert.Equal(t, DepartmentIT, ParseDepartment("IT"))
	assert.Equal(t, DepartmentUnassigned, ParseDepartment("Legal"))
	assert.Equal(t, DepartmentUnassigned, ParseDepartment(""))
}

func TestAnalysisResult_KeyPoints(t *testing.T) {
	r := decodeResult(t, `{"key_points":[
		{"point":"Budget cut by 10%","department":"Finance","tags":["Action Required","Financial Impact","Action Required"]},
		{"point":"Vendor contract","department":"Legal","tags":[]},
		{"point":"","department":"HR"},
		"not an object"
	]}`)

	kps := r.KeyPoints()
	require.Len(t, kps, 2)
	assert.Equal(t, DepartmentFinance, kps[0].Department)
	assert.Equal(t, []string{"Action Required", "Financial Impact"}, kps[0].Tags)
	assert.Equal(t, DepartmentUnassigned, kps[1].Department)
	assert.Empty(t, kps[1].Tags)
}

func TestAnalysisResult_TodosByDepartment(t *testing.T) {
	r := decodeResult(t, `{"todos_by_department":{
		"Finance":[{"task":"Update forecast","source_point":"Budget cut"}],
		"it":["Rotate keys"],
		"Legal":[{"task":"Review clause"}]
	}}`)

	groups := r.TodosByDepartment()
	require.Len(t, groups, len(Departments)+1)
	for i, d := range Departments {
		assert.Equal(t, d, groups[i].Department)
		assert.NotNil(t, groups[i].Tasks)
	}
	assert.Equal(t, "Update forecast", groups[0].Tasks[0].Task)
	assert.Equal(t, "Budget cut", groups[0].Tasks[0].SourcePoint)
	assert.Equal(t, "Rotate keys", groups[5].Tasks[0].Task)
	assert.Empty(t, groups[1].Tasks)
	assert.Equal(t, DepartmentUnassigned, groups[6].Department)
	assert.Equal(t, "Review clause", groups[6].Tasks[0].Task)
}

func TestAnalysisResult_TodosByDepartment_Absent(t *testing.T) {
	groups := AnalysisResult{}.TodosByDepartment()
	require.Len(t, groups, len(Departments))
	for _, g := range groups {
		assert.Empty(t, g.Tasks)
	}
}

func TestAnalysisResult_CrossReference(t *testing.T) {
	r := decodeResult(t, `{"cross_reference":[
		{"question":"Who approves?","answer":"The board","found_in":"Document 1","confidence":"HIGH"},
		{"question":"When?","answer":"","found_in":"not found","confidence":"unsure"},
		{"answer":"orphan"}
	]}`)

	findings := r.CrossReference()
	require.Len(t, findings, 2)
	assert.Equal(t, ConfidenceHigh, findings[0].Confidence)
	assert.True(t, findings[0].Answered())
	assert.Equal(t, ConfidenceLow, findings[1].Confidence)
	assert.False(t, findings[1].Answered())
}

func TestAnalysisResult_Strings(t *testing.T) {
	r := decodeResult(t, `{"summary":"short","translated_text":"texte","response_template":"Dear [TO BE COMPLETED]","extra":1}`)
	assert.Equal(t, "short", r.Summary())
	assert.Equal(t, "texte", r.TranslatedText())
	assert.Equal(t, "Dear [TO BE COMPLETED]", r.ResponseTemplate())
	assert.Empty(t, AnalysisResult{"summary": 42}.Summary())
}
