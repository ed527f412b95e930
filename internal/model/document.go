package model

// UploadedFile is one document received with an analysis request.
// Data holds the full content; nothing is persisted.
type UploadedFile struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Size returns the content length in bytes.
func (f UploadedFile) Size() int64 {
	return int64(len(f.Data))
}

// AnalysisRequest is the input of one analysis.
// CrossFiles keep the order in which they were uploaded.
type AnalysisRequest struct {
	MainFile       *UploadedFile
	CrossFiles     []UploadedFile
	TargetLanguage string
	Outputs        OutputSelection
}

// SkippedFile records a cross-reference file that contributed no text.
type SkippedFile struct {
	Position int    `json:"position"`
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// AnalysisOutcome is what the orchestrator returns: the decoded model result
// plus the cross-reference files that were left out.
type AnalysisOutcome struct {
	Result  AnalysisResult
	Skipped []SkippedFile
}
