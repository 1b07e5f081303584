package llm

import (
	"context"

	"github.com/cvparse/resume-extractor/internal/resume"
)

// ExtractRequest is the transient input for one extraction call. Exactly one
// of Text / ImageDataURL carries the resume content.
type ExtractRequest struct {
	Text         string // extracted plain text (text path)
	ImageDataURL string // base64 data URL of page 1 (OCR path)
	ImageBased   bool   // selects the vision model and the image prompt
}

// Result carries the parsed output plus enough detail for the caller to tell
// a real extraction from the best-effort degenerate object.
type Result struct {
	Data       resume.ResumeData
	RawJSON    []byte
	Model      string
	Degenerate bool // content was empty or unparsable and collapsed to {}
}

// FieldExtractor is the interface the pipeline depends on.
type FieldExtractor interface {
	ExtractFields(ctx context.Context, req ExtractRequest) (Result, error)
}
