package constants

import "time"

// Extraction pipeline limits. The historical call sites disagreed on the
// threshold (30 vs 50) and the ceiling (500KB vs 4MB); the permissive pair
// is the governing policy.
const (
	// MinTextChars is the extracted-text length below which the pipeline
	// falls back to first-page OCR.
	MinTextChars = 50

	// MaxImageBytes caps the base64 data URL handed to the vision model.
	// Exceeding it is fatal: there is no further fallback.
	MaxImageBytes = 4_000_000

	// MaxPromptChars caps how much resume text is embedded in the prompt.
	// Longer text is truncated silently.
	MaxPromptChars = 50_000

	// TextExtractTimeout bounds a single PDF text-extraction attempt.
	// On timeout the attempt is abandoned and treated as empty text.
	TextExtractTimeout = 30 * time.Second
)

// MaxUploadBytes caps the multipart request body on the upload endpoints.
const MaxUploadBytes = 5 << 20 // 5MB
