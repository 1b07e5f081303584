package llm

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// resumeSchema is a loose structural gate for the model's output: the object
// shape is enforced, collections must be arrays when present, and anything
// else is left to the normalizer. Validation failures are advisory; the
// best-effort policy still accepts the document.
const resumeSchema = `{
  "type": "object",
  "properties": {
    "profile": {"type": ["object", "null"]},
    "workExperiences": {"type": "array"},
    "educations": {"type": "array"},
    "skills": {"type": "array"},
    "licenses": {"type": "array"},
    "languages": {"type": "array"},
    "achievements": {"type": "array"},
    "publications": {"type": "array"},
    "honors": {"type": "array"}
  }
}`

var compiledResumeSchema = jsonschema.MustCompileString("resume.schema.json", resumeSchema)

// ValidateResumeJSON checks a raw LLM document against the structural gate.
func ValidateResumeJSON(doc []byte) error {
	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	if err := compiledResumeSchema.Validate(v); err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}
	return nil
}
