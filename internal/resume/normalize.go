package resume

import "encoding/json"

// Normalized returns a copy with every collection backfilled to an empty,
// non-nil slice. The profile is passed through untouched. The transform is
// idempotent: normalizing an already-normalized object is a no-op.
func (d ResumeData) Normalized() ResumeData {
	out := d
	if out.WorkExperiences == nil {
		out.WorkExperiences = []WorkExperience{}
	}
	if out.Educations == nil {
		out.Educations = []Education{}
	}
	if out.Skills == nil {
		out.Skills = []Skill{}
	}
	if out.Licenses == nil {
		out.Licenses = []License{}
	}
	if out.Languages == nil {
		out.Languages = []Language{}
	}
	if out.Achievements == nil {
		out.Achievements = []Achievement{}
	}
	if out.Publications == nil {
		out.Publications = []Publication{}
	}
	if out.Honors == nil {
		out.Honors = []Honor{}
	}
	return out
}

// Normalize parses a raw JSON object into the canonical shape. Unknown keys
// are dropped, missing collections become empty sequences, and unparsable
// input yields the degenerate object (no profile, eight empty collections)
// rather than an error.
func Normalize(raw []byte) ResumeData {
	var d ResumeData
	if len(raw) > 0 {
		// A decode fault leaves d partially filled at worst; the zero
		// value still normalizes to the degenerate object.
		_ = json.Unmarshal(raw, &d)
	}
	return d.Normalized()
}
