package resume

import "encoding/json"

// EmptyTemplate returns the canonical empty schema embedded in extraction
// prompts: a zero-valued profile plus one zero exemplar item per collection,
// so the model sees the exact shape of every field it must populate.
func EmptyTemplate() ResumeData {
	return ResumeData{
		Profile: &Profile{
			WorkPreferences: []string{},
		},
		WorkExperiences: []WorkExperience{{}},
		Educations:      []Education{{}},
		Skills:          []Skill{{}},
		Licenses:        []License{{}},
		Languages:       []Language{{}},
		Achievements:    []Achievement{{}},
		Publications:    []Publication{{}},
		Honors:          []Honor{{}},
	}
}

// EmptyTemplateJSON renders the template as indented JSON for prompt use.
func EmptyTemplateJSON() string {
	b, _ := json.MarshalIndent(EmptyTemplate(), "", "  ")
	return string(b)
}
