package llm

import (
	"unicode/utf8"

	"github.com/cvparse/resume-extractor/constants"
	"github.com/cvparse/resume-extractor/internal/resume"
)

// Message is one chat message. Content is either a plain string or a
// []ContentPart when an image is attached.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// ContentPart is one element of a split user message.
type ContentPart struct {
	Type     string    `json:"type"` // "text" | "image_url"
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

const systemPromptText = "You are an expert resume parser. Your task is to extract all available information " +
	"from the resume text or OCR data and populate the JSON structure. Extract every piece of information " +
	"you can find - names, emails, work experience, education, skills, etc. Do NOT leave fields empty if " +
	"the information exists in the resume. Only leave fields empty if the information is truly not present in the resume."

const systemPromptImage = "You are an expert resume parser. Your task is to extract all available information " +
	"from the resume image using OCR and populate the JSON structure. Extract every piece of information " +
	"you can find - names, emails, work experience, education, skills, etc. Do NOT leave fields empty if " +
	"the information exists in the resume. Only leave fields empty if the information is truly not present in the resume."

// fieldInstructions is the field-by-field extraction contract. The
// enumerations are part of the output contract and must stay verbatim.
const fieldInstructions = `Instructions:
1. Extract the person's name and split it into name and surname fields
2. Extract email address if present
3. Extract all work experience with job titles, companies, dates, and descriptions
4. Extract all education with schools, degrees, majors, and dates
5. Extract all skills listed
6. Extract licenses, languages, achievements, publications, and honors if mentioned
7. For dates: extract startMonth (1-12), startYear (number), endMonth (number or null), endYear (number or null), current (boolean)
8. For employmentType use: FULL_TIME, PART_TIME, INTERNSHIP, or CONTRACT (infer if not explicitly stated)
9. For locationType use: ONSITE, REMOTE, or HYBRID (infer if not explicitly stated)
10. For degree use: HIGH_SCHOOL, ASSOCIATE, BACHELOR, MASTER, or DOCTORATE (infer based on common degree names)
11. For language level use: BEGINNER, INTERMEDIATE, ADVANCED, or NATIVE (infer if not explicitly stated)
12. Extract professional summary/objective if present
13. Extract LinkedIn, website, location (country, city), and work preferences if mentioned
14. Return dates in YYYY-MM format where applicable (for achievements, publications)
15. Use ISO8601 format for publicationDate

IMPORTANT: Do not return empty strings or empty arrays unless the information is truly not in the resume. Extract everything you can find!`

// BuildMessages produces the exact message sequence for the extraction call.
// Resume text is truncated to the prompt budget silently; the image variant
// splits the user content into a text part and an image_url part.
func BuildMessages(req ExtractRequest) []Message {
	template := resume.EmptyTemplateJSON()

	if req.ImageBased {
		text := "Extract all information from this resume image and populate the JSON structure. " +
			"Fill in ALL fields with actual data from the resume. Only leave fields empty if the " +
			"information is not available in the resume.\n\n" +
			"Return a complete JSON object matching this schema with all available data extracted:\n" +
			template + "\n\n" + fieldInstructions
		return []Message{
			{Role: "system", Content: systemPromptImage},
			{Role: "user", Content: []ContentPart{
				{Type: "text", Text: text},
				{Type: "image_url", ImageURL: &ImageURL{URL: req.ImageDataURL}},
			}},
		}
	}

	text := "Extract all information from the following resume data and populate the JSON structure. " +
		"Fill in ALL fields with actual data from the resume. Only leave fields empty if the " +
		"information is not available in the resume.\n\n" +
		"Resume content:\n" + Truncate(req.Text, constants.MaxPromptChars) + "\n\n" +
		"Return a complete JSON object matching this schema with all available data extracted:\n" +
		template + "\n\n" + fieldInstructions
	return []Message{
		{Role: "system", Content: systemPromptText},
		{Role: "user", Content: text},
	}
}

// Truncate caps s at max bytes, backing off to the nearest rune boundary so
// the cut never leaves a partial UTF-8 sequence. No error, no marker: cost
// bounding only.
func Truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
