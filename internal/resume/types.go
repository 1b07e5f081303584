package resume

// EmploymentType is inferred by the extraction model when not explicit.
type EmploymentType string

const (
	EmploymentFullTime   EmploymentType = "FULL_TIME"
	EmploymentPartTime   EmploymentType = "PART_TIME"
	EmploymentInternship EmploymentType = "INTERNSHIP"
	EmploymentContract   EmploymentType = "CONTRACT"
)

// LocationType classifies where a role was performed.
type LocationType string

const (
	LocationOnsite LocationType = "ONSITE"
	LocationRemote LocationType = "REMOTE"
	LocationHybrid LocationType = "HYBRID"
)

// Degree is the study level mapped from common degree names.
type Degree string

const (
	DegreeHighSchool Degree = "HIGH_SCHOOL"
	DegreeAssociate  Degree = "ASSOCIATE"
	DegreeBachelor   Degree = "BACHELOR"
	DegreeMaster     Degree = "MASTER"
	DegreeDoctorate  Degree = "DOCTORATE"
)

// LanguageLevel is the proficiency scale used in the output contract.
type LanguageLevel string

const (
	LevelBeginner     LanguageLevel = "BEGINNER"
	LevelIntermediate LanguageLevel = "INTERMEDIATE"
	LevelAdvanced     LanguageLevel = "ADVANCED"
	LevelNative       LanguageLevel = "NATIVE"
)

// Location is a country/city pair on the profile.
type Location struct {
	Country string `json:"country"`
	City    string `json:"city"`
}

// Profile holds the person-level fields extracted from a resume.
type Profile struct {
	Name            string   `json:"name"`
	Surname         string   `json:"surname"`
	Email           string   `json:"email"`
	Summary         string   `json:"summary"`
	LinkedIn        string   `json:"linkedin"`
	Website         string   `json:"website"`
	Location        Location `json:"location"`
	WorkPreferences []string `json:"workPreferences"`
}

// WorkExperience is one position. Dates are numeric month/year pairs with an
// explicit "current" flag; end fields are null for current positions.
type WorkExperience struct {
	Title          string         `json:"title"`
	Company        string         `json:"company"`
	EmploymentType EmploymentType `json:"employmentType"`
	LocationType   LocationType   `json:"locationType"`
	Location       string         `json:"location"`
	StartMonth     int            `json:"startMonth"`
	StartYear      int            `json:"startYear"`
	EndMonth       *int           `json:"endMonth"`
	EndYear        *int           `json:"endYear"`
	Current        bool           `json:"current"`
	Description    string         `json:"description"`
}

type Education struct {
	School      string `json:"school"`
	Degree      Degree `json:"degree"`
	Major       string `json:"major"`
	StartMonth  int    `json:"startMonth"`
	StartYear   int    `json:"startYear"`
	EndMonth    *int   `json:"endMonth"`
	EndYear     *int   `json:"endYear"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type Skill struct {
	Name string `json:"name"`
}

type License struct {
	Name      string `json:"name"`
	Issuer    string `json:"issuer"`
	IssueDate string `json:"issueDate"` // YYYY-MM
}

type Language struct {
	Language string        `json:"language"`
	Level    LanguageLevel `json:"level"`
}

type Achievement struct {
	Title       string `json:"title"`
	Date        string `json:"date"` // YYYY-MM
	Description string `json:"description"`
}

type Publication struct {
	Title           string `json:"title"`
	Publisher       string `json:"publisher"`
	PublicationDate string `json:"publicationDate"` // ISO8601
	Description     string `json:"description"`
}

type Honor struct {
	Title       string `json:"title"`
	Issuer      string `json:"issuer"`
	Date        string `json:"date"` // YYYY-MM
	Description string `json:"description"`
}

// ResumeData is the canonical output shape. Struct field order IS the wire
// order: profile serializes first, then the eight collections in this exact
// sequence. Collections are never null after normalization.
type ResumeData struct {
	Profile         *Profile         `json:"profile,omitempty"`
	WorkExperiences []WorkExperience `json:"workExperiences"`
	Educations      []Education      `json:"educations"`
	Skills          []Skill          `json:"skills"`
	Licenses        []License        `json:"licenses"`
	Languages       []Language       `json:"languages"`
	Achievements    []Achievement    `json:"achievements"`
	Publications    []Publication    `json:"publications"`
	Honors          []Honor          `json:"honors"`
}
