package scoring

// Rules holds the static reference tables and weights the quality scorer
// evaluates against. The tables are plain data loaded once at startup and
// passed in explicitly, so alternative weightings can be configured without
// touching the scorer. None of the default values are ground truth; they are
// tunable heuristics.
type Rules struct {
	// PrestigiousCompanies earn ExperienceCompanyPoints per hit in a
	// founder's experience text.
	PrestigiousCompanies []string

	// PrestigiousUniversities earn EducationUniversityPoints per hit in a
	// founder's education text.
	PrestigiousUniversities []string

	// Honors maps an honor or award marker to its point value. Both the
	// experience and education text are searched.
	Honors map[string]float64

	// ExperienceKeywords each add ExperienceKeywordPoints when present in
	// the experience text.
	ExperienceKeywords []string

	// AdvancedDegrees and RelevantFields add their point values when present
	// in the education text.
	AdvancedDegrees []string
	RelevantFields  []string

	// RelevantIndustries and TopLocations drive the company-level bonuses.
	RelevantIndustries []string
	TopLocations       []string

	// RoleClasses maps a role class name to the title keywords that place a
	// founder into it. Distinct classes reached measure role diversity.
	RoleClasses map[string][]string

	// CoreRoles is the role-class set a complete team is expected to cover.
	CoreRoles []string

	// Point values and caps.
	ExperienceCompanyPoints   float64
	ExperienceKeywordPoints   float64
	ExperienceCap             float64
	EducationUniversityPoints float64
	EducationDegreePoints     float64
	EducationFieldPoints      float64
	EducationCap              float64
	HonorsDoctoralBonus       float64
	HonorsCap                 float64
	NetworkCap                float64

	// Weights combine founder average, company score and team completeness
	// into the quality score. They must sum to 1.
	FounderWeight float64
	CompanyWeight float64
	TeamWeight    float64
}

// DefaultRules returns the built-in reference tables.
func DefaultRules() *Rules {
	return &Rules{
		PrestigiousCompanies: []string{
			"google", "facebook", "meta", "amazon", "apple", "microsoft", "netflix",
			"uber", "airbnb", "stripe", "square", "palantir", "tesla", "spacex",
			"linkedin", "twitter", "snapchat", "instagram", "whatsapp", "zoom",
			"salesforce", "oracle", "adobe", "intel", "nvidia", "amd", "cisco",
			"goldman sachs", "mckinsey", "bain", "bcg", "deloitte", "pwc",
		},
		PrestigiousUniversities: []string{
			"stanford", "harvard", "mit", "berkeley", "caltech", "princeton",
			"yale", "columbia", "upenn", "cornell", "brown", "dartmouth",
			"duke", "northwestern", "chicago", "nyu", "usc", "ucla", "ucsd",
			"oxford", "cambridge", "imperial", "lse", "eth zurich", "tsinghua",
		},
		Honors: map[string]float64{
			"rhodes scholar":    25,
			"marshall scholar":  25,
			"fulbright scholar": 20,
			"truman scholar":    18,
			"goldwater scholar": 15,
			"thiel fellow":      30,
			"y combinator":      30,
			"techstars":         15,
			"500 startups":      12,
			"kleiner perkins fellow": 25,
			"sequoia scout":          20,
			"a16z scout":             20,
			"forbes 30 under 30":     20,
			"fortune 40 under 40":    18,
			"turing award":           50,
			"nobel prize":            50,
			"macarthur fellow":       35,
			"sloan fellow":           25,
			"guggenheim fellow":      20,
			"nsf graduate fellow":    15,
			"google science fair":    15,
			"google summer of code":  8,
			"white house fellow":     25,
			"google apm":             20,
			"nature":                 20,
			"science":                20,
			"ieee":                   10,
			"acm":                    10,
			"arxiv":                  8,
			"patent":                 10,
			"inventor":               12,
		},
		ExperienceKeywords: []string{
			"founder", "ceo", "cto", "co-founder", "startup", "entrepreneur",
			"director", "manager", "lead", "senior", "principal", "architect",
			"vp", "vice president", "head of", "chief", "executive",
		},
		AdvancedDegrees: []string{"phd", "doctorate", "mba", "master", "m.s.", "m.a.", "md"},
		RelevantFields: []string{
			"computer science", "engineering", "business", "economics",
			"mathematics", "physics", "chemistry", "biology", "medicine",
			"data science", "statistics", "finance", "marketing",
		},
		RelevantIndustries: []string{
			"fintech", "healthtech", "ai", "ml", "saas", "e-commerce",
			"marketplace", "mobile", "software", "technology",
		},
		TopLocations: []string{
			"san francisco", "new york", "austin", "boston",
			"seattle", "los angeles", "chicago", "miami",
		},
		RoleClasses: map[string][]string{
			"ceo":        {"ceo", "founder", "chief executive"},
			"cto":        {"cto", "tech", "chief technology"},
			"product":    {"cpo", "product"},
			"operations": {"coo", "operations", "chief operating"},
			"finance":    {"cfo", "finance", "chief financial"},
		},
		CoreRoles: []string{"ceo", "cto", "product"},

		ExperienceCompanyPoints:   12,
		ExperienceKeywordPoints:   3,
		ExperienceCap:             35,
		EducationUniversityPoints: 12,
		EducationDegreePoints:     8,
		EducationFieldPoints:      3,
		EducationCap:              20,
		HonorsDoctoralBonus:       10,
		HonorsCap:                 30,
		NetworkCap:                15,

		FounderWeight: 0.4,
		CompanyWeight: 0.35,
		TeamWeight:    0.25,
	}
}
