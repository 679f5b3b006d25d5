package scoring

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/venturescout/vc-sourcer/internal/profile"
)

// yearsPattern extracts "N years" / "N yrs" mentions from free-text bios.
var yearsPattern = regexp.MustCompile(`(\d+)\s*(?:years?|yrs?)`)

// FounderBreakdown holds the per-founder component scores for diagnostics.
type FounderBreakdown struct {
	Name            string  `json:"name"`
	ExperienceScore float64 `json:"experience_score"`
	EducationScore  float64 `json:"education_score"`
	HonorsScore     float64 `json:"honors_score"`
	NetworkScore    float64 `json:"network_score"`
	Total           float64 `json:"total"`
}

// Breakdown is the quality score plus its component scores.
type Breakdown struct {
	Score            float64            `json:"score"`
	FounderAverage   float64            `json:"founder_average"`
	CompanyScore     float64            `json:"company_score"`
	TeamCompleteness float64            `json:"team_completeness"`
	Founders         []FounderBreakdown `json:"founders,omitempty"`
}

// Scorer computes the intrinsic quality of a candidate. It is a pure
// function over the rule tables: no I/O, no shared mutable state.
type Scorer struct {
	rules  *Rules
	now    func() time.Time
	logger *zap.Logger
}

// NewScorer builds a quality scorer around the given rule tables. Nil rules
// fall back to the defaults.
func NewScorer(rules *Rules, logger *zap.Logger) *Scorer {
	if rules == nil {
		rules = DefaultRules()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{rules: rules, now: time.Now, logger: logger}
}

// Score computes the candidate's quality score in [0,100]. A company with no
// founders scores 0; that is a documented special case, not an error.
func (s *Scorer) Score(company *profile.CompanyProfile) Breakdown {
	if company == nil || len(company.Founders) == 0 {
		return Breakdown{}
	}

	founders := make([]FounderBreakdown, 0, len(company.Founders))
	var founderSum float64
	for _, f := range company.Founders {
		fb := s.scoreFounder(f)
		founderSum += fb.Total
		founders = append(founders, fb)
	}
	founderAvg := founderSum / float64(len(founders))

	companyScore := s.scoreCompany(company)
	teamScore := s.scoreTeam(company.Founders)

	overall := founderAvg*s.rules.FounderWeight +
		companyScore*s.rules.CompanyWeight +
		teamScore*s.rules.TeamWeight

	breakdown := Breakdown{
		Score:            clampScore(round2(overall)),
		FounderAverage:   round2(founderAvg),
		CompanyScore:     companyScore,
		TeamCompleteness: teamScore,
		Founders:         founders,
	}

	s.logger.Debug("quality score",
		zap.String("company", company.Name),
		zap.Float64("score", breakdown.Score),
		zap.Float64("founder_average", breakdown.FounderAverage),
		zap.Float64("company_score", breakdown.CompanyScore),
		zap.Float64("team_completeness", breakdown.TeamCompleteness),
	)

	return breakdown
}

// NetworkScore exposes the founder network component so the fit scorer can
// reuse it for network proximity.
func (s *Scorer) NetworkScore(f *profile.FounderProfile) float64 {
	return s.scoreNetwork(f)
}

// NetworkCap reports the ceiling of the network component for rescaling.
func (s *Scorer) NetworkCap() float64 {
	return s.rules.NetworkCap
}

func (s *Scorer) scoreFounder(f *profile.FounderProfile) FounderBreakdown {
	fb := FounderBreakdown{Name: f.Name}

	fb.ExperienceScore = s.scoreExperience(f.Experience)
	fb.EducationScore = s.scoreEducation(f.Education)
	fb.HonorsScore = s.scoreHonors(f)
	fb.NetworkScore = s.scoreNetwork(f)

	fb.Total = math.Min(100, fb.ExperienceScore+fb.EducationScore+fb.HonorsScore+fb.NetworkScore)
	return fb
}

func (s *Scorer) scoreExperience(experience string) float64 {
	if experience == "" {
		return 0
	}

	var score float64
	lower := strings.ToLower(experience)

	for _, company := range s.rules.PrestigiousCompanies {
		if strings.Contains(lower, company) {
			score += s.rules.ExperienceCompanyPoints
		}
	}

	for _, keyword := range s.rules.ExperienceKeywords {
		if strings.Contains(lower, keyword) {
			score += s.rules.ExperienceKeywordPoints
		}
	}

	if years := maxYears(lower); years > 0 {
		switch {
		case years >= 10:
			score += 15
		case years >= 5:
			score += 12
		case years >= 3:
			score += 8
		case years >= 1:
			score += 4
		}
	}

	return math.Min(s.rules.ExperienceCap, score)
}

func (s *Scorer) scoreEducation(education string) float64 {
	if education == "" {
		return 0
	}

	var score float64
	lower := strings.ToLower(education)

	for _, university := range s.rules.PrestigiousUniversities {
		if strings.Contains(lower, university) {
			score += s.rules.EducationUniversityPoints
		}
	}

	for _, degree := range s.rules.AdvancedDegrees {
		if strings.Contains(lower, degree) {
			score += s.rules.EducationDegreePoints
		}
	}

	for _, field := range s.rules.RelevantFields {
		if strings.Contains(lower, field) {
			score += s.rules.EducationFieldPoints
		}
	}

	return math.Min(s.rules.EducationCap, score)
}

func (s *Scorer) scoreHonors(f *profile.FounderProfile) float64 {
	var score float64

	for _, text := range []string{f.Experience, f.Education, f.Honors} {
		if text == "" {
			continue
		}
		lower := strings.ToLower(text)
		for honor, points := range s.rules.Honors {
			if strings.Contains(lower, honor) {
				score += points
			}
		}
	}

	// "Dr." in the name marks a doctorate even when the education text
	// does not mention it.
	if strings.Contains(strings.ToLower(f.Name), "dr.") {
		score += s.rules.HonorsDoctoralBonus
	}

	return math.Min(s.rules.HonorsCap, score)
}

func (s *Scorer) scoreNetwork(f *profile.FounderProfile) float64 {
	if f == nil {
		return 0
	}

	var score float64

	switch {
	case f.LinkedinConnections > 1000:
		score += 10
	case f.LinkedinConnections > 500:
		score += 8
	case f.LinkedinConnections > 200:
		score += 6
	case f.LinkedinConnections > 100:
		score += 4
	}

	switch {
	case f.Endorsements > 50:
		score += 5
	case f.Endorsements > 20:
		score += 4
	case f.Endorsements > 10:
		score += 3
	}

	return math.Min(s.rules.NetworkCap, score)
}

func (s *Scorer) scoreCompany(company *profile.CompanyProfile) float64 {
	var score float64

	switch length := len(company.Description); {
	case length > 500:
		score += 20
	case length > 200:
		score += 15
	case length > 100:
		score += 10
	}

	if company.Industry != "" {
		lower := strings.ToLower(company.Industry)
		for _, relevant := range s.rules.RelevantIndustries {
			if strings.Contains(lower, relevant) {
				score += 15
				break
			}
		}
	}

	if company.Location != "" {
		lower := strings.ToLower(company.Location)
		for _, location := range s.rules.TopLocations {
			if strings.Contains(lower, location) {
				score += 10
				break
			}
		}
	}

	if company.FoundedYear > 0 {
		switch age := s.now().Year() - company.FoundedYear; {
		case age <= 1:
			score += 20
		case age <= 3:
			score += 15
		case age <= 5:
			score += 10
		}
	}

	return math.Min(100, score)
}

func (s *Scorer) scoreTeam(founders []*profile.FounderProfile) float64 {
	var score float64

	switch count := len(founders); {
	case count >= 2 && count <= 4:
		score += 30
	case count > 4:
		score += 20
	case count == 1:
		score += 15
	}

	roles := s.classifyRoles(founders)

	switch len(roles) {
	case 0:
	case 1:
		score += 20
	case 2:
		score += 30
	default:
		score += 40
	}

	core := 0
	for _, role := range s.rules.CoreRoles {
		if _, ok := roles[role]; ok {
			core++
		}
	}
	switch {
	case core >= len(s.rules.CoreRoles) && core > 0:
		score += 30
	case core >= 2:
		score += 20
	case core >= 1:
		score += 10
	}

	return math.Min(100, score)
}

// classifyRoles buckets each founder title into the first matching role
// class. Class iteration is ordered so classification is deterministic.
func (s *Scorer) classifyRoles(founders []*profile.FounderProfile) map[string]struct{} {
	classOrder := []string{"ceo", "cto", "product", "operations", "finance"}

	roles := make(map[string]struct{})
	for _, f := range founders {
		if f.Title == "" {
			continue
		}
		lower := strings.ToLower(f.Title)
	classes:
		for _, class := range classOrder {
			for _, keyword := range s.rules.RoleClasses[class] {
				if strings.Contains(lower, keyword) {
					roles[class] = struct{}{}
					break classes
				}
			}
		}
	}
	return roles
}

func maxYears(lower string) int {
	matches := yearsPattern.FindAllStringSubmatch(lower, -1)
	years := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > years {
			years = n
		}
	}
	return years
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampScore(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

// FormatScore renders a score for log and report output with two decimals.
func FormatScore(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
