package fit

import (
	"context"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/venturescout/vc-sourcer/internal/profile"
	"github.com/venturescout/vc-sourcer/internal/scoring"
	"github.com/venturescout/vc-sourcer/internal/similarity"
)

// Weights combine the fit components into the final score. They must sum
// to 1.
type Weights struct {
	Similarity float64 `mapstructure:"similarity"`
	Industry   float64 `mapstructure:"industry"`
	Stage      float64 `mapstructure:"stage"`
	Location   float64 `mapstructure:"location"`
	Network    float64 `mapstructure:"network"`
}

// DefaultWeights returns the built-in component weights.
func DefaultWeights() Weights {
	return Weights{
		Similarity: 0.40,
		Industry:   0.20,
		Stage:      0.15,
		Location:   0.10,
		Network:    0.15,
	}
}

// Breakdown is the fit score plus its component diagnostics, all in [0,100].
type Breakdown struct {
	Score            float64 `json:"score"`
	TextSimilarity   float64 `json:"text_similarity"`
	IndustryMatch    float64 `json:"industry_match"`
	StageMatch       float64 `json:"stage_match"`
	LocationMatch    float64 `json:"location_match"`
	NetworkProximity float64 `json:"network_proximity"`
}

// stageOrder ranks funding stages so adjacent stages can earn partial credit.
var stageOrder = map[string]int{
	"pre-seed": 1,
	"seed":     2,
	"series a": 3,
	"series b": 4,
	"series c": 5,
	"growth":   6,
}

// stageMarkers map description phrases to an inferred funding stage. Checked
// in order; the first hit wins.
var stageMarkers = []struct {
	marker string
	stage  string
}{
	{"pre-seed", "pre-seed"},
	{"preseed", "pre-seed"},
	{"series a", "series a"},
	{"series b", "series b"},
	{"series c", "series c"},
	{"seed", "seed"},
	{"growth stage", "growth"},
}

// Scorer computes candidate-to-organization alignment. Text similarity goes
// through the shared similarity cache; categorical matches are computed
// inline.
type Scorer struct {
	cache   *similarity.Cache
	quality *scoring.Scorer
	weights Weights
	logger  *zap.Logger
}

// NewScorer builds a fit scorer. The quality scorer is borrowed for the
// founder network component so both scorers agree on network tiers.
func NewScorer(cache *similarity.Cache, quality *scoring.Scorer, weights Weights, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{cache: cache, quality: quality, weights: weights, logger: logger}
}

// Score computes the fit between a candidate and the organization. Encoder
// failures degrade the text similarity component to 0 instead of failing the
// candidate.
func (s *Scorer) Score(ctx context.Context, candidate *profile.CompanyProfile, org *profile.OrganizationProfile) Breakdown {
	b := Breakdown{
		TextSimilarity:   s.textSimilarity(ctx, candidate, org),
		IndustryMatch:    matchSet(candidate.Industry, org.Industries),
		StageMatch:       s.stageMatch(candidate, org),
		LocationMatch:    locationMatch(candidate.Location, org.Locations),
		NetworkProximity: s.networkProximity(candidate),
	}

	score := b.TextSimilarity*s.weights.Similarity +
		b.IndustryMatch*s.weights.Industry +
		b.StageMatch*s.weights.Stage +
		b.LocationMatch*s.weights.Location +
		b.NetworkProximity*s.weights.Network

	b.Score = clamp(round2(score))

	s.logger.Debug("fit score",
		zap.String("company", candidate.Name),
		zap.String("organization", org.Name),
		zap.Float64("score", b.Score),
		zap.Float64("text_similarity", b.TextSimilarity),
		zap.Float64("industry_match", b.IndustryMatch),
		zap.Float64("stage_match", b.StageMatch),
		zap.Float64("location_match", b.LocationMatch),
		zap.Float64("network_proximity", b.NetworkProximity),
	)

	return b
}

func (s *Scorer) textSimilarity(ctx context.Context, candidate *profile.CompanyProfile, org *profile.OrganizationProfile) float64 {
	candidateText := candidate.Text()
	thesisText := org.ThesisText()
	if candidateText == "" || thesisText == "" {
		return 0
	}

	candidateVec, err := s.cache.GetOrCompute(ctx, candidateText)
	if err != nil {
		s.logger.Debug("candidate encoding unavailable, similarity degraded to 0",
			zap.String("company", candidate.Name), zap.Error(err))
		return 0
	}

	thesisVec, err := s.cache.GetOrCompute(ctx, thesisText)
	if err != nil {
		s.logger.Debug("thesis encoding unavailable, similarity degraded to 0",
			zap.String("organization", org.Name), zap.Error(err))
		return 0
	}

	return round2(similarity.Scaled(similarity.Cosine(candidateVec, thesisVec)))
}

func (s *Scorer) stageMatch(candidate *profile.CompanyProfile, org *profile.OrganizationProfile) float64 {
	stage := InferStage(candidate.Description)
	if stage == "" || len(org.Stages) == 0 {
		return 0
	}

	for _, preferred := range org.Stages {
		if strings.EqualFold(normalizeStage(preferred), stage) {
			return 100
		}
	}

	// Partial credit for adjacent stages in the funding ladder.
	stageNum, ok := stageOrder[stage]
	if !ok {
		return 0
	}
	for _, preferred := range org.Stages {
		if preferredNum, ok := stageOrder[normalizeStage(preferred)]; ok {
			if abs(stageNum-preferredNum) == 1 {
				return 50
			}
		}
	}

	return 0
}

func (s *Scorer) networkProximity(candidate *profile.CompanyProfile) float64 {
	if s.quality == nil || len(candidate.Founders) == 0 {
		return 0
	}

	var sum float64
	for _, f := range candidate.Founders {
		sum += s.quality.NetworkScore(f)
	}
	avg := sum / float64(len(candidate.Founders))

	ceiling := s.quality.NetworkCap()
	if ceiling <= 0 {
		return 0
	}
	return round2(math.Min(100, avg*100/ceiling))
}

// InferStage guesses the candidate's funding stage from description phrases.
// Empty string means no stage could be inferred.
func InferStage(description string) string {
	lower := strings.ToLower(description)
	for _, m := range stageMarkers {
		if strings.Contains(lower, m.marker) {
			return m.stage
		}
	}
	return ""
}

// matchSet scores set membership: exact match earns full credit, substring
// overlap in either direction earns half, anything else earns nothing.
func matchSet(value string, preferred []string) float64 {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" || len(preferred) == 0 {
		return 0
	}

	for _, p := range preferred {
		if strings.ToLower(strings.TrimSpace(p)) == value {
			return 100
		}
	}

	for _, p := range preferred {
		lower := strings.ToLower(strings.TrimSpace(p))
		if lower == "" {
			continue
		}
		if strings.Contains(lower, value) || strings.Contains(value, lower) {
			return 50
		}
	}

	return 0
}

// locationMatch is matchSet plus a comma-separated fallback so that
// "San Francisco, CA" still half-matches a "san francisco" preference after
// the full string misses.
func locationMatch(location string, preferred []string) float64 {
	if score := matchSet(location, preferred); score > 0 {
		return score
	}

	for _, part := range strings.Split(location, ",") {
		if matchSet(part, preferred) == 100 {
			return 50
		}
	}
	return 0
}

func normalizeStage(stage string) string {
	return strings.ToLower(strings.TrimSpace(stage))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
