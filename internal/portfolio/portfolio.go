package portfolio

import (
	"context"
	"math"

	"go.uber.org/zap"

	"github.com/venturescout/vc-sourcer/internal/profile"
	"github.com/venturescout/vc-sourcer/internal/similarity"
)

// DefaultConflictThreshold is the conflict score above which a candidate is
// considered to overlap with an existing holding.
const DefaultConflictThreshold = 60.0

// Analysis reports how strongly a candidate collides with the organization's
// existing holdings.
type Analysis struct {
	// ConflictScore is the maximum similarity to any holding, in [0,100].
	ConflictScore float64 `json:"conflict_score"`
	// PortfolioFitScore is 100 when no meaningful conflict exists, else
	// 100 minus the conflict score.
	PortfolioFitScore float64 `json:"portfolio_fit_score"`
	// Conflicts lists the holdings whose similarity exceeded the threshold.
	Conflicts []string `json:"conflicts,omitempty"`
}

// Analyzer compares candidates against the organization's current holdings.
type Analyzer struct {
	cache     *similarity.Cache
	threshold float64
	logger    *zap.Logger
}

// NewAnalyzer builds a conflict analyzer. A non-positive threshold falls back
// to the default.
func NewAnalyzer(cache *similarity.Cache, threshold float64, logger *zap.Logger) *Analyzer {
	if threshold <= 0 {
		threshold = DefaultConflictThreshold
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{cache: cache, threshold: threshold, logger: logger}
}

// Analyze returns the conflict assessment for the candidate. An empty
// portfolio means zero conflict, not an error. Encoder failures leave the
// affected holding at zero similarity rather than failing the candidate.
func (a *Analyzer) Analyze(ctx context.Context, candidate *profile.CompanyProfile, org *profile.OrganizationProfile) Analysis {
	analysis := Analysis{PortfolioFitScore: 100}

	if org == nil || len(org.Portfolio) == 0 {
		return analysis
	}

	candidateText := candidate.Text()
	if candidateText == "" {
		candidateText = candidate.Name
	}

	candidateVec, err := a.cache.GetOrCompute(ctx, candidateText)
	if err != nil {
		a.logger.Debug("candidate encoding unavailable, conflict degraded to 0",
			zap.String("company", candidate.Name), zap.Error(err))
		return analysis
	}

	for _, holding := range org.Portfolio {
		if holding == nil || holding.Name == "" {
			continue
		}

		holdingVec, err := a.cache.GetOrCompute(ctx, holding.Text())
		if err != nil {
			a.logger.Debug("holding encoding unavailable, skipped in conflict scan",
				zap.String("holding", holding.Name), zap.Error(err))
			continue
		}

		score := round2(similarity.Scaled(similarity.Cosine(candidateVec, holdingVec)))
		if score > analysis.ConflictScore {
			analysis.ConflictScore = score
		}
		if score > a.threshold {
			analysis.Conflicts = append(analysis.Conflicts, holding.Name)
		}
	}

	if analysis.ConflictScore > a.threshold {
		analysis.PortfolioFitScore = round2(100 - analysis.ConflictScore)
	}

	if len(analysis.Conflicts) > 0 {
		a.logger.Debug("portfolio conflicts detected",
			zap.String("company", candidate.Name),
			zap.Float64("conflict_score", analysis.ConflictScore),
			zap.Strings("conflicts", analysis.Conflicts),
		)
	}

	return analysis
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
