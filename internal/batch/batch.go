package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/venturescout/vc-sourcer/internal/fit"
	"github.com/venturescout/vc-sourcer/internal/portfolio"
	"github.com/venturescout/vc-sourcer/internal/profile"
	"github.com/venturescout/vc-sourcer/internal/scoring"
)

// defaultConcurrency keeps the worker pool small; the scorers are cheap next
// to the encoder calls already memoized by the similarity cache.
const defaultConcurrency = 4

// Recommendation labels derived from the overall score.
const (
	RecommendStrong   = "Strong Match"
	RecommendGood     = "Good Match"
	RecommendModerate = "Moderate Match"
	RecommendWeak     = "Weak Match"
)

// CombineWeights merge the three sub-scores into the overall score. They must
// sum to 1.
type CombineWeights struct {
	Fit          float64 `mapstructure:"fit"`
	Quality      float64 `mapstructure:"quality"`
	PortfolioFit float64 `mapstructure:"portfolio-fit"`
}

// DefaultCombineWeights returns the built-in overall weighting.
func DefaultCombineWeights() CombineWeights {
	return CombineWeights{Fit: 0.4, Quality: 0.3, PortfolioFit: 0.3}
}

// ScoreBreakdown is the per-candidate result record. It is created once per
// scoring pass and never mutated afterwards.
type ScoreBreakdown struct {
	CompanyName       string             `json:"company_name"`
	QualityScore      float64            `json:"quality_score"`
	FitScore          float64            `json:"fit_score"`
	PortfolioFitScore float64            `json:"portfolio_fit_score"`
	OverallScore      float64            `json:"overall_score"`
	Recommendation    string             `json:"recommendation"`
	Pros              []string           `json:"pros,omitempty"`
	Cons              []string           `json:"cons,omitempty"`
	Note              string             `json:"note,omitempty"`
	Quality           scoring.Breakdown  `json:"quality"`
	Fit               fit.Breakdown      `json:"fit"`
	Portfolio         portfolio.Analysis `json:"portfolio"`
}

// Summary aggregates a scoring run for reporting collaborators.
type Summary struct {
	Candidates     int     `json:"candidates"`
	Scored         int     `json:"scored"`
	Failed         int     `json:"failed"`
	StrongMatches  int     `json:"strong_matches"`
	AverageOverall float64 `json:"average_overall"`
	AverageFit     float64 `json:"average_fit"`
	AverageQuality float64 `json:"average_quality"`
}

// Report is the ranked output of one scoring pass.
type Report struct {
	Organization string            `json:"organization"`
	GeneratedAt  time.Time         `json:"generated_at"`
	Results      []*ScoreBreakdown `json:"results"`
	Summary      Summary           `json:"summary"`
}

// Deps aggregates the scorers shared by all workers.
type Deps struct {
	Quality   *scoring.Scorer
	Fit       *fit.Scorer
	Portfolio *portfolio.Analyzer
	Logger    *zap.Logger
}

// Config carries the coordinator tuning knobs.
type Config struct {
	Concurrency int
	Weights     CombineWeights
}

// Coordinator fans candidates out across a bounded worker pool and merges
// the three sub-scores into one ranked result set.
type Coordinator struct {
	deps        Deps
	concurrency int
	weights     CombineWeights
}

// NewCoordinator builds a coordinator around the given scorers.
func NewCoordinator(deps Deps, cfg Config) (*Coordinator, error) {
	if deps.Quality == nil || deps.Fit == nil || deps.Portfolio == nil {
		return nil, errors.New("quality, fit and portfolio scorers are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	weights := cfg.Weights
	if weights == (CombineWeights{}) {
		weights = DefaultCombineWeights()
	}

	return &Coordinator{deps: deps, concurrency: concurrency, weights: weights}, nil
}

// ScoreAll scores every candidate against the organization and returns a
// ranked report. One candidate failing never aborts the batch: the failure is
// logged and the candidate carries a zero score with an explanatory note. On
// cancellation the already-completed results are returned alongside the
// context error.
func (c *Coordinator) ScoreAll(ctx context.Context, candidates *profile.Candidates, org *profile.OrganizationProfile) (*Report, error) {
	if err := org.Validate(); err != nil {
		return nil, err
	}

	results := make([]*ScoreBreakdown, candidates.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, candidate := range candidates.Items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.scoreOne(gctx, candidate, org)
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		// Workers that were already past their entry check when the
		// context died return nil; the cancellation still has to reach
		// the caller.
		err = ctx.Err()
	}

	report := c.buildReport(org, results)

	if err != nil {
		c.deps.Logger.Warn("batch interrupted",
			zap.Int("completed", len(report.Results)),
			zap.Int("candidates", candidates.Len()),
			zap.Error(err),
		)
		return report, err
	}

	c.deps.Logger.Info("batch completed",
		zap.Int("candidates", report.Summary.Candidates),
		zap.Int("scored", report.Summary.Scored),
		zap.Int("failed", report.Summary.Failed),
		zap.Float64("average_overall", report.Summary.AverageOverall),
	)

	return report, nil
}

// scoreOne runs the three scorers for a single candidate. Panics inside a
// scorer are converted to a zero-score result so one bad record cannot take
// the batch down.
func (c *Coordinator) scoreOne(ctx context.Context, candidate *profile.CompanyProfile, org *profile.OrganizationProfile) (result *ScoreBreakdown) {
	defer func() {
		if r := recover(); r != nil {
			c.deps.Logger.Error("scorer panicked",
				zap.String("company", candidateName(candidate)),
				zap.Any("panic", r),
			)
			result = failedBreakdown(candidateName(candidate), fmt.Sprintf("scoring failed: %v", r))
		}
	}()

	if err := candidate.Validate(); err != nil {
		c.deps.Logger.Warn("malformed candidate skipped",
			zap.String("company", candidateName(candidate)),
			zap.Error(err),
		)
		return failedBreakdown(candidateName(candidate), fmt.Sprintf("malformed input: %v", err))
	}

	quality := c.deps.Quality.Score(candidate)
	fitness := c.deps.Fit.Score(ctx, candidate, org)
	conflicts := c.deps.Portfolio.Analyze(ctx, candidate, org)

	// A cancellation mid-scoring leaves components silently degraded behind
	// it; abandon the entry instead of reporting it as cleanly scored.
	if ctx.Err() != nil {
		c.deps.Logger.Debug("candidate abandoned",
			zap.String("company", candidate.Name),
			zap.Error(ctx.Err()),
		)
		return nil
	}

	overall := fitness.Score*c.weights.Fit +
		quality.Score*c.weights.Quality +
		conflicts.PortfolioFitScore*c.weights.PortfolioFit
	overall = clamp(round2(overall))

	b := &ScoreBreakdown{
		CompanyName:       candidate.Name,
		QualityScore:      quality.Score,
		FitScore:          fitness.Score,
		PortfolioFitScore: conflicts.PortfolioFitScore,
		OverallScore:      overall,
		Recommendation:    recommendation(overall),
		Quality:           quality,
		Fit:               fitness,
		Portfolio:         conflicts,
	}
	b.Pros, b.Cons = prosAndCons(b)

	c.deps.Logger.Info("candidate scored",
		zap.String("company", b.CompanyName),
		zap.Float64("overall", b.OverallScore),
		zap.Float64("fit", b.FitScore),
		zap.Float64("quality", b.QualityScore),
		zap.Float64("portfolio_fit", b.PortfolioFitScore),
		zap.String("recommendation", b.Recommendation),
	)

	return b
}

// buildReport sorts completed results deterministically and computes the
// summary. Sorting is a final explicit step so parallel completion order
// never leaks into the output.
func (c *Coordinator) buildReport(org *profile.OrganizationProfile, results []*ScoreBreakdown) *Report {
	completed := make([]*ScoreBreakdown, 0, len(results))
	for _, r := range results {
		if r != nil {
			completed = append(completed, r)
		}
	}

	sort.Slice(completed, func(i, j int) bool {
		if completed[i].OverallScore != completed[j].OverallScore {
			return completed[i].OverallScore > completed[j].OverallScore
		}
		return completed[i].CompanyName < completed[j].CompanyName
	})

	summary := Summary{Candidates: len(completed)}
	var overallSum, fitSum, qualitySum float64
	for _, r := range completed {
		if r.Note != "" {
			summary.Failed++
			continue
		}
		summary.Scored++
		overallSum += r.OverallScore
		fitSum += r.FitScore
		qualitySum += r.QualityScore
		if r.Recommendation == RecommendStrong {
			summary.StrongMatches++
		}
	}
	if summary.Scored > 0 {
		summary.AverageOverall = round2(overallSum / float64(summary.Scored))
		summary.AverageFit = round2(fitSum / float64(summary.Scored))
		summary.AverageQuality = round2(qualitySum / float64(summary.Scored))
	}

	return &Report{
		Organization: org.Name,
		GeneratedAt:  time.Now().UTC(),
		Results:      completed,
		Summary:      summary,
	}
}

func recommendation(overall float64) string {
	switch {
	case overall >= 80:
		return RecommendStrong
	case overall >= 60:
		return RecommendGood
	case overall >= 40:
		return RecommendModerate
	default:
		return RecommendWeak
	}
}

// prosAndCons assembles the textual assessment from whichever sub-scores
// cleared or missed their thresholds.
func prosAndCons(b *ScoreBreakdown) (pros, cons []string) {
	switch {
	case b.FitScore > 80:
		pros = append(pros, "Excellent fit with investment criteria")
	case b.FitScore > 60:
		pros = append(pros, "Good fit with investment criteria")
	default:
		cons = append(cons, "Poor fit with investment criteria")
	}

	switch {
	case b.QualityScore > 80:
		pros = append(pros, "High quality founding team")
	case b.QualityScore < 50:
		cons = append(cons, "Low quality founding team")
	}

	switch {
	case b.PortfolioFitScore > 70:
		pros = append(pros, "Good portfolio fit")
	case b.PortfolioFitScore < 40:
		cons = append(cons, "Poor portfolio fit")
	}

	if n := len(b.Portfolio.Conflicts); n > 0 {
		cons = append(cons, fmt.Sprintf("Conflicts with %d portfolio companies", n))
	}

	return pros, cons
}

func failedBreakdown(name, note string) *ScoreBreakdown {
	return &ScoreBreakdown{
		CompanyName:    name,
		Recommendation: RecommendWeak,
		Note:           note,
		Cons:           []string{note},
	}
}

func candidateName(candidate *profile.CompanyProfile) string {
	if candidate == nil {
		return ""
	}
	return candidate.Name
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
