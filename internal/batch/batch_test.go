package batch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/venturescout/vc-sourcer/internal/fit"
	"github.com/venturescout/vc-sourcer/internal/portfolio"
	"github.com/venturescout/vc-sourcer/internal/profile"
	"github.com/venturescout/vc-sourcer/internal/scoring"
	"github.com/venturescout/vc-sourcer/internal/similarity"
)

type stubEncoder struct {
	panicOn string
}

func (s *stubEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	if s.panicOn != "" && strings.Contains(text, s.panicOn) {
		panic("encoder corrupted state")
	}
	return []float32{1, 0}, nil
}

func newCoordinator(t *testing.T, encoder similarity.Encoder, cfg Config) *Coordinator {
	t.Helper()

	cache := similarity.New(encoder, similarity.Config{}, nil)
	quality := scoring.NewScorer(nil, nil)

	coordinator, err := NewCoordinator(Deps{
		Quality:   quality,
		Fit:       fit.NewScorer(cache, quality, fit.DefaultWeights(), nil),
		Portfolio: portfolio.NewAnalyzer(cache, 0, nil),
	}, cfg)
	if err != nil {
		t.Fatalf("creating coordinator: %v", err)
	}
	return coordinator
}

func testOrg() *profile.OrganizationProfile {
	return &profile.OrganizationProfile{
		Name:             "Fund",
		InvestmentThesis: "fintech infrastructure",
		Industries:       []string{"fintech"},
	}
}

func TestNewCoordinatorRequiresScorers(t *testing.T) {
	t.Parallel()

	if _, err := NewCoordinator(Deps{}, Config{}); err == nil {
		t.Fatal("expected an error for missing scorers, got nil")
	}
}

func TestScoreAllRanksDeterministically(t *testing.T) {
	t.Parallel()

	coordinator := newCoordinator(t, &stubEncoder{}, Config{Concurrency: 3})

	candidates := &profile.Candidates{Items: []*profile.CompanyProfile{
		{Name: "Plain Beta"},
		{Name: "Fintech Star", Industry: "fintech", Description: "fintech payments"},
		{Name: "Plain Alpha"},
	}}

	first, err := coordinator.ScoreAll(context.Background(), candidates, testOrg())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(first.Results) != candidates.Len() {
		t.Fatalf("expected %d results, got %d", candidates.Len(), len(first.Results))
	}

	for i := 1; i < len(first.Results); i++ {
		if first.Results[i].OverallScore > first.Results[i-1].OverallScore {
			t.Fatalf("results are not ranked: %v before %v",
				first.Results[i-1].OverallScore, first.Results[i].OverallScore)
		}
	}

	if first.Results[0].CompanyName != "Fintech Star" {
		t.Fatalf("expected the matching candidate first, got %q", first.Results[0].CompanyName)
	}

	// Equal scores break ties by name.
	if first.Results[1].CompanyName != "Plain Alpha" || first.Results[2].CompanyName != "Plain Beta" {
		t.Fatalf("expected name tie-break, got %q then %q",
			first.Results[1].CompanyName, first.Results[2].CompanyName)
	}

	// A second pass over the same input produces the same ranking.
	second, err := coordinator.ScoreAll(context.Background(), candidates, testOrg())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	for i := range first.Results {
		if first.Results[i].CompanyName != second.Results[i].CompanyName {
			t.Fatalf("ranking is not deterministic at position %d: %q vs %q",
				i, first.Results[i].CompanyName, second.Results[i].CompanyName)
		}
		if first.Results[i].OverallScore != second.Results[i].OverallScore {
			t.Fatalf("scores are not deterministic at position %d", i)
		}
	}
}

func TestScoreAllSurvivesPanickingScorer(t *testing.T) {
	t.Parallel()

	coordinator := newCoordinator(t, &stubEncoder{panicOn: "poisonous"}, Config{Concurrency: 1})

	candidates := &profile.Candidates{Items: []*profile.CompanyProfile{
		{Name: "Fine", Industry: "fintech", Description: "fintech payments"},
		{Name: "Broken", Description: "poisonous description"},
	}}

	report, err := coordinator.ScoreAll(context.Background(), candidates, testOrg())
	if err != nil {
		t.Fatalf("one bad candidate must not fail the batch, got %v", err)
	}

	if len(report.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Results))
	}

	var broken *ScoreBreakdown
	for _, r := range report.Results {
		if r.CompanyName == "Broken" {
			broken = r
		}
	}
	if broken == nil {
		t.Fatal("the failed candidate is missing from the report")
	}
	if broken.OverallScore != 0 {
		t.Fatalf("failed candidate must carry a zero score, got %v", broken.OverallScore)
	}
	if broken.Note == "" {
		t.Fatal("failed candidate must carry an explanatory note")
	}
	if report.Summary.Failed != 1 || report.Summary.Scored != 1 {
		t.Fatalf("expected 1 failed and 1 scored, got %+v", report.Summary)
	}
}

func TestScoreAllRejectsMalformedCandidates(t *testing.T) {
	t.Parallel()

	coordinator := newCoordinator(t, &stubEncoder{}, Config{})

	candidates := &profile.Candidates{Items: []*profile.CompanyProfile{
		{Name: ""},
		{Name: "Valid", Industry: "fintech"},
	}}

	report, err := coordinator.ScoreAll(context.Background(), candidates, testOrg())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(report.Results) != 2 {
		t.Fatalf("malformed candidates must stay in the report, got %d results", len(report.Results))
	}

	var failed *ScoreBreakdown
	for _, r := range report.Results {
		if r.Note != "" {
			failed = r
		}
	}
	if failed == nil {
		t.Fatal("expected a result with a malformed input note")
	}
	if !strings.Contains(failed.Note, "malformed input") {
		t.Fatalf("unexpected note %q", failed.Note)
	}
}

func TestScoreAllValidatesOrganization(t *testing.T) {
	t.Parallel()

	coordinator := newCoordinator(t, &stubEncoder{}, Config{})
	candidates := &profile.Candidates{Items: []*profile.CompanyProfile{{Name: "Acme"}}}

	if _, err := coordinator.ScoreAll(context.Background(), candidates, nil); err == nil {
		t.Fatal("expected an error for a missing organization, got nil")
	}
	if _, err := coordinator.ScoreAll(context.Background(), candidates, &profile.OrganizationProfile{}); err == nil {
		t.Fatal("expected an error for an unnamed organization, got nil")
	}
}

func TestScoreAllCancellation(t *testing.T) {
	t.Parallel()

	coordinator := newCoordinator(t, &stubEncoder{}, Config{})
	candidates := &profile.Candidates{Items: []*profile.CompanyProfile{
		{Name: "One"}, {Name: "Two"},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := coordinator.ScoreAll(ctx, candidates, testOrg())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if report == nil {
		t.Fatal("completed results must be returned even on cancellation")
	}
	if len(report.Results) > candidates.Len() {
		t.Fatalf("unexpected result count %d", len(report.Results))
	}
}

// cancelingEncoder cancels the run from inside the first encode call, the
// way an interrupt arrives while a candidate is in flight.
type cancelingEncoder struct {
	cancel context.CancelFunc
}

func (c *cancelingEncoder) Encode(ctx context.Context, _ string) ([]float32, error) {
	c.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestScoreAllAbandonsInFlightOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordinator := newCoordinator(t, &cancelingEncoder{cancel: cancel}, Config{Concurrency: 1})

	candidates := &profile.Candidates{Items: []*profile.CompanyProfile{
		{Name: "InFlight", Industry: "fintech", Description: "fintech payments"},
		{Name: "Queued", Industry: "fintech", Description: "fintech lending"},
	}}

	report, err := coordinator.ScoreAll(ctx, candidates, testOrg())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cancellation must reach the caller, got %v", err)
	}
	if report == nil {
		t.Fatal("completed results must still be returned")
	}

	for _, r := range report.Results {
		if r.CompanyName == "InFlight" && r.Note == "" {
			t.Fatalf("in-flight candidate must be abandoned, got a clean entry %+v", r)
		}
	}
	if report.Summary.Scored != 0 {
		t.Fatalf("degraded entries must not count as scored, got %d", report.Summary.Scored)
	}
}

func TestRecommendationThresholds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		overall float64
		expect  string
	}{
		{name: "strong", overall: 85, expect: RecommendStrong},
		{name: "strong boundary", overall: 80, expect: RecommendStrong},
		{name: "good", overall: 65, expect: RecommendGood},
		{name: "moderate", overall: 45, expect: RecommendModerate},
		{name: "weak", overall: 10, expect: RecommendWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := recommendation(tt.overall); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestProsAndCons(t *testing.T) {
	t.Parallel()

	b := &ScoreBreakdown{
		FitScore:          85,
		QualityScore:      30,
		PortfolioFitScore: 20,
		Portfolio:         portfolio.Analysis{Conflicts: []string{"Holding A", "Holding B"}},
	}

	pros, cons := prosAndCons(b)

	if len(pros) != 1 || pros[0] != "Excellent fit with investment criteria" {
		t.Fatalf("unexpected pros %v", pros)
	}

	wantCons := 3 // low quality, poor portfolio fit, conflicts
	if len(cons) != wantCons {
		t.Fatalf("expected %d cons, got %v", wantCons, cons)
	}
	if cons[len(cons)-1] != "Conflicts with 2 portfolio companies" {
		t.Fatalf("unexpected conflict summary %q", cons[len(cons)-1])
	}
}
