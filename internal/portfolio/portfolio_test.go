package portfolio

import (
	"context"
	"errors"
	"testing"

	"github.com/venturescout/vc-sourcer/internal/profile"
	"github.com/venturescout/vc-sourcer/internal/similarity"
)

type stubEncoder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEncoder) Encode(_ context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	// Orthogonal default so unrelated texts score zero similarity.
	return []float32{0, 0, 1}, nil
}

func newAnalyzer(encoder similarity.Encoder, threshold float64) *Analyzer {
	cache := similarity.New(encoder, similarity.Config{}, nil)
	return NewAnalyzer(cache, threshold, nil)
}

func TestAnalyzeEmptyPortfolio(t *testing.T) {
	t.Parallel()

	analyzer := newAnalyzer(&stubEncoder{}, 0)
	candidate := &profile.CompanyProfile{Name: "Acme", Description: "payments"}

	tests := []struct {
		name string
		org  *profile.OrganizationProfile
	}{
		{name: "nil organization", org: nil},
		{name: "no holdings", org: &profile.OrganizationProfile{Name: "Fund"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := analyzer.Analyze(context.Background(), candidate, tt.org)
			if got.ConflictScore != 0 {
				t.Fatalf("expected zero conflict, got %v", got.ConflictScore)
			}
			if got.PortfolioFitScore != 100 {
				t.Fatalf("expected full portfolio fit, got %v", got.PortfolioFitScore)
			}
			if len(got.Conflicts) != 0 {
				t.Fatalf("expected no conflicts, got %v", got.Conflicts)
			}
		})
	}
}

func TestAnalyzeOverlappingHolding(t *testing.T) {
	t.Parallel()

	candidate := &profile.CompanyProfile{
		Name:        "PayFlow",
		Description: "payments infrastructure for small banks",
	}
	overlapping := &profile.Holding{Name: "PayCore", Description: "payments infrastructure"}
	unrelated := &profile.Holding{Name: "AgriBot", Description: "farm robotics"}

	encoder := &stubEncoder{vectors: map[string][]float32{
		similarity.NormalizeKey(candidate.Text()):   {1, 0, 0},
		similarity.NormalizeKey(overlapping.Text()): {1, 0.1, 0},
		similarity.NormalizeKey(unrelated.Text()):   {0, 1, 0},
	}}
	analyzer := newAnalyzer(encoder, 60)

	got := analyzer.Analyze(context.Background(), candidate, &profile.OrganizationProfile{
		Name:      "Fund",
		Portfolio: []*profile.Holding{overlapping, unrelated},
	})

	if got.ConflictScore <= 90 {
		t.Fatalf("expected a high conflict score for near-identical vectors, got %v", got.ConflictScore)
	}
	if len(got.Conflicts) != 1 || got.Conflicts[0] != "PayCore" {
		t.Fatalf("expected a single conflict with PayCore, got %v", got.Conflicts)
	}
	if got.PortfolioFitScore != round2(100-got.ConflictScore) {
		t.Fatalf("expected portfolio fit 100 minus conflict, got %v", got.PortfolioFitScore)
	}
}

func TestAnalyzeBelowThresholdKeepsFullFit(t *testing.T) {
	t.Parallel()

	candidate := &profile.CompanyProfile{Name: "Acme", Description: "logistics"}
	holding := &profile.Holding{Name: "Other", Description: "biotech"}

	encoder := &stubEncoder{vectors: map[string][]float32{
		similarity.NormalizeKey(candidate.Text()): {1, 0.5, 0},
		similarity.NormalizeKey(holding.Text()):   {1, 0, 0},
	}}
	analyzer := newAnalyzer(encoder, 95)

	got := analyzer.Analyze(context.Background(), candidate, &profile.OrganizationProfile{
		Name:      "Fund",
		Portfolio: []*profile.Holding{holding},
	})

	if got.ConflictScore <= 0 {
		t.Fatalf("expected a measurable similarity, got %v", got.ConflictScore)
	}
	if got.PortfolioFitScore != 100 {
		t.Fatalf("below-threshold conflict must keep full fit, got %v", got.PortfolioFitScore)
	}
	if len(got.Conflicts) != 0 {
		t.Fatalf("expected no conflicts below the threshold, got %v", got.Conflicts)
	}
}

func TestAnalyzeEncoderFailure(t *testing.T) {
	t.Parallel()

	analyzer := newAnalyzer(&stubEncoder{err: errors.New("api down")}, 0)

	got := analyzer.Analyze(context.Background(),
		&profile.CompanyProfile{Name: "Acme", Description: "payments"},
		&profile.OrganizationProfile{
			Name:      "Fund",
			Portfolio: []*profile.Holding{{Name: "Holding", Description: "payments"}},
		})

	if got.ConflictScore != 0 || got.PortfolioFitScore != 100 {
		t.Fatalf("encoder failure must degrade to zero conflict, got %+v", got)
	}
}

func TestAnalyzeFallsBackToName(t *testing.T) {
	t.Parallel()

	// A candidate without any profile text still participates via its name.
	encoder := &stubEncoder{vectors: map[string][]float32{
		"acme":               {1, 0, 0},
		"acme labs payments": {1, 0, 0},
	}}
	analyzer := newAnalyzer(encoder, 60)

	got := analyzer.Analyze(context.Background(),
		&profile.CompanyProfile{Name: "Acme"},
		&profile.OrganizationProfile{
			Name:      "Fund",
			Portfolio: []*profile.Holding{{Name: "Acme Labs", Description: "payments"}},
		})

	if got.ConflictScore != 100 {
		t.Fatalf("expected full conflict for identical vectors, got %v", got.ConflictScore)
	}
	if len(got.Conflicts) != 1 {
		t.Fatalf("expected one conflict, got %v", got.Conflicts)
	}
}
