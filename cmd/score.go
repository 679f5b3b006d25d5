package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/venturescout/vc-sourcer/internal/batch"
	"github.com/venturescout/vc-sourcer/internal/embedding/gemini"
	"github.com/venturescout/vc-sourcer/internal/fit"
	"github.com/venturescout/vc-sourcer/internal/logger"
	"github.com/venturescout/vc-sourcer/internal/portfolio"
	"github.com/venturescout/vc-sourcer/internal/profile"
	"github.com/venturescout/vc-sourcer/internal/ratelimit"
	"github.com/venturescout/vc-sourcer/internal/scoring"
	"github.com/venturescout/vc-sourcer/internal/secrets"
	"github.com/venturescout/vc-sourcer/internal/similarity"
	"github.com/venturescout/vc-sourcer/internal/store"
	"github.com/venturescout/vc-sourcer/internal/utils"
)

const (
	PromptYes  = "Yes"
	PromptNo   = "No"
	PromptDump = "No, dump scored candidates to a file"

	defaultRateBudget = 20
	defaultRateWindow = time.Minute
)

var prompt = promptui.Select{
	Label: "Save this run to the results store?",
	Items: []string{PromptYes, PromptNo, PromptDump},
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score candidate companies against the organization profile and produce a ranked report",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before saving results")
	scoreCmd.Flags().StringP("candidates-file", "c", "", "json file with candidate company profiles")
	scoreCmd.Flags().StringP("organization-file", "o", "", "json file with the organization profile")

	viper.BindPFlag("candidates-file", scoreCmd.Flags().Lookup("candidates-file"))
	viper.BindPFlag("organization-file", scoreCmd.Flags().Lookup("organization-file"))
}

// score is the main command for the cli.
func score(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the vc-sourcer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.OrganizationFile == "" {
		logger.Fatal("organization profile file is required under organization-file")
	}
	if config.CandidatesFile == "" {
		logger.Fatal("candidates file is required under candidates-file")
	}

	// Misconfigured rate limits must fail here, not mid-batch.
	limiter, err := newLimiter(config.RateLimit)
	if err != nil {
		logger.Fatal("configuring the rate limiter", zap.Error(err))
	}

	org, err := profile.LoadOrganization(config.OrganizationFile)
	if err != nil {
		logger.Fatal("loading organization profile", zap.Error(err))
	}

	logger.Info("loaded organization profile",
		zap.String("organization", org.Name),
		zap.Int("holdings", len(org.Portfolio)),
		zap.String("thesis_preview", logPreview(org.InvestmentThesis)),
	)
	logger.Debug("search keywords for ingestion",
		zap.Strings("keywords", profile.SearchKeywords(org)))

	candidates, err := profile.LoadCandidates(config.CandidatesFile)
	if err != nil {
		logger.Fatal("loading candidates", zap.Error(err))
	}

	initial := candidates.Len()
	candidates.Dedupe()
	logger.Info("loaded candidates",
		zap.Int("count", candidates.Len()),
		zap.Int("duplicates_dropped", initial-candidates.Len()),
	)
	logger.Debug("candidates in this run", zap.Strings("names", candidates.Names()))

	if candidates.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates to score"))
		return
	}

	encoder := newEncoder(ctx, config.Embedding, limiter, logger)

	coordinator, err := newCoordinator(config.Scoring, encoder, logger)
	if err != nil {
		logger.Fatal("building the scoring pipeline", zap.Error(err))
	}

	report, err := coordinator.ScoreAll(ctx, candidates, org)
	if err != nil {
		logger.Fatal("scoring failed", zap.Error(err))
	}

	printTop(report, logger)

	if config.Output != nil && config.Output.File != "" {
		if err := writeReport(report, config.Output.File, config.Output.Format); err != nil {
			logger.Fatal("writing report", zap.Error(err))
		}
		logger.Info("report written", zap.String("file", config.Output.File))
	}

	if config.StorePath == "" {
		return
	}

	action := PromptYes
	if cmd.Flag("auto-approve").Value.String() == "false" {
		_, action, err = prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
	}

	switch action {
	case PromptYes:
	case PromptDump:
		filename, err := candidates.DumpToTmpFile()
		if err != nil {
			logger.Fatal("dumping candidates", zap.Error(err))
		}
		logger.Info("exiting", zap.String("candidates_file", filename))
		return
	default:
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return
	}

	db, err := store.Open(config.StorePath)
	if err != nil {
		logger.Fatal("opening results store", zap.Error(err))
	}
	defer db.Close()

	runID, err := db.SaveReport(report)
	if err != nil {
		logger.Fatal("saving results", zap.Error(err))
	}

	logger.Info("run saved", zap.String("run_id", runID), zap.String("store", config.StorePath))
}

// newLimiter builds the upstream rate limiter from config, falling back to
// the defaults when the section is absent.
func newLimiter(cfg *RateLimitConfig) (*ratelimit.Limiter, error) {
	budget := defaultRateBudget
	window := defaultRateWindow

	if cfg != nil {
		if cfg.RequestsPerWindow != 0 {
			budget = cfg.RequestsPerWindow
		}
		if cfg.WindowSeconds != 0 {
			window = time.Duration(cfg.WindowSeconds) * time.Second
		}
	}

	return ratelimit.New(budget, window)
}

// newEncoder builds the Gemini embedding encoder. A missing api key is not
// fatal: scoring proceeds with text similarity degraded to 0.
func newEncoder(ctx context.Context, cfg *EmbeddingConfig, limiter *ratelimit.Limiter, logger *zap.Logger) similarity.Encoder {
	apiKeyFile := ""
	model := ""
	maxRetries := 0

	if cfg != nil {
		apiKeyFile = cfg.APIKeyFile
		model = cfg.Model
		maxRetries = cfg.MaxRetries
	}
	if strings.TrimSpace(apiKeyFile) == "" {
		apiKeyFile = strings.TrimSpace(viper.GetString("embedding.api-key-file"))
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: apiKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		logger.Warn("embedding disabled, text similarity will degrade to 0",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY or embedding.api-key-file in the configuration file"),
		)
		return nil
	}

	encoder, err := gemini.NewEncoder(ctx, apiKey, model, maxRetries, limiter)
	if err != nil {
		logger.Warn("embedding disabled, text similarity will degrade to 0", zap.Error(err))
		return nil
	}

	logger.Info("embedding enabled", zap.String("model", encoder.Model()))
	return encoder
}

// newCoordinator wires the similarity cache and the three scorers into a
// batch coordinator.
func newCoordinator(cfg *ScoringConfig, encoder similarity.Encoder, logger *zap.Logger) (*batch.Coordinator, error) {
	cacheCfg := similarity.Config{}
	concurrency := 0
	threshold := 0.0
	fitWeights := fit.DefaultWeights()
	combine := batch.CombineWeights{}

	if cfg != nil {
		cacheCfg.Capacity = cfg.CacheCapacity
		cacheCfg.TTL = time.Duration(cfg.CacheTTLMinutes) * time.Minute
		concurrency = cfg.Concurrency
		threshold = cfg.ConflictThreshold
		if cfg.FitWeights != nil {
			fitWeights = *cfg.FitWeights
		}
		if cfg.CombineWeights != nil {
			combine = *cfg.CombineWeights
		}
	}

	cache := similarity.New(encoder, cacheCfg, logger)
	quality := scoring.NewScorer(scoring.DefaultRules(), logger)
	fitScorer := fit.NewScorer(cache, quality, fitWeights, logger)
	analyzer := portfolio.NewAnalyzer(cache, threshold, logger)

	return batch.NewCoordinator(batch.Deps{
		Quality:   quality,
		Fit:       fitScorer,
		Portfolio: analyzer,
		Logger:    logger,
	}, batch.Config{
		Concurrency: concurrency,
		Weights:     combine,
	})
}

// printTop logs the ranked head of the report for a quick look before the
// full document is written.
func printTop(report *batch.Report, logger *zap.Logger) {
	top := report.Results
	if len(top) > 10 {
		top = top[:10]
	}

	for i, r := range top {
		logger.Info("ranked candidate",
			zap.Int("rank", i+1),
			zap.String("company", r.CompanyName),
			zap.String("overall", scoring.FormatScore(r.OverallScore)),
			zap.String("recommendation", r.Recommendation),
		)
	}

	logger.Info("summary",
		zap.Int("candidates", report.Summary.Candidates),
		zap.Int("scored", report.Summary.Scored),
		zap.Int("failed", report.Summary.Failed),
		zap.Int("strong_matches", report.Summary.StrongMatches),
		zap.Float64("average_overall", report.Summary.AverageOverall),
	)
}

func writeReport(report *batch.Report, file, format string) error {
	var (
		data []byte
		err  error
	)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		data, err = json.MarshalIndent(report, "", "  ")
	case "yaml", "yml":
		data, err = yaml.Marshal(report)
	default:
		return fmt.Errorf("unsupported report format: %s", format)
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	return os.WriteFile(file, data, 0o644)
}

func logPreview(s string) string {
	const maxPreview = 120
	return utils.TruncateForLog(s, maxPreview)
}
