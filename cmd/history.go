package cmd

import (
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/venturescout/vc-sourcer/internal/logger"
	"github.com/venturescout/vc-sourcer/internal/scoring"
	"github.com/venturescout/vc-sourcer/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scoring runs from the results store",
	Run: func(cmd *cobra.Command, _ []string) {
		history(cmd)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntP("limit", "n", 10, "number of recent runs to show")
	historyCmd.Flags().StringP("run", "r", "", "show the stored results of a single run by its id")
	historyCmd.Flags().StringP("store", "s", "", "path to the sqlite results store")
}

func history(cmd *cobra.Command) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	path := cmd.Flag("store").Value.String()
	if path == "" {
		path = viper.GetString("store-path")
	}
	if path == "" {
		logger.Fatal("results store path is required under store-path")
	}

	db, err := store.Open(path)
	if err != nil {
		logger.Fatal("opening results store", zap.Error(err))
	}
	defer db.Close()

	if runID := cmd.Flag("run").Value.String(); runID != "" {
		showRun(db, runID, logger)
		return
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		logger.Fatal("reading the limit flag", zap.Error(err))
	}

	runs, err := db.Runs(limit)
	if err != nil {
		logger.Fatal("listing runs", zap.Error(err))
	}

	if len(runs) == 0 {
		logger.Info("no stored runs found", zap.String("store", path))
		return
	}

	for _, run := range runs {
		logger.Info("run",
			zap.String("id", run.ID),
			zap.String("organization", run.Organization),
			zap.Time("created_at", run.CreatedAt),
			zap.Int("candidates", run.Candidates),
			zap.Int("scored", run.Scored),
			zap.Int("failed", run.Failed),
			zap.String("average_overall", scoring.FormatScore(run.AverageOverall)),
		)
	}
}

func showRun(db *store.Store, runID string, logger *zap.Logger) {
	results, err := db.Results(runID)
	if err != nil {
		logger.Fatal("loading run results", zap.Error(err))
	}

	if len(results) == 0 {
		logger.Info("no results for run", zap.String("run_id", runID))
		return
	}

	for _, r := range results {
		logger.Info("stored result",
			zap.Int("rank", r.Rank),
			zap.String("company", r.Company),
			zap.String("quality", scoring.FormatScore(r.Quality)),
			zap.String("fit", scoring.FormatScore(r.Fit)),
			zap.String("portfolio_fit", scoring.FormatScore(r.PortfolioFit)),
			zap.String("overall", scoring.FormatScore(r.Overall)),
			zap.String("recommendation", r.Recommendation),
		)
	}
}
