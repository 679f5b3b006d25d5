package store

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/venturescout/vc-sourcer/internal/batch"
)

// Store persists scoring runs and their per-candidate breakdowns to SQLite so
// past runs can be compared without re-scoring.
type Store struct {
	db *sqlx.DB
}

// Run is a stored scoring run summary.
type Run struct {
	ID             string    `db:"id"`
	Organization   string    `db:"organization"`
	CreatedAt      time.Time `db:"created_at"`
	Candidates     int       `db:"candidates"`
	Scored         int       `db:"scored"`
	Failed         int       `db:"failed"`
	AverageOverall float64   `db:"average_overall"`
}

// Result is one stored candidate breakdown.
type Result struct {
	RunID          string  `db:"run_id"`
	Rank           int     `db:"rank"`
	Company        string  `db:"company"`
	Quality        float64 `db:"quality"`
	Fit            float64 `db:"fit"`
	PortfolioFit   float64 `db:"portfolio_fit"`
	Overall        float64 `db:"overall"`
	Recommendation string  `db:"recommendation"`
	Note           string  `db:"note"`
}

// Open connects to the SQLite database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("connect to results store %q: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) initSchema() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			organization TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			candidates INTEGER NOT NULL,
			scored INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			average_overall REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL,
			rank INTEGER NOT NULL,
			company TEXT NOT NULL,
			quality REAL NOT NULL,
			fit REAL NOT NULL,
			portfolio_fit REAL NOT NULL,
			overall REAL NOT NULL,
			recommendation TEXT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			FOREIGN KEY(run_id) REFERENCES runs(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_results_run ON results(run_id)`,
	}

	for _, tableSQL := range tables {
		if _, err := s.db.Exec(tableSQL); err != nil {
			return fmt.Errorf("creating results schema: %w", err)
		}
	}
	return nil
}

// SaveReport stores the report as a new run and returns the run id.
func (s *Store) SaveReport(report *batch.Report) (string, error) {
	if report == nil {
		return "", fmt.Errorf("report is required")
	}

	runID := uuid.NewString()

	tx, err := s.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, organization, created_at, candidates, scored, failed, average_overall)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, report.Organization, report.GeneratedAt,
		report.Summary.Candidates, report.Summary.Scored, report.Summary.Failed,
		report.Summary.AverageOverall,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for rank, r := range report.Results {
		_, err = tx.Exec(
			`INSERT INTO results (run_id, rank, company, quality, fit, portfolio_fit, overall, recommendation, note)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, rank+1, r.CompanyName, r.QualityScore, r.FitScore,
			r.PortfolioFitScore, r.OverallScore, r.Recommendation, r.Note,
		)
		if err != nil {
			return "", fmt.Errorf("insert result for %q: %w", r.CompanyName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}

	return runID, nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	var runs []Run
	err := s.db.Select(&runs,
		`SELECT id, organization, created_at, candidates, scored, failed, average_overall
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Results returns the stored breakdowns of a run in rank order.
func (s *Store) Results(runID string) ([]Result, error) {
	var results []Result
	err := s.db.Select(&results,
		`SELECT run_id, rank, company, quality, fit, portfolio_fit, overall, recommendation, note
		 FROM results WHERE run_id = ? ORDER BY rank ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("list results for run %q: %w", runID, err)
	}
	return results, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
