package cmd

import (
	"errors"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/venturescout/vc-sourcer/internal/batch"
	"github.com/venturescout/vc-sourcer/internal/fit"
)

const (
	app = "vc-sourcer"
)

type Config struct {
	CandidatesFile   string           `mapstructure:"candidates-file"`
	OrganizationFile string           `mapstructure:"organization-file"`
	StorePath        string           `mapstructure:"store-path"`
	Output           *OutputConfig    `mapstructure:"output"`
	Scoring          *ScoringConfig   `mapstructure:"scoring"`
	Embedding        *EmbeddingConfig `mapstructure:"embedding"`
	RateLimit        *RateLimitConfig `mapstructure:"rate-limit"`
}

type OutputConfig struct {
	File   string `mapstructure:"file"`
	Format string `mapstructure:"format"`
}

type ScoringConfig struct {
	Concurrency       int                   `mapstructure:"concurrency"`
	ConflictThreshold float64               `mapstructure:"conflict-threshold"`
	CacheCapacity     int                   `mapstructure:"cache-capacity"`
	CacheTTLMinutes   int                   `mapstructure:"cache-ttl-minutes"`
	FitWeights        *fit.Weights          `mapstructure:"fit-weights"`
	CombineWeights    *batch.CombineWeights `mapstructure:"combine-weights"`
}

type EmbeddingConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type RateLimitConfig struct {
	RequestsPerWindow int `mapstructure:"requests-per-window"`
	WindowSeconds     int `mapstructure:"window-seconds"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "vc-sourcer scores startup candidates against an organization's investment criteria",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("embedding.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is vc-sourcer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for the score and history commands. If there is no config, we can skip initialization.
	scoreRun := scoreCmd.CalledAs() != ""
	historyRun := historyCmd.CalledAs() != ""
	if !scoreRun && !historyRun {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error. The history
	// command can still work from flags alone when no config file exists.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if historyRun && errors.As(err, &notFound) {
			return
		}
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
