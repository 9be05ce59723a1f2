// Package config defines the explicit, validated configuration every
// pipeline stage is constructed with. Nothing reads process-wide
// defaults at run time; a pipeline run owns exactly the configuration
// it was built from.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Summarizer holds the summarization task's hyperparameters.
type Summarizer struct {
	Epochs           int     `yaml:"epochs" json:"epochs"`
	BatchSize        int     `yaml:"batch_size" json:"batch_size"`
	LearningRate     float64 `yaml:"learning_rate" json:"learning_rate"`
	LRDecay          float64 `yaml:"lr_decay" json:"lr_decay"`
	MaxLength        int     `yaml:"max_length" json:"max_length"`
	MaxSummaryLength int     `yaml:"max_summary_length" json:"max_summary_length"`
	VocabSize        int     `yaml:"vocab_size" json:"vocab_size"`
	EmbedDim         int     `yaml:"embed_dim" json:"embed_dim"`
	HiddenDim        int     `yaml:"hidden_dim" json:"hidden_dim"`
	HoldoutFraction  float64 `yaml:"holdout_fraction" json:"holdout_fraction"`
	Seed             int64   `yaml:"seed" json:"seed"`
}

// Categorizer holds the categorization task's hyperparameters.
type Categorizer struct {
	Strategy        string  `yaml:"strategy" json:"strategy"`
	Epochs          int     `yaml:"epochs" json:"epochs"`
	LearningRate    float64 `yaml:"learning_rate" json:"learning_rate"`
	C               float64 `yaml:"c" json:"c"`
	EmbeddingDim    int     `yaml:"embedding_dim" json:"embedding_dim"`
	MinClassSamples int     `yaml:"min_class_samples" json:"min_class_samples"`
	HoldoutFraction float64 `yaml:"holdout_fraction" json:"holdout_fraction"`
	Seed            int64   `yaml:"seed" json:"seed"`
}

// Fetch configures the corpus acquisition tool. The API key comes from
// the environment, never from the file.
type Fetch struct {
	APIBaseURL string   `yaml:"api_base_url" json:"api_base_url"`
	Query      string   `yaml:"query" json:"query"`
	Language   string   `yaml:"language" json:"language"`
	PageSize   int      `yaml:"page_size" json:"page_size"`
	Feeds      []string `yaml:"feeds" json:"feeds"`
	RatePerSec float64  `yaml:"rate_per_sec" json:"rate_per_sec"`
}

// Config is the root.
type Config struct {
	DataDir           string      `yaml:"data_dir" json:"data_dir"`
	DBPath            string      `yaml:"db_path" json:"db_path"`
	ArtifactDir       string      `yaml:"artifact_dir" json:"artifact_dir"`
	MaxSkipRate       float64     `yaml:"max_skip_rate" json:"max_skip_rate"`
	LanguageThreshold float64     `yaml:"language_threshold" json:"language_threshold"`
	Summarizer        Summarizer  `yaml:"summarizer" json:"summarizer"`
	Categorizer       Categorizer `yaml:"categorizer" json:"categorizer"`
	Fetch             Fetch       `yaml:"fetch" json:"fetch"`
}

// Defaults returns a fully usable configuration.
func Defaults() Config {
	return Config{
		DataDir:           "data",
		DBPath:            "newsml.db",
		ArtifactDir:       "artifacts",
		MaxSkipRate:       0.1,
		LanguageThreshold: 0.9,
		Summarizer: Summarizer{
			Epochs:           3,
			BatchSize:        8,
			LearningRate:     0.05,
			LRDecay:          0.1,
			MaxLength:        512,
			MaxSummaryLength: 64,
			VocabSize:        20000,
			EmbedDim:         64,
			HiddenDim:        128,
			HoldoutFraction:  0.1,
			Seed:             42,
		},
		Categorizer: Categorizer{
			Strategy:        "ovr",
			Epochs:          50,
			LearningRate:    0.1,
			C:               1,
			EmbeddingDim:    256,
			MinClassSamples: 10,
			HoldoutFraction: 0.2,
			Seed:            42,
		},
		Fetch: Fetch{
			Language:   "en",
			Query:      "news",
			PageSize:   30,
			RatePerSec: 1,
		},
	}
}

// Load reads path (NEWSML_CONFIG overrides it), validates the raw
// document against the embedded schema, unmarshals it over Defaults,
// applies env overrides, and runs semantic validation. A missing file
// is fine: defaults apply.
func Load(path string) (Config, error) {
	if env := os.Getenv("NEWSML_CONFIG"); env != "" {
		path = env
	}
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// defaults only
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			if err := validateSchema(data); err != nil {
				return Config{}, err
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		}
	}

	if env := os.Getenv("NEWSML_DATA_DIR"); env != "" {
		cfg.DataDir = env
	}
	if env := os.Getenv("NEWSML_DB"); env != "" {
		cfg.DBPath = env
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the option ranges the schema cannot express.
func (c *Config) Validate() error {
	if c.MaxSkipRate < 0 || c.MaxSkipRate >= 1 {
		return fmt.Errorf("config: max_skip_rate %v outside [0,1)", c.MaxSkipRate)
	}
	if c.LanguageThreshold <= 0 || c.LanguageThreshold > 1 {
		return fmt.Errorf("config: language_threshold %v outside (0,1]", c.LanguageThreshold)
	}
	s := c.Summarizer
	if s.Epochs <= 0 || s.BatchSize <= 0 {
		return fmt.Errorf("config: summarizer epochs and batch_size must be positive")
	}
	if s.LearningRate <= 0 || s.LearningRate > 1 {
		return fmt.Errorf("config: summarizer learning_rate %v outside (0,1]", s.LearningRate)
	}
	if s.LRDecay < 0 || s.LRDecay >= 1 {
		return fmt.Errorf("config: summarizer lr_decay %v outside [0,1)", s.LRDecay)
	}
	if s.MaxLength <= 2 || s.MaxSummaryLength <= 2 {
		return fmt.Errorf("config: summarizer sequence lengths must exceed 2")
	}
	if s.VocabSize <= 0 || s.EmbedDim <= 0 || s.HiddenDim <= 0 {
		return fmt.Errorf("config: summarizer model dimensions must be positive")
	}
	if s.HoldoutFraction < 0 || s.HoldoutFraction >= 1 {
		return fmt.Errorf("config: summarizer holdout_fraction %v outside [0,1)", s.HoldoutFraction)
	}
	k := c.Categorizer
	if k.Strategy != "ovr" && k.Strategy != "ovo" {
		return fmt.Errorf("config: categorizer strategy %q (want ovr or ovo)", k.Strategy)
	}
	if k.Epochs <= 0 || k.EmbeddingDim <= 0 || k.MinClassSamples <= 0 {
		return fmt.Errorf("config: categorizer epochs, embedding_dim, min_class_samples must be positive")
	}
	if k.LearningRate <= 0 || k.LearningRate > 1 {
		return fmt.Errorf("config: categorizer learning_rate %v outside (0,1]", k.LearningRate)
	}
	if k.C <= 0 {
		return fmt.Errorf("config: categorizer c must be positive")
	}
	if k.HoldoutFraction <= 0 || k.HoldoutFraction >= 1 {
		return fmt.Errorf("config: categorizer holdout_fraction %v outside (0,1)", k.HoldoutFraction)
	}
	if c.Fetch.PageSize <= 0 || c.Fetch.RatePerSec <= 0 {
		return fmt.Errorf("config: fetch page_size and rate_per_sec must be positive")
	}
	return nil
}
