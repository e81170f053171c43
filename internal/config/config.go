package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Retrieval modes. Similarity is the ranked vector search path; all is the
// kill-switch that feeds every entity of the category into the prompt;
// random samples top-k entities without ranking.
const (
	ModeSimilarity = "similarity"
	ModeAll        = "all"
	ModeRandom     = "random"
)

type Config struct {
	Project   string               `yaml:"project"`
	Version   int                  `yaml:"version"`
	Database  string               `yaml:"database"`
	Server    ServerConfig         `yaml:"server"`
	Model     ModelConfig          `yaml:"model"`
	Retrieval map[string]Retrieval `yaml:"retrieval"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type ModelConfig struct {
	ChatModel       string  `yaml:"chat_model"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	AnalysisModel   string  `yaml:"analysis_model"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
}

// Retrieval holds one category's tunables. Zero values mean "use default".
type Retrieval struct {
	TopK      int     `yaml:"top_k"`
	Threshold float64 `yaml:"threshold"`
	Mode      string  `yaml:"mode"`
}

const (
	defaultTopK      = 5
	defaultRulesTopK = 10
	defaultThreshold = 0.65
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	return &cfg, nil
}

// RetrievalFor returns the effective tunables for one category. Rules get a
// deeper default cut than the other categories because several rules tend to
// bear on any one action.
func (c *Config) RetrievalFor(category string) Retrieval {
	r := c.Retrieval[category]
	if r.TopK == 0 {
		if category == "rules" {
			r.TopK = defaultRulesTopK
		} else {
			r.TopK = defaultTopK
		}
	}
	if r.Threshold == 0 {
		r.Threshold = defaultThreshold
	}
	if r.Mode == "" {
		r.Mode = ModeSimilarity
	}
	return r
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Model.ChatModel == "" {
		cfg.Model.ChatModel = "gemini-2.5-pro"
	}
	if cfg.Model.EmbeddingModel == "" {
		cfg.Model.EmbeddingModel = "gemini-embedding-001"
	}
	if cfg.Model.AnalysisModel == "" {
		cfg.Model.AnalysisModel = cfg.Model.ChatModel
	}
	if cfg.Model.Temperature == 0 {
		cfg.Model.Temperature = 0.8
	}
	if cfg.Model.MaxOutputTokens == 0 {
		cfg.Model.MaxOutputTokens = 1000
	}
}

func validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Project) == "" {
		return fmt.Errorf("project name is required")
	}
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported version: %d", cfg.Version)
	}
	if strings.TrimSpace(cfg.Database) == "" {
		return fmt.Errorf("database DSN is required")
	}
	if !strings.HasPrefix(cfg.Database, "postgres://") &&
		!strings.HasPrefix(cfg.Database, "postgresql://") &&
		!strings.HasPrefix(cfg.Database, "sqlite://") {
		return fmt.Errorf("unsupported database DSN scheme: %s", cfg.Database)
	}
	if cfg.Model.Temperature < 0 || cfg.Model.Temperature > 2 {
		return fmt.Errorf("model temperature must be in [0, 2]")
	}
	if cfg.Model.MaxOutputTokens < 1 {
		return fmt.Errorf("model max_output_tokens must be positive")
	}
	for name, r := range cfg.Retrieval {
		if !knownCategory(name) {
			return fmt.Errorf("unknown retrieval category: %s", name)
		}
		if r.TopK < 0 {
			return fmt.Errorf("retrieval %s: top_k must not be negative", name)
		}
		if r.Threshold < 0 || r.Threshold > 1 {
			return fmt.Errorf("retrieval %s: threshold must be in [0, 1]", name)
		}
		switch r.Mode {
		case "", ModeSimilarity, ModeAll, ModeRandom:
		default:
			return fmt.Errorf("retrieval %s: unknown mode: %s", name, r.Mode)
		}
	}
	return nil
}

func knownCategory(name string) bool {
	switch name {
	case "items", "locations", "abilities", "npcs", "organizations", "taxonomies", "rules":
		return true
	}
	return false
}
