package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storyloom.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `project: test
version: 1
database: postgres://localhost/storyloom
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("server addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Model.Temperature != 0.8 {
		t.Errorf("temperature = %v, want 0.8", cfg.Model.Temperature)
	}
	if cfg.Model.MaxOutputTokens != 1000 {
		t.Errorf("max_output_tokens = %d, want 1000", cfg.Model.MaxOutputTokens)
	}
	if cfg.Model.AnalysisModel != cfg.Model.ChatModel {
		t.Errorf("analysis model should default to chat model")
	}
}

func TestRetrievalFor_Defaults(t *testing.T) {
	path := writeConfig(t, `project: test
version: 1
database: postgres://localhost/storyloom
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	items := cfg.RetrievalFor("items")
	if items.TopK != 5 || items.Threshold != 0.65 || items.Mode != ModeSimilarity {
		t.Errorf("items retrieval = %+v, want top_k=5 threshold=0.65 mode=similarity", items)
	}

	rules := cfg.RetrievalFor("rules")
	if rules.TopK != 10 {
		t.Errorf("rules top_k = %d, want 10", rules.TopK)
	}
}

func TestRetrievalFor_Overrides(t *testing.T) {
	path := writeConfig(t, `project: test
version: 1
database: postgres://localhost/storyloom
retrieval:
  npcs:
    top_k: 3
    threshold: 0.8
  locations:
    mode: all
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	npcs := cfg.RetrievalFor("npcs")
	if npcs.TopK != 3 || npcs.Threshold != 0.8 {
		t.Errorf("npcs retrieval = %+v, want top_k=3 threshold=0.8", npcs)
	}

	locations := cfg.RetrievalFor("locations")
	if locations.Mode != ModeAll {
		t.Errorf("locations mode = %q, want all", locations.Mode)
	}
	if locations.TopK != 5 {
		t.Errorf("locations top_k = %d, want default 5", locations.TopK)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"missing project", "version: 1\ndatabase: postgres://x\n"},
		{"bad version", "project: t\nversion: 2\ndatabase: postgres://x\n"},
		{"missing database", "project: t\nversion: 1\n"},
		{"bad dsn scheme", "project: t\nversion: 1\ndatabase: mysql://x\n"},
		{"unknown category", "project: t\nversion: 1\ndatabase: postgres://x\nretrieval:\n  spells:\n    top_k: 5\n"},
		{"bad threshold", "project: t\nversion: 1\ndatabase: postgres://x\nretrieval:\n  items:\n    threshold: 1.5\n"},
		{"bad mode", "project: t\nversion: 1\ndatabase: postgres://x\nretrieval:\n  items:\n    mode: fuzzy\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.contents)
			if _, err := Load(path); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}
