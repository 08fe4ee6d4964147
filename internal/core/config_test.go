package core

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, "taskflow.config.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingConfigReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := NewConfigLoader(dir).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Branching.BaseBranch != "main" {
		t.Errorf("expected default base branch, got %q", cfg.Branching.BaseBranch)
	}
	if cfg.Validation["test"] != "npm test" {
		t.Errorf("expected default test command, got %q", cfg.Validation["test"])
	}
	if cfg.AI.Provider != "anthropic" {
		t.Errorf("expected default provider, got %q", cfg.AI.Provider)
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{
  "validation": {"test": "go test ./...", "lint": ""},
  "branching": {"baseBranch": "develop"},
  "ai": {"provider": "none"}
}`)

	cfg, err := NewConfigLoader(dir).Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Validation["test"] != "go test ./..." {
		t.Errorf("test command not overlaid: %q", cfg.Validation["test"])
	}
	// An explicit validation block replaces the defaults wholesale.
	if _, ok := cfg.Validation["build"]; ok {
		t.Error("default build command should not survive an explicit validation block")
	}
	if cfg.Branching.BaseBranch != "develop" {
		t.Errorf("base branch not overlaid: %q", cfg.Branching.BaseBranch)
	}
	if cfg.Branching.Strategy != "story" {
		t.Errorf("missing keys should keep defaults, got %q", cfg.Branching.Strategy)
	}
	if cfg.AI.Provider != "none" {
		t.Errorf("provider not overlaid: %q", cfg.AI.Provider)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"branching": {"strategy": "rebase-everything"}}`)

	if _, err := NewConfigLoader(dir).Load(); err == nil {
		t.Fatal("expected validation error for unknown strategy")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{"validation": `)

	if _, err := NewConfigLoader(dir).Load(); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
