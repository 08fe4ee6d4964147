package models

import "time"

// ValidationOrder is the canonical execution order for configured validation
// commands. Commands without a configured value are skipped, not failed.
var ValidationOrder = []string{"format", "lint", "test", "build"}

// AIConfig selects the LLM provider used by the generate commands.
type AIConfig struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	MaxTokens int    `json:"maxTokens"`
	APIKeyEnv string `json:"apiKeyEnv"`
}

// BranchingConfig controls how per-story branches are named and based.
type BranchingConfig struct {
	Strategy    string `json:"strategy"`
	StoryPrefix string `json:"storyPrefix"`
	BaseBranch  string `json:"baseBranch"`
}

// Config is the merged content of taskflow.config.json.
type Config struct {
	Validation map[string]string `json:"validation"`
	Branching  BranchingConfig   `json:"branching"`
	AI         AIConfig          `json:"ai"`
}

// VersionInfo is the content of .taskflow/.version, written by init and
// consulted by upgrade to avoid clobbering user-customized reference files.
type VersionInfo struct {
	TemplateVersion string    `json:"templateVersion"`
	InstalledAt     time.Time `json:"installedAt"`
	Customized      []string  `json:"customized"`
}
