package core

import (
	"fmt"
	"strings"

	"github.com/krr2020/taskflow-ai-sub003/pkg/models"
	"github.com/spf13/viper"
)

// ConfigLoader reads and validates the project configuration from
// taskflow.config.json at the project root.
type ConfigLoader interface {
	Load() (*models.Config, error)
	Validate(cfg *models.Config) error
}

// viperConfigLoader implements ConfigLoader using Viper for reading the JSON
// configuration file.
type viperConfigLoader struct {
	// basePath is the project root where taskflow.config.json resides.
	basePath string
}

// NewConfigLoader creates a ConfigLoader that reads configuration relative
// to basePath.
func NewConfigLoader(basePath string) ConfigLoader {
	return &viperConfigLoader{basePath: basePath}
}

// DefaultConfig returns a Config populated with sensible defaults for a
// TypeScript project, matching what 'taskflow init' writes.
func DefaultConfig() *models.Config {
	return &models.Config{
		Validation: map[string]string{
			"format": "npm run format:check",
			"lint":   "npm run lint",
			"test":   "npm test",
			"build":  "npm run build",
		},
		Branching: models.BranchingConfig{
			Strategy:    "story",
			StoryPrefix: "story/",
			BaseBranch:  "main",
		},
		AI: models.AIConfig{
			Provider:  "anthropic",
			Model:     "claude-3-5-haiku-latest",
			MaxTokens: 4096,
			APIKeyEnv: "ANTHROPIC_API_KEY",
		},
	}
}

// Load reads taskflow.config.json from the base path. A missing file yields
// the defaults; a present file overlays them key by key.
func (cl *viperConfigLoader) Load() (*models.Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("taskflow.config")
	v.SetConfigType("json")
	v.AddConfigPath(cl.basePath)

	// Viper defaults so partially-written config files fall back gracefully.
	v.SetDefault("branching.strategy", cfg.Branching.Strategy)
	v.SetDefault("branching.storyPrefix", cfg.Branching.StoryPrefix)
	v.SetDefault("branching.baseBranch", cfg.Branching.BaseBranch)
	v.SetDefault("ai.provider", cfg.AI.Provider)
	v.SetDefault("ai.model", cfg.AI.Model)
	v.SetDefault("ai.maxTokens", cfg.AI.MaxTokens)
	v.SetDefault("ai.apiKeyEnv", cfg.AI.APIKeyEnv)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading taskflow.config.json: %w", err)
	}

	// The validation block replaces the defaults wholesale when present:
	// an explicitly empty command means "skip this check", so merging the
	// defaults back in would resurrect checks the user disabled.
	if v.IsSet("validation") {
		cfg.Validation = v.GetStringMapString("validation")
	}
	cfg.Branching.Strategy = v.GetString("branching.strategy")
	cfg.Branching.StoryPrefix = v.GetString("branching.storyPrefix")
	cfg.Branching.BaseBranch = v.GetString("branching.baseBranch")
	cfg.AI.Provider = v.GetString("ai.provider")
	cfg.AI.Model = v.GetString("ai.model")
	cfg.AI.MaxTokens = v.GetInt("ai.maxTokens")
	cfg.AI.APIKeyEnv = v.GetString("ai.apiKeyEnv")

	if err := cl.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks a Config for invalid field values and returns a clear
// error naming every problem found.
func (cl *viperConfigLoader) Validate(cfg *models.Config) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if cfg.Branching.Strategy != "story" && cfg.Branching.Strategy != "trunk" {
		errs = append(errs, fmt.Sprintf(
			"branching.strategy %q is invalid, must be one of: story, trunk",
			cfg.Branching.Strategy,
		))
	}
	if cfg.Branching.BaseBranch == "" {
		errs = append(errs, "branching.baseBranch must not be empty")
	}
	if cfg.AI.MaxTokens <= 0 {
		errs = append(errs, fmt.Sprintf(
			"ai.maxTokens must be positive, got %d", cfg.AI.MaxTokens,
		))
	}
	if cfg.AI.Provider != "" && cfg.AI.Provider != "anthropic" && cfg.AI.Provider != "none" {
		errs = append(errs, fmt.Sprintf(
			"ai.provider %q is invalid, must be one of: anthropic, none",
			cfg.AI.Provider,
		))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
