// Package config provides the configuration schema, loader, environment
// overlay, and generation-provider registry for the Inquiro research
// assistant.
package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Duration wraps time.Duration with YAML support for strings like "30s".
// A plain integer is interpreted as seconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var asInt int64
	if err := value.Decode(&asInt); err == nil {
		*d = Duration(time.Duration(asInt) * time.Second)
		return nil
	}

	var asString string
	if err := value.Decode(&asString); err != nil {
		return fmt.Errorf("config: duration must be a string or integer seconds: %w", err)
	}
	parsed, err := time.ParseDuration(asString)
	if err != nil {
		return fmt.Errorf("config: parse duration %q: %w", asString, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the root configuration structure for Inquiro.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader]
// and then overlaid with [ApplyEnv].
type Config struct {
	// LogLevel controls verbosity. Default: info.
	LogLevel LogLevel `yaml:"log_level"`

	Provider   ProviderConfig   `yaml:"provider"`
	Generation GenerationConfig `yaml:"generation"`
	Memory     MemoryConfig     `yaml:"memory"`
	Tools      ToolsConfig      `yaml:"tools"`
	Eval       EvalConfig       `yaml:"eval"`
}

// ProviderConfig selects the generation backend.
type ProviderConfig struct {
	// Name selects the registered provider implementation
	// (e.g., "openai", "anthropic", "mock").
	Name string `yaml:"name"`

	// Model is the provider-specific model identifier (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// APIKey is the authentication credential for the provider's API.
	// Providers that read conventional environment variables
	// (OPENAI_API_KEY, ANTHROPIC_API_KEY, …) may leave this empty.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`
}

// GenerationConfig holds sampling parameters and fallback behaviour for the
// generation service.
type GenerationConfig struct {
	// Temperature controls output randomness in [0.0, 2.0]. Default: 0.7.
	Temperature float64 `yaml:"temperature"`

	// TopP is the nucleus-sampling probability mass in (0.0, 1.0]. Default: 0.9.
	TopP float64 `yaml:"top_p"`

	// MaxOutputTokens caps completion length. Default: 1024.
	MaxOutputTokens int `yaml:"max_output_tokens"`

	// Timeout bounds a single generation call. Default: 30s.
	Timeout Duration `yaml:"timeout"`

	// DegradedConfidence is the fixed confidence assigned to fallback
	// responses. Must stay below eval.thresholds.min_confidence so degraded
	// answers are never mistaken for confident ones. Default: 0.2.
	DegradedConfidence float64 `yaml:"degraded_confidence"`
}

// MemoryConfig holds settings for the bounded conversation log.
type MemoryConfig struct {
	// WindowSize is the maximum number of retained turns. Default: 10.
	WindowSize int `yaml:"window_size"`

	// ContextTurns is how many recent turns are included in generation
	// context. Default: 5.
	ContextTurns int `yaml:"context_turns"`
}

// ToolsConfig holds settings shared by all tool invocations.
type ToolsConfig struct {
	// Timeout bounds each individual tool invocation. Default: 10s.
	Timeout Duration `yaml:"timeout"`
}

// Thresholds are the pass-criteria knobs for evaluation scoring.
type Thresholds struct {
	// MinConfidence is the minimum response confidence a case needs to pass.
	// Default: 0.5.
	MinConfidence float64 `yaml:"min_confidence"`
}

// EvalConfig holds settings for the evaluation harness.
type EvalConfig struct {
	// CaseTimeout bounds one test case's full pipeline run. Default: 30s.
	CaseTimeout Duration `yaml:"case_timeout"`

	// TestBatchSize is the number of cases per progress log line. Default: 4.
	TestBatchSize int `yaml:"test_batch_size"`

	// OutputDir is where the report and catalogue files are written.
	// Default: "evaluation_results".
	OutputDir string `yaml:"output_dir"`

	// Thresholds are the default pass criteria for all categories.
	Thresholds Thresholds `yaml:"thresholds"`

	// CategoryThresholds overrides Thresholds per category
	// ("basic", "complex", "edge-case"). Absent categories use the default.
	CategoryThresholds map[string]Thresholds `yaml:"category_thresholds"`
}

// Default returns a Config populated with all default values.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// applyDefaults fills zero-valued fields with their documented defaults.
func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = LogInfo
	}
	if cfg.Provider.Name == "" {
		cfg.Provider.Name = "mock"
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = "gpt-4o-mini"
	}
	if cfg.Generation.Temperature == 0 {
		cfg.Generation.Temperature = 0.7
	}
	if cfg.Generation.TopP == 0 {
		cfg.Generation.TopP = 0.9
	}
	if cfg.Generation.MaxOutputTokens == 0 {
		cfg.Generation.MaxOutputTokens = 1024
	}
	if cfg.Generation.Timeout == 0 {
		cfg.Generation.Timeout = Duration(30 * time.Second)
	}
	if cfg.Generation.DegradedConfidence == 0 {
		cfg.Generation.DegradedConfidence = 0.2
	}
	if cfg.Memory.WindowSize == 0 {
		cfg.Memory.WindowSize = 10
	}
	if cfg.Memory.ContextTurns == 0 {
		cfg.Memory.ContextTurns = 5
	}
	if cfg.Tools.Timeout == 0 {
		cfg.Tools.Timeout = Duration(10 * time.Second)
	}
	if cfg.Eval.CaseTimeout == 0 {
		cfg.Eval.CaseTimeout = Duration(30 * time.Second)
	}
	if cfg.Eval.TestBatchSize == 0 {
		cfg.Eval.TestBatchSize = 4
	}
	if cfg.Eval.OutputDir == "" {
		cfg.Eval.OutputDir = "evaluation_results"
	}
	if cfg.Eval.Thresholds.MinConfidence == 0 {
		cfg.Eval.Thresholds.MinConfidence = 0.5
	}
	// Edge-case scenarios exercise degraded paths, so their confidence floor
	// sits below the degraded-response constant.
	if cfg.Eval.CategoryThresholds == nil {
		cfg.Eval.CategoryThresholds = map[string]Thresholds{
			"edge-case": {MinConfidence: 0.1},
		}
	}
}

// ThresholdsFor returns the pass criteria for the given category, falling
// back to the default thresholds when no per-category override exists.
func (e EvalConfig) ThresholdsFor(category string) Thresholds {
	if t, ok := e.CategoryThresholds[category]; ok {
		return t
	}
	return e.Thresholds
}
