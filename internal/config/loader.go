package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads, decodes, defaults, and validates the YAML configuration file
// at path. Environment variables prefixed INQUIRO_ override file values.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return LoadFromReader(f)
}

// LoadFromReader decodes a Config from r, applies defaults and the
// environment overlay, and validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: decode: %w", err)
	}

	ApplyEnv(cfg)
	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays INQUIRO_-prefixed environment variables onto cfg.
// Unset variables leave the corresponding field untouched; malformed
// numeric or duration values are ignored.
func ApplyEnv(cfg *Config) {
	setString(&cfg.Provider.Name, "INQUIRO_LLM_PROVIDER")
	setString(&cfg.Provider.Model, "INQUIRO_LLM_MODEL")
	setString(&cfg.Provider.APIKey, "INQUIRO_API_KEY")
	setString(&cfg.Provider.BaseURL, "INQUIRO_BASE_URL")
	setFloat(&cfg.Generation.Temperature, "INQUIRO_TEMPERATURE")
	setFloat(&cfg.Generation.TopP, "INQUIRO_TOP_P")
	setInt(&cfg.Generation.MaxOutputTokens, "INQUIRO_MAX_OUTPUT_TOKENS")
	setDuration(&cfg.Generation.Timeout, "INQUIRO_GENERATION_TIMEOUT")
	setFloat(&cfg.Generation.DegradedConfidence, "INQUIRO_DEGRADED_CONFIDENCE")
	setInt(&cfg.Memory.WindowSize, "INQUIRO_MEMORY_WINDOW")
	setInt(&cfg.Memory.ContextTurns, "INQUIRO_CONTEXT_TURNS")
	setDuration(&cfg.Tools.Timeout, "INQUIRO_TOOL_TIMEOUT")
	setDuration(&cfg.Eval.CaseTimeout, "INQUIRO_EVALUATION_TIMEOUT")
	setInt(&cfg.Eval.TestBatchSize, "INQUIRO_TEST_BATCH_SIZE")
	setString(&cfg.Eval.OutputDir, "INQUIRO_EVAL_OUTPUT_DIR")
	if v := os.Getenv("INQUIRO_LOG_LEVEL"); v != "" {
		cfg.LogLevel = LogLevel(v)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// conventionalKeyEnv maps provider names to the environment variable their
// SDK reads credentials from when no explicit api_key is configured.
var conventionalKeyEnv = map[string]string{
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
	"gemini":    "GEMINI_API_KEY",
	"deepseek":  "DEEPSEEK_API_KEY",
	"mistral":   "MISTRAL_API_KEY",
	"groq":      "GROQ_API_KEY",
}

// credentialFreeProviders run locally or are deterministic, so they need no
// API key at all.
var credentialFreeProviders = map[string]bool{
	"mock":      true,
	"ollama":    true,
	"llamacpp":  true,
	"llamafile": true,
}

// Validate checks the configuration for invalid or inconsistent values.
// All problems found are joined into a single error.
func (c *Config) Validate() error {
	var errs []error

	if !c.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel))
	}
	if c.Provider.Name == "" {
		errs = append(errs, errors.New("provider.name must be set"))
	}
	if c.Provider.Model == "" {
		errs = append(errs, errors.New("provider.model must be set"))
	}
	if !credentialFreeProviders[c.Provider.Name] && c.Provider.APIKey == "" {
		envKey, known := conventionalKeyEnv[c.Provider.Name]
		if !known || os.Getenv(envKey) == "" {
			errs = append(errs, fmt.Errorf("provider.api_key must be set for provider %q (or export %s)", c.Provider.Name, envKeyOr(envKey, "the provider's API key variable")))
		}
	}
	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		errs = append(errs, fmt.Errorf("generation.temperature %v must be in [0.0, 2.0]", c.Generation.Temperature))
	}
	if c.Generation.TopP <= 0 || c.Generation.TopP > 1 {
		errs = append(errs, fmt.Errorf("generation.top_p %v must be in (0.0, 1.0]", c.Generation.TopP))
	}
	if c.Generation.MaxOutputTokens <= 0 {
		errs = append(errs, fmt.Errorf("generation.max_output_tokens %d must be positive", c.Generation.MaxOutputTokens))
	}
	if c.Generation.Timeout <= 0 {
		errs = append(errs, errors.New("generation.timeout must be positive"))
	}
	if c.Generation.DegradedConfidence < 0 || c.Generation.DegradedConfidence > 1 {
		errs = append(errs, fmt.Errorf("generation.degraded_confidence %v must be in [0.0, 1.0]", c.Generation.DegradedConfidence))
	}
	if c.Memory.WindowSize <= 0 {
		errs = append(errs, fmt.Errorf("memory.window_size %d must be positive", c.Memory.WindowSize))
	}
	if c.Memory.ContextTurns < 0 {
		errs = append(errs, fmt.Errorf("memory.context_turns %d must not be negative", c.Memory.ContextTurns))
	}
	if c.Tools.Timeout <= 0 {
		errs = append(errs, errors.New("tools.timeout must be positive"))
	}
	if c.Eval.CaseTimeout <= 0 {
		errs = append(errs, errors.New("eval.case_timeout must be positive"))
	}
	if c.Eval.TestBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("eval.test_batch_size %d must be positive", c.Eval.TestBatchSize))
	}
	if err := validateThresholds("eval.thresholds", c.Eval.Thresholds); err != nil {
		errs = append(errs, err)
	}
	for category, t := range c.Eval.CategoryThresholds {
		switch category {
		case "basic", "complex", "edge-case":
		default:
			errs = append(errs, fmt.Errorf("eval.category_thresholds: unknown category %q", category))
		}
		if err := validateThresholds("eval.category_thresholds."+category, t); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Generation.DegradedConfidence >= c.Eval.Thresholds.MinConfidence {
		errs = append(errs, fmt.Errorf("generation.degraded_confidence %v must be below eval.thresholds.min_confidence %v",
			c.Generation.DegradedConfidence, c.Eval.Thresholds.MinConfidence))
	}

	return errors.Join(errs...)
}

func validateThresholds(prefix string, t Thresholds) error {
	if t.MinConfidence < 0 || t.MinConfidence > 1 {
		return fmt.Errorf("%s.min_confidence %v must be in [0.0, 1.0]", prefix, t.MinConfidence)
	}
	return nil
}

func envKeyOr(key, fallback string) string {
	if key == "" {
		return fallback
	}
	return key
}
