// Command inquiro is the research assistant CLI: single-shot queries, an
// interactive session loop, and the evaluation harness.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/spf13/cobra"

	"github.com/MrWong99/inquiro/internal/agent"
	"github.com/MrWong99/inquiro/internal/config"
	"github.com/MrWong99/inquiro/internal/health"
	"github.com/MrWong99/inquiro/internal/observe"
	"github.com/MrWong99/inquiro/internal/tool"
	"github.com/MrWong99/inquiro/internal/tool/knowledgebase"
	"github.com/MrWong99/inquiro/internal/tool/websearch"
	"github.com/MrWong99/inquiro/pkg/provider/llm"
	"github.com/MrWong99/inquiro/pkg/provider/llm/anyllm"
	"github.com/MrWong99/inquiro/pkg/provider/llm/offline"
	"github.com/MrWong99/inquiro/pkg/provider/llm/openai"
)

// Flag values shared by all subcommands.
var (
	configPath   string
	providerName string
	modelName    string
	apiKey       string
	temperature  float64
	topP         float64
	memoryWindow int
	toolTimeout  time.Duration
	caseTimeout  time.Duration
	metricsAddr  string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "inquiro: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "inquiro",
		Short:         "Conversational research assistant with tool-backed answers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to the YAML configuration file")
	pf.StringVar(&providerName, "provider", "", "generation provider (openai, anthropic, ollama, mock, …)")
	pf.StringVar(&modelName, "model", "", "generation model identifier")
	pf.StringVar(&apiKey, "api-key", "", "API credential for the generation provider")
	pf.Float64Var(&temperature, "temperature", 0, "sampling temperature override")
	pf.Float64Var(&topP, "top-p", 0, "nucleus sampling override")
	pf.IntVar(&memoryWindow, "memory-window", 0, "conversation memory window size override")
	pf.DurationVar(&toolTimeout, "tool-timeout", 0, "per-tool invocation timeout override")
	pf.DurationVar(&caseTimeout, "case-timeout", 0, "per-test-case timeout override for evaluate")
	pf.StringVar(&metricsAddr, "metrics-addr", "", "listen address for /metrics and health probes (disabled when empty)")

	root.AddCommand(newQueryCmd())
	root.AddCommand(newInteractiveCmd())
	root.AddCommand(newEvaluateCmd())
	return root
}

// loadConfig builds the effective configuration: optional .env file, then
// the YAML file (when given), then INQUIRO_* environment variables, then
// command-line flag overrides.
func loadConfig() (*config.Config, error) {
	// A missing .env file is not an error; it is purely a convenience.
	_ = godotenv.Load()

	var cfg *config.Config
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.Default()
		config.ApplyEnv(cfg)
	}

	if providerName != "" {
		cfg.Provider.Name = providerName
	}
	if modelName != "" {
		cfg.Provider.Model = modelName
	}
	if apiKey != "" {
		cfg.Provider.APIKey = apiKey
	}
	if temperature != 0 {
		cfg.Generation.Temperature = temperature
	}
	if topP != 0 {
		cfg.Generation.TopP = topP
	}
	if memoryWindow != 0 {
		cfg.Memory.WindowSize = memoryWindow
	}
	if toolTimeout != 0 {
		cfg.Tools.Timeout = config.Duration(toolTimeout)
	}
	if caseTimeout != 0 {
		cfg.Eval.CaseTimeout = config.Duration(caseTimeout)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.SetDefault(newLogger(cfg.LogLevel))
	return cfg, nil
}

// runtime bundles everything a subcommand needs to build agent sessions.
type runtime struct {
	cfg      *config.Config
	provider llm.Provider
	registry *tool.Registry
	metrics  *observe.Metrics
	shutdown func(context.Context) error
}

// setup loads configuration and wires providers, tools, and metrics.
func setup(ctx context.Context) (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	shutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{})
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	metrics := observe.DefaultMetrics()

	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	provider, err := reg.CreateLLM(cfg.Provider)
	if err != nil {
		if errors.Is(err, config.ErrProviderNotRegistered) {
			return nil, fmt.Errorf("unknown provider %q", cfg.Provider.Name)
		}
		return nil, fmt.Errorf("create provider %q: %w", cfg.Provider.Name, err)
	}
	slog.Info("provider created", "name", cfg.Provider.Name, "model", cfg.Provider.Model)

	registry, err := buildToolRegistry()
	if err != nil {
		return nil, err
	}

	if metricsAddr != "" {
		handler := health.New(health.Checker{
			Name: "tools",
			Check: func(context.Context) error {
				if len(registry.IDs()) == 0 {
					return errors.New("no tools registered")
				}
				return nil
			},
		})
		go func() {
			if err := health.Serve(ctx, metricsAddr, handler); err != nil {
				slog.Error("ops server stopped", "error", err)
			}
		}()
	}

	return &runtime{
		cfg:      cfg,
		provider: provider,
		registry: registry,
		metrics:  metrics,
		shutdown: shutdown,
	}, nil
}

// newSession builds a fresh agent with its own conversation memory.
func (rt *runtime) newSession() *agent.Agent {
	return agent.New(rt.cfg, rt.provider, rt.registry, rt.metrics)
}

// buildToolRegistry wires the built-in research tools with their capabilities.
func buildToolRegistry() (*tool.Registry, error) {
	reg := tool.NewRegistry()
	if err := reg.Register(websearch.New(), tool.CapabilityCurrentEvents); err != nil {
		return nil, fmt.Errorf("register web search: %w", err)
	}
	if err := reg.Register(knowledgebase.New(), tool.CapabilityGeneralKnowledge); err != nil {
		return nil, fmt.Errorf("register knowledge base: %w", err)
	}
	return reg, nil
}

// registerBuiltinProviders wires all built-in generation backends into reg.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterLLM("mock", func(config.ProviderConfig) (llm.Provider, error) {
		return offline.New(), nil
	})

	reg.RegisterLLM("openai", func(pc config.ProviderConfig) (llm.Provider, error) {
		key := pc.APIKey
		if key == "" {
			key = os.Getenv("OPENAI_API_KEY")
		}
		var opts []openai.Option
		if pc.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(pc.BaseURL))
		}
		return openai.New(key, pc.Model, opts...)
	})

	// The remaining hosted backends share the any-llm pattern:
	// optional APIKey plus optional BaseURL.
	for _, name := range []string{
		"anthropic", "gemini", "deepseek", "mistral", "groq", "llamacpp", "llamafile",
	} {
		backend := name
		reg.RegisterLLM(backend, func(pc config.ProviderConfig) (llm.Provider, error) {
			var opts []anyllmlib.Option
			if pc.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(pc.APIKey))
			}
			if pc.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(pc.BaseURL))
			}
			return anyllm.New(backend, pc.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterLLM("ollama", func(pc config.ProviderConfig) (llm.Provider, error) {
		var opts []anyllmlib.Option
		if pc.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(pc.BaseURL))
		}
		return anyllm.New("ollama", pc.Model, opts...)
	})
}

func printStartupSummary(cfg *config.Config) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         Inquiro — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	fmt.Printf("║  Provider        : %-19s║\n", cfg.Provider.Name)
	fmt.Printf("║  Model           : %-19s║\n", cfg.Provider.Model)
	fmt.Printf("║  Memory window   : %-19d║\n", cfg.Memory.WindowSize)
	fmt.Printf("║  Tool timeout    : %-19s║\n", cfg.Tools.Timeout.Std())
	fmt.Printf("║  Log level       : %-19s║\n", cfg.LogLevel)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
