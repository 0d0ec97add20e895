package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dot/internal/config"
	"dot/internal/llm"
	"dot/internal/tmux"
)

// Version is injected by the linker at release time.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "dot",
	Short: "Personal productivity toolkit",
	Long: `dot is a personal productivity toolkit: tmux session state capture
and restore (including tracked Claude sessions), Claude session tracking,
and LLM-assisted code planning.

Configuration is loaded from .dot.yaml, ~/.config/dot/config.yaml, or
DOT_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig loads the merged file + env configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// getTmux returns a tmux client for the configured binary.
func getTmux(cfg *config.Config) *tmux.Client {
	return tmux.NewClient(cfg.TmuxBinary)
}

// getGenerator returns the configured LLM generator.
func getGenerator(cfg *config.Config) (llm.Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key found. Set DOT_API_KEY, ANTHROPIC_API_KEY, or OPENAI_API_KEY")
	}
	switch cfg.Provider {
	case "anthropic":
		return llm.NewAnthropicGenerator(llm.AnthropicConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		}), nil
	case "openai":
		return llm.NewOpenAIGenerator(llm.OpenAIConfig{
			BaseURL:   cfg.BaseURL,
			APIKey:    cfg.APIKey,
			Model:     cfg.Model,
			MaxTokens: cfg.MaxTokens,
		}), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (supported: anthropic, openai)", cfg.Provider)
	}
}
