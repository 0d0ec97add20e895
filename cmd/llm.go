package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"dot/internal/llm"
)

var (
	flagCodeMode    string
	flagCodeMessage string
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "LLM-assisted coding helpers",
}

var llmCodeCmd = &cobra.Command{
	Use:   "code <file>...",
	Short: "Generate a refactoring plan or code changes for the given files",
	Long: `Send the given files plus your objectives to the configured LLM and
write the answer to a markdown file named after the objectives.

Objectives come from --message, or from your $EDITOR (git-commit style:
lines starting with '#' are ignored, an empty message aborts).`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		t, err := initTelemetry(ctx, cfg)
		if err != nil {
			return err
		}
		defer t.Shutdown(context.WithoutCancel(ctx))

		gen, err := getGenerator(cfg)
		if err != nil {
			return err
		}

		objectives := strings.TrimSpace(flagCodeMessage)
		if objectives == "" {
			objectives, err = editObjectives()
			if err != nil {
				return err
			}
		}
		if objectives == "" {
			return fmt.Errorf("aborting: empty objectives")
		}

		prompt, err := llm.BuildCodePrompt(args, flagCodeMode, objectives)
		if err != nil {
			return err
		}

		text, usage, err := gen.Generate(ctx, prompt)
		if err != nil {
			return err
		}
		t.Metrics.RecordTokens(ctx, gen.Provider(), gen.Model(), usage.InputTokens, usage.OutputTokens)

		name := llm.GenerateFilename(ctx, gen, objectives)
		if err := os.WriteFile(name, []byte(text+"\n"), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		fmt.Printf("Wrote %s (%d input / %d output tokens)\n", name, usage.InputTokens, usage.OutputTokens)
		return nil
	},
}

// editObjectives opens $EDITOR on a commented template and returns the
// uncommented content, git-commit style.
func editObjectives() (string, error) {
	template := `
# Please enter your refactoring objectives and instructions.
# Lines starting with '#' will be ignored.
# An empty message aborts the operation.
#
# Describe what you want to accomplish with the selected files:
# - What should be refactored?
# - What are the specific goals?
# - Any constraints or requirements?
`
	f, err := os.CreateTemp("", "dot-objectives-*.md")
	if err != nil {
		return "", err
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.WriteString(template); err != nil {
		f.Close()
		return "", err
	}
	f.Close()

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vim"
	}
	edit := exec.Command(editor, path)
	edit.Stdin = os.Stdin
	edit.Stdout = os.Stdout
	edit.Stderr = os.Stderr
	if err := edit.Run(); err != nil {
		return "", fmt.Errorf("editor: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

func init() {
	llmCodeCmd.Flags().StringVar(&flagCodeMode, "mode", "plan", "what to generate: plan, develop")
	llmCodeCmd.Flags().StringVarP(&flagCodeMessage, "message", "m", "", "objectives (skips the editor)")
	llmCmd.AddCommand(llmCodeCmd)
	rootCmd.AddCommand(llmCmd)
}
