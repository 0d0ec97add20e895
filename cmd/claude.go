package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"dot/internal/claudemap"
)

var claudeStartCmd = &cobra.Command{
	Use:   "claude-start [claude args...]",
	Short: "Start Claude with session tracking for tmux state management",
	Long: `Launch Claude with a fresh session id and record which tmux pane it
runs in, so that "dot state save" can bind the session to its window and
"dot state load" can resume it there.

All arguments are passed through to the claude binary.`,
	DisableFlagParsing: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("TMUX") == "" {
			return fmt.Errorf("must be run from within a tmux session")
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		session, window, paneID, err := getTmux(cfg).CurrentPane(cmd.Context())
		if err != nil {
			return fmt.Errorf("getting tmux info: %w", err)
		}

		id := uuid.NewString()
		fmt.Printf("Starting Claude in %s:%s (pane %s) with session ID: %s\n",
			session, window, paneID, id)

		if err := claudemap.NewStore(cfg.ClaudeMapFile).Upsert(session, paneID, id); err != nil {
			return err
		}

		bin, err := exec.LookPath(cfg.ClaudeCommand)
		if err != nil {
			return fmt.Errorf("%s not found. Make sure Claude Code is installed", cfg.ClaudeCommand)
		}
		argv := append([]string{bin, "--session-id", id}, args...)
		return syscall.Exec(bin, argv, os.Environ())
	},
}

func init() {
	rootCmd.AddCommand(claudeStartCmd)
}
