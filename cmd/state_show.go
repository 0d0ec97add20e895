package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dot/internal/state"
	"dot/internal/statetui"
)

var stateShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Browse the saved tmux state interactively",
	Long: `Open an interactive view of the saved snapshot: sessions, their
windows, and which windows had tracked Claude sessions. Enter switches
the attached tmux client to the selection.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		st, err := state.NewFileStore(cfg.StateFile).Load()
		if err != nil {
			return err
		}

		p := tea.NewProgram(statetui.New(st, getTmux(cfg)))
		_, err = p.Run()
		return err
	},
}

func init() {
	stateCmd.AddCommand(stateShowCmd)
}
