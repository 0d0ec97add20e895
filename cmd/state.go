package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dot/internal/claudemap"
	"dot/internal/config"
	telem "dot/internal/otel"
	"dot/internal/state"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage tmux session and window state",
}

var stateSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save current tmux layout and Claude bindings",
	Long: `Snapshot every tmux session and window, resolve tracked Claude
sessions to the windows they run in, and write the result to the state
file. Stale entries in the Claude map are garbage-collected as a side
effect.`,
	Args: cobra.NoArgs,
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

		ctx, span := t.Tracer.Start(ctx, "state.save")
		defer span.End()

		engine := newEngine(cfg)
		summary, err := engine.Save(ctx)
		if err != nil {
			return err
		}
		t.Metrics.RecordSave(ctx, summary.Windows, summary.StaleRemoved)

		fmt.Printf("State saved to %s\n", summary.Path)
		if summary.StaleRemoved > 0 {
			fmt.Printf("Cleaned %d stale Claude mapping(s)\n", summary.StaleRemoved)
		}
		return nil
	},
}

var stateLoadCmd = &cobra.Command{
	Use:   "load",
	Short: "Restore tmux layout and resume Claude sessions",
	Long: `Recreate every session and window recorded in the state file,
send a resume command into each window that had a tracked Claude
session, and switch focus back to where it was at save time.`,
	Args: cobra.NoArgs,
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

		ctx, span := t.Tracer.Start(ctx, "state.load")
		defer span.End()

		engine := newEngine(cfg)
		fmt.Println("Loading tmux window state with Claude sessions...")
		summary, err := engine.Load(ctx)
		if err != nil {
			return err
		}
		t.Metrics.RecordLoad(ctx, summary.WindowsCreated, summary.Resumed)

		fmt.Printf("State restored from %s\n", engine.Store.Path())
		return nil
	},
}

func init() {
	stateCmd.AddCommand(stateSaveCmd)
	stateCmd.AddCommand(stateLoadCmd)
	rootCmd.AddCommand(stateCmd)
}

// newEngine wires the state engine from config.
func newEngine(cfg *config.Config) *state.Engine {
	return &state.Engine{
		Mux:           getTmux(cfg),
		Map:           claudemap.NewStore(cfg.ClaudeMapFile),
		Store:         state.NewFileStore(cfg.StateFile),
		ClaudeCommand: cfg.ClaudeCommand,
	}
}

// initTelemetry sets up OTLP export when an endpoint is configured.
func initTelemetry(ctx context.Context, cfg *config.Config) (*telem.Telemetry, error) {
	telem.Version = Version
	return telem.Init(ctx, telem.OTELConfig{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
}
