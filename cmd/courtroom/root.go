package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/satyavak/courtroom-core/core/courtroom"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	envFile  string
	provider string
	scenario string
	role     string
	theme    string
	input    string
	muted    bool
	narrate  bool
}

func newRootCmd() *cobra.Command {
	flags := rootFlags{}

	cmd := &cobra.Command{
		Use:   "courtroom",
		Short: "Argue a case in front of an AI judge",
		Long: `Courtroom stages a hearing between you and an AI opposing counsel,
presided over by an AI judge. Pick a case and a side, make your arguments
by typing or speaking, and hear the verdict.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file read before the environment")
	cmd.Flags().StringVar(&flags.provider, "provider", "", "court gateway: groq, openai or remote (overrides COURTROOM_LLM_PROVIDER)")
	cmd.Flags().StringVar(&flags.scenario, "scenario", "", "scenario key to open directly")
	cmd.Flags().StringVar(&flags.role, "role", "", "your side: defense or prosecution")
	cmd.Flags().StringVar(&flags.theme, "theme", "", "courtroom theme key")
	cmd.Flags().StringVar(&flags.input, "input", "", "input method: text or voice")
	cmd.Flags().BoolVar(&flags.muted, "muted", false, "start with sound off")
	cmd.Flags().BoolVar(&flags.narrate, "narrate", false, "speak court turns aloud")

	return cmd
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command, flags rootFlags, cfg Config) (Config, error) {
	if cmd.Flags().Changed("provider") {
		cfg.LLMProvider = flags.provider
	}
	if cmd.Flags().Changed("muted") {
		cfg.Muted = flags.muted
	}
	if cmd.Flags().Changed("narrate") {
		cfg.Narrate = flags.narrate
	}
	return cfg, cfg.Validate()
}

func (f rootFlags) preselection() preselection {
	return preselection{
		scenario: f.scenario,
		role:     courtroom.Speaker(f.role),
		theme:    f.theme,
		input:    courtroom.InputMode(f.input),
	}
}

func run(ctx context.Context, cmd *cobra.Command, flags rootFlags) (err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(flags.envFile)
	if err != nil {
		return err
	}
	if cfg, err = applyFlags(cmd, flags, cfg); err != nil {
		return err
	}

	shutdown, err := setupTelemetry(ctx, cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		err = errors.Join(err, shutdown(context.Background()))
	}()

	engine, err := newEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, engine.Close())
	}()

	program := tea.NewProgram(
		newModel(engine.orchestrator, engine.setMuted, flags.preselection()),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	engine.forwarder.attach(program)

	_, err = program.Run()
	engine.forwarder.attach(nil)
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
