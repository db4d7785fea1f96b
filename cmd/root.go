package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sadopc/newlife/internal"
	"github.com/sadopc/newlife/internal/di"
	"github.com/sadopc/newlife/internal/structures"
	"github.com/sadopc/newlife/internal/tui"
)

// NewRootCmd builds the command tree. Running it without a subcommand opens
// the terminal UI.
func NewRootCmd() *cobra.Command {
	flags := &structures.CliFlags{}

	root := &cobra.Command{
		Use:   "newlife",
		Short: "newlife – a day counter, habit log and timeline for a fresh start",
		Long: `newlife tracks daily check-ins against your projects, counts the days
since the event that started it all and keeps a short journal per day.
Free-text logs can be sorted into projects automatically by Gemini.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *internal.App) error {
				p := tea.NewProgram(tui.NewApp(app.Service, app.Gateway.Enabled()), tea.WithAltScreen(), tea.WithMouseCellMotion())
				_, err := p.Run()
				return err
			})
		},
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "Config file (default ~/.config/newlife/config.yaml)")
	root.PersistentFlags().BoolVar(&flags.DebugMode, "debug", false, "Log at debug level")

	root.AddCommand(
		newLogCmd(flags),
		newProjectsCmd(flags),
		newTimerCmd(flags),
		newJournalCmd(flags),
		newExportCmd(flags),
		newSuggestCmd(flags),
		newResetCmd(flags),
	)
	return root
}

// Execute is the entry point called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func withApp(flags *structures.CliFlags, fn func(app *internal.App) error) error {
	app, cleanup, err := di.InitApp(flags)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(app)
}
