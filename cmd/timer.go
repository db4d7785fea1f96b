package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/newlife/internal"
	"github.com/sadopc/newlife/internal/structures"
	"github.com/sadopc/newlife/internal/timecalc"
)

func newTimerCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "timer <checkin-id>",
		Short: "Start or stop a check-in's timer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *internal.App) error {
				c, err := app.Service.ToggleTimer(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if c.Running() {
					fmt.Fprintf(cmd.OutOrStdout(), "Timer started for %q at %s\n", c.Text, c.TimerActiveSince.Local().Format("15:04:05"))
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Timer stopped for %q, total %s\n", c.Text, timecalc.FormatDuration(c.DurationSeconds, false))
				}
				return nil
			})
		},
	}
}
