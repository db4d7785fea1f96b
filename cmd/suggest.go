package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/newlife/internal"
	"github.com/sadopc/newlife/internal/structures"
)

func newSuggestCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest",
		Short: "Ask for a few check-in ideas for today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *internal.App) error {
				out := cmd.OutOrStdout()
				st := app.Service.State()
				fmt.Fprintf(out, "Day %d since %s\n", st.DayNumber(app.Service.Now()), st.Settings.EventName)

				ideas := app.Service.Suggest(cmd.Context())
				if len(ideas) == 0 {
					fmt.Fprintln(out, "No suggestions available.")
					return nil
				}
				for _, s := range ideas {
					fmt.Fprintf(out, "  • %s: %s\n", s.ProjectName, s.Action)
				}
				return nil
			})
		},
	}
}
