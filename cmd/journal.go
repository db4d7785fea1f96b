package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/sadopc/newlife/internal"
	"github.com/sadopc/newlife/internal/structures"
	"github.com/sadopc/newlife/internal/timecalc"
)

func newJournalCmd(flags *structures.CliFlags) *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "journal [content...]",
		Short: "Write (or show) the journal entry for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *internal.App) error {
				day := date
				if day == "" {
					day = timecalc.Today(app.Service.Now())
				}
				out := cmd.OutOrStdout()

				if len(args) == 0 {
					j, ok := app.Service.State().JournalOn(day)
					if !ok {
						fmt.Fprintf(out, "No journal for %s.\n", day)
						return nil
					}
					rendered, err := glamour.Render(j.Content, "auto")
					if err != nil {
						rendered = j.Content + "\n"
					}
					fmt.Fprint(out, rendered)
					return nil
				}

				if _, err := app.Service.SaveJournal(cmd.Context(), day, strings.Join(args, " ")); err != nil {
					return err
				}
				fmt.Fprintf(out, "Saved journal for %s\n", day)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date YYYY-MM-DD (default today)")
	return cmd
}
