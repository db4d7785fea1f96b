package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sadopc/newlife/internal"
	"github.com/sadopc/newlife/internal/structures"
	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

func newProjectsCmd(flags *structures.CliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects with their tracked values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, func(app *internal.App) error {
				printProjects(cmd.OutOrStdout(), app.Service.State(), app.Service.Now())
				return nil
			})
		},
	}

	var icon string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *internal.App) error {
				p, err := app.Service.CreateProject(cmd.Context(), args[0], icon)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", p.Icon, p.Name, p.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&icon, "icon", "", "Icon (default 🎯)")

	rename := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a project",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *internal.App) error {
				return app.Service.RenameProject(cmd.Context(), args[0], args[1])
			})
		},
	}

	mode := &cobra.Command{
		Use:       "mode <id> none|progress|counter",
		Short:     "Set how a project is tracked",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"none", "progress", "counter"},
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := tracker.ParseMode(args[1])
			if err != nil {
				return err
			}
			return withApp(flags, func(app *internal.App) error {
				return app.Service.SetTrackingMode(cmd.Context(), args[0], m)
			})
		},
	}

	del := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a project and all of its check-ins",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *internal.App) error {
				if err := app.Service.DeleteProject(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}

	cmd.AddCommand(add, rename, mode, del)
	return cmd
}

func printProjects(w io.Writer, st tracker.State, now time.Time) {
	if len(st.Projects) == 0 {
		fmt.Fprintln(w, "No projects.")
		return
	}
	// IDs are printed whole so they can be pasted into other commands.
	idWidth := len("ID")
	for _, p := range st.Projects {
		idWidth = max(idWidth, len(p.ID))
	}
	fmt.Fprintf(w, "%-*s %-28s %-9s %8s %10s\n", idWidth, "ID", "PROJECT", "MODE", "VALUE", "TIME")
	for _, p := range st.Projects {
		value := "-"
		if v, ok := st.Aggregate(p.ID); ok {
			value = fmt.Sprint(v)
			if p.TrackingMode == tracker.ModeProgress {
				value += "%"
			} else {
				value += "d"
			}
		}
		fmt.Fprintf(w, "%-*s %-28s %-9s %8s %10s\n",
			idWidth, p.ID, p.Icon+" "+p.Name, p.TrackingMode, value,
			timecalc.FormatDuration(st.TotalDuration(p.ID, now), false))
	}
}
