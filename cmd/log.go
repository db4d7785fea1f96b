package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/newlife/internal"
	"github.com/sadopc/newlife/internal/structures"
	"github.com/sadopc/newlife/internal/timecalc"
	"github.com/sadopc/newlife/internal/tracker"
)

type logOptions struct {
	project  string
	date     string
	start    string
	end      string
	progress int
}

func newLogCmd(flags *structures.CliFlags) *cobra.Command {
	opts := &logOptions{}
	cmd := &cobra.Command{
		Use:   "log <text>...",
		Short: "Log a check-in; without --project it is sorted by AI",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, func(app *internal.App) error {
				return runLog(cmd, app, opts, strings.Join(args, " "))
			})
		},
	}
	cmd.Flags().StringVarP(&opts.project, "project", "p", "", "Project id (skips categorization)")
	cmd.Flags().StringVar(&opts.date, "date", "", "Date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&opts.start, "start", "", "Start time HH:MM")
	cmd.Flags().StringVar(&opts.end, "end", "", "End time HH:MM")
	cmd.Flags().IntVar(&opts.progress, "progress", -1, "Progress 0-100")
	return cmd
}

func runLog(cmd *cobra.Command, app *internal.App, opts *logOptions, text string) error {
	ctx := cmd.Context()
	svc := app.Service

	in := tracker.NewCheckIn{
		ProjectID: opts.project,
		Text:      text,
		Date:      opts.date,
		StartTime: opts.start,
		EndTime:   opts.end,
	}
	if in.Date == "" {
		in.Date = timecalc.Today(svc.Now())
	}
	if cmd.Flags().Changed("progress") {
		p := opts.progress
		in.Progress = &p
	}

	var (
		c   *tracker.CheckIn
		res tracker.Resolution
		err error
	)
	if opts.project != "" {
		c, err = svc.Log(ctx, in)
	} else {
		c, res, err = svc.LogWithAI(ctx, in)
	}
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if c == nil {
		fmt.Fprintln(out, "Nothing to log.")
		return nil
	}

	p := svc.State().ProjectOrPlaceholder(c.ProjectID)
	fmt.Fprintf(out, "Logged to %s %s: %s (%s)\n", p.Icon, p.Name, c.Text, c.ID)
	switch res {
	case tracker.ResolvedCreated:
		fmt.Fprintf(out, "Created project %s %s\n", p.Icon, p.Name)
	case tracker.ResolvedFallback:
		fmt.Fprintln(out, "Categorization unavailable, used fallback project")
	}
	return nil
}
