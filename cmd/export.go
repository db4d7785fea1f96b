package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/newlife/internal"
	"github.com/sadopc/newlife/internal/export"
	"github.com/sadopc/newlife/internal/structures"
)

func newExportCmd(flags *structures.CliFlags) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export check-ins to stdout or a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return err
			}
			return withApp(flags, func(app *internal.App) error {
				st, now := app.Service.State(), app.Service.Now()
				if out == "" {
					return export.Write(cmd.OutOrStdout(), f, st, now)
				}
				if err := export.ToFile(out, f, st, now); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d check-ins to %s\n", len(st.CheckIns), out)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "Output format: csv, json")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write to a file instead of stdout")
	return cmd
}
