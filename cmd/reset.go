package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/newlife/internal"
	"github.com/sadopc/newlife/internal/structures"
)

func newResetCmd(flags *structures.CliFlags) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete all projects, check-ins and journals and start over",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errors.New("reset deletes everything; pass --yes to confirm")
			}
			return withApp(flags, func(app *internal.App) error {
				if err := app.Service.Reset(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All data deleted. Starting over with the default projects.")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm deleting all data")
	return cmd
}
