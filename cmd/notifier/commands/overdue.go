package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var overdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "Move every pending obligation past its due date to OVERDUE",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		e, err := newEngine(cfg, db, false)
		if err != nil {
			return err
		}

		n, err := e.overdue.Run(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d obligation(s) marked as overdue\n", n)
		return nil
	},
}
