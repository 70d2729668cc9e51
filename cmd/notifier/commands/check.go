package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one review cycle now and print its report as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := bootstrap()
		if err != nil {
			return err
		}
		defer db.Close()

		stopTracing, err := initTracing(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer stopTracing()

		e, err := newEngine(cfg, db, false)
		if err != nil {
			return err
		}

		report, err := e.cycle.Run(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"success": true, "data": report})
	},
}
