package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rootCmd runs the long-lived service when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "notifier",
	Short: "Birthday and payment reminder engine",
	Long: `notifier reviews people and obligations on a schedule, sends birthday
greetings and payment reminders over email and Telegram, moves past-due
obligations to OVERDUE and keeps an audit ledger of every delivery attempt.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

var buildVersion = "dev"

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c string) {
	buildVersion = v
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", v, c)
}

func init() {
	rootCmd.AddCommand(serveCmd, checkCmd, overdueCmd, migrateCmd)
}
