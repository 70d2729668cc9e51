package main

import (
	"os"

	"reminder_notifier/cmd/notifier/commands"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
)

func main() {
	commands.SetVersionInfo(version, commit)

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
