package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRootCommand_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"serve", "check", "overdue", "migrate"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestSetVersionInfo(t *testing.T) {
	SetVersionInfo("1.2.0", "abc123")

	assert.Equal(t, "1.2.0 (commit: abc123)", rootCmd.Version)
	assert.Equal(t, "1.2.0", buildVersion)
}

func TestCommandsFailWithoutDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	for _, args := range [][]string{{"check"}, {"overdue"}, {"migrate"}} {
		rootCmd.SetArgs(args)
		err := rootCmd.Execute()
		assert.ErrorContains(t, err, "DATABASE_URL is not set", args[0])
	}
}
