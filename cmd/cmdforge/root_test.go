package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	want := []string{"run", "mcp", "runbook", "trust", "doctor", "status"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}
}

func TestTrustCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()
	trust, _, err := root.Find([]string{"trust", "list"})
	require.NoError(t, err)
	require.Equal(t, "list", trust.Name())
}

func TestMCPCommandHasSubcommands(t *testing.T) {
	root := NewRootCommand()
	for _, name := range []string{"list", "tools"} {
		cmd, _, err := root.Find([]string{"mcp", name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}
}
