package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func npmCommand(id, name string) Command {
	return Command{
		ID:          id,
		Name:        name,
		CommandText: "npm run " + name,
		Source:      Source{Kind: SourceNpm},
	}
}

func TestRegistryRefreshDeduplicatesAndPreservesOrder(t *testing.T) {
	s1 := NewManualScanner(npmCommand("build", "build"), npmCommand("test", "test"))
	s2 := NewManualScanner(npmCommand("build", "build"), npmCommand("lint", "lint"))
	r := NewRegistry(s1, s2)

	require.NoError(t, r.Refresh(context.Background()))
	require.Equal(t, 3, r.Len())

	list := r.List()
	ids := make([]string, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	require.Equal(t, []string{"build", "test", "lint"}, ids)
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry(NewManualScanner(npmCommand("build", "build")))
	require.NoError(t, r.Refresh(context.Background()))

	c, ok := r.Get("build")
	require.True(t, ok)
	require.Equal(t, "npm run build", c.CommandText)

	_, ok = r.Get("missing")
	require.False(t, ok)
}

func TestRegistryRefreshRejectsInvalidCommand(t *testing.T) {
	bad := Command{ID: "x", CommandText: ""}
	r := NewRegistry(NewManualScanner(bad))
	require.Error(t, r.Refresh(context.Background()))
}

func TestRegistryAddIsIdempotentOnID(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Add(npmCommand("build", "build")))
	require.NoError(t, r.Add(npmCommand("build", "build-renamed")))
	require.Equal(t, 1, r.Len())
	c, _ := r.Get("build")
	require.Equal(t, "npm run build-renamed", c.CommandText)
}

func TestRegistryRefreshReplacesAtomically(t *testing.T) {
	scanner := NewManualScanner(npmCommand("a", "a"))
	r := NewRegistry(scanner)
	require.NoError(t, r.Refresh(context.Background()))
	require.Equal(t, 1, r.Len())

	scanner.commands = []Command{npmCommand("b", "b")}
	require.NoError(t, r.Refresh(context.Background()))
	require.Equal(t, 1, r.Len())
	_, ok := r.Get("a")
	require.False(t, ok)
	_, ok = r.Get("b")
	require.True(t, ok)
}
