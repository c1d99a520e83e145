package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileWatcherRefreshesRegistryOnWrite(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "package.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{}`), 0o644))

	calls := 0
	registry := NewRegistry(scannerFunc(func(ctx context.Context) ([]Command, error) {
		calls++
		return []Command{npmCommand("build", "build")}, nil
	}))

	watcher, err := NewFileWatcher(registry, nil, manifest)
	require.NoError(t, err)
	defer watcher.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	require.NoError(t, os.WriteFile(manifest, []byte(`{"updated":true}`), 0o644))

	require.Eventually(t, func() bool {
		return registry.Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

type scannerFunc func(ctx context.Context) ([]Command, error)

func (f scannerFunc) Scan(ctx context.Context) ([]Command, error) { return f(ctx) }
