package security

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTrustStoreChildTrustsParent(t *testing.T) {
	dir := t.TempDir()
	parent := dir
	child := filepath.Join(dir, "sub")
	if err := os.Mkdir(child, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	store := NewTrustStore()
	store.TrustedDirectories[canonicalize(child)] = struct{}{}

	if !store.IsTrusted(parent) {
		t.Fatalf("expected trusting a child directory to also trust its parent")
	}
}

func TestTrustStoreHomeSubdirs(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}
	sub := filepath.Join(home, "projects", "demo")

	store := NewTrustStore()
	if store.IsTrusted(sub) {
		t.Fatalf("expected untrusted before TrustHomeSubdirs set")
	}
	store.TrustHomeSubdirs = true
	if !store.IsTrusted(sub) {
		t.Fatalf("expected trusted once TrustHomeSubdirs set")
	}
}

func TestTrustStoreSaveAndLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trust.json")

	store := NewTrustStore()
	trustedDir := filepath.Join(dir, "project")
	if err := os.Mkdir(trustedDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := store.TrustDirectory(trustedDir, path); err != nil {
		t.Fatalf("trust directory: %v", err)
	}

	loaded, err := LoadTrustStore(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !loaded.IsTrusted(trustedDir) {
		t.Fatalf("expected loaded store to trust %s", trustedDir)
	}
}

func TestLoadTrustStoreMissingFileReturnsEmpty(t *testing.T) {
	store, err := LoadTrustStore(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(store.TrustedDirectories) != 0 {
		t.Fatalf("expected empty trust store")
	}
}
