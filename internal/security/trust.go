package security

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// TrustDecision is the user's answer to a trust prompt.
type TrustDecision int

const (
	DecisionTrust TrustDecision = iota
	DecisionDecline
)

// TrustStore records which directories the user has approved running
// commands in, persisted as JSON at $CONFIG_DIR/cmdforge/trust.json.
type TrustStore struct {
	TrustedDirectories map[string]struct{} `json:"-"`
	TrustHomeSubdirs    bool                 `json:"trust_home_subdirs"`
}

// trustStoreDocument is the on-disk JSON shape; TrustedDirectories is a
// set in memory but serializes as a sorted array for stable diffs.
type trustStoreDocument struct {
	TrustedDirectories []string `json:"trusted_directories"`
	TrustHomeSubdirs   bool     `json:"trust_home_subdirs"`
}

// NewTrustStore builds an empty trust store.
func NewTrustStore() *TrustStore {
	return &TrustStore{TrustedDirectories: make(map[string]struct{})}
}

// TrustFilePath returns $CONFIG_DIR/cmdforge/trust.json, honoring
// XDG_CONFIG_HOME when set.
func TrustFilePath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "cmdforge", "trust.json"), nil
}

// LoadTrustStore reads the trust store from path, returning an empty
// store (not an error) if the file doesn't exist yet.
func LoadTrustStore(path string) (*TrustStore, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return NewTrustStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read trust store: %w", err)
	}

	var doc trustStoreDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse trust store: %w", err)
	}

	store := &TrustStore{
		TrustedDirectories: make(map[string]struct{}, len(doc.TrustedDirectories)),
		TrustHomeSubdirs:   doc.TrustHomeSubdirs,
	}
	for _, dir := range doc.TrustedDirectories {
		store.TrustedDirectories[dir] = struct{}{}
	}
	return store, nil
}

// Save writes the trust store to path, creating its parent directory if
// needed. The document is written to a temporary file that is then
// renamed over path.
func (s *TrustStore) Save(path string) error {
	dirs := make([]string, 0, len(s.TrustedDirectories))
	for dir := range s.TrustedDirectories {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	data, err := json.MarshalIndent(trustStoreDocument{
		TrustedDirectories: dirs,
		TrustHomeSubdirs:   s.TrustHomeSubdirs,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal trust store: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create trust store directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write trust store: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace trust store: %w", err)
	}
	return nil
}

// IsTrusted reports whether path is trusted: either it was trusted
// directly, a descendant of it was trusted (trusting a child directory
// also trusts its ancestors, since work done there implies the parent
// tree was already inspected), or it falls under the home directory and
// TrustHomeSubdirs is set.
func (s *TrustStore) IsTrusted(path string) bool {
	canon := canonicalize(path)

	if _, ok := s.TrustedDirectories[canon]; ok {
		return true
	}
	for trusted := range s.TrustedDirectories {
		if isDescendant(trusted, canon) {
			return true
		}
	}

	if s.TrustHomeSubdirs {
		if home, err := os.UserHomeDir(); err == nil {
			h := canonicalize(home)
			if canon == h || strings.HasPrefix(canon, h+string(filepath.Separator)) {
				return true
			}
		}
	}

	return false
}

// TrustDirectory marks dir (and implicitly its ancestors) as trusted and persists the change.
func (s *TrustStore) TrustDirectory(dir, path string) error {
	s.TrustedDirectories[canonicalize(dir)] = struct{}{}
	return s.Save(path)
}

// UntrustDirectory removes dir from the trusted set and persists the change.
func (s *TrustStore) UntrustDirectory(dir, path string) error {
	delete(s.TrustedDirectories, canonicalize(dir))
	return s.Save(path)
}

// TrustAllHomeSubdirs flips TrustHomeSubdirs on and persists the change.
func (s *TrustStore) TrustAllHomeSubdirs(path string) error {
	s.TrustHomeSubdirs = true
	return s.Save(path)
}

// TrustWarningMessage returns the lines shown to a user before they
// approve running commands in an untrusted directory.
func TrustWarningMessage(dir string) []string {
	return []string{
		fmt.Sprintf("cmdforge wants to run commands in: %s", dir),
		"This directory has not been trusted yet.",
		"Trusting it lets cmdforge execute commands and MCP tools here without prompting again.",
	}
}

func canonicalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// isDescendant reports whether trusted is a descendant of child, i.e.
// trusted sits under child in the tree (trusting a child trusts its parents).
func isDescendant(trusted, child string) bool {
	if trusted == child {
		return false
	}
	rel, err := filepath.Rel(child, trusted)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
