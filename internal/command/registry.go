package command

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

var (
	errEmptyID          = errors.New("command: id must not be empty")
	errEmptyCommandText = errors.New("command: command_text must not be empty")
	errDuplicateID      = errors.New("command: duplicate id")
)

// Scanner discovers commands from some project source (a package
// manifest, a build file, an MCP server's tool list). Concrete
// npm/Cargo/Make/Git scanners are external collaborators out of this
// core's scope; Scanner is the seam they implement.
type Scanner interface {
	Scan(ctx context.Context) ([]Command, error)
}

// registrySnapshot is the immutable state a Registry atomically swaps
// on Refresh, so readers never observe a partially rebuilt map.
type registrySnapshot struct {
	byID  map[string]Command
	order []string
}

func emptySnapshot() *registrySnapshot {
	return &registrySnapshot{byID: make(map[string]Command)}
}

// Registry owns the id -> Command mapping populated by scanners at
// session start and replaced wholesale on explicit Refresh. Reads never
// block behind a Refresh in progress: Refresh builds a new snapshot off
// to the side and swaps a pointer atomically.
type Registry struct {
	snapshot atomic.Pointer[registrySnapshot]
	scanners []Scanner
}

// NewRegistry builds an empty registry with the given scanners, run in
// order on every Refresh.
func NewRegistry(scanners ...Scanner) *Registry {
	r := &Registry{scanners: scanners}
	r.snapshot.Store(emptySnapshot())
	return r
}

// Refresh re-runs every scanner and atomically replaces the registry's
// contents. Commands are deduplicated by ID; a later scanner's command
// overwrites an earlier one with the same ID, and insertion order
// (first-seen) is preserved for deterministic listing.
func (r *Registry) Refresh(ctx context.Context) error {
	next := emptySnapshot()
	seen := make(map[string]bool)

	for _, scanner := range r.scanners {
		cmds, err := scanner.Scan(ctx)
		if err != nil {
			return fmt.Errorf("command registry: scan: %w", err)
		}
		for _, c := range cmds {
			if err := c.Validate(); err != nil {
				return fmt.Errorf("command registry: invalid command %q: %w", c.ID, err)
			}
			if !seen[c.ID] {
				next.order = append(next.order, c.ID)
				seen[c.ID] = true
			}
			next.byID[c.ID] = c
		}
	}

	r.snapshot.Store(next)
	return nil
}

// Add inserts or replaces a single command outside of a full Refresh
// (used by ManualScanner-backed flows and by the post-run history hook).
func (r *Registry) Add(c Command) error {
	if err := c.Validate(); err != nil {
		return err
	}
	cur := r.snapshot.Load()
	next := &registrySnapshot{
		byID:  make(map[string]Command, len(cur.byID)+1),
		order: make([]string, len(cur.order)),
	}
	copy(next.order, cur.order)
	for id, cmd := range cur.byID {
		next.byID[id] = cmd
	}
	if _, exists := next.byID[c.ID]; !exists {
		next.order = append(next.order, c.ID)
	}
	next.byID[c.ID] = c
	r.snapshot.Store(next)
	return nil
}

// Get looks up a command by ID.
func (r *Registry) Get(id string) (Command, bool) {
	snap := r.snapshot.Load()
	c, ok := snap.byID[id]
	return c, ok
}

// List returns every command in insertion order.
func (r *Registry) List() []Command {
	snap := r.snapshot.Load()
	out := make([]Command, 0, len(snap.order))
	for _, id := range snap.order {
		out = append(out, snap.byID[id])
	}
	return out
}

// Len reports how many commands are currently registered.
func (r *Registry) Len() int {
	return len(r.snapshot.Load().byID)
}

// RecordRun updates a command's history bookkeeping after it runs.
// No-op if the command has since been removed by a Refresh.
func (r *Registry) RecordRun(id string, at time.Time) {
	cur := r.snapshot.Load()
	c, ok := cur.byID[id]
	if !ok {
		return
	}
	c.RunCount++
	c.LastRunAt = &at
	_ = r.Add(c)
}

// ManualScanner returns a fixed, caller-supplied set of commands — the
// seam for commands registered interactively rather than discovered
// from a manifest.
type ManualScanner struct {
	commands []Command
}

// NewManualScanner builds a ManualScanner over a fixed command set.
func NewManualScanner(commands ...Command) *ManualScanner {
	return &ManualScanner{commands: commands}
}

// Scan returns the manual command set, ignoring ctx.
func (m *ManualScanner) Scan(ctx context.Context) ([]Command, error) {
	out := make([]Command, len(m.commands))
	copy(out, m.commands)
	return out, nil
}
