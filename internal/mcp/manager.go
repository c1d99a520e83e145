package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"cmdforge/internal/logging"
	"cmdforge/internal/observability"
	"cmdforge/internal/resilience"
)

// RegisteredTool pairs a tool definition with the server that serves it.
type RegisteredTool struct {
	Tool   Tool
	Server string
}

// Manager owns every configured MCP server and routes tool calls to the
// server that registered them. Unlike the original single-threaded
// manager it's grounded on, StartAll fans its servers out concurrently
// with errgroup, since spawning N independent child processes has no
// reason to be sequential; a routing cache speeds up the common case of
// repeatedly calling the same tool.
type Manager struct {
	logger logging.Logger

	mu       sync.RWMutex
	handles  map[string]*ServerHandle
	registry map[string]RegisteredTool

	routeCache *lru.Cache[string, string]

	resilienceMgr *resilience.ResilienceManager
	degradation   *resilience.DegradationManager
	offline       *resilience.OfflineManager
	metrics       *observability.Metrics
}

// NewManager builds an empty manager. resilienceMgr/degradation/offline
// may be nil, in which case the manager builds its own (unshared)
// instances; pass the same instances used elsewhere (e.g. the status
// server) so CallTool's breaker/degradation/offline-queue state is
// visible outside the manager. metrics may be nil to skip reporting.
func NewManager(logger logging.Logger, resilienceMgr *resilience.ResilienceManager, degradation *resilience.DegradationManager, offline *resilience.OfflineManager, metrics *observability.Metrics) *Manager {
	cache, _ := lru.New[string, string](256)
	if resilienceMgr == nil {
		resilienceMgr = resilience.NewResilienceManagerWithMetrics(metrics)
	}
	if degradation == nil {
		degradation = resilience.NewDegradationManagerWithMetrics(metrics)
	}
	if offline == nil {
		offline = resilience.NewOfflineManagerWithMetrics(metrics)
	}
	return &Manager{
		logger:        logging.OrNop(logger),
		handles:       make(map[string]*ServerHandle),
		registry:      make(map[string]RegisteredTool),
		routeCache:    cache,
		resilienceMgr: resilienceMgr,
		degradation:   degradation,
		offline:       offline,
		metrics:       metrics,
	}
}

// AddServer registers a new server config under name. Errors if name is
// already registered.
func (m *Manager) AddServer(name string, config ServerConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.handles[name]; exists {
		return &ServerExistsErr{Server: name}
	}
	m.handles[name] = NewServerHandle(name, config, m.logger)
	return nil
}

// RemoveServer stops and forgets a server, purging its tools from the registry.
func (m *Manager) RemoveServer(name string) error {
	m.mu.Lock()
	handle, exists := m.handles[name]
	if !exists {
		m.mu.Unlock()
		return fmt.Errorf("mcp server %q not found", name)
	}
	delete(m.handles, name)
	for toolName, reg := range m.registry {
		if reg.Server == name {
			delete(m.registry, toolName)
		}
	}
	m.mu.Unlock()

	m.routeCache.Purge()
	return handle.Stop(5 * time.Second)
}

// StartAll starts every registered, non-disabled server concurrently
// and refreshes the tool registry from whichever servers come up.
// Unlike the sequential original, one server's startup failure does not
// prevent the others from starting; all errors are joined and returned
// together so the caller can see the full picture.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.RLock()
	names := make([]string, 0, len(m.handles))
	for name, handle := range m.handles {
		if !handle.config.Disabled {
			names = append(names, name)
		}
	}
	m.mu.RUnlock()

	var (
		g     errgroup.Group
		errMu sync.Mutex
		errs  []error
	)
	for _, name := range names {
		name := name
		g.Go(func() error {
			if err := m.startServer(ctx, name); err != nil {
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}

// StartServer starts a single named server and registers its tools.
func (m *Manager) StartServer(ctx context.Context, name string) error {
	return m.startServer(ctx, name)
}

func (m *Manager) startServer(ctx context.Context, name string) error {
	m.mu.RLock()
	handle, exists := m.handles[name]
	m.mu.RUnlock()
	if !exists {
		return &ServerNotFoundErr{Server: name}
	}

	if err := handle.Start(ctx); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}

	m.mu.Lock()
	for _, tool := range handle.Tools() {
		m.registry[tool.Name] = RegisteredTool{Tool: tool, Server: name}
	}
	m.mu.Unlock()

	return nil
}

// StopAll stops every server, unregistering their tools.
func (m *Manager) StopAll(timeout time.Duration) error {
	m.mu.RLock()
	handles := make([]*ServerHandle, 0, len(m.handles))
	for _, h := range m.handles {
		handles = append(handles, h)
	}
	m.mu.RUnlock()

	var firstErr error
	for _, h := range handles {
		if err := h.Stop(timeout); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	m.mu.Lock()
	m.registry = make(map[string]RegisteredTool)
	m.mu.Unlock()
	m.routeCache.Purge()

	return firstErr
}

// StopServer stops one server by name, unregistering its tools.
func (m *Manager) StopServer(name string, timeout time.Duration) error {
	m.mu.RLock()
	handle, exists := m.handles[name]
	m.mu.RUnlock()
	if !exists {
		return &ServerNotFoundErr{Server: name}
	}

	err := handle.Stop(timeout)

	m.mu.Lock()
	for toolName, reg := range m.registry {
		if reg.Server == name {
			delete(m.registry, toolName)
		}
	}
	m.mu.Unlock()
	m.routeCache.Purge()

	return err
}

// ListTools returns every tool currently registered by a connected server.
func (m *Manager) ListTools() []RegisteredTool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]RegisteredTool, 0, len(m.registry))
	for _, reg := range m.registry {
		out = append(out, reg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tool.Name < out[j].Tool.Name })
	return out
}

// GetTool looks up a registered tool by name.
func (m *Manager) GetTool(name string) (RegisteredTool, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	reg, ok := m.registry[name]
	return reg, ok
}

// CallTool resolves name to its owning server (via the route cache when
// possible) and invokes it there, through the resilience kernel's
// FeatureMCP breaker/retry/degradation/offline-queue composition.
func (m *Manager) CallTool(ctx context.Context, name string, arguments map[string]any) (*CallToolResult, error) {
	serverName, err := m.resolveServer(name)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	outcome := resilience.ExecuteResilient(ctx, resilience.FeatureMCP, m.resilienceMgr, m.degradation, m.offline,
		func(ctx context.Context) (*CallToolResult, error) {
			m.mu.RLock()
			handle, exists := m.handles[serverName]
			m.mu.RUnlock()
			if !exists {
				return nil, &ServerNotFoundErr{Server: serverName}
			}
			return handle.CallTool(name, arguments)
		},
		resilience.ReconnectMCPOp{ServerName: serverName},
	)

	if m.metrics != nil {
		m.metrics.MCPCallDuration.WithLabelValues(serverName, name).Observe(time.Since(start).Seconds())
		if outcome.Err != nil {
			m.metrics.MCPCallErrors.WithLabelValues(serverName, name).Inc()
		}
	}

	return outcome.Value, outcome.Err
}

func (m *Manager) resolveServer(toolName string) (string, error) {
	if cached, ok := m.routeCache.Get(toolName); ok {
		return cached, nil
	}

	m.mu.RLock()
	reg, ok := m.registry[toolName]
	m.mu.RUnlock()
	if !ok {
		return "", &ToolNotFoundErr{Tool: toolName}
	}

	m.routeCache.Add(toolName, reg.Server)
	return reg.Server, nil
}

// ServerNames lists every registered server, connected or not.
func (m *Manager) ServerNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.handles))
	for name := range m.handles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// IsServerConnected reports whether the named server is currently running.
func (m *Manager) IsServerConnected(name string) bool {
	m.mu.RLock()
	handle, exists := m.handles[name]
	m.mu.RUnlock()
	return exists && handle.State() == StateRunning
}

// ConnectedCount returns how many registered servers are currently running.
func (m *Manager) ConnectedCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, h := range m.handles {
		if h.State() == StateRunning {
			count++
		}
	}
	return count
}

// AIToolDescriptor is the shape of a tool as handed to an AI provider's
// function-calling API: name, description, and input schema, plus which
// server it came from for display/debugging.
type AIToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	InputSchema any    `json:"input_schema"`
	Server      string `json:"server"`
}

// GetToolsForAI flattens the registry into the shape an AgentProvider's
// function-calling API expects.
func (m *Manager) GetToolsForAI() []AIToolDescriptor {
	regs := m.ListTools()
	out := make([]AIToolDescriptor, 0, len(regs))
	for _, reg := range regs {
		out = append(out, AIToolDescriptor{
			Name:        reg.Tool.Name,
			Description: reg.Tool.Description,
			InputSchema: reg.Tool.InputSchema,
			Server:      reg.Server,
		})
	}
	return out
}

// RefreshAllTools clears and rebuilds the tool registry from every
// currently connected server.
func (m *Manager) RefreshAllTools() error {
	m.mu.RLock()
	handles := make(map[string]*ServerHandle, len(m.handles))
	for name, h := range m.handles {
		handles[name] = h
	}
	m.mu.RUnlock()

	newRegistry := make(map[string]RegisteredTool)
	var firstErr error
	for name, h := range handles {
		if h.State() != StateRunning {
			continue
		}
		if err := h.RefreshTools(); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("refresh %s: %w", name, err)
			}
			continue
		}
		for _, tool := range h.Tools() {
			newRegistry[tool.Name] = RegisteredTool{Tool: tool, Server: name}
		}
	}

	m.mu.Lock()
	m.registry = newRegistry
	m.mu.Unlock()
	m.routeCache.Purge()

	return firstErr
}

// ToolNotFoundErr mirrors resilience.ToolNotFoundError. It stays a
// distinct type (rather than reusing the resilience one directly) so a
// caller pattern-matching on mcp errors doesn't need to know whether the
// failure came from routing (before CallTool ever reaches the kernel) or
// from the kernel's own retry/breaker layer.
type ToolNotFoundErr struct{ Tool string }

func (e *ToolNotFoundErr) Error() string { return fmt.Sprintf("tool not found: %s", e.Tool) }

// ServerNotFoundErr mirrors resilience.ServerNotFoundError; see ToolNotFoundErr.
type ServerNotFoundErr struct{ Server string }

func (e *ServerNotFoundErr) Error() string { return fmt.Sprintf("mcp server not found: %s", e.Server) }

// ServerExistsErr is returned by AddServer when name is already registered.
type ServerExistsErr struct{ Server string }

func (e *ServerExistsErr) Error() string { return fmt.Sprintf("mcp server %q already registered", e.Server) }
