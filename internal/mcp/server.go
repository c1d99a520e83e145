package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/kaptinlin/jsonrepair"

	"cmdforge/internal/logging"
)

// State is the lifecycle state of a single MCP server.
type State int

const (
	StateStopped State = iota
	StateStarting
	StateRunning
	StateError
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ServerHandle owns a single MCP server's process and JSON-RPC framing.
// Exactly one request may be outstanding on the wire at a time per
// server: sendRequest holds callMu for the full write-then-read round
// trip, so two goroutines calling the same server never interleave
// their bytes. stdinMu guards the write side alone for notifications,
// which have no response to wait for. A slow server only blocks
// callers targeting that server; other servers have their own locks.
type ServerHandle struct {
	name   string
	config ServerConfig
	logger logging.Logger

	process *ProcessManager
	ids     *RequestIDGenerator

	callMu sync.Mutex

	stdinMu sync.Mutex
	writer  io.Writer

	stdoutMu sync.Mutex
	reader   *bufio.Reader

	mu         sync.RWMutex
	state      State
	tools      []Tool
	serverInfo *InitializeResult
	startedAt  time.Time
	lastError  error
}

// NewServerHandle builds a ServerHandle for the given named server config.
func NewServerHandle(name string, config ServerConfig, logger logging.Logger) *ServerHandle {
	return &ServerHandle{
		name:   name,
		config: config,
		logger: logging.OrNop(logger),
		ids:    NewRequestIDGenerator(),
		state:  StateStopped,
	}
}

// Name returns the server's configured name.
func (s *ServerHandle) Name() string { return s.name }

// State returns the server's current lifecycle state.
func (s *ServerHandle) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Tools returns the cached tool list from the last refresh.
func (s *ServerHandle) Tools() []Tool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tool, len(s.tools))
	copy(out, s.tools)
	return out
}

// HasTool reports whether the cached tool list contains name.
func (s *ServerHandle) HasTool(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tools {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Uptime returns how long the server has been running.
func (s *ServerHandle) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateRunning {
		return 0
	}
	return time.Since(s.startedAt)
}

// Start spawns the server process, performs the initialize handshake,
// and fetches its tool list. No-op if already running.
func (s *ServerHandle) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateRunning {
		s.mu.Unlock()
		return nil
	}
	s.state = StateStarting
	s.mu.Unlock()

	proc := NewProcessManager(ProcessConfig{
		Command: s.config.Command,
		Args:    s.config.Args,
		Env:     s.config.Env,
		Cwd:     s.config.Cwd,
	})
	if err := proc.Start(ctx); err != nil {
		s.markError(err)
		return fmt.Errorf("mcp server %s: %w", s.name, err)
	}

	s.process = proc
	s.writer = proc.Stdin()
	s.reader = bufio.NewReader(proc.Stdout())

	if err := s.initialize(); err != nil {
		s.markError(err)
		return fmt.Errorf("mcp server %s: initialize: %w", s.name, err)
	}
	if err := s.RefreshTools(); err != nil {
		s.markError(err)
		return fmt.Errorf("mcp server %s: refresh tools: %w", s.name, err)
	}

	s.mu.Lock()
	s.state = StateRunning
	s.startedAt = time.Now()
	s.lastError = nil
	s.mu.Unlock()

	return nil
}

func (s *ServerHandle) markError(err error) {
	s.mu.Lock()
	s.state = StateError
	s.lastError = err
	s.mu.Unlock()
}

// Stop kills the process and resets cached state.
func (s *ServerHandle) Stop(timeout time.Duration) error {
	s.mu.Lock()
	proc := s.process
	s.mu.Unlock()

	var stopErr error
	if proc != nil {
		stopErr = proc.Stop(timeout)
	}

	s.mu.Lock()
	s.state = StateStopped
	s.tools = nil
	s.serverInfo = nil
	s.process = nil
	s.mu.Unlock()

	return stopErr
}

// sendRequest allocates the next request id, writes the request line,
// and blocks for a single response line. callMu is held for the entire
// round trip so concurrent callers on this server queue behind each
// other instead of interleaving their write and read phases; it is
// acquired before the finer-grained stdinMu/stdoutMu so sendNotification
// can still take stdinMu alone without risking a different lock order.
func (s *ServerHandle) sendRequest(method string, params map[string]any) (*Response, error) {
	s.callMu.Lock()
	defer s.callMu.Unlock()

	id := s.ids.Next()
	req := NewRequest(id, method, params)

	line, err := Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	s.stdinMu.Lock()
	s.logger.Debug("mcp %s <- %s", s.name, string(line))
	_, writeErr := fmt.Fprintf(s.writer, "%s\n", line)
	s.stdinMu.Unlock()
	if writeErr != nil {
		return nil, fmt.Errorf("write request: %w", writeErr)
	}

	s.stdoutMu.Lock()
	raw, readErr := s.reader.ReadString('\n')
	s.stdoutMu.Unlock()
	if readErr != nil && raw == "" {
		return nil, fmt.Errorf("read response: %w", readErr)
	}
	s.logger.Debug("mcp %s -> %s", s.name, raw)

	resp, parseErr := UnmarshalResponse([]byte(raw))
	if parseErr != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return nil, fmt.Errorf("mcp %s: malformed response: %w", s.name, parseErr)
		}
		resp, parseErr = UnmarshalResponse([]byte(repaired))
		if parseErr != nil {
			return nil, fmt.Errorf("mcp %s: malformed response even after repair: %w", s.name, parseErr)
		}
	}

	if resp.IsError() {
		return resp, resp.Error
	}
	return resp, nil
}

// sendNotification writes a request-shaped message with no id field,
// expecting no response.
func (s *ServerHandle) sendNotification(method string, params map[string]any) error {
	notif := NewNotification(method, params)
	line, err := json.Marshal(notif)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	s.stdinMu.Lock()
	defer s.stdinMu.Unlock()
	s.logger.Debug("mcp %s <- %s", s.name, string(line))
	_, err = fmt.Fprintf(s.writer, "%s\n", line)
	return err
}

func (s *ServerHandle) initialize() error {
	params := DefaultInitializeParams()
	paramsMap, err := toParamsMap(params)
	if err != nil {
		return err
	}

	resp, err := s.sendRequest("initialize", paramsMap)
	if err != nil {
		return err
	}

	var result InitializeResult
	if err := decodeResult(resp.Result, &result); err != nil {
		return fmt.Errorf("decode initialize result: %w", err)
	}

	s.mu.Lock()
	s.serverInfo = &result
	s.mu.Unlock()

	return s.sendNotification("notifications/initialized", nil)
}

// RefreshTools re-queries tools/list and replaces the cached tool set.
func (s *ServerHandle) RefreshTools() error {
	resp, err := s.sendRequest("tools/list", nil)
	if err != nil {
		return err
	}

	var result ListToolsResult
	if err := decodeResult(resp.Result, &result); err != nil {
		return fmt.Errorf("decode tools/list result: %w", err)
	}

	s.mu.Lock()
	s.tools = result.Tools
	s.mu.Unlock()

	return nil
}

// CallTool invokes a named tool with the given arguments.
func (s *ServerHandle) CallTool(name string, arguments map[string]any) (*CallToolResult, error) {
	if !s.HasTool(name) {
		return nil, fmt.Errorf("mcp server %s: tool %q not found", s.name, name)
	}

	params := CallToolParams{Name: name, Arguments: arguments}
	paramsMap, err := toParamsMap(params)
	if err != nil {
		return nil, err
	}

	resp, err := s.sendRequest("tools/call", paramsMap)
	if err != nil {
		return nil, err
	}

	var result CallToolResult
	if err := decodeResult(resp.Result, &result); err != nil {
		return nil, fmt.Errorf("decode tools/call result: %w", err)
	}
	return &result, nil
}

func toParamsMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal params: %w", err)
	}
	return m, nil
}

func decodeResult(result any, target any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}
