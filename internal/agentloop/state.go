// Package agentloop implements the bounded agentic loop: it alternates
// between an AI provider "step" and tool execution, consuming MCP tools
// (and shell commands) as its action surface, until the provider emits
// EndTurn, hits MaxTokens/Error, or the iteration cap is reached.
package agentloop

import "context"

// MessageRole tags an AgentMessage's place in the conversation.
type MessageRole int

const (
	RoleSystem MessageRole = iota
	RoleUser
	RoleAssistant
	RoleTool
)

// AgentMessage is one entry in the conversation. Content is used by
// System/User/Assistant messages; ToolCalls only by Assistant messages
// emitting tool use; ToolCallID/Content by Tool messages reporting a
// tool's result back to the provider.
type AgentMessage struct {
	Role       MessageRole
	Content    string
	ToolCalls  []AgentToolCall
	ToolCallID string
}

// AgentToolCall is one tool invocation the provider asked for.
type AgentToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// AgentToolResult is what a ToolExecutor reports back for one call.
type AgentToolResult struct {
	ToolCallID string
	Success    bool
	Output     string
}

// StopReason is why the provider's last step ended.
type StopReason int

const (
	StopEndTurn StopReason = iota
	StopToolUse
	StopMaxTokens
	StopError
)

func (r StopReason) String() string {
	switch r {
	case StopEndTurn:
		return "end_turn"
	case StopToolUse:
		return "tool_use"
	case StopMaxTokens:
		return "max_tokens"
	case StopError:
		return "error"
	default:
		return "unknown"
	}
}

// AgentResponse is what AgentProvider.Step returns for one iteration.
type AgentResponse struct {
	Content    string
	ToolCalls  []AgentToolCall
	StopReason StopReason
	Err        error
}

// AgentState is the full mutable state of one agentic-loop run. It has
// exactly one writer — the loop body — other code may read it (e.g. to
// log or trace) but must not mutate it concurrently with a running loop.
type AgentState struct {
	Messages        []AgentMessage
	Tools           []ToolDescriptor
	Context         map[string]string
	MaxIterations   int
	CurrentIteration int
	Done            bool
}

// ToolDescriptor is the name/description/schema shape exposed to the
// provider's function-calling surface, independent of which executor
// (MCP or shell) ultimately serves a call by that name.
type ToolDescriptor struct {
	Name        string
	Description string
	InputSchema any
}

// NewAgentState builds a fresh, not-done state with the given tools and
// iteration cap.
func NewAgentState(tools []ToolDescriptor, maxIterations int) *AgentState {
	return &AgentState{
		Tools:         tools,
		Context:       make(map[string]string),
		MaxIterations: maxIterations,
	}
}

// AppendSystem appends a System message.
func (s *AgentState) AppendSystem(content string) {
	s.Messages = append(s.Messages, AgentMessage{Role: RoleSystem, Content: content})
}

// AppendUser appends a User message.
func (s *AgentState) AppendUser(content string) {
	s.Messages = append(s.Messages, AgentMessage{Role: RoleUser, Content: content})
}

// AppendAssistant appends an Assistant message carrying optional content
// and tool calls.
func (s *AgentState) AppendAssistant(content string, toolCalls []AgentToolCall) {
	s.Messages = append(s.Messages, AgentMessage{Role: RoleAssistant, Content: content, ToolCalls: toolCalls})
}

// AppendTool appends a Tool message reporting a tool call's result.
func (s *AgentState) AppendTool(toolCallID, content string) {
	s.Messages = append(s.Messages, AgentMessage{Role: RoleTool, Content: content, ToolCallID: toolCallID})
}

// GetFinalResponse returns the text of the last Assistant message with
// non-empty content, if any.
func (s *AgentState) GetFinalResponse() (string, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		m := s.Messages[i]
		if m.Role == RoleAssistant && m.Content != "" {
			return m.Content, true
		}
	}
	return "", false
}

// ToolExecutor executes one tool call and reports its result. It never
// returns an error for a failed tool invocation — failures become the
// AgentToolResult's content so the provider gets a chance to recover;
// an error return is for executor-internal faults (e.g. ctx
// cancellation). The loop does not abort on such an error either: it
// records it as a "tool execution error" tool message and carries on.
type ToolExecutor interface {
	Execute(ctx context.Context, call AgentToolCall) (AgentToolResult, error)
}
