package agentloop

import (
	"context"
	"encoding/json"
	"fmt"

	"cmdforge/internal/executor"
	"cmdforge/internal/mcp"
)

// shellToolNames are dispatched to the local shell executor; every
// other tool call is delegated to the MCP manager.
var shellToolNames = map[string]bool{
	"execute_command": true,
	"shell":           true,
}

// MCPCaller is the subset of *mcp.Manager the composite executor needs,
// narrowed to an interface so tests can substitute a fake.
type MCPCaller interface {
	CallTool(ctx context.Context, name string, arguments map[string]any) (*mcp.CallToolResult, error)
}

// CompositeExecutor dispatches execute_command/shell tool calls to a
// shell executor and everything else to an MCP manager, presenting a
// single ToolExecutor surface to the loop.
type CompositeExecutor struct {
	shell *executor.Executor
	mcp   MCPCaller
}

// NewCompositeExecutor builds a CompositeExecutor over a shell executor
// and an MCP caller.
func NewCompositeExecutor(shell *executor.Executor, mcpCaller MCPCaller) *CompositeExecutor {
	return &CompositeExecutor{shell: shell, mcp: mcpCaller}
}

// Execute implements ToolExecutor.
func (e *CompositeExecutor) Execute(ctx context.Context, call AgentToolCall) (AgentToolResult, error) {
	if shellToolNames[call.Name] {
		return e.executeShell(ctx, call)
	}
	return e.executeMCP(ctx, call)
}

func (e *CompositeExecutor) executeShell(ctx context.Context, call AgentToolCall) (AgentToolResult, error) {
	cmdText, _ := call.Arguments["command"].(string)
	if cmdText == "" {
		return AgentToolResult{ToolCallID: call.ID, Success: false, Output: "missing \"command\" argument"}, nil
	}
	workingDir, _ := call.Arguments["working_dir"].(string)

	res, err := e.shell.Run(ctx, executor.Request{
		CommandText:   cmdText,
		WorkingDir:    workingDir,
		CaptureStdout: true,
		CaptureStderr: true,
	})
	if err != nil {
		return AgentToolResult{ToolCallID: call.ID, Success: false, Output: err.Error()}, nil
	}

	output := res.Stdout
	if res.Stderr != "" {
		output += "\n" + res.Stderr
	}
	return AgentToolResult{
		ToolCallID: call.ID,
		Success:    res.ExitCode == 0,
		Output:     fmt.Sprintf("exit %d\n%s", res.ExitCode, output),
	}, nil
}

func (e *CompositeExecutor) executeMCP(ctx context.Context, call AgentToolCall) (AgentToolResult, error) {
	result, err := e.mcp.CallTool(ctx, call.Name, call.Arguments)
	if err != nil {
		return AgentToolResult{ToolCallID: call.ID, Success: false, Output: err.Error()}, nil
	}

	var text string
	for _, block := range result.Content {
		if block.Type == "text" {
			if text != "" {
				text += "\n"
			}
			text += block.Text
		}
	}
	if text == "" {
		if raw, err := json.Marshal(result.Content); err == nil {
			text = string(raw)
		}
	}

	return AgentToolResult{
		ToolCallID: call.ID,
		Success:    !result.IsError,
		Output:     text,
	}, nil
}
