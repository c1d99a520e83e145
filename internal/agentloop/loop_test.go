package agentloop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

type scriptedProvider struct {
	responses []AgentResponse
	calls     int
}

func (p *scriptedProvider) Step(ctx context.Context, state *AgentState) (AgentResponse, error) {
	if p.calls >= len(p.responses) {
		return AgentResponse{StopReason: StopEndTurn}, nil
	}
	r := p.responses[p.calls]
	p.calls++
	return r, nil
}

type fakeExecutor struct {
	outputs map[string]string
}

func (e *fakeExecutor) Execute(ctx context.Context, call AgentToolCall) (AgentToolResult, error) {
	out, ok := e.outputs[call.Name]
	if !ok {
		out = "no output configured"
	}
	return AgentToolResult{ToolCallID: call.ID, Success: ok, Output: out}, nil
}

func TestLoopStopsOnEndTurn(t *testing.T) {
	provider := &scriptedProvider{responses: []AgentResponse{
		{Content: "done", StopReason: StopEndTurn},
	}}
	loop := New(provider, &fakeExecutor{}, nil, nil, nil, nil, nil)
	state := NewAgentState(nil, 10)
	state.AppendUser("do the thing")

	final, err := loop.Run(context.Background(), state)
	require.NoError(t, err)
	require.True(t, final.Done)
	require.Equal(t, 1, final.CurrentIteration)

	resp, ok := final.GetFinalResponse()
	require.True(t, ok)
	require.Equal(t, "done", resp)
}

func TestLoopRunsToolCallsAndContinues(t *testing.T) {
	provider := &scriptedProvider{responses: []AgentResponse{
		{
			StopReason: StopToolUse,
			ToolCalls:  []AgentToolCall{{ID: "1", Name: "search", Arguments: map[string]any{}}},
		},
		{Content: "found it", StopReason: StopEndTurn},
	}}
	exec := &fakeExecutor{outputs: map[string]string{"search": "result text"}}
	loop := New(provider, exec, nil, nil, nil, nil, nil)
	state := NewAgentState(nil, 10)

	final, err := loop.Run(context.Background(), state)
	require.NoError(t, err)
	require.Equal(t, 2, final.CurrentIteration)

	var sawToolMessage bool
	for _, m := range final.Messages {
		if m.Role == RoleTool && m.Content == "result text" {
			sawToolMessage = true
		}
	}
	require.True(t, sawToolMessage)
}

func TestLoopNeverExceedsMaxIterations(t *testing.T) {
	provider := &scriptedProvider{}
	// The provider returns EndTurn once its scripted responses run out,
	// so to force iteration exhaustion we script more ToolUse responses
	// than MaxIterations allows.
	for i := 0; i < 50; i++ {
		provider.responses = append(provider.responses, AgentResponse{
			StopReason: StopToolUse,
			ToolCalls:  []AgentToolCall{{ID: "x", Name: "noop"}},
		})
	}
	loop := New(provider, &fakeExecutor{}, nil, nil, nil, nil, nil)
	state := NewAgentState(nil, 5)

	final, err := loop.Run(context.Background(), state)
	require.NoError(t, err)
	require.LessOrEqual(t, final.CurrentIteration, final.MaxIterations)
	require.True(t, final.Done)
}

func TestLoopToolExecutionErrorIsNotFatal(t *testing.T) {
	provider := &scriptedProvider{responses: []AgentResponse{
		{StopReason: StopToolUse, ToolCalls: []AgentToolCall{{ID: "1", Name: "broken"}}},
		{Content: "recovered", StopReason: StopEndTurn},
	}}
	loop := New(provider, &erroringExecutor{}, nil, nil, nil, nil, nil)
	state := NewAgentState(nil, 10)

	final, err := loop.Run(context.Background(), state)
	require.NoError(t, err)
	require.True(t, final.Done)
	resp, ok := final.GetFinalResponse()
	require.True(t, ok)
	require.Equal(t, "recovered", resp)
}

type erroringExecutor struct{}

func (erroringExecutor) Execute(ctx context.Context, call AgentToolCall) (AgentToolResult, error) {
	return AgentToolResult{}, context.DeadlineExceeded
}
