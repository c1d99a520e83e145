package provider

import (
	"context"

	"cmdforge/internal/agentloop"
)

// AgentProvider is the richer agentic capability: given the full
// conversation state, produce one step's response (content and/or tool
// calls, plus why it stopped). Implemented by vendor transports that
// support function calling; a Provider need not also be an AgentProvider.
type AgentProvider interface {
	Provider
	Step(ctx context.Context, state *agentloop.AgentState) (agentloop.AgentResponse, error)
}
