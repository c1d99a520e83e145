package agentloop

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"cmdforge/internal/logging"
	"cmdforge/internal/resilience"
)

const tracerScope = "cmdforge/agentloop"

var tracer = otel.Tracer(tracerScope)

// Provider is the agentic-step capability the loop drives. It is
// stateless with respect to the loop: each call receives the full
// message history and returns one response.
type Provider interface {
	Step(ctx context.Context, state *AgentState) (AgentResponse, error)
}

// Loop drives the bounded agent/tool alternation described in spec.md
// §4.4.
type Loop struct {
	provider Provider
	executor ToolExecutor
	budget   *TokenBudget
	logger   logging.Logger

	resilienceMgr *resilience.ResilienceManager
	degradation   *resilience.DegradationManager
	offline       *resilience.OfflineManager
}

// New builds a Loop. budget may be nil to disable the token-budget
// guard. resilienceMgr/degradation/offline may be nil, in which case the
// loop builds its own (unshared) instances; pass the same instances used
// elsewhere so a provider going unavailable is visible on the shared
// status surface.
func New(provider Provider, executor ToolExecutor, budget *TokenBudget, logger logging.Logger, resilienceMgr *resilience.ResilienceManager, degradation *resilience.DegradationManager, offline *resilience.OfflineManager) *Loop {
	if resilienceMgr == nil {
		resilienceMgr = resilience.NewResilienceManager()
	}
	if degradation == nil {
		degradation = resilience.NewDegradationManager()
	}
	if offline == nil {
		offline = resilience.NewOfflineManager()
	}
	return &Loop{
		provider:      provider,
		executor:      executor,
		budget:        budget,
		logger:        logging.OrNop(logger),
		resilienceMgr: resilienceMgr,
		degradation:   degradation,
		offline:       offline,
	}
}

// Run drives state to completion: alternating provider steps and tool
// execution until state.Done, in at most state.MaxIterations provider
// calls. Tool execution failures are fed back to the provider as a Tool
// message rather than aborting the loop.
func (l *Loop) Run(ctx context.Context, state *AgentState) (*AgentState, error) {
	for !state.Done && state.CurrentIteration < state.MaxIterations {
		if err := l.step(ctx, state); err != nil {
			return state, err
		}
	}
	if !state.Done {
		l.logger.Warn("agent loop: iteration cap %d reached without EndTurn", state.MaxIterations)
		state.Done = true
	}
	return state, nil
}

func (l *Loop) step(ctx context.Context, state *AgentState) error {
	state.CurrentIteration++

	ctx, span := tracer.Start(ctx, "agentloop.step", trace.WithAttributes(
		attribute.Int("agentloop.iteration", state.CurrentIteration),
		attribute.Int("agentloop.max_iterations", state.MaxIterations),
	))
	defer span.End()

	if l.budget != nil && l.budget.Exceeded(state.Messages) {
		l.logger.Warn("agent loop: token budget exceeded at iteration %d", state.CurrentIteration)
		state.Done = true
		span.SetStatus(codes.Error, "token budget exceeded")
		return nil
	}

	outcome := resilience.ExecuteResilient(ctx, resilience.FeatureAI, l.resilienceMgr, l.degradation, l.offline,
		func(ctx context.Context) (AgentResponse, error) {
			return l.provider.Step(ctx, state)
		},
		nil, // an in-flight agent step has no generic replay representation to queue
	)
	if outcome.Err != nil || outcome.Queued {
		err := outcome.Err
		if err == nil {
			err = fmt.Errorf("ai provider unavailable: offline or degraded")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		state.Done = true
		return fmt.Errorf("agent loop: provider step %d: %w", state.CurrentIteration, err)
	}
	resp := outcome.Value

	state.AppendAssistant(resp.Content, resp.ToolCalls)
	span.SetAttributes(attribute.String("agentloop.stop_reason", resp.StopReason.String()))

	switch resp.StopReason {
	case StopEndTurn:
		state.Done = true
	case StopToolUse:
		l.runToolCalls(ctx, state, resp.ToolCalls)
	case StopMaxTokens, StopError:
		if resp.Err != nil {
			l.logger.Error("agent loop: provider stopped with error: %v", resp.Err)
		}
		state.Done = true
	default:
		state.Done = true
	}

	return nil
}

func (l *Loop) runToolCalls(ctx context.Context, state *AgentState, calls []AgentToolCall) {
	for _, call := range calls {
		_, span := tracer.Start(ctx, "agentloop.tool_call", trace.WithAttributes(
			attribute.String("agentloop.tool_name", call.Name),
			attribute.String("agentloop.tool_call_id", call.ID),
		))

		result, err := l.executor.Execute(ctx, call)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			state.AppendTool(call.ID, fmt.Sprintf("tool execution error: %v", err))
			span.End()
			continue
		}

		if !result.Success {
			span.SetStatus(codes.Error, "tool reported failure")
		}
		state.AppendTool(call.ID, result.Output)
		span.End()
	}
}

// GetFinalResponse is a package-level convenience mirroring
// AgentState.GetFinalResponse for callers that only have the loop result.
func GetFinalResponse(state *AgentState) (string, bool) {
	return state.GetFinalResponse()
}
