package agentloop

import (
	"github.com/pkoukk/tiktoken-go"
)

// TokenBudget caps the agentic loop's conversation size independently
// of MaxIterations: a handful of iterations with huge tool output can
// blow a provider's context window long before the iteration cap bites.
type TokenBudget struct {
	maxTokens int
	enc       *tiktoken.Tiktoken
}

// NewTokenBudget builds a budget guard using the cl100k_base encoding
// (the common encoding across recent chat-completion models), capping
// the conversation at maxTokens. Falls back to a nil encoder (disabling
// precise counting in favor of a byte-length heuristic) if the
// tiktoken-go encoding data can't be loaded, so a budget guard never
// becomes a reason the loop can't start.
func NewTokenBudget(maxTokens int) *TokenBudget {
	enc, _ := tiktoken.GetEncoding("cl100k_base")
	return &TokenBudget{maxTokens: maxTokens, enc: enc}
}

// Count returns the token count of the full conversation so far.
func (b *TokenBudget) Count(messages []AgentMessage) int {
	total := 0
	for _, m := range messages {
		total += b.countString(m.Content)
		for _, tc := range m.ToolCalls {
			total += b.countString(tc.Name)
		}
	}
	return total
}

func (b *TokenBudget) countString(s string) int {
	if s == "" {
		return 0
	}
	if b.enc != nil {
		return len(b.enc.Encode(s, nil, nil))
	}
	// Heuristic fallback: ~4 bytes per token, matching the encoder's
	// rough average for English text.
	return len(s) / 4
}

// Exceeded reports whether messages have already crossed maxTokens.
func (b *TokenBudget) Exceeded(messages []AgentMessage) bool {
	if b.maxTokens <= 0 {
		return false
	}
	return b.Count(messages) > b.maxTokens
}
