package security

import "fmt"

// Gate composes the command validator and trust store into the single
// entrypoint every command execution path (agentic loop, runbook step,
// manual palette invocation) calls before a shell ever sees a command.
type Gate struct {
	validator    *CommandValidator
	trust        *TrustStore
	trustPath    string
	sanitizer    *EnvSanitizer
	sanitizeOpts SanitizationOptions
}

// NewGate builds a Gate from an already-loaded trust store.
func NewGate(trust *TrustStore, trustPath string) *Gate {
	return &Gate{
		validator:    NewCommandValidator(),
		trust:        trust,
		trustPath:    trustPath,
		sanitizer:    NewEnvSanitizer(),
		sanitizeOpts: DefaultSanitizationOptions(),
	}
}

// WithBlockedPattern forwards to the underlying CommandValidator.
func (g *Gate) WithBlockedPattern(pattern string) *Gate {
	g.validator.WithBlockedPattern(pattern)
	return g
}

// Authorize validates command against the security rules and confirms
// workDir is trusted, returning a descriptive error naming exactly why
// the command was rejected if either check fails.
func (g *Gate) Authorize(command, workDir string) error {
	result := g.validator.Validate(command)
	if !result.IsSafe {
		reasons := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			reasons = append(reasons, e.Description())
		}
		return &ValidationRejectedErr{Command: command, Reasons: reasons}
	}

	if !g.trust.IsTrusted(workDir) {
		return &TrustRequiredErr{Directory: workDir}
	}

	return nil
}

// TrustWorkDir records workDir as trusted, persisting the change.
func (g *Gate) TrustWorkDir(workDir string) error {
	return g.trust.TrustDirectory(workDir, g.trustPath)
}

// SanitizeEnv filters env through the gate's sanitizer before it's
// forwarded to an MCP server's child process.
func (g *Gate) SanitizeEnv(env map[string]string) map[string]string {
	sanitized := g.sanitizer.SanitizeAll(env, g.sanitizeOpts)
	out := make(map[string]string, len(sanitized))
	for name, s := range sanitized {
		out[name] = s.Value
	}
	return out
}

// RiskScore forwards to the underlying CommandValidator.
func (g *Gate) RiskScore(command string) int {
	return g.validator.RiskScore(command)
}

// ValidationRejectedErr is returned when Authorize's validation step fails.
type ValidationRejectedErr struct {
	Command string
	Reasons []string
}

func (e *ValidationRejectedErr) Error() string {
	return fmt.Sprintf("command rejected: %s (%v)", e.Command, e.Reasons)
}

// TrustRequiredErr is returned when Authorize's trust check fails.
type TrustRequiredErr struct {
	Directory string
}

func (e *TrustRequiredErr) Error() string {
	return fmt.Sprintf("directory not trusted: %s", e.Directory)
}
