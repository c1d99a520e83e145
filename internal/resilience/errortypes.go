package resilience

import (
	"errors"
	"fmt"
	"time"
)

// ErrCircuitOpen is returned (wrapped) when a circuit breaker rejects a
// request because it is currently Open.
var ErrCircuitOpen = errors.New("circuit open")

// TransientError marks a failure that is expected to clear on its own
// and is worth retrying.
type TransientError struct {
	Err        error
	RetryAfter time.Duration
	Message    string
}

func (e *TransientError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return "transient: " + e.Err.Error()
	}
	return "transient error"
}

func (e *TransientError) Unwrap() error { return e.Err }

// Transient satisfies the transientClassifier interface.
func (e *TransientError) Transient() bool { return true }

// PermanentError marks a failure that retrying will not fix.
type PermanentError struct {
	Err     error
	Message string
}

func (e *PermanentError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return "permanent: " + e.Err.Error()
	}
	return "permanent error"
}

func (e *PermanentError) Unwrap() error { return e.Err }

// Transient satisfies the transientClassifier interface.
func (e *PermanentError) Transient() bool { return false }

// DegradedError marks a failure that was absorbed by serving fallback
// content instead of the real result.
type DegradedError struct {
	Err             error
	FallbackContent string
	Message         string
}

func (e *DegradedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return "degraded: " + e.Err.Error()
	}
	return "degraded"
}

func (e *DegradedError) Unwrap() error { return e.Err }

// transientClassifier is implemented by errors that know their own
// retryability without needing to be one of the two concrete wrapper
// types above (e.g. the core-specific errors below).
type transientClassifier interface {
	Transient() bool
}

// IsTransient reports whether err should be retried: TransientError and
// anything implementing transientClassifier with Transient() == true.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var tc transientClassifier
	if errors.As(err, &tc) {
		return tc.Transient()
	}
	return false
}

// IsPermanent reports whether err is explicitly marked non-retryable.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	var tc transientClassifier
	if errors.As(err, &tc) {
		return !tc.Transient()
	}
	return false
}

// ValidationRejectedError is returned when the security gate rejects a
// command outright. Not retryable: the command itself needs to change.
type ValidationRejectedError struct {
	Command string
	Reasons []string
}

func (e *ValidationRejectedError) Error() string {
	return fmt.Sprintf("command rejected: %s (%v)", e.Command, e.Reasons)
}

func (e *ValidationRejectedError) Transient() bool { return false }

// TrustRequiredError is returned when a command touches a directory that
// has not been marked trusted.
type TrustRequiredError struct {
	Directory string
}

func (e *TrustRequiredError) Error() string {
	return fmt.Sprintf("directory not trusted: %s", e.Directory)
}

func (e *TrustRequiredError) Transient() bool { return false }

// TransportFailureError wraps a failure to write to or read from an MCP
// server's stdio transport. Retryable: the process may just be slow to
// come up or briefly wedged.
type TransportFailureError struct {
	Server string
	Err    error
}

func (e *TransportFailureError) Error() string {
	return fmt.Sprintf("mcp server %s: transport failure: %v", e.Server, e.Err)
}

func (e *TransportFailureError) Unwrap() error { return e.Err }

func (e *TransportFailureError) Transient() bool { return true }

// ProtocolError wraps a JSON-RPC protocol violation from an MCP server
// (malformed response, version mismatch). Retryable in case it was a
// one-off hiccup, but a persistent ProtocolError should trip the breaker.
type ProtocolError struct {
	Server string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("mcp server %s: protocol error: %v", e.Server, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Transient() bool { return true }

// ToolNotFoundError is returned when a requested tool isn't registered
// by any connected MCP server.
type ToolNotFoundError struct {
	Tool string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Tool)
}

func (e *ToolNotFoundError) Transient() bool { return false }

// ServerNotFoundError is returned when a named MCP server isn't registered.
type ServerNotFoundError struct {
	Server string
}

func (e *ServerNotFoundError) Error() string {
	return fmt.Sprintf("mcp server not found: %s", e.Server)
}

func (e *ServerNotFoundError) Transient() bool { return false }

// CircuitOpenError reports which feature's breaker rejected a request.
type CircuitOpenError struct {
	Feature Feature
}

func (e *CircuitOpenError) Error() string {
	return fmt.Sprintf("%s temporarily unavailable (circuit open)", e.Feature)
}

func (e *CircuitOpenError) Transient() bool { return false }

// TimeoutError reports an operation that exceeded its deadline.
type TimeoutError struct {
	Operation string
	Duration  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Operation, e.Duration)
}

func (e *TimeoutError) Transient() bool { return true }

// RunbookFailedError reports which step of a runbook aborted execution.
type RunbookFailedError struct {
	Runbook string
	Step    string
	Err     error
}

func (e *RunbookFailedError) Error() string {
	return fmt.Sprintf("runbook %s: step %s failed: %v", e.Runbook, e.Step, e.Err)
}

func (e *RunbookFailedError) Unwrap() error { return e.Err }

func (e *RunbookFailedError) Transient() bool { return false }
