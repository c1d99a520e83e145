// Package redaction decides whether a structured-log or diagnostic
// field name looks like a secret, and masks its value when it does.
// It is deliberately narrower than internal/security's EnvSanitizer:
// this package only ever touches what gets written to a log line or
// status payload, never what gets passed into a child process's
// environment.
package redaction

import "strings"

// Placeholder replaces the value of any field judged sensitive.
const Placeholder = "[REDACTED]"

// sensitiveSubstrings are checked against a lowercased field name.
var sensitiveSubstrings = []string{
	"password", "passwd", "pwd",
	"secret",
	"token",
	"api_key", "apikey",
	"private",
	"credential",
	"auth",
	"ssh_key",
}

// usageFieldAllowlist names fields that contain "token" but are token
// *counts*, not token *values* — these show up constantly in AI
// provider usage payloads and would otherwise be masked on every line.
var usageFieldAllowlist = map[string]bool{
	"tokens":             true,
	"token_count":        true,
	"tokens_used":        true,
	"total_tokens":       true,
	"input_tokens":       true,
	"output_tokens":      true,
	"prompt_tokens":      true,
	"completion_tokens":  true,
	"max_tokens":         true,
	"remaining_tokens":   true,
}

// secretLookingValue flags a value that looks like a credential
// regardless of its field name, e.g. an API key pasted into a field
// that was allowlisted for being a count.
func secretLookingValue(value string) bool {
	return strings.HasPrefix(value, "sk-") ||
		strings.HasPrefix(value, "Bearer ") ||
		strings.Contains(value, "BEGIN PRIVATE KEY")
}

// IsSensitiveKey reports whether name looks like it holds a secret.
func IsSensitiveKey(name string) bool {
	lower := strings.ToLower(name)
	if usageFieldAllowlist[lower] {
		return false
	}
	for _, sub := range sensitiveSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// RedactStringValue returns Placeholder if name is sensitive or value
// looks like a secret on its own merits, else returns value unchanged.
func RedactStringValue(name, value string) string {
	if IsSensitiveKey(name) || secretLookingValue(value) {
		return Placeholder
	}
	return value
}

// RedactMap returns a shallow copy of fields with every sensitive
// string value replaced by Placeholder. Non-string values pass through
// unredacted since they can't hold a readable secret.
func RedactMap(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		if s, ok := v.(string); ok {
			out[k] = RedactStringValue(k, s)
			continue
		}
		out[k] = v
	}
	return out
}
