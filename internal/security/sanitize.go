package security

import "strings"

// SanitizedEnv is the outcome of sanitizing one environment variable
// before it's handed to an MCP server's child process.
type SanitizedEnv struct {
	Name     string
	Value    string
	Redacted bool
	Truncated bool
}

// SanitizationOptions tunes EnvSanitizer.Sanitize.
type SanitizationOptions struct {
	MaxValueLength  int
	RedactSensitive bool
	Allowlist       map[string]bool
	Blocklist       map[string]bool
}

// DefaultSanitizationOptions matches the original's defaults.
func DefaultSanitizationOptions() SanitizationOptions {
	return SanitizationOptions{MaxValueLength: 10000, RedactSensitive: true}
}

// EnvSanitizer decides which environment variables are safe to forward
// to an MCP server's child process, redacting anything that looks like
// a credential and truncating anything absurdly long.
type EnvSanitizer struct {
	sensitiveNames []string
}

// NewEnvSanitizer builds a sanitizer with the default sensitive-name list.
func NewEnvSanitizer() *EnvSanitizer {
	return &EnvSanitizer{
		sensitiveNames: []string{
			"password", "passwd", "pwd", "secret", "token", "api_key",
			"apikey", "private", "credential", "auth",
		},
	}
}

// AddSensitivePattern extends the sensitive-name list with an extra substring.
func (s *EnvSanitizer) AddSensitivePattern(pattern string) {
	s.sensitiveNames = append(s.sensitiveNames, strings.ToLower(pattern))
}

// IsSensitive reports whether name looks like it holds a credential.
func (s *EnvSanitizer) IsSensitive(name string) bool {
	lower := strings.ToLower(name)
	for _, sub := range s.sensitiveNames {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

// Sanitize applies the blocklist, then sensitivity redaction, then
// length truncation, in that order, to a single env var.
func (s *EnvSanitizer) Sanitize(name, value string, opts SanitizationOptions) SanitizedEnv {
	if opts.Blocklist[name] {
		return SanitizedEnv{Name: name, Value: "[BLOCKED]", Redacted: true}
	}

	sensitive := opts.RedactSensitive && s.IsSensitive(name) && !opts.Allowlist[name]
	if sensitive {
		return SanitizedEnv{Name: name, Value: "[REDACTED]", Redacted: true}
	}

	if opts.MaxValueLength > 0 && len(value) > opts.MaxValueLength {
		return SanitizedEnv{
			Name:      name,
			Value:     value[:opts.MaxValueLength] + "...[TRUNCATED]",
			Truncated: true,
		}
	}

	return SanitizedEnv{Name: name, Value: value}
}

// SanitizeValue is a convenience wrapper returning just the resulting value.
func (s *EnvSanitizer) SanitizeValue(name, value string, opts SanitizationOptions) string {
	return s.Sanitize(name, value, opts).Value
}

// SanitizeAll sanitizes every entry in env.
func (s *EnvSanitizer) SanitizeAll(env map[string]string, opts SanitizationOptions) map[string]SanitizedEnv {
	out := make(map[string]SanitizedEnv, len(env))
	for name, value := range env {
		out[name] = s.Sanitize(name, value, opts)
	}
	return out
}
