package security

import "testing"

func TestEnvSanitizerRedactsSensitiveNames(t *testing.T) {
	s := NewEnvSanitizer()
	opts := DefaultSanitizationOptions()

	for _, name := range []string{"API_KEY", "DB_PASSWORD", "AUTH_TOKEN", "SSH_PRIVATE_KEY"} {
		got := s.Sanitize(name, "supersecret", opts)
		if !got.Redacted || got.Value != "[REDACTED]" {
			t.Fatalf("expected %s redacted, got %+v", name, got)
		}
	}
}

func TestEnvSanitizerPassesThroughNonSensitive(t *testing.T) {
	s := NewEnvSanitizer()
	opts := DefaultSanitizationOptions()

	got := s.Sanitize("NODE_ENV", "production", opts)
	if got.Redacted || got.Value != "production" {
		t.Fatalf("expected NODE_ENV passed through, got %+v", got)
	}
}

func TestEnvSanitizerBlocklistWins(t *testing.T) {
	s := NewEnvSanitizer()
	opts := DefaultSanitizationOptions()
	opts.Blocklist = map[string]bool{"NODE_ENV": true}

	got := s.Sanitize("NODE_ENV", "production", opts)
	if got.Value != "[BLOCKED]" {
		t.Fatalf("expected blocked value, got %+v", got)
	}
}

func TestEnvSanitizerAllowlistOverridesSensitivity(t *testing.T) {
	s := NewEnvSanitizer()
	opts := DefaultSanitizationOptions()
	opts.Allowlist = map[string]bool{"API_KEY": true}

	got := s.Sanitize("API_KEY", "not-actually-secret", opts)
	if got.Redacted {
		t.Fatalf("expected allowlisted key to bypass redaction")
	}
}

func TestEnvSanitizerTruncatesLongValues(t *testing.T) {
	s := NewEnvSanitizer()
	opts := SanitizationOptions{MaxValueLength: 10, RedactSensitive: true}

	long := "0123456789abcdef"
	got := s.Sanitize("SOME_VAR", long, opts)
	if !got.Truncated {
		t.Fatalf("expected value truncated")
	}
	if got.Value != "0123456789...[TRUNCATED]" {
		t.Fatalf("unexpected truncated value: %q", got.Value)
	}
}
