package runbook

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML runbook document, rejecting unknown top-level and
// step-level keys per spec.md §6, and runs Validate on the result.
func Parse(data []byte) (*Runbook, error) {
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)

	var rb Runbook
	if err := dec.Decode(&rb); err != nil {
		return nil, fmt.Errorf("runbook: parse: %w", err)
	}

	if err := Validate(&rb); err != nil {
		return nil, err
	}

	return &rb, nil
}

// Encode re-serializes a Runbook to YAML. Parse(Encode(rb)) is
// equivalent to rb modulo mapping key ordering, satisfying the
// round-trip invariant from spec.md §8.
func Encode(rb *Runbook) ([]byte, error) {
	data, err := yaml.Marshal(rb)
	if err != nil {
		return nil, fmt.Errorf("runbook: encode: %w", err)
	}
	return data, nil
}

// UnknownVariableWarnings scans every step's command/working_dir/env
// templates for `{{ name }}` references that are neither declared in
// Variables nor prefixed with env./ENV_, per spec.md §4.5's
// "produce warnings at parse time but are not fatal" rule.
func UnknownVariableWarnings(rb *Runbook) []string {
	var warnings []string
	seen := make(map[string]bool)

	check := func(s string) {
		for _, name := range extractTemplateNames(s) {
			if seen[name] {
				continue
			}
			if _, declared := rb.Variables[name]; declared {
				continue
			}
			if strings.HasPrefix(name, "env.") || strings.HasPrefix(name, "ENV_") {
				continue
			}
			seen[name] = true
			warnings = append(warnings, fmt.Sprintf("undeclared variable %q referenced in runbook", name))
		}
	}

	for _, step := range rb.Steps {
		check(step.Command)
		check(step.WorkingDir)
		for _, v := range step.Env {
			check(v)
		}
	}

	return warnings
}
