package runbook

import (
	"fmt"

	diffmatchpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// ConfirmationPrompt is what a CLI or UI host renders when a step with
// confirm=true is reached: the step's name/description plus a readable
// diff between its raw template and the interpolated command that will
// actually run.
type ConfirmationPrompt struct {
	StepName    string
	Description string
	Diff        string
}

// BuildConfirmationPrompt renders the diff between a step's raw
// command_template and its interpolated form, so a user approving the
// step can see exactly what variable substitution produced.
func BuildConfirmationPrompt(step Step, env *Environment) ConfirmationPrompt {
	interpolated := Interpolate(step.Command, env)

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(step.Command, interpolated, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var rendered string
	if step.Command == interpolated {
		rendered = interpolated
	} else {
		rendered = dmp.DiffPrettyText(diffs)
	}

	return ConfirmationPrompt{
		StepName:    step.Name,
		Description: step.Description,
		Diff:        rendered,
	}
}

// Message renders the confirmation prompt as plain text for a
// non-interactive or logging consumer.
func (p ConfirmationPrompt) Message() string {
	if p.Description != "" {
		return fmt.Sprintf("Run step %q (%s)?\n%s", p.StepName, p.Description, p.Diff)
	}
	return fmt.Sprintf("Run step %q?\n%s", p.StepName, p.Diff)
}
