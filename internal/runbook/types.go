// Package runbook implements the declarative workflow executor: parsing
// a YAML runbook document, interpolating variables, evaluating step
// conditions, and sequencing steps with per-step failure policies.
package runbook

import "fmt"

// VarType is the declared type of one runbook variable.
type VarType string

const (
	VarString  VarType = "string"
	VarBoolean VarType = "boolean"
	VarNumber  VarType = "number"
	VarSelect  VarType = "select"
)

// VariableSpec declares one runbook variable's type, default, and
// (for Select) the allowed option set.
type VariableSpec struct {
	Type     VarType  `yaml:"type" validate:"required,oneof=string boolean number select"`
	Default  string   `yaml:"default,omitempty"`
	Prompt   string   `yaml:"prompt,omitempty"`
	Required bool     `yaml:"required,omitempty"`
	Options  []string `yaml:"options,omitempty"`
}

// Validate checks the Select/Options invariant from spec.md §3.
func (v VariableSpec) Validate() error {
	if v.Type == VarSelect && len(v.Options) == 0 {
		return fmt.Errorf("runbook: variable of type select must declare non-empty options")
	}
	return nil
}

// Step is one unit of work in a runbook, executed strictly in
// declaration order.
type Step struct {
	Name            string            `yaml:"name" validate:"required"`
	Command         string            `yaml:"command" validate:"required"`
	Description     string            `yaml:"description,omitempty"`
	Condition       string            `yaml:"condition,omitempty"`
	Confirm         bool              `yaml:"confirm,omitempty"`
	Optional        bool              `yaml:"optional,omitempty"`
	ContinueOnError bool              `yaml:"continue_on_error,omitempty"`
	TimeoutSeconds  int               `yaml:"timeout,omitempty"`
	WorkingDir      string            `yaml:"working_dir,omitempty"`
	Env             map[string]string `yaml:"env,omitempty"`
}

// Runbook is a named, variable-parameterized sequence of steps.
type Runbook struct {
	Name        string                  `yaml:"name" validate:"required"`
	Description string                  `yaml:"description,omitempty"`
	Version     string                  `yaml:"version,omitempty"`
	Variables   map[string]VariableSpec `yaml:"variables,omitempty"`
	Steps       []Step                  `yaml:"steps" validate:"required,min=1,dive"`
}

// StepResult records the outcome of running one step.
type StepResult struct {
	StepName      string
	Success       bool
	ExitCode      *int
	Error         string
	DurationMS    int64
}
