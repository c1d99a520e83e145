package runbook

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New()

// Validate runs struct-tag validation over rb (non-empty name, non-empty
// steps, required fields per Step/VariableSpec), then the
// Select/Options invariant that struct tags alone can't express.
func Validate(rb *Runbook) error {
	if err := structValidator.Struct(rb); err != nil {
		return fmt.Errorf("runbook: invalid: %w", err)
	}

	for name, spec := range rb.Variables {
		if err := spec.Validate(); err != nil {
			return fmt.Errorf("runbook: variable %q: %w", name, err)
		}
	}

	return nil
}
