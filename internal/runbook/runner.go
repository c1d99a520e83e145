package runbook

import (
	"context"
	"fmt"
	"time"

	"cmdforge/internal/executor"
	"cmdforge/internal/logging"
	"cmdforge/internal/observability"
	"cmdforge/internal/resilience"
	"cmdforge/internal/security"
)

// Status is the runner's current lifecycle state.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusAwaitingConfirmation
	StatusCompleted
	StatusFailed
)

// Runner executes a Runbook's steps in declaration order, applying
// condition skipping, the AwaitingConfirmation pause, variable
// interpolation, and per-step failure policy.
//
// Confirmation is modeled as a state the caller must explicitly clear
// via Confirm rather than a blocking prompt embedded here, so the
// runner stays embeddable in cooperative or parallel schedulers per
// spec.md §9's DESIGN NOTES.
type Runner struct {
	rb        *Runbook
	env       *Environment
	shell     *executor.Executor
	validator *security.CommandValidator // nil disables the security gate
	logger    logging.Logger
	metrics   *observability.Metrics

	Results []StepResult

	status    Status
	index     int
	confirmed map[int]bool
	err       error
}

// NewRunner builds a Runner. validator may be nil to skip the security
// gate (the gate is optional per spec.md §2's component list). metrics
// may be nil to skip reporting RunbookStepsRun/RunbookFailures.
func NewRunner(rb *Runbook, env *Environment, shell *executor.Executor, validator *security.CommandValidator, logger logging.Logger, metrics *observability.Metrics) *Runner {
	return &Runner{
		rb:        rb,
		env:       env,
		shell:     shell,
		validator: validator,
		logger:    logging.OrNop(logger),
		metrics:   metrics,
		confirmed: make(map[int]bool),
	}
}

// Status returns the runner's current state.
func (r *Runner) Status() Status { return r.status }

// Err returns the error that caused a Failed status, if any.
func (r *Runner) Err() error { return r.err }

// Run advances through steps until completion, failure, or a
// confirmation gate is reached. Calling Run again after
// AwaitingConfirmation without an intervening Confirm re-enters the
// same gate.
func (r *Runner) Run(ctx context.Context) (Status, error) {
	r.status = StatusRunning

	for r.index < len(r.rb.Steps) {
		step := r.rb.Steps[r.index]

		if step.Condition != "" && !EvaluateCondition(step.Condition, r.env) {
			r.logger.Debug("runbook %s: skipping step %q (condition false)", r.rb.Name, step.Name)
			r.index++
			continue
		}

		if step.Confirm && !r.confirmed[r.index] {
			r.status = StatusAwaitingConfirmation
			return r.status, nil
		}

		result, stepErr := r.runStep(ctx, step)
		r.Results = append(r.Results, result)
		r.recordStepMetric(result.Success)

		if stepErr != nil {
			if step.ContinueOnError || step.Optional {
				r.logger.Warn("runbook %s: step %q failed but is optional/continue_on_error: %v", r.rb.Name, step.Name, stepErr)
				r.index++
				continue
			}
			r.status = StatusFailed
			r.err = stepErr
			if r.metrics != nil {
				r.metrics.RunbookFailures.WithLabelValues(r.rb.Name).Inc()
			}
			return r.status, stepErr
		}

		r.index++
	}

	r.status = StatusCompleted
	return r.status, nil
}

func (r *Runner) recordStepMetric(success bool) {
	if r.metrics == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.metrics.RunbookStepsRun.WithLabelValues(outcome).Inc()
}

// Confirm clears the AwaitingConfirmation gate at stepIndex. approve=false
// aborts the run with a Failed status instead of executing the step.
// Confirm must be called with the exact step index the runner is
// currently paused at.
func (r *Runner) Confirm(stepIndex int, approve bool) error {
	if r.status != StatusAwaitingConfirmation {
		return fmt.Errorf("runbook %s: not awaiting confirmation", r.rb.Name)
	}
	if stepIndex != r.index {
		return fmt.Errorf("runbook %s: awaiting confirmation on step %d, not %d", r.rb.Name, r.index, stepIndex)
	}

	if !approve {
		r.status = StatusFailed
		r.err = fmt.Errorf("runbook %s: step %q declined by user", r.rb.Name, r.rb.Steps[stepIndex].Name)
		return r.err
	}

	r.confirmed[stepIndex] = true
	r.status = StatusRunning
	return nil
}

// PendingConfirmation returns the confirmation prompt for the step the
// runner is currently paused at, if any.
func (r *Runner) PendingConfirmation() (ConfirmationPrompt, bool) {
	if r.status != StatusAwaitingConfirmation {
		return ConfirmationPrompt{}, false
	}
	return BuildConfirmationPrompt(r.rb.Steps[r.index], r.env), true
}

// PendingIndex returns the step index the runner is paused at, awaiting
// a Confirm call. The second return is false when nothing is pending.
func (r *Runner) PendingIndex() (int, bool) {
	if r.status != StatusAwaitingConfirmation {
		return 0, false
	}
	return r.index, true
}

func (r *Runner) runStep(ctx context.Context, step Step) (StepResult, error) {
	start := time.Now()

	cmdText := Interpolate(step.Command, r.env)
	workingDir := Interpolate(step.WorkingDir, r.env)
	envOverlay := InterpolateEnv(step.Env, r.env)

	if r.validator != nil {
		vr := r.validator.Validate(cmdText)
		if !vr.IsSafe {
			rejectErr := &resilience.ValidationRejectedError{Command: cmdText, Reasons: validationReasons(vr)}
			return StepResult{
				StepName:   step.Name,
				Success:    false,
				Error:      rejectErr.Error(),
				DurationMS: time.Since(start).Milliseconds(),
			}, &resilience.RunbookFailedError{Runbook: r.rb.Name, Step: step.Name, Err: rejectErr}
		}
	}

	runCtx := ctx
	if step.TimeoutSeconds > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, time.Duration(step.TimeoutSeconds)*time.Second)
		defer cancel()
	}

	res, err := r.shell.Run(runCtx, executor.Request{
		CommandText:   cmdText,
		WorkingDir:    workingDir,
		EnvOverlay:    envOverlay,
		CaptureStdout: true,
		CaptureStderr: true,
	})
	duration := time.Since(start).Milliseconds()

	if err != nil {
		return StepResult{StepName: step.Name, Success: false, Error: err.Error(), DurationMS: duration},
			&resilience.RunbookFailedError{Runbook: r.rb.Name, Step: step.Name, Err: err}
	}

	exitCode := res.ExitCode
	result := StepResult{StepName: step.Name, Success: exitCode == 0, ExitCode: &exitCode, DurationMS: duration}
	if exitCode != 0 {
		result.Error = res.Stderr
		return result, &resilience.RunbookFailedError{
			Runbook: r.rb.Name,
			Step:    step.Name,
			Err:     fmt.Errorf("exit code %d: %s", exitCode, lastLine(res.Stderr)),
		}
	}

	return result, nil
}

func validationReasons(vr security.ValidationResult) []string {
	reasons := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		reasons = append(reasons, e.Description())
	}
	return reasons
}

func lastLine(s string) string {
	if s == "" {
		return ""
	}
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '\n' && i != len(s)-1 {
			return s[i+1:]
		}
	}
	return s
}
