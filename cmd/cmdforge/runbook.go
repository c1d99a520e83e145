package main

import (
	"context"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"cmdforge/internal/executor"
	"cmdforge/internal/runbook"
	"cmdforge/internal/security"
)

func newRunbookCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runbook <file.yaml>",
		Short: "Run a declarative runbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunbookFile(c, args[0])
		},
	}
	return cmd
}

func runRunbookFile(c *cli, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading runbook: %w", err)
	}

	rb, err := runbook.Parse(data)
	if err != nil {
		return fmt.Errorf("parsing runbook: %w", err)
	}

	for _, warning := range runbook.UnknownVariableWarnings(rb) {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}

	env := runbook.NewEnvironment(rb)
	runner := runbook.NewRunner(rb, env, executor.New(), security.NewCommandValidator(), c.logger, c.metrics)

	ctx := context.Background()
	for {
		status, err := runner.Run(ctx)
		switch status {
		case runbook.StatusAwaitingConfirmation:
			prompt, ok := runner.PendingConfirmation()
			if !ok {
				return fmt.Errorf("runbook stalled awaiting a confirmation it did not provide")
			}
			approve, confirmErr := confirmStep(prompt)
			if confirmErr != nil {
				return confirmErr
			}
			idx, ok := runner.PendingIndex()
			if !ok {
				return fmt.Errorf("runbook stalled: no pending step index")
			}
			if confirmErr := runner.Confirm(idx, approve); confirmErr != nil {
				return confirmErr
			}
			continue
		case runbook.StatusCompleted:
			printRunbookResults(runner.Results)
			return nil
		case runbook.StatusFailed:
			printRunbookResults(runner.Results)
			return err
		default:
			return err
		}
	}
}

func confirmStep(prompt runbook.ConfirmationPrompt) (bool, error) {
	fmt.Println(prompt.Message())
	sel := promptui.Select{
		Label: fmt.Sprintf("Run step %q?", prompt.StepName),
		Items: []string{"Approve", "Decline"},
	}
	_, choice, err := sel.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return choice == "Approve", nil
}

func printRunbookResults(results []runbook.StepResult) {
	for _, r := range results {
		status := "ok"
		if !r.Success {
			status = "FAILED"
		}
		fmt.Printf("%-20s %-6s %dms\n", r.StepName, status, r.DurationMS)
		if r.Error != "" {
			fmt.Println("  ", r.Error)
		}
	}
}
