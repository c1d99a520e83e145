package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"cmdforge/internal/executor"
	"cmdforge/internal/resilience"
	"cmdforge/internal/security"
)

var severityColor = map[security.Severity]func(a ...interface{}) string{
	security.SeverityLow:      color.New(color.FgCyan).SprintFunc(),
	security.SeverityMedium:   color.New(color.FgYellow).SprintFunc(),
	security.SeverityHigh:     color.New(color.FgYellow, color.Bold).SprintFunc(),
	security.SeverityCritical: color.New(color.FgRed, color.Bold).SprintFunc(),
}

func newRunCommand(c *cli) *cobra.Command {
	var workingDir string
	var force bool

	cmd := &cobra.Command{
		Use:   "run [command text]",
		Short: "Validate, trust-check, and run a shell command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			commandText := strings.Join(args, " ")
			return runCommandText(c, commandText, workingDir, force)
		},
	}

	cmd.Flags().StringVar(&workingDir, "dir", "", "working directory to run in (defaults to cwd)")
	cmd.Flags().BoolVar(&force, "force", false, "skip the trust prompt for an untrusted directory")
	return cmd
}

func runCommandText(c *cli, commandText, workingDir string, force bool) error {
	invocationID := uuid.NewString()
	c.logger.Debug("run %s: %q", invocationID, commandText)

	dir := workingDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		dir = wd
	}

	validator := security.NewCommandValidator()
	result := validator.Validate(commandText)
	printValidation(result)
	if !result.IsSafe {
		return fmt.Errorf("command rejected by security gate")
	}

	if err := ensureTrusted(dir, force); err != nil {
		return err
	}

	shell := executor.New()
	res, err := shell.Run(context.Background(), executor.Request{
		CommandText:   commandText,
		WorkingDir:    dir,
		CaptureStdout: true,
		CaptureStderr: true,
	})
	if err != nil {
		return fmt.Errorf("running command: %w", err)
	}

	if res.Stdout != "" {
		fmt.Fprint(os.Stdout, res.Stdout)
	}
	if res.Stderr != "" {
		fmt.Fprint(os.Stderr, res.Stderr)
	}
	if res.ExitCode != 0 {
		return fmt.Errorf("command exited with status %d", res.ExitCode)
	}
	return nil
}

func printValidation(result security.ValidationResult) {
	paint := severityColor[result.Severity]
	for _, e := range result.Errors {
		line := fmt.Sprintf("[%s] %s", result.Severity, e.Description())
		if paint != nil {
			line = paint(line)
		}
		fmt.Fprintln(os.Stderr, line)
	}
	for _, w := range result.Warnings {
		fmt.Fprintln(os.Stderr, color.YellowString("warning: %s", w))
	}
}

func ensureTrusted(dir string, force bool) error {
	path, err := security.TrustFilePath()
	if err != nil {
		return err
	}
	store, err := security.LoadTrustStore(path)
	if err != nil {
		return err
	}
	if store.IsTrusted(dir) {
		return nil
	}
	if !force {
		for _, line := range security.TrustWarningMessage(dir) {
			fmt.Fprintln(os.Stderr, color.YellowString(line))
		}
		if !isTTY() {
			return &resilience.TrustRequiredError{Directory: dir}
		}
		if !promptYesNo(fmt.Sprintf("Trust %s and run commands here?", dir)) {
			return &resilience.TrustRequiredError{Directory: dir}
		}
	}
	return store.TrustDirectory(dir, path)
}
