package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cmdforge/internal/executor"
	"cmdforge/internal/mcp"
)

func newDoctorCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the shell and config work and the MCP config file is valid",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(c)
		},
	}
}

type doctorCheck struct {
	name string
	err  error
}

func runDoctor(c *cli) error {
	checks := []doctorCheck{
		checkShell(),
		checkConfig(c),
		checkMCPConfig(c),
	}

	failed := false
	for _, chk := range checks {
		if chk.err != nil {
			failed = true
			fmt.Printf("%s %s: %v\n", color.RedString("fail"), chk.name, chk.err)
			continue
		}
		fmt.Printf("%s %s\n", color.GreenString("ok"), chk.name)
	}
	if failed {
		return fmt.Errorf("one or more checks failed")
	}
	return nil
}

func checkShell() doctorCheck {
	shell := executor.New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	res, err := shell.Run(ctx, executor.Request{CommandText: "true", CaptureStdout: false, CaptureStderr: false})
	if err == nil && res.ExitCode != 0 {
		err = fmt.Errorf("shell exited with status %d", res.ExitCode)
	}
	return doctorCheck{name: "shell", err: err}
}

func checkConfig(c *cli) doctorCheck {
	if c.cfg == nil {
		return doctorCheck{name: "configuration", err: fmt.Errorf("configuration was not loaded")}
	}
	return doctorCheck{name: "configuration"}
}

func checkMCPConfig(c *cli) doctorCheck {
	loader := mcp.NewConfigLoader()
	cfg, err := loader.LoadFromPath(mcpConfigPath(c))
	if errors.Is(err, os.ErrNotExist) {
		return doctorCheck{name: "mcp config (none configured)"}
	}
	if err != nil {
		return doctorCheck{name: "mcp config", err: err}
	}
	if err := cfg.Validate(); err != nil {
		return doctorCheck{name: "mcp config", err: err}
	}
	return doctorCheck{name: fmt.Sprintf("mcp config (%d servers)", len(cfg.MCPServers))}
}
