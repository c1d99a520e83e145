// Command cmdforge is the terminal entry point for the resilience
// kernel, MCP manager, agentic loop, runbook executor, and security
// gate: an AI-augmented command palette for a developer's shell.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var red = color.New(color.FgRed).SprintFunc()

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}
}
