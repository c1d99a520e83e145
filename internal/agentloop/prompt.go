package agentloop

import "strings"

// ProjectContext describes the project the loop is operating on, used
// to render the fixed-section system prompt per spec.md §6.
type ProjectContext struct {
	Name          string
	ProjectType   string
	Directory     string
	DetectedCmds  []string
}

// BuildSystemPrompt renders the fixed-order system prompt sections:
// project identity, project context, capability statement, behavioral
// guidelines, and the available-tools list.
func BuildSystemPrompt(project ProjectContext, tools []ToolDescriptor) string {
	var b strings.Builder

	b.WriteString("You are cmdforge, an AI-augmented command palette and workflow orchestrator.\n\n")

	b.WriteString("## Project\n")
	writeField := func(label, value string) {
		if value == "" {
			value = "unknown"
		}
		b.WriteString("- " + label + ": " + value + "\n")
	}
	writeField("Name", project.Name)
	writeField("Type", project.ProjectType)
	writeField("Directory", project.Directory)
	if len(project.DetectedCmds) > 0 {
		b.WriteString("- Detected commands: " + strings.Join(project.DetectedCmds, ", ") + "\n")
	}
	b.WriteString("\n")

	b.WriteString("## Capabilities\n")
	b.WriteString("You can run shell commands and call the tools listed below. ")
	b.WriteString("Every command you propose passes through a security gate before execution; ")
	b.WriteString("a rejected command means you should try a different approach, not retry the same one.\n\n")

	b.WriteString("## Guidelines\n")
	b.WriteString("- Prefer the smallest command that accomplishes the task.\n")
	b.WriteString("- Explain destructive or irreversible actions before taking them.\n")
	b.WriteString("- Stop and report back once the task is complete; do not keep iterating.\n\n")

	b.WriteString("## Available tools\n")
	if len(tools) == 0 {
		b.WriteString("(none registered)\n")
	}
	for _, t := range tools {
		b.WriteString("- " + t.Name)
		if t.Description != "" {
			b.WriteString(": " + t.Description)
		}
		b.WriteString("\n")
	}

	return b.String()
}
