package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"cmdforge/internal/config"
	"cmdforge/internal/logging"
	"cmdforge/internal/observability"
	"cmdforge/internal/resilience"
)

// isTTY reports whether both stdin and stdout are attached to a
// terminal, the same check the teacher's CLI uses to decide between
// interactive and non-interactive output.
func isTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// cli carries the flags and lazily-built collaborators shared across
// subcommands.
type cli struct {
	verbose bool
	debug   bool

	cfg    *config.Config
	logger logging.Logger

	// resilienceMgr/degradation/offline/metrics are constructed once here
	// and threaded to every call site that crosses a feature boundary
	// (MCP calls, agent provider steps), so the status server and these
	// call sites observe the same circuit/degradation/queue state.
	resilienceMgr *resilience.ResilienceManager
	degradation   *resilience.DegradationManager
	offline       *resilience.OfflineManager
	metrics       *observability.Metrics
}

func (c *cli) init(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	c.cfg = cfg

	level := "info"
	if c.debug {
		level = "debug"
	}
	backend := observability.NewLogger(observability.LogConfig{Level: level, Format: "text", Output: os.Stderr})
	c.logger = logging.FromObservabilityWithComponent(backend, "cmdforge")

	c.metrics = observability.NewMetrics()
	c.resilienceMgr = resilience.NewResilienceManagerWithMetrics(c.metrics)
	c.degradation = resilience.NewDegradationManagerWithMetrics(c.metrics)
	c.offline = resilience.NewOfflineManagerWithMetrics(c.metrics)
	return nil
}

// NewRootCommand builds the cmdforge cobra command tree.
func NewRootCommand() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "cmdforge",
		Short: "AI-augmented command palette and workflow orchestrator",
		Long: `cmdforge indexes the commands available in a project (npm scripts,
cargo targets, make rules, git aliases, MCP tools), runs them through a
resilience kernel and a security gate, and can drive an agentic loop or a
declarative runbook on top of them.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.init,
	}

	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVarP(&c.debug, "debug", "d", false, "debug logging")

	root.AddCommand(
		newRunCommand(c),
		newMCPCommand(c),
		newRunbookCommand(c),
		newTrustCommand(c),
		newDoctorCommand(c),
		newStatusCommand(c),
	)

	return root
}
