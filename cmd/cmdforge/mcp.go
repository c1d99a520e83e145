package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"cmdforge/internal/mcp"
)

func newMCPCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Manage and inspect MCP servers",
	}

	cmd.AddCommand(newMCPListCommand(c), newMCPToolsCommand(c))
	return cmd
}

func mcpConfigPath(c *cli) string {
	if c.cfg != nil && c.cfg.MCPConfigPath != "" {
		return c.cfg.MCPConfigPath
	}
	return ".mcp.json"
}

func newMCPListCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured MCP servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := mcp.NewConfigLoader()
			cfg, err := loader.LoadFromPath(mcpConfigPath(c))
			if errors.Is(err, os.ErrNotExist) {
				fmt.Println("no mcp servers configured")
				return nil
			}
			if err != nil {
				return fmt.Errorf("loading mcp config: %w", err)
			}
			for name, server := range cfg.MCPServers {
				status := "enabled"
				if server.Disabled {
					status = "disabled"
				}
				fmt.Printf("%-20s %-10s %s %v\n", name, status, server.Command, server.Args)
			}
			return nil
		},
	}
}

func newMCPToolsCommand(c *cli) *cobra.Command {
	var timeoutSeconds int

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Start configured MCP servers and list their tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := mcp.NewConfigLoader()
			cfg, err := loader.LoadFromPath(mcpConfigPath(c))
			if errors.Is(err, os.ErrNotExist) {
				cfg = &mcp.Config{}
			} else if err != nil {
				return fmt.Errorf("loading mcp config: %w", err)
			}

			manager := mcp.NewManager(c.logger, c.resilienceMgr, c.degradation, c.offline, c.metrics)
			for name, server := range cfg.GetActiveServers() {
				if err := manager.AddServer(name, server); err != nil {
					return fmt.Errorf("registering server %s: %w", name, err)
				}
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeoutSeconds)*time.Second)
			defer cancel()
			if err := manager.StartAll(ctx); err != nil {
				return fmt.Errorf("starting mcp servers: %w", err)
			}
			defer manager.StopAll(5 * time.Second)

			tools := manager.GetToolsForAI()
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(tools)
		},
	}
	cmd.Flags().IntVar(&timeoutSeconds, "timeout", 10, "seconds to wait for servers to start")
	return cmd
}
