package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"cmdforge/internal/statusserver"
)

func newStatusCommand(c *cli) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Serve the read-only resilience/MCP/offline-queue status HTTP surface",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.StatusAddr
			}
			srv := statusserver.New(c.resilienceMgr, c.degradation, c.offline, c.metrics)
			fmt.Printf("status server listening on %s\n", addr)
			return http.ListenAndServe(addr, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "address to listen on (defaults to the configured status_addr)")
	return cmd
}
