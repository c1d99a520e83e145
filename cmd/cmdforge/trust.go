package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cmdforge/internal/security"
)

func newTrustCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trust",
		Short: "Manage trusted directories",
	}
	cmd.AddCommand(newTrustListCommand(), newTrustAddCommand(), newTrustRemoveCommand())
	return cmd
}

func newTrustListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trusted directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := security.TrustFilePath()
			if err != nil {
				return err
			}
			store, err := security.LoadTrustStore(path)
			if err != nil {
				return err
			}
			if store.TrustHomeSubdirs {
				fmt.Println("(all subdirectories of $HOME are trusted)")
			}
			for dir := range store.TrustedDirectories {
				fmt.Println(dir)
			}
			return nil
		},
	}
}

func newTrustAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add [directory]",
		Short: "Trust a directory (defaults to the current one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := trustTargetDir(args)
			if err != nil {
				return err
			}
			path, err := security.TrustFilePath()
			if err != nil {
				return err
			}
			store, err := security.LoadTrustStore(path)
			if err != nil {
				return err
			}
			if err := store.TrustDirectory(dir, path); err != nil {
				return err
			}
			fmt.Printf("trusted %s\n", dir)
			return nil
		},
	}
}

func newTrustRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove [directory]",
		Short: "Revoke trust for a directory (defaults to the current one)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := trustTargetDir(args)
			if err != nil {
				return err
			}
			path, err := security.TrustFilePath()
			if err != nil {
				return err
			}
			store, err := security.LoadTrustStore(path)
			if err != nil {
				return err
			}
			if err := store.UntrustDirectory(dir, path); err != nil {
				return err
			}
			fmt.Printf("untrusted %s\n", dir)
			return nil
		},
	}
}

func trustTargetDir(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return os.Getwd()
}
