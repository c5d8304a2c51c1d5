// Package main provides the entry point for the authgraph CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opengovtools/authgraph/internal/infrastructure/config"
)

var (
	version          = "0.1.0-dev"
	globalConfigPath string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "authgraph",
		Short:   "An entity-relationship graph store with role and position based authorization",
		Version: version,
	}

	rootCmd.PersistentFlags().StringVarP(&globalConfigPath, "config", "c", config.DefaultPath(), "Path to the config file")

	rootCmd.AddCommand(
		newInitCmd(),
		newSeedCmd(),
		newEntitiesCmd(),
		newRelationsCmd(),
		newPermissionsCmd(),
		newCheckCmd(),
		newPositionsCmd(),
		newSchemaCmd(),
		newAuditCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
