package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opengovtools/authgraph/internal/infrastructure/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the database schema and built-in relation types",
		Long: `Creates the storage schema and seeds the built-in relation types
(has_role, has_permission, fills_position, belongs_to_unit).

Writes a default config file if none exists. Safe to run repeatedly.`,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if !config.Exists(globalConfigPath) {
		if err := config.Write(config.Default(), globalConfigPath); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
		fmt.Printf("Created %s\n", globalConfigPath)
	}

	return withDeps(ctx, func(d *Deps) error {
		created, err := d.Seeder.Bootstrap(ctx)
		if err != nil {
			return fmt.Errorf("bootstrapping relation types: %w", err)
		}
		if created > 0 {
			fmt.Printf("Created %d built-in relation types\n", created)
		}
		fmt.Println("Authgraph initialized successfully!")
		return nil
	})
}
