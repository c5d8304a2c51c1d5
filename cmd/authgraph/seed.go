package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opengovtools/authgraph/internal/domain/services"
	"github.com/opengovtools/authgraph/internal/infrastructure/seedfile"
)

func newSeedCmd() *cobra.Command {
	var file string
	var dryRun bool
	var onConflict string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import entities and relations from a seed file",
		Long: `Imports a YAML or JSON seed document into the graph.

Entities are created first, then relations; a relation may reference an
entity defined anywhere in the file. Re-importing the same file is a no-op
unless --on-conflict upsert is given.

Examples:
  authgraph seed --file org.yaml
  authgraph seed --file org.yaml --dry-run
  authgraph seed --file org.yaml --on-conflict upsert`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, file, dryRun, onConflict)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Seed file to import (required)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and resolve without writing")
	cmd.Flags().StringVar(&onConflict, "on-conflict", string(services.ConflictSkip), "Existing-entity policy: skip or upsert")
	cmd.MarkFlagRequired("file")

	return cmd
}

func runSeed(cmd *cobra.Command, file string, dryRun bool, onConflict string) error {
	ctx := cmd.Context()

	policy := services.ConflictPolicy(onConflict)
	if policy != services.ConflictSkip && policy != services.ConflictUpsert {
		return fmt.Errorf("invalid --on-conflict value %q (expected skip or upsert)", onConflict)
	}

	doc, err := seedfile.ParseFile(file)
	if err != nil {
		return err
	}

	return withDeps(ctx, func(d *Deps) error {
		if _, err := d.Seeder.Bootstrap(ctx); err != nil {
			return fmt.Errorf("bootstrapping relation types: %w", err)
		}

		result, err := d.Seeder.Import(ctx, doc, services.ImportOptions{
			DryRun:     dryRun,
			OnConflict: policy,
		})
		if err != nil {
			return fmt.Errorf("importing seed: %w", err)
		}

		if dryRun {
			fmt.Println("Dry run: nothing was written.")
		}
		fmt.Printf("Entities:  %d created, %d updated, %d skipped\n",
			result.EntitiesCreated, result.EntitiesUpdated, result.EntitiesSkipped)
		fmt.Printf("Relations: %d created, %d skipped\n",
			result.RelationsCreated, result.RelationsSkipped)
		return nil
	})
}
