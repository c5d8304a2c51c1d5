package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Summarize the observed shape of the graph",
		Long: `Prints what entity types exist, which property keys they carry,
and how relation types connect them. The store is schema-less; this is the
schema the data implies.`,
		RunE: runSchema,
	}
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		entityTypes, err := d.Ontology.EntityTypes(ctx)
		if err != nil {
			return fmt.Errorf("summarizing entity types: %w", err)
		}
		relationTypes, err := d.Ontology.RelationTypes(ctx)
		if err != nil {
			return fmt.Errorf("summarizing relation types: %w", err)
		}

		fmt.Println("Entity types:")
		if len(entityTypes) == 0 {
			fmt.Println("  (none)")
		}
		for _, s := range entityTypes {
			fmt.Printf("\n  %s (%d)\n", s.EntityType, s.Count)
			if len(s.PropertyKeys) > 0 {
				fmt.Printf("    properties: %s\n", strings.Join(s.PropertyKeys, ", "))
			}
			for _, sample := range s.Samples {
				fmt.Printf("    - %s (%s)\n", sample.Name, sample.Label)
			}
		}

		fmt.Println("\nRelation types:")
		if len(relationTypes) == 0 {
			fmt.Println("  (none)")
		}
		for _, s := range relationTypes {
			fmt.Printf("\n  %s (%d edges)\n", s.Name, s.UsageCount)
			for _, p := range s.Patterns {
				fmt.Printf("    %s → %s (%d)\n", p.SourceType, p.TargetType, p.Count)
			}
		}
		return nil
	})
}
