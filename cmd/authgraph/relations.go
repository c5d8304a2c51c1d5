package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/ports"
)

func newRelationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relations",
		Short: "Manage edges between entities",
	}

	cmd.AddCommand(
		newRelationsAddCmd(),
		newRelationsRemoveCmd(),
		newRelationsListCmd(),
	)
	return cmd
}

func newRelationsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <relation_type> <source_type:name> <target_type:name>",
		Short: "Create an edge between two entities",
		Long: `Creates a directed edge. Repeating an existing edge is a no-op.

Examples:
  authgraph relations add has_role user:alice role:admin
  authgraph relations add belongs_to_unit position:cab_chair organizational_unit:cab`,
		Args: cobra.ExactArgs(3),
		RunE: runRelationsAdd,
	}
}

func runRelationsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withStore(ctx, func(store ports.GraphStore) error {
		source, err := resolveEntity(ctx, store, args[1])
		if err != nil {
			return err
		}
		target, err := resolveEntity(ctx, store, args[2])
		if err != nil {
			return err
		}

		if _, err := store.CreateRelation(ctx, args[0], source.ID, target.ID); err != nil {
			return fmt.Errorf("creating relation: %w", err)
		}
		fmt.Printf("%s: %s → %s\n", args[0], args[1], args[2])
		return nil
	})
}

func newRelationsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <relation_type> <source_type:name> <target_type:name>",
		Short: "Delete an edge between two entities",
		Args:  cobra.ExactArgs(3),
		RunE:  runRelationsRemove,
	}
}

func runRelationsRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withStore(ctx, func(store ports.GraphStore) error {
		source, err := resolveEntity(ctx, store, args[1])
		if err != nil {
			return err
		}
		target, err := resolveEntity(ctx, store, args[2])
		if err != nil {
			return err
		}

		if err := store.DeleteRelation(ctx, args[0], source.ID, target.ID); err != nil {
			return fmt.Errorf("deleting relation: %w", err)
		}
		fmt.Printf("Removed %s: %s → %s\n", args[0], args[1], args[2])
		return nil
	})
}

func newRelationsListCmd() *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "list <relation_type> <entity_type:name>",
		Short: "List entities connected to an entity",
		Long: `Lists the entities an edge type connects to the given entity.

Direction "out" follows edges leaving the entity, "in" follows edges
entering it, and "both" merges the two.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRelationsList(cmd, args, direction)
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "out", "Edge direction: out, in, or both")
	return cmd
}

func runRelationsList(cmd *cobra.Command, args []string, direction string) error {
	ctx := cmd.Context()

	return withStore(ctx, func(store ports.GraphStore) error {
		entity, err := resolveEntity(ctx, store, args[1])
		if err != nil {
			return err
		}

		switch direction {
		case "out":
			targets, err := store.FindTargets(ctx, args[0], entity.ID)
			if err != nil {
				return fmt.Errorf("listing targets: %w", err)
			}
			printConnected(args[0], args[1], "→", targets)
		case "in":
			sources, err := store.FindSources(ctx, args[0], entity.ID)
			if err != nil {
				return fmt.Errorf("listing sources: %w", err)
			}
			printConnected(args[0], args[1], "←", sources)
		case "both":
			neighbors, err := store.FindNeighbors(ctx, args[0], entity.ID)
			if err != nil {
				return fmt.Errorf("listing neighbors: %w", err)
			}
			printConnected(args[0], args[1], "↔", neighbors)
		default:
			return fmt.Errorf("invalid --direction value %q (expected out, in, or both)", direction)
		}
		return nil
	})
}

func printConnected(relationType, ref, arrow string, list []*entities.Entity) {
	if len(list) == 0 {
		fmt.Printf("No %s edges for %s.\n", relationType, ref)
		return
	}
	fmt.Printf("%s %s %s:\n\n", ref, arrow, relationType)
	for _, e := range list {
		fmt.Printf("  %6d  %-20s %-30s %s\n", e.ID, e.EntityType, e.Name, e.Label)
	}
}
