package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/ports"
)

func newEntitiesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "Inspect entities in the graph",
	}

	cmd.AddCommand(
		newEntitiesListCmd(),
		newEntitiesShowCmd(),
		newEntitiesDeleteCmd(),
	)
	return cmd
}

func newEntitiesListCmd() *cobra.Command {
	var entityType string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entities of a type",
		Long: `List all entities of a given type, in sort order.

Examples:
  authgraph entities list --type user
  authgraph entities list --type organizational_unit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEntitiesList(cmd, entityType)
		},
	}

	cmd.Flags().StringVarP(&entityType, "type", "t", "", "Entity type to list (required)")
	cmd.MarkFlagRequired("type")

	return cmd
}

func runEntitiesList(cmd *cobra.Command, entityType string) error {
	ctx := cmd.Context()

	return withStore(ctx, func(store ports.GraphStore) error {
		list, err := store.ListEntitiesByType(ctx, entityType)
		if err != nil {
			return fmt.Errorf("listing entities: %w", err)
		}

		if len(list) == 0 {
			fmt.Printf("No entities of type %q.\n", entityType)
			return nil
		}

		fmt.Printf("%s (%d total):\n\n", entityType, len(list))
		for _, e := range list {
			fmt.Printf("  %6d  %-30s %s\n", e.ID, e.Name, e.Label)
		}
		return nil
	})
}

func newEntitiesShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <entity_type:name>",
		Short: "Show an entity and its properties",
		Args:  cobra.ExactArgs(1),
		RunE:  runEntitiesShow,
	}
}

func runEntitiesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withStore(ctx, func(store ports.GraphStore) error {
		entity, err := resolveEntity(ctx, store, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:         %d\n", entity.ID)
		fmt.Printf("Type:       %s\n", entity.EntityType)
		fmt.Printf("Name:       %s\n", entity.Name)
		fmt.Printf("Label:      %s\n", entity.Label)
		fmt.Printf("Sort order: %d\n", entity.SortOrder)
		fmt.Printf("Active:     %t\n", entity.IsActive)

		props, err := store.GetEntityProperties(ctx, entity.ID)
		if err != nil {
			return fmt.Errorf("reading properties: %w", err)
		}
		if len(props) > 0 {
			fmt.Println("\nProperties:")
			keys := make([]string, 0, len(props))
			for k := range props {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Printf("  %-30s %s\n", k, props[k])
			}
		}
		return nil
	})
}

func newEntitiesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity_type:name>",
		Short: "Delete an entity and everything attached to it",
		Long:  "Deletes an entity, its properties, and every relation it participates in.",
		Args:  cobra.ExactArgs(1),
		RunE:  runEntitiesDelete,
	}
}

func runEntitiesDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withStore(ctx, func(store ports.GraphStore) error {
		entity, err := resolveEntity(ctx, store, args[0])
		if err != nil {
			return err
		}
		if entity.EntityType == entities.TypeRelationType && entities.IsDefaultRelationType(entity.Name) {
			return fmt.Errorf("%s is a built-in relation type and cannot be deleted", entity.Name)
		}
		if err := store.DeleteEntity(ctx, entity.ID); err != nil {
			return fmt.Errorf("deleting entity: %w", err)
		}
		fmt.Printf("Deleted %s (id %d).\n", args[0], entity.ID)
		return nil
	})
}
