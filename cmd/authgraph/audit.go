package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newAuditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "audit <entity_type:name>",
		Short: "Show the audit trail for an entity",
		Long: `Prints recorded actions against an entity, newest first.

Example:
  authgraph audit position:cab_chair`,
		Args: cobra.ExactArgs(1),
		RunE: runAudit,
	}
}

func runAudit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		entity, err := resolveEntity(ctx, d.Store, args[0])
		if err != nil {
			return err
		}

		trail, err := d.Ontology.AuditTrail(ctx, entity.ID)
		if err != nil {
			return fmt.Errorf("reading audit trail: %w", err)
		}

		if len(trail) == 0 {
			fmt.Printf("No audit entries for %s.\n", args[0])
			return nil
		}

		fmt.Printf("Audit trail for %s (%d entries):\n\n", args[0], len(trail))
		for _, entry := range trail {
			line := fmt.Sprintf("  %s  %-20s", entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Action)
			if len(entry.Details) > 0 {
				details, err := json.Marshal(entry.Details)
				if err == nil {
					line += "  " + string(details)
				}
			}
			fmt.Println(line)
		}
		return nil
	})
}
