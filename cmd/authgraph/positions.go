package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opengovtools/authgraph/internal/domain/entities"
)

func newPositionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "positions",
		Short: "Inspect and manage positions within organizational units",
	}

	cmd.AddCommand(
		newPositionsListCmd(),
		newPositionsAssignCmd(),
		newPositionsVacateCmd(),
	)
	return cmd
}

func newPositionsListCmd() *cobra.Command {
	var vacantOnly bool

	cmd := &cobra.Command{
		Use:   "list <unit>",
		Short: "List a unit's positions and their holders",
		Long: `Lists every position belonging to a unit, vacant ones included.
Mandatory positions come first.

Examples:
  authgraph positions list cab
  authgraph positions list cab --vacant-mandatory`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPositionsList(cmd, args, vacantOnly)
		},
	}

	cmd.Flags().BoolVar(&vacantOnly, "vacant-mandatory", false, "Show only unfilled mandatory positions")
	return cmd
}

func runPositionsList(cmd *cobra.Command, args []string, vacantOnly bool) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		unit, err := resolveByName(ctx, d.Store, entities.TypeOrgUnit, args[0])
		if err != nil {
			return err
		}

		var views []entities.PositionView
		if vacantOnly {
			views, err = d.Positions.VacantMandatory(ctx, unit.ID)
		} else {
			views, err = d.Positions.List(ctx, unit.ID)
		}
		if err != nil {
			return fmt.Errorf("listing positions: %w", err)
		}

		if len(views) == 0 {
			fmt.Printf("No positions in %s.\n", args[0])
			return nil
		}

		filled, err := d.Positions.CountFilled(ctx, unit.ID)
		if err != nil {
			return fmt.Errorf("counting filled positions: %w", err)
		}
		fmt.Printf("%s (%d filled):\n\n", unit.Label, filled)

		for _, v := range views {
			holder := "(vacant)"
			if v.Filled() {
				holder = v.HolderLabel
			}
			fmt.Printf("  %-30s %-10s %s\n", v.Label, v.MembershipType, holder)
		}
		return nil
	})
}

func newPositionsAssignCmd() *cobra.Command {
	var membership string

	cmd := &cobra.Command{
		Use:   "assign <user> <position>",
		Short: "Assign a user to a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPositionsAssign(cmd, args, membership)
		},
	}

	cmd.Flags().StringVar(&membership, "membership", entities.MembershipOptional, "Membership type: mandatory or optional")
	return cmd
}

func runPositionsAssign(cmd *cobra.Command, args []string, membership string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		user, err := resolveByName(ctx, d.Store, entities.TypeUser, args[0])
		if err != nil {
			return err
		}
		position, err := resolveByName(ctx, d.Store, entities.TypePosition, args[1])
		if err != nil {
			return err
		}

		if err := d.Positions.Assign(ctx, user.ID, position.ID, membership); err != nil {
			return fmt.Errorf("assigning position: %w", err)
		}
		fmt.Printf("Assigned %s to %s (%s).\n", args[0], args[1], membership)
		return nil
	})
}

func newPositionsVacateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "vacate <position>",
		Short: "Remove every holder from a position",
		Args:  cobra.ExactArgs(1),
		RunE:  runPositionsVacate,
	}
}

func runPositionsVacate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		position, err := resolveByName(ctx, d.Store, entities.TypePosition, args[0])
		if err != nil {
			return err
		}

		if err := d.Positions.Vacate(ctx, position.ID); err != nil {
			return fmt.Errorf("vacating position: %w", err)
		}
		fmt.Printf("Vacated %s.\n", args[0])
		return nil
	})
}
