package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opengovtools/authgraph/internal/domain/entities"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate authorization decisions",
	}

	cmd.AddCommand(
		newCheckCapabilityCmd(),
		newCheckMembershipCmd(),
		newCheckCapabilitiesCmd(),
	)
	return cmd
}

func newCheckCapabilityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capability <user> <unit> <capability>",
		Short: "Check whether a user holds a capability in a unit",
		Long: `Answers allowed or denied. A user is allowed when they hold the
global bypass permission, or when a position they fill in the unit carries
the capability flag.

Example:
  authgraph check capability alice cab manage_agenda`,
		Args: cobra.ExactArgs(3),
		RunE: runCheckCapability,
	}
}

func runCheckCapability(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		user, err := resolveByName(ctx, d.Store, entities.TypeUser, args[0])
		if err != nil {
			return err
		}
		unit, err := resolveByName(ctx, d.Store, entities.TypeOrgUnit, args[1])
		if err != nil {
			return err
		}

		allowed, err := d.Capabilities.RequireCapability(ctx, user.ID, unit.ID, args[2])
		if err != nil {
			return fmt.Errorf("checking capability: %w", err)
		}
		if allowed {
			fmt.Printf("allowed: %s has %s in %s\n", args[0], args[2], args[1])
		} else {
			fmt.Printf("denied: %s does not have %s in %s\n", args[0], args[2], args[1])
		}
		return nil
	})
}

func newCheckMembershipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "membership <user> <unit>",
		Short: "Check whether a user fills any position in a unit",
		Args:  cobra.ExactArgs(2),
		RunE:  runCheckMembership,
	}
}

func runCheckMembership(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		user, err := resolveByName(ctx, d.Store, entities.TypeUser, args[0])
		if err != nil {
			return err
		}
		unit, err := resolveByName(ctx, d.Store, entities.TypeOrgUnit, args[1])
		if err != nil {
			return err
		}

		member, err := d.Capabilities.RequireMembership(ctx, user.ID, unit.ID)
		if err != nil {
			return fmt.Errorf("checking membership: %w", err)
		}
		if member {
			fmt.Printf("member: %s fills a position in %s\n", args[0], args[1])
		} else {
			fmt.Printf("not a member: %s fills no position in %s\n", args[0], args[1])
		}
		return nil
	})
}

func newCheckCapabilitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities <user> <unit>",
		Short: "List the capabilities a user holds in a unit",
		Args:  cobra.ExactArgs(2),
		RunE:  runCheckCapabilities,
	}
}

func runCheckCapabilities(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		user, err := resolveByName(ctx, d.Store, entities.TypeUser, args[0])
		if err != nil {
			return err
		}
		unit, err := resolveByName(ctx, d.Store, entities.TypeOrgUnit, args[1])
		if err != nil {
			return err
		}

		caps, err := d.Capabilities.Capabilities(ctx, user.ID, unit.ID)
		if err != nil {
			return fmt.Errorf("listing capabilities: %w", err)
		}
		if len(caps) == 0 {
			fmt.Printf("%s holds no capabilities in %s.\n", args[0], args[1])
			return nil
		}
		fmt.Printf("%s in %s:\n\n", args[0], args[1])
		for _, c := range caps {
			fmt.Printf("  %s\n", c)
		}
		return nil
	})
}
