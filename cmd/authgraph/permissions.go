package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opengovtools/authgraph/internal/domain/entities"
)

func newPermissionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Inspect and manage role-based permissions",
	}

	cmd.AddCommand(
		newPermissionsUserCmd(),
		newPermissionsRoleCmd(),
		newPermissionsGrantCmd(),
		newPermissionsRevokeCmd(),
	)
	return cmd
}

func newPermissionsUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "user <name>",
		Short: "Show a user's effective permission set",
		Long: `Shows the union of permissions granted through every role the
user holds. A user with no roles has an empty set.`,
		Args: cobra.ExactArgs(1),
		RunE: runPermissionsUser,
	}
}

func runPermissionsUser(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		user, err := resolveByName(ctx, d.Store, entities.TypeUser, args[0])
		if err != nil {
			return err
		}

		set, err := d.Permissions.Effective(ctx, user.ID)
		if err != nil {
			return fmt.Errorf("resolving permissions: %w", err)
		}

		if len(set) == 0 {
			fmt.Printf("%s has no permissions.\n", args[0])
			return nil
		}
		fmt.Printf("%s (%d permissions):\n\n", args[0], len(set))
		for _, code := range set {
			fmt.Printf("  %s\n", code)
		}
		return nil
	})
}

func newPermissionsRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "role <name>",
		Short: "Show the permissions a role grants",
		Args:  cobra.ExactArgs(1),
		RunE:  runPermissionsRole,
	}
}

func runPermissionsRole(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		role, err := resolveByName(ctx, d.Store, entities.TypeRole, args[0])
		if err != nil {
			return err
		}

		set, err := d.Permissions.OfRole(ctx, role.ID)
		if err != nil {
			return fmt.Errorf("resolving role permissions: %w", err)
		}

		if len(set) == 0 {
			fmt.Printf("Role %s grants no permissions.\n", args[0])
			return nil
		}
		fmt.Printf("Role %s (%d permissions):\n\n", args[0], len(set))
		for _, code := range set {
			fmt.Printf("  %s\n", code)
		}
		return nil
	})
}

func newPermissionsGrantCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "grant <role> <permission>",
		Short: "Grant a permission to a role",
		Args:  cobra.ExactArgs(2),
		RunE:  runPermissionsGrant,
	}
}

func runPermissionsGrant(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		role, err := resolveByName(ctx, d.Store, entities.TypeRole, args[0])
		if err != nil {
			return err
		}
		perm, err := resolveByName(ctx, d.Store, entities.TypePermission, args[1])
		if err != nil {
			return err
		}
		if err := d.Permissions.Grant(ctx, role.ID, perm.ID); err != nil {
			return fmt.Errorf("granting permission: %w", err)
		}
		fmt.Printf("Granted %s to %s.\n", args[1], args[0])
		return nil
	})
}

func newPermissionsRevokeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "revoke <role> <permission>",
		Short: "Revoke a permission from a role",
		Args:  cobra.ExactArgs(2),
		RunE:  runPermissionsRevoke,
	}
}

func runPermissionsRevoke(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(ctx, func(d *Deps) error {
		role, err := resolveByName(ctx, d.Store, entities.TypeRole, args[0])
		if err != nil {
			return err
		}
		perm, err := resolveByName(ctx, d.Store, entities.TypePermission, args[1])
		if err != nil {
			return err
		}
		if err := d.Permissions.Revoke(ctx, role.ID, perm.ID); err != nil {
			return fmt.Errorf("revoking permission: %w", err)
		}
		fmt.Printf("Revoked %s from %s.\n", args[1], args[0])
		return nil
	})
}
