package services

import (
	"context"
	"fmt"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/ports"
)

// PermissionService aggregates permissions across every role a user holds.
type PermissionService struct {
	store ports.RelationStore
}

// NewPermissionService creates a new PermissionService.
func NewPermissionService(store ports.RelationStore) *PermissionService {
	return &PermissionService{store: store}
}

// Effective computes the union of permission codes granted to a user across
// all of their roles: user --has_role--> role --has_permission--> permission.
// The result is sorted and deduplicated. A user with zero roles gets an empty
// set, not an error.
//
// The returned set is a snapshot. Callers typically compute it once per
// authentication event and hold it for the session; after changing a role's
// grants themselves, they call Effective again rather than waiting for
// re-authentication.
func (s *PermissionService) Effective(ctx context.Context, userID int64) (entities.PermissionSet, error) {
	roles, err := s.store.FindTargets(ctx, entities.RelHasRole, userID)
	if err != nil {
		return nil, fmt.Errorf("finding roles for user %d: %w", userID, err)
	}

	var codes []string
	for _, role := range roles {
		perms, err := s.store.FindTargets(ctx, entities.RelHasPermission, role.ID)
		if err != nil {
			return nil, fmt.Errorf("finding permissions for role %s: %w", role.Name, err)
		}
		for _, perm := range perms {
			codes = append(codes, perm.Name)
		}
	}

	return entities.NewPermissionSet(codes...), nil
}

// OfRole returns the permission codes granted by a single role.
func (s *PermissionService) OfRole(ctx context.Context, roleID int64) (entities.PermissionSet, error) {
	perms, err := s.store.FindTargets(ctx, entities.RelHasPermission, roleID)
	if err != nil {
		return nil, fmt.Errorf("finding permissions for role %d: %w", roleID, err)
	}
	codes := make([]string, 0, len(perms))
	for _, perm := range perms {
		codes = append(codes, perm.Name)
	}
	return entities.NewPermissionSet(codes...), nil
}

// Grant links a role to a permission. Idempotent.
func (s *PermissionService) Grant(ctx context.Context, roleID, permissionID int64) error {
	if _, err := s.store.CreateRelation(ctx, entities.RelHasPermission, roleID, permissionID); err != nil {
		return fmt.Errorf("granting permission: %w", err)
	}
	return nil
}

// Revoke removes a role → permission grant.
func (s *PermissionService) Revoke(ctx context.Context, roleID, permissionID int64) error {
	if err := s.store.DeleteRelation(ctx, entities.RelHasPermission, roleID, permissionID); err != nil {
		return fmt.Errorf("revoking permission: %w", err)
	}
	return nil
}
