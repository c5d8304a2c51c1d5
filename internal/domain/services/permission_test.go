package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/mocks"
)

func TestPermissionService_Effective_UnionAcrossRoles(t *testing.T) {
	store := mocks.NewGraphStore()
	store.MustEntity(entities.TypeRelationType, entities.RelHasRole, "Has Role")
	store.MustEntity(entities.TypeRelationType, entities.RelHasPermission, "Has Permission")

	userID := store.MustEntity(entities.TypeUser, "alice", "Alice")
	roleA := store.MustEntity(entities.TypeRole, "editor", "Editor")
	roleB := store.MustEntity(entities.TypeRole, "viewer", "Viewer")

	permCreate := store.MustEntity(entities.TypePermission, "users.create", "Create Users")
	permList := store.MustEntity(entities.TypePermission, "users.list", "List Users")
	permView := store.MustEntity(entities.TypePermission, "tor.view", "View ToRs")

	store.MustRelation(entities.RelHasRole, userID, roleA)
	store.MustRelation(entities.RelHasRole, userID, roleB)
	store.MustRelation(entities.RelHasPermission, roleA, permCreate)
	store.MustRelation(entities.RelHasPermission, roleA, permList)
	store.MustRelation(entities.RelHasPermission, roleB, permView)
	store.MustRelation(entities.RelHasPermission, roleB, permList)

	svc := NewPermissionService(store)
	set, err := svc.Effective(context.Background(), userID)
	require.NoError(t, err)

	// Sorted, deduplicated union — not "first role wins".
	assert.Equal(t, entities.PermissionSet{"tor.view", "users.create", "users.list"}, set)
	assert.True(t, set.Has("users.list"))
	assert.False(t, set.Has("users.delete"))
}

func TestPermissionService_Effective_NoRoles(t *testing.T) {
	store := mocks.NewGraphStore()
	store.MustEntity(entities.TypeRelationType, entities.RelHasRole, "Has Role")
	userID := store.MustEntity(entities.TypeUser, "bob", "Bob")

	svc := NewPermissionService(store)
	set, err := svc.Effective(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestPermissionService_Effective_MissingRelationTypes(t *testing.T) {
	// No relation types exist at all: the walk matches zero rows and the
	// result is an empty set, not an error.
	store := mocks.NewGraphStore()
	userID := store.MustEntity(entities.TypeUser, "carol", "Carol")

	svc := NewPermissionService(store)
	set, err := svc.Effective(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestPermissionService_Effective_StorageFailure(t *testing.T) {
	store := mocks.NewGraphStore()
	store.Err = errors.New("connection refused")

	svc := NewPermissionService(store)
	_, err := svc.Effective(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestPermissionService_GrantRevoke(t *testing.T) {
	store := mocks.NewGraphStore()
	store.MustEntity(entities.TypeRelationType, entities.RelHasPermission, "Has Permission")
	roleID := store.MustEntity(entities.TypeRole, "editor", "Editor")
	permID := store.MustEntity(entities.TypePermission, "users.edit", "Edit Users")

	svc := NewPermissionService(store)
	ctx := context.Background()

	require.NoError(t, svc.Grant(ctx, roleID, permID))
	// Granting twice is a no-op, not an error.
	require.NoError(t, svc.Grant(ctx, roleID, permID))

	set, err := svc.OfRole(ctx, roleID)
	require.NoError(t, err)
	assert.Equal(t, entities.PermissionSet{"users.edit"}, set)

	require.NoError(t, svc.Revoke(ctx, roleID, permID))
	set, err = svc.OfRole(ctx, roleID)
	require.NoError(t, err)
	assert.Empty(t, set)
}
