package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/mocks"
	"github.com/opengovtools/authgraph/internal/domain/ports"
	"github.com/opengovtools/authgraph/internal/infrastructure/seedfile"
)

func newSeedFixture(t *testing.T) (*mocks.GraphStore, *SeedService) {
	t.Helper()
	store := mocks.NewGraphStore()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewSeedService(store, log)
	_, err := svc.Bootstrap(context.Background())
	require.NoError(t, err)
	return store, svc
}

func TestSeedService_Bootstrap_Idempotent(t *testing.T) {
	store := mocks.NewGraphStore()
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	svc := NewSeedService(store, log)
	ctx := context.Background()

	created, err := svc.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(entities.DefaultRelationTypes), created)

	created, err = svc.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	count, err := store.CountEntitiesByType(ctx, entities.TypeRelationType)
	require.NoError(t, err)
	assert.Equal(t, len(entities.DefaultRelationTypes), count)
}

func TestSeedService_Import_ForwardReference(t *testing.T) {
	store, svc := newSeedFixture(t)
	ctx := context.Background()

	// The relation appears before either endpoint is defined.
	doc := &seedfile.Document{
		Relations: []seedfile.RelationSeed{
			{RelationType: entities.RelHasRole, Source: "user:alice", Target: "role:admin"},
		},
		Entities: []seedfile.EntitySeed{
			{EntityType: entities.TypeUser, Name: "alice", Label: "Alice"},
			{EntityType: entities.TypeRole, Name: "admin", Label: "Administrator"},
		},
	}

	result, err := svc.Import(ctx, doc, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.EntitiesCreated)
	assert.Equal(t, 1, result.RelationsCreated)

	alice, err := store.FindEntityByTypeAndName(ctx, entities.TypeUser, "alice")
	require.NoError(t, err)
	require.NotNil(t, alice)
	admin, err := store.FindEntityByTypeAndName(ctx, entities.TypeRole, "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)

	rel, err := store.FindRelation(ctx, entities.RelHasRole, alice.ID, admin.ID)
	require.NoError(t, err)
	assert.NotNil(t, rel)
}

func TestSeedService_Import_Idempotent(t *testing.T) {
	_, svc := newSeedFixture(t)
	ctx := context.Background()

	doc := &seedfile.Document{
		Entities: []seedfile.EntitySeed{
			{EntityType: entities.TypeUser, Name: "alice", Label: "Alice"},
			{EntityType: entities.TypeRole, Name: "admin", Label: "Administrator"},
		},
		Relations: []seedfile.RelationSeed{
			{RelationType: entities.RelHasRole, Source: "user:alice", Target: "role:admin"},
		},
	}

	first, err := svc.Import(ctx, doc, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, first.EntitiesCreated)
	assert.Equal(t, 1, first.RelationsCreated)

	second, err := svc.Import(ctx, doc, ImportOptions{})
	require.NoError(t, err)
	assert.Zero(t, second.EntitiesCreated)
	assert.Equal(t, 2, second.EntitiesSkipped)
	assert.Zero(t, second.RelationsCreated)
	assert.Equal(t, 1, second.RelationsSkipped)
}

func TestSeedService_Import_UnresolvedReferenceAborts(t *testing.T) {
	store, svc := newSeedFixture(t)
	ctx := context.Background()

	doc := &seedfile.Document{
		Entities: []seedfile.EntitySeed{
			{EntityType: entities.TypeUser, Name: "alice", Label: "Alice"},
			{EntityType: entities.TypeRole, Name: "admin", Label: "Administrator"},
		},
		Relations: []seedfile.RelationSeed{
			{RelationType: entities.RelHasRole, Source: "user:alice", Target: "role:admin"},
			{RelationType: entities.RelHasRole, Source: "user:ghost", Target: "role:admin"},
		},
	}

	_, err := svc.Import(ctx, doc, ImportOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.Contains(t, err.Error(), "user:ghost")

	// Entities from pass 1 persist, but no relation was written: the valid
	// first relation must not slip through before the abort.
	alice, err := store.FindEntityByTypeAndName(ctx, entities.TypeUser, "alice")
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Empty(t, store.Relations)
}

func TestSeedService_Import_UnknownRelationTypeAborts(t *testing.T) {
	store, svc := newSeedFixture(t)

	doc := &seedfile.Document{
		Entities: []seedfile.EntitySeed{
			{EntityType: entities.TypeUser, Name: "alice", Label: "Alice"},
			{EntityType: entities.TypeRole, Name: "admin", Label: "Administrator"},
		},
		Relations: []seedfile.RelationSeed{
			{RelationType: "mentors", Source: "user:alice", Target: "role:admin"},
		},
	}

	_, err := svc.Import(context.Background(), doc, ImportOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.Empty(t, store.Relations)
}

func TestSeedService_Import_DryRun(t *testing.T) {
	store, svc := newSeedFixture(t)
	ctx := context.Background()

	doc := &seedfile.Document{
		Entities: []seedfile.EntitySeed{
			{EntityType: entities.TypeUser, Name: "alice", Label: "Alice"},
			{EntityType: entities.TypeRole, Name: "admin", Label: "Administrator"},
		},
		Relations: []seedfile.RelationSeed{
			{RelationType: entities.RelHasRole, Source: "user:alice", Target: "role:admin"},
		},
	}

	result, err := svc.Import(ctx, doc, ImportOptions{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, 2, result.EntitiesCreated)
	assert.Equal(t, 1, result.RelationsCreated)

	alice, err := store.FindEntityByTypeAndName(ctx, entities.TypeUser, "alice")
	require.NoError(t, err)
	assert.Nil(t, alice, "dry run must not write")
	assert.Empty(t, store.Relations)
}

func TestSeedService_Import_Upsert(t *testing.T) {
	store, svc := newSeedFixture(t)
	ctx := context.Background()

	first := &seedfile.Document{
		Entities: []seedfile.EntitySeed{
			{EntityType: entities.TypePosition, Name: "cab_chair", Label: "Chair", Properties: map[string]string{"can_manage_agenda": "false"}},
		},
	}
	_, err := svc.Import(ctx, first, ImportOptions{})
	require.NoError(t, err)

	second := &seedfile.Document{
		Entities: []seedfile.EntitySeed{
			{EntityType: entities.TypePosition, Name: "cab_chair", Label: "Chairperson", Properties: map[string]string{"can_manage_agenda": "true"}},
		},
	}

	// Skip policy leaves the original label and properties alone.
	result, err := svc.Import(ctx, second, ImportOptions{OnConflict: ConflictSkip})
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntitiesSkipped)

	pos, err := store.FindEntityByTypeAndName(ctx, entities.TypePosition, "cab_chair")
	require.NoError(t, err)
	assert.Equal(t, "Chair", pos.Label)

	// Upsert refreshes both.
	result, err = svc.Import(ctx, second, ImportOptions{OnConflict: ConflictUpsert})
	require.NoError(t, err)
	assert.Equal(t, 1, result.EntitiesUpdated)

	pos, err = store.FindEntityByTypeAndName(ctx, entities.TypePosition, "cab_chair")
	require.NoError(t, err)
	assert.Equal(t, "Chairperson", pos.Label)
	flag, ok, err := store.GetEntityProperty(ctx, pos.ID, "can_manage_agenda")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "true", flag)
}

func TestSeedService_Import_ReferencesPreexistingEntities(t *testing.T) {
	store, svc := newSeedFixture(t)
	ctx := context.Background()

	userID := store.MustEntity(entities.TypeUser, "alice", "Alice")
	roleID := store.MustEntity(entities.TypeRole, "admin", "Administrator")

	doc := &seedfile.Document{
		Relations: []seedfile.RelationSeed{
			{RelationType: entities.RelHasRole, Source: "user:alice", Target: "role:admin"},
		},
	}

	result, err := svc.Import(ctx, doc, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RelationsCreated)

	rel, err := store.FindRelation(ctx, entities.RelHasRole, userID, roleID)
	require.NoError(t, err)
	assert.NotNil(t, rel)
}

func TestSeedService_Import_RelationProperties(t *testing.T) {
	store, svc := newSeedFixture(t)
	ctx := context.Background()

	doc := &seedfile.Document{
		Entities: []seedfile.EntitySeed{
			{EntityType: entities.TypeUser, Name: "dana", Label: "Dana"},
			{EntityType: entities.TypePosition, Name: "cab_chair", Label: "Chairperson"},
		},
		Relations: []seedfile.RelationSeed{
			{
				RelationType: entities.RelFillsPosition,
				Source:       "user:dana",
				Target:       "position:cab_chair",
				Properties:   map[string]string{"membership_type": entities.MembershipMandatory},
			},
		},
	}

	_, err := svc.Import(ctx, doc, ImportOptions{})
	require.NoError(t, err)

	dana, err := store.FindEntityByTypeAndName(ctx, entities.TypeUser, "dana")
	require.NoError(t, err)
	chair, err := store.FindEntityByTypeAndName(ctx, entities.TypePosition, "cab_chair")
	require.NoError(t, err)

	rel, err := store.FindRelation(ctx, entities.RelFillsPosition, dana.ID, chair.ID)
	require.NoError(t, err)
	require.NotNil(t, rel)

	mt, ok, err := store.GetRelationProperty(ctx, rel.ID, "membership_type")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entities.MembershipMandatory, mt)
}

func TestSeedService_Import_InvalidDocument(t *testing.T) {
	_, svc := newSeedFixture(t)

	doc := &seedfile.Document{
		Entities: []seedfile.EntitySeed{{EntityType: "", Name: "x"}},
	}
	_, err := svc.Import(context.Background(), doc, ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entity_type")
}

func TestSeedService_Import_StorageFailure(t *testing.T) {
	store, svc := newSeedFixture(t)
	store.Err = errors.New("disk I/O error")

	doc := &seedfile.Document{
		Entities: []seedfile.EntitySeed{
			{EntityType: entities.TypeUser, Name: "alice", Label: "Alice"},
		},
	}
	_, err := svc.Import(context.Background(), doc, ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O error")
}
