package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/mocks"
)

type positionFixture struct {
	store  *mocks.GraphStore
	svc    *PositionService
	unitID int64
}

func newPositionFixture(t *testing.T) *positionFixture {
	t.Helper()
	store := mocks.NewGraphStore()
	for _, def := range entities.DefaultRelationTypes {
		store.MustEntity(entities.TypeRelationType, def.Name, def.Label)
	}
	unitID := store.MustEntity(entities.TypeOrgUnit, "cab", "Change Advisory Board")
	return &positionFixture{store: store, svc: NewPositionService(store), unitID: unitID}
}

func (f *positionFixture) addPosition(t *testing.T, name, label string) int64 {
	t.Helper()
	id := f.store.MustEntity(entities.TypePosition, name, label)
	f.store.MustRelation(entities.RelBelongsToUnit, id, f.unitID)
	return id
}

func TestPositionService_List_IncludesVacant(t *testing.T) {
	f := newPositionFixture(t)
	ctx := context.Background()

	lead := f.addPosition(t, "cab_technical_lead", "Technical Lead")
	require.NoError(t, f.store.SetEntityProperties(ctx, lead, map[string]string{
		"membership_type": entities.MembershipMandatory,
	}))

	views, err := f.svc.List(ctx, f.unitID)
	require.NoError(t, err)
	require.Len(t, views, 1)

	assert.Equal(t, lead, views[0].PositionID)
	assert.Nil(t, views[0].HolderID, "vacant position must still appear")
	assert.False(t, views[0].Filled())
	assert.Equal(t, entities.MembershipMandatory, views[0].MembershipType)

	count, err := f.svc.CountFilled(ctx, f.unitID)
	require.NoError(t, err)
	assert.Equal(t, 0, count, "vacant positions are excluded from the filled count")
}

func TestPositionService_AssignAndVacate(t *testing.T) {
	f := newPositionFixture(t)
	ctx := context.Background()

	posID := f.addPosition(t, "cab_secretary", "Secretary")
	userID := f.store.MustEntity(entities.TypeUser, "dana", "Dana")

	require.NoError(t, f.svc.Assign(ctx, userID, posID, entities.MembershipOptional))

	views, err := f.svc.List(ctx, f.unitID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.NotNil(t, views[0].HolderID)
	assert.Equal(t, userID, *views[0].HolderID)
	assert.Equal(t, "Dana", views[0].HolderLabel)
	assert.Equal(t, entities.MembershipOptional, views[0].MembershipType)

	count, err := f.svc.CountFilled(ctx, f.unitID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, f.svc.Vacate(ctx, posID))

	views, err = f.svc.List(ctx, f.unitID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].HolderID, "vacated position shows holder absent again")

	rel, err := f.store.FindRelation(ctx, entities.RelFillsPosition, userID, posID)
	require.NoError(t, err)
	assert.Nil(t, rel, "fills_position edge must be gone")
}

func TestPositionService_Assign_Idempotent(t *testing.T) {
	f := newPositionFixture(t)
	ctx := context.Background()

	posID := f.addPosition(t, "cab_chair", "Chairperson")
	userID := f.store.MustEntity(entities.TypeUser, "dana", "Dana")

	require.NoError(t, f.svc.Assign(ctx, userID, posID, entities.MembershipMandatory))
	require.NoError(t, f.svc.Assign(ctx, userID, posID, entities.MembershipMandatory))

	count, err := f.svc.CountFilled(ctx, f.unitID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestPositionService_Assign_InvalidMembershipType(t *testing.T) {
	f := newPositionFixture(t)
	posID := f.addPosition(t, "cab_chair", "Chairperson")
	userID := f.store.MustEntity(entities.TypeUser, "dana", "Dana")

	err := f.svc.Assign(context.Background(), userID, posID, "permanent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid membership type")
}

func TestPositionService_EdgePropertyWinsOverPositionDefault(t *testing.T) {
	f := newPositionFixture(t)
	ctx := context.Background()

	posID := f.addPosition(t, "cab_chair", "Chairperson")
	userID := f.store.MustEntity(entities.TypeUser, "dana", "Dana")

	// Position says optional, but this particular holder is mandatory.
	require.NoError(t, f.store.SetEntityProperties(ctx, posID, map[string]string{
		"membership_type": entities.MembershipOptional,
	}))
	relID := f.store.MustRelation(entities.RelFillsPosition, userID, posID)
	require.NoError(t, f.store.SetRelationProperty(ctx, relID, "membership_type", entities.MembershipMandatory))

	views, err := f.svc.List(ctx, f.unitID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, entities.MembershipMandatory, views[0].MembershipType)
}

func TestPositionService_List_MandatoryFirst(t *testing.T) {
	f := newPositionFixture(t)
	ctx := context.Background()

	optional := f.addPosition(t, "cab_member", "Advisory Member")
	mandatory := f.addPosition(t, "cab_chair", "Chairperson")
	require.NoError(t, f.store.SetEntityProperties(ctx, mandatory, map[string]string{
		"membership_type": entities.MembershipMandatory,
	}))

	views, err := f.svc.List(ctx, f.unitID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, mandatory, views[0].PositionID)
	assert.Equal(t, optional, views[1].PositionID)
}

func TestPositionService_VacantMandatory(t *testing.T) {
	f := newPositionFixture(t)
	ctx := context.Background()

	chair := f.addPosition(t, "cab_chair", "Chairperson")
	member := f.addPosition(t, "cab_member", "Advisory Member")
	require.NoError(t, f.store.SetEntityProperties(ctx, chair, map[string]string{
		"membership_type": entities.MembershipMandatory,
	}))
	require.NoError(t, f.store.SetEntityProperties(ctx, member, map[string]string{
		"membership_type": entities.MembershipMandatory,
	}))

	userID := f.store.MustEntity(entities.TypeUser, "dana", "Dana")
	require.NoError(t, f.svc.Assign(ctx, userID, member, entities.MembershipMandatory))

	vacant, err := f.svc.VacantMandatory(ctx, f.unitID)
	require.NoError(t, err)
	require.Len(t, vacant, 1)
	assert.Equal(t, chair, vacant[0].PositionID)
}

func TestPositionService_Assign_Audited(t *testing.T) {
	f := newPositionFixture(t)
	ctx := context.Background()

	posID := f.addPosition(t, "cab_chair", "Chairperson")
	userID := f.store.MustEntity(entities.TypeUser, "dana", "Dana")
	require.NoError(t, f.svc.Assign(ctx, userID, posID, entities.MembershipOptional))
	require.NoError(t, f.svc.Vacate(ctx, posID))

	trail, err := f.store.FindAuditLog(ctx, posID)
	require.NoError(t, err)
	require.Len(t, trail, 2)
	assert.Equal(t, "position.vacate", trail[0].Action)
	assert.Equal(t, "position.assign", trail[1].Action)
}
