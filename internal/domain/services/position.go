package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/ports"
)

// PositionService manages role-slots inside organizational units: listing
// them (vacant ones included), assigning and vacating holders.
type PositionService struct {
	store ports.GraphStore
}

// NewPositionService creates a new PositionService.
func NewPositionService(store ports.GraphStore) *PositionService {
	return &PositionService{store: store}
}

// List returns every position belonging to the unit, vacant positions
// included — vacancy is meaningful, not an absence to filter out. Mandatory
// positions sort before optional ones, then by label.
//
// Membership type resolution: the fills_position edge property wins when
// present (it can vary per holder); the position entity's own membership_type
// property is the fallback default; "optional" when neither exists.
func (s *PositionService) List(ctx context.Context, unitID int64) ([]entities.PositionView, error) {
	positions, err := s.store.FindSources(ctx, entities.RelBelongsToUnit, unitID)
	if err != nil {
		return nil, fmt.Errorf("finding positions for unit %d: %w", unitID, err)
	}

	views := make([]entities.PositionView, 0, len(positions))
	for _, pos := range positions {
		if pos.EntityType != entities.TypePosition {
			continue
		}
		view := entities.PositionView{
			PositionID: pos.ID,
			Name:       pos.Name,
			Label:      pos.Label,
		}

		holders, err := s.store.FindSources(ctx, entities.RelFillsPosition, pos.ID)
		if err != nil {
			return nil, fmt.Errorf("finding holder of position %d: %w", pos.ID, err)
		}
		// One holder by convention; the data model doesn't prevent more, so
		// take the first deterministically rather than failing.
		if len(holders) > 0 {
			holder := holders[0]
			view.HolderID = &holder.ID
			view.HolderName = holder.Name
			view.HolderLabel = holder.Label
		}

		view.MembershipType, err = s.membershipType(ctx, &view)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	sort.SliceStable(views, func(i, j int) bool {
		mi := views[i].MembershipType == entities.MembershipMandatory
		mj := views[j].MembershipType == entities.MembershipMandatory
		if mi != mj {
			return mi
		}
		return views[i].Label < views[j].Label
	})
	return views, nil
}

// membershipType resolves the effective membership type for a position view.
func (s *PositionService) membershipType(ctx context.Context, view *entities.PositionView) (string, error) {
	if view.HolderID != nil {
		rel, err := s.store.FindRelation(ctx, entities.RelFillsPosition, *view.HolderID, view.PositionID)
		if err != nil {
			return "", fmt.Errorf("reading fills_position edge: %w", err)
		}
		if rel != nil {
			value, ok, err := s.store.GetRelationProperty(ctx, rel.ID, "membership_type")
			if err != nil {
				return "", fmt.Errorf("reading edge membership_type: %w", err)
			}
			if ok {
				return value, nil
			}
		}
	}
	value, ok, err := s.store.GetEntityProperty(ctx, view.PositionID, "membership_type")
	if err != nil {
		return "", fmt.Errorf("reading position membership_type: %w", err)
	}
	if ok {
		return value, nil
	}
	return entities.MembershipOptional, nil
}

// CountFilled counts positions in the unit that currently have a holder.
// Vacant positions are excluded.
func (s *PositionService) CountFilled(ctx context.Context, unitID int64) (int, error) {
	views, err := s.List(ctx, unitID)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := range views {
		if views[i].Filled() {
			count++
		}
	}
	return count, nil
}

// Assign puts a user into a position. The membership type is recorded on the
// fills_position edge (authoritative) and mirrored onto the position entity
// as the default for future holders. Idempotent on the edge itself.
func (s *PositionService) Assign(ctx context.Context, userID, positionID int64, membershipType string) error {
	if membershipType != entities.MembershipMandatory && membershipType != entities.MembershipOptional {
		return fmt.Errorf("invalid membership type %q (valid: mandatory, optional)", membershipType)
	}

	relID, err := s.store.CreateRelation(ctx, entities.RelFillsPosition, userID, positionID)
	if err != nil {
		return fmt.Errorf("creating fills_position edge: %w", err)
	}
	if err := s.store.SetRelationProperty(ctx, relID, "membership_type", membershipType); err != nil {
		return fmt.Errorf("setting edge membership_type: %w", err)
	}
	if err := s.store.SetEntityProperties(ctx, positionID, map[string]string{"membership_type": membershipType}); err != nil {
		return fmt.Errorf("setting position membership_type default: %w", err)
	}

	if err := s.store.LogAction(ctx, "position.assign", positionID, map[string]any{
		"user_id":         userID,
		"membership_type": membershipType,
	}); err != nil {
		return fmt.Errorf("logging assignment: %w", err)
	}
	return nil
}

// Vacate removes every holder from a position.
func (s *PositionService) Vacate(ctx context.Context, positionID int64) error {
	if err := s.store.DeleteRelationsToTarget(ctx, entities.RelFillsPosition, positionID); err != nil {
		return fmt.Errorf("deleting fills_position edges: %w", err)
	}
	if err := s.store.LogAction(ctx, "position.vacate", positionID, nil); err != nil {
		return fmt.Errorf("logging vacate: %w", err)
	}
	return nil
}

// VacantMandatory returns mandatory positions in the unit with no holder —
// the data-integrity warning feed surfaced by the surrounding system.
func (s *PositionService) VacantMandatory(ctx context.Context, unitID int64) ([]entities.PositionView, error) {
	views, err := s.List(ctx, unitID)
	if err != nil {
		return nil, err
	}
	var vacant []entities.PositionView
	for _, v := range views {
		if !v.Filled() && v.MembershipType == entities.MembershipMandatory {
			vacant = append(vacant, v)
		}
	}
	return vacant, nil
}
