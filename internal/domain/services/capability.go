package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/ports"
)

// DefaultBypassPermission is the global permission that short-circuits
// position-level capability checks. Holders can act on any unit without
// filling a position in it.
const DefaultBypassPermission = "units.manage"

// CapabilityService answers "may user U perform capability C on unit R?" by
// walking the position-filling graph:
//
//	user --fills_position--> position --belongs_to_unit--> unit
//
// where the position carries can_<capability> = "true" properties.
//
// Every ambiguous input — unknown capability name, unknown relation type,
// unit with no positions, user filling nothing — resolves to a denial, never
// an error. Storage failures are the one exception: they propagate, so an
// outage cannot masquerade as a legitimate "no".
type CapabilityService struct {
	store       ports.GraphStore
	permissions *PermissionService
	bypass      string
}

// NewCapabilityService creates a CapabilityService using the default bypass
// permission.
func NewCapabilityService(store ports.GraphStore, permissions *PermissionService) *CapabilityService {
	return &CapabilityService{
		store:       store,
		permissions: permissions,
		bypass:      DefaultBypassPermission,
	}
}

// WithBypassPermission overrides the global bypass permission code.
func (s *CapabilityService) WithBypassPermission(code string) *CapabilityService {
	s.bypass = code
	return s
}

// RequireCapability runs the two-phase check: global bypass via the user's
// effective permission set first, then the per-position capability flags in
// the unit. Returns (false, nil) on any denial.
func (s *CapabilityService) RequireCapability(ctx context.Context, userID, unitID int64, capability string) (bool, error) {
	perms, err := s.permissions.Effective(ctx, userID)
	if err != nil {
		return false, err
	}
	if perms.Has(s.bypass) {
		return true, nil
	}

	key := entities.CapabilityPrefix + capability
	positions, err := s.unitPositions(ctx, unitID)
	if err != nil {
		return false, err
	}
	for _, pos := range positions {
		filled, err := s.fills(ctx, userID, pos.ID)
		if err != nil {
			return false, err
		}
		if !filled {
			continue
		}
		value, ok, err := s.store.GetEntityProperty(ctx, pos.ID, key)
		if err != nil {
			return false, err
		}
		if ok && value == "true" {
			return true, nil
		}
	}
	return false, nil
}

// Capabilities returns every can_* capability the user holds across all
// positions they fill in the unit. The prefix scan keeps this forward
// compatible: capabilities added later are picked up without code changes.
func (s *CapabilityService) Capabilities(ctx context.Context, userID, unitID int64) (entities.PermissionSet, error) {
	positions, err := s.unitPositions(ctx, unitID)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, pos := range positions {
		filled, err := s.fills(ctx, userID, pos.ID)
		if err != nil {
			return nil, err
		}
		if !filled {
			continue
		}
		props, err := s.store.GetEntityProperties(ctx, pos.ID)
		if err != nil {
			return nil, err
		}
		for k, v := range props {
			if strings.HasPrefix(k, entities.CapabilityPrefix) && v == "true" {
				keys = append(keys, k)
			}
		}
	}
	return entities.NewPermissionSet(keys...), nil
}

// RequireMembership reports whether the user fills any position in the unit,
// regardless of capability flags. Coarse "are you even part of this unit"
// gating.
func (s *CapabilityService) RequireMembership(ctx context.Context, userID, unitID int64) (bool, error) {
	positions, err := s.unitPositions(ctx, unitID)
	if err != nil {
		return false, err
	}
	for _, pos := range positions {
		filled, err := s.fills(ctx, userID, pos.ID)
		if err != nil {
			return false, err
		}
		if filled {
			return true, nil
		}
	}
	return false, nil
}

// unitPositions returns the position entities belonging to a unit. Entities
// of other types wired into belongs_to_unit are ignored rather than trusted.
func (s *CapabilityService) unitPositions(ctx context.Context, unitID int64) ([]*entities.Entity, error) {
	candidates, err := s.store.FindSources(ctx, entities.RelBelongsToUnit, unitID)
	if err != nil {
		return nil, fmt.Errorf("finding positions for unit %d: %w", unitID, err)
	}
	positions := candidates[:0]
	for _, c := range candidates {
		if c.EntityType == entities.TypePosition {
			positions = append(positions, c)
		}
	}
	return positions, nil
}

// fills reports whether the user holds the given position.
func (s *CapabilityService) fills(ctx context.Context, userID, positionID int64) (bool, error) {
	rel, err := s.store.FindRelation(ctx, entities.RelFillsPosition, userID, positionID)
	if err != nil {
		return false, fmt.Errorf("checking fills_position: %w", err)
	}
	return rel != nil, nil
}
