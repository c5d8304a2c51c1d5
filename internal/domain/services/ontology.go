package services

import (
	"context"
	"fmt"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/ports"
)

// OntologyService exposes schema-level views over the schema-less store:
// what entity types exist, which property keys they carry, and how relation
// types connect them. Read-only.
type OntologyService struct {
	store ports.GraphStore
}

// NewOntologyService creates a new OntologyService.
func NewOntologyService(store ports.GraphStore) *OntologyService {
	return &OntologyService{store: store}
}

// EntityTypes returns per-type counts, observed property keys, and samples.
func (s *OntologyService) EntityTypes(ctx context.Context) ([]entities.EntityTypeSummary, error) {
	summaries, err := s.store.EntityTypeSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarizing entity types: %w", err)
	}
	return summaries, nil
}

// RelationTypes returns per relation type usage counts and the source-type →
// target-type patterns they form. A relation type appearing with conflicting
// directions for the same type pair shows up as two patterns here — that is
// the signal to standardize the data, not a feature.
func (s *OntologyService) RelationTypes(ctx context.Context) ([]entities.RelationTypeSummary, error) {
	summaries, err := s.store.RelationTypeSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarizing relation types: %w", err)
	}
	return summaries, nil
}

// AuditTrail returns the audit entries recorded against an entity.
func (s *OntologyService) AuditTrail(ctx context.Context, entityID int64) ([]entities.AuditEntry, error) {
	trail, err := s.store.FindAuditLog(ctx, entityID)
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return trail, nil
}
