package ports

import (
	"context"

	"github.com/opengovtools/authgraph/internal/domain/entities"
)

// EntityStore defines typed-node storage with an attached property bag per
// node. Lookups that may legitimately miss return (nil, nil); ErrNotFound is
// reserved for operations where the caller asked for a required value.
type EntityStore interface {
	// CreateEntity creates a typed node and returns its id. Returns
	// ErrConflict if (entityType, name) already exists.
	CreateEntity(ctx context.Context, entityType, name, label string, sortOrder int) (int64, error)

	// UpdateEntity updates an entity's name, label, and sort order.
	UpdateEntity(ctx context.Context, id int64, name, label string, sortOrder int) error

	// FindEntityByID finds an entity by id. Returns (nil, nil) if absent.
	FindEntityByID(ctx context.Context, id int64) (*entities.Entity, error)

	// FindEntityByTypeAndName finds an entity by its unique (type, name)
	// pair. Returns (nil, nil) if absent.
	FindEntityByTypeAndName(ctx context.Context, entityType, name string) (*entities.Entity, error)

	// ListEntitiesByType lists all entities of a type, ordered by sort_order
	// then id.
	ListEntitiesByType(ctx context.Context, entityType string) ([]*entities.Entity, error)

	// CountEntitiesByType counts entities of a type.
	CountEntitiesByType(ctx context.Context, entityType string) (int, error)

	// SetEntityProperties upserts key/value properties; last write wins per key.
	SetEntityProperties(ctx context.Context, entityID int64, props map[string]string) error

	// GetEntityProperty reads one property. ok is false when the key is absent.
	GetEntityProperty(ctx context.Context, entityID int64, key string) (value string, ok bool, err error)

	// GetEntityProperties reads the full property bag for an entity.
	GetEntityProperties(ctx context.Context, entityID int64) (map[string]string, error)

	// DeleteEntity deletes an entity, cascading to its properties, every
	// relation where it is source or target, and those relations' properties.
	DeleteEntity(ctx context.Context, entityID int64) error
}

// RelationStore defines typed directed edges between nodes. Relation types
// are addressed by name; an unknown name matches zero rows on reads and is
// ErrNotFound on creation.
type RelationStore interface {
	// CreateRelation creates an edge and returns its id. Idempotent: if the
	// (type, source, target) triple already exists, the existing id is
	// returned and nothing is written.
	CreateRelation(ctx context.Context, relationType string, sourceID, targetID int64) (int64, error)

	// DeleteRelation deletes one edge.
	DeleteRelation(ctx context.Context, relationType string, sourceID, targetID int64) error

	// DeleteRelationsToTarget deletes every edge of the given type into the
	// target entity.
	DeleteRelationsToTarget(ctx context.Context, relationType string, targetID int64) error

	// FindRelation finds one edge by its triple. Returns (nil, nil) if absent.
	FindRelation(ctx context.Context, relationType string, sourceID, targetID int64) (*entities.Relation, error)

	// SetRelationProperty upserts a key/value property on an edge.
	SetRelationProperty(ctx context.Context, relationID int64, key, value string) error

	// GetRelationProperty reads one edge property. ok is false when absent.
	GetRelationProperty(ctx context.Context, relationID int64, key string) (value string, ok bool, err error)

	// FindTargets returns the target entities of edges of the given type
	// leaving sourceID, ordered by sort_order then id.
	FindTargets(ctx context.Context, relationType string, sourceID int64) ([]*entities.Entity, error)

	// FindSources returns the source entities of edges of the given type
	// entering targetID, ordered by sort_order then id.
	FindSources(ctx context.Context, relationType string, targetID int64) ([]*entities.Entity, error)

	// FindNeighbors returns entities connected to entityID by the given type
	// in either direction. Readers of relation types with historically
	// inconsistent direction use this instead of guessing.
	FindNeighbors(ctx context.Context, relationType string, entityID int64) ([]*entities.Entity, error)
}

// GraphStore is the full storage contract: nodes, edges, schema lifecycle,
// ontology summaries, and the audit log.
type GraphStore interface {
	EntityStore
	RelationStore

	// EnsureSchema creates the storage schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error

	// EntityTypeSummaries returns per-type counts, property keys, and samples.
	EntityTypeSummaries(ctx context.Context) ([]entities.EntityTypeSummary, error)

	// RelationTypeSummaries returns per relation type usage counts and
	// source-type → target-type patterns.
	RelationTypeSummaries(ctx context.Context) ([]entities.RelationTypeSummary, error)

	// LogAction appends an audit entry. entityID 0 means no subject entity.
	LogAction(ctx context.Context, action string, entityID int64, details map[string]any) error

	// FindAuditLog returns audit entries for an entity, newest first.
	FindAuditLog(ctx context.Context, entityID int64) ([]entities.AuditEntry, error)
}
