// Package mocks provides in-memory test doubles for the domain ports.
package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/ports"
)

// GraphStore is an in-memory implementation of ports.GraphStore. Set Err to
// make every operation fail with that error (storage-failure paths).
type GraphStore struct {
	Entities   map[int64]*entities.Entity
	Props      map[int64]map[string]string
	Relations  map[int64]*entities.Relation
	RelProps   map[int64]map[string]string
	Audit      []entities.AuditEntry
	Err        error
	nextID     int64
	nextRelID  int64
	nextAudit  int64
	timeOrigin time.Time
}

// NewGraphStore creates an empty in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		Entities:   make(map[int64]*entities.Entity),
		Props:      make(map[int64]map[string]string),
		Relations:  make(map[int64]*entities.Relation),
		RelProps:   make(map[int64]map[string]string),
		timeOrigin: time.Now(),
	}
}

// EnsureSchema is a no-op for the in-memory store.
func (m *GraphStore) EnsureSchema(_ context.Context) error { return m.Err }

// Close is a no-op for the in-memory store.
func (m *GraphStore) Close() error { return nil }

// MustEntity creates an entity, panicking on conflict. Test setup helper.
func (m *GraphStore) MustEntity(entityType, name, label string) int64 {
	id, err := m.CreateEntity(context.Background(), entityType, name, label, 0)
	if err != nil {
		panic(err)
	}
	return id
}

// MustRelation creates an edge, panicking on error. Test setup helper.
func (m *GraphStore) MustRelation(relationType string, sourceID, targetID int64) int64 {
	id, err := m.CreateRelation(context.Background(), relationType, sourceID, targetID)
	if err != nil {
		panic(err)
	}
	return id
}

// CreateEntity creates a typed node and returns its id.
func (m *GraphStore) CreateEntity(_ context.Context, entityType, name, label string, sortOrder int) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	for _, e := range m.Entities {
		if e.EntityType == entityType && e.Name == name {
			return 0, ports.ErrConflict
		}
	}
	m.nextID++
	m.Entities[m.nextID] = &entities.Entity{
		ID:         m.nextID,
		EntityType: entityType,
		Name:       name,
		Label:      label,
		SortOrder:  sortOrder,
		IsActive:   true,
		CreatedAt:  m.timeOrigin,
		UpdatedAt:  m.timeOrigin,
	}
	return m.nextID, nil
}

// UpdateEntity updates an entity's name, label, and sort order.
func (m *GraphStore) UpdateEntity(_ context.Context, id int64, name, label string, sortOrder int) error {
	if m.Err != nil {
		return m.Err
	}
	if e, ok := m.Entities[id]; ok {
		e.Name = name
		e.Label = label
		e.SortOrder = sortOrder
	}
	return nil
}

// FindEntityByID finds an entity by id.
func (m *GraphStore) FindEntityByID(_ context.Context, id int64) (*entities.Entity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if e, ok := m.Entities[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, nil
}

// FindEntityByTypeAndName finds an entity by its unique (type, name) pair.
func (m *GraphStore) FindEntityByTypeAndName(_ context.Context, entityType, name string) (*entities.Entity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, e := range m.Entities {
		if e.EntityType == entityType && e.Name == name {
			copied := *e
			return &copied, nil
		}
	}
	return nil, nil
}

// ListEntitiesByType lists all entities of a type.
func (m *GraphStore) ListEntitiesByType(_ context.Context, entityType string) ([]*entities.Entity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []*entities.Entity
	for _, e := range m.Entities {
		if e.EntityType == entityType {
			copied := *e
			result = append(result, &copied)
		}
	}
	sortEntities(result)
	return result, nil
}

// CountEntitiesByType counts entities of a type.
func (m *GraphStore) CountEntitiesByType(_ context.Context, entityType string) (int, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	count := 0
	for _, e := range m.Entities {
		if e.EntityType == entityType {
			count++
		}
	}
	return count, nil
}

// SetEntityProperties upserts key/value properties on an entity.
func (m *GraphStore) SetEntityProperties(_ context.Context, entityID int64, props map[string]string) error {
	if m.Err != nil {
		return m.Err
	}
	bag := m.Props[entityID]
	if bag == nil {
		bag = make(map[string]string)
		m.Props[entityID] = bag
	}
	for k, v := range props {
		bag[k] = v
	}
	return nil
}

// GetEntityProperty reads one property.
func (m *GraphStore) GetEntityProperty(_ context.Context, entityID int64, key string) (string, bool, error) {
	if m.Err != nil {
		return "", false, m.Err
	}
	v, ok := m.Props[entityID][key]
	return v, ok, nil
}

// GetEntityProperties reads the full property bag.
func (m *GraphStore) GetEntityProperties(_ context.Context, entityID int64) (map[string]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make(map[string]string, len(m.Props[entityID]))
	for k, v := range m.Props[entityID] {
		result[k] = v
	}
	return result, nil
}

// DeleteEntity deletes an entity, cascading to properties and relations.
func (m *GraphStore) DeleteEntity(_ context.Context, entityID int64) error {
	if m.Err != nil {
		return m.Err
	}
	delete(m.Entities, entityID)
	delete(m.Props, entityID)
	for id, r := range m.Relations {
		if r.SourceID == entityID || r.TargetID == entityID {
			delete(m.Relations, id)
			delete(m.RelProps, id)
		}
	}
	return nil
}

// relationTypeID resolves a relation-type name to its entity id.
func (m *GraphStore) relationTypeID(name string) (int64, bool) {
	for _, e := range m.Entities {
		if e.EntityType == entities.TypeRelationType && e.Name == name {
			return e.ID, true
		}
	}
	return 0, false
}

// CreateRelation creates an edge, returning the existing id on replay.
func (m *GraphStore) CreateRelation(_ context.Context, relationType string, sourceID, targetID int64) (int64, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	typeID, ok := m.relationTypeID(relationType)
	if !ok {
		return 0, ports.ErrNotFound
	}
	for id, r := range m.Relations {
		if r.RelationTypeID == typeID && r.SourceID == sourceID && r.TargetID == targetID {
			return id, nil
		}
	}
	m.nextRelID++
	m.Relations[m.nextRelID] = &entities.Relation{
		ID:             m.nextRelID,
		RelationTypeID: typeID,
		SourceID:       sourceID,
		TargetID:       targetID,
		CreatedAt:      m.timeOrigin,
	}
	return m.nextRelID, nil
}

// DeleteRelation deletes one edge.
func (m *GraphStore) DeleteRelation(_ context.Context, relationType string, sourceID, targetID int64) error {
	if m.Err != nil {
		return m.Err
	}
	typeID, ok := m.relationTypeID(relationType)
	if !ok {
		return nil
	}
	for id, r := range m.Relations {
		if r.RelationTypeID == typeID && r.SourceID == sourceID && r.TargetID == targetID {
			delete(m.Relations, id)
			delete(m.RelProps, id)
		}
	}
	return nil
}

// DeleteRelationsToTarget deletes every edge of a type into the target.
func (m *GraphStore) DeleteRelationsToTarget(_ context.Context, relationType string, targetID int64) error {
	if m.Err != nil {
		return m.Err
	}
	typeID, ok := m.relationTypeID(relationType)
	if !ok {
		return nil
	}
	for id, r := range m.Relations {
		if r.RelationTypeID == typeID && r.TargetID == targetID {
			delete(m.Relations, id)
			delete(m.RelProps, id)
		}
	}
	return nil
}

// FindRelation finds one edge by its triple.
func (m *GraphStore) FindRelation(_ context.Context, relationType string, sourceID, targetID int64) (*entities.Relation, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	typeID, ok := m.relationTypeID(relationType)
	if !ok {
		return nil, nil
	}
	for _, r := range m.Relations {
		if r.RelationTypeID == typeID && r.SourceID == sourceID && r.TargetID == targetID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, nil
}

// SetRelationProperty upserts a key/value property on an edge.
func (m *GraphStore) SetRelationProperty(_ context.Context, relationID int64, key, value string) error {
	if m.Err != nil {
		return m.Err
	}
	bag := m.RelProps[relationID]
	if bag == nil {
		bag = make(map[string]string)
		m.RelProps[relationID] = bag
	}
	bag[key] = value
	return nil
}

// GetRelationProperty reads one edge property.
func (m *GraphStore) GetRelationProperty(_ context.Context, relationID int64, key string) (string, bool, error) {
	if m.Err != nil {
		return "", false, m.Err
	}
	v, ok := m.RelProps[relationID][key]
	return v, ok, nil
}

// FindTargets returns target entities of edges leaving sourceID.
func (m *GraphStore) FindTargets(_ context.Context, relationType string, sourceID int64) ([]*entities.Entity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	typeID, ok := m.relationTypeID(relationType)
	if !ok {
		return nil, nil
	}
	var result []*entities.Entity
	for _, r := range m.Relations {
		if r.RelationTypeID == typeID && r.SourceID == sourceID {
			if e, found := m.Entities[r.TargetID]; found {
				copied := *e
				result = append(result, &copied)
			}
		}
	}
	sortEntities(result)
	return result, nil
}

// FindSources returns source entities of edges entering targetID.
func (m *GraphStore) FindSources(_ context.Context, relationType string, targetID int64) ([]*entities.Entity, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	typeID, ok := m.relationTypeID(relationType)
	if !ok {
		return nil, nil
	}
	var result []*entities.Entity
	for _, r := range m.Relations {
		if r.RelationTypeID == typeID && r.TargetID == targetID {
			if e, found := m.Entities[r.SourceID]; found {
				copied := *e
				result = append(result, &copied)
			}
		}
	}
	sortEntities(result)
	return result, nil
}

// FindNeighbors returns entities connected in either direction.
func (m *GraphStore) FindNeighbors(ctx context.Context, relationType string, entityID int64) ([]*entities.Entity, error) {
	targets, err := m.FindTargets(ctx, relationType, entityID)
	if err != nil {
		return nil, err
	}
	sources, err := m.FindSources(ctx, relationType, entityID)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]struct{}, len(targets)+len(sources))
	var result []*entities.Entity
	for _, e := range append(targets, sources...) {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		result = append(result, e)
	}
	sortEntities(result)
	return result, nil
}

// EntityTypeSummaries returns per-type counts, property keys, and samples.
func (m *GraphStore) EntityTypeSummaries(_ context.Context) ([]entities.EntityTypeSummary, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	byType := make(map[string]*entities.EntityTypeSummary)
	for _, e := range m.Entities {
		s := byType[e.EntityType]
		if s == nil {
			s = &entities.EntityTypeSummary{EntityType: e.EntityType}
			byType[e.EntityType] = s
		}
		s.Count++
		if len(s.Samples) < 5 {
			s.Samples = append(s.Samples, entities.EntitySample{ID: e.ID, Name: e.Name, Label: e.Label})
		}
	}
	var result []entities.EntityTypeSummary
	for _, s := range byType {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].EntityType < result[j].EntityType })
	return result, nil
}

// RelationTypeSummaries returns per relation type usage counts and patterns.
func (m *GraphStore) RelationTypeSummaries(_ context.Context) ([]entities.RelationTypeSummary, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.RelationTypeSummary
	for _, rt := range m.Entities {
		if rt.EntityType != entities.TypeRelationType {
			continue
		}
		summary := entities.RelationTypeSummary{Name: rt.Name, Label: rt.Label}
		for _, r := range m.Relations {
			if r.RelationTypeID == rt.ID {
				summary.UsageCount++
			}
		}
		result = append(result, summary)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

// LogAction appends an audit entry.
func (m *GraphStore) LogAction(_ context.Context, action string, entityID int64, details map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.nextAudit++
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:        m.nextAudit,
		Action:    action,
		EntityID:  entityID,
		Details:   details,
		CreatedAt: m.timeOrigin,
	})
	return nil
}

// FindAuditLog returns audit entries for an entity, newest first.
func (m *GraphStore) FindAuditLog(_ context.Context, entityID int64) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0; i-- {
		if m.Audit[i].EntityID == entityID {
			result = append(result, m.Audit[i])
		}
	}
	return result, nil
}

// sortEntities orders by sort_order then id, matching the SQL backends.
func sortEntities(list []*entities.Entity) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].SortOrder != list[j].SortOrder {
			return list[i].SortOrder < list[j].SortOrder
		}
		return list[i].ID < list[j].ID
	})
}
