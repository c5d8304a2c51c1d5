// Package sqlite provides a SQLite implementation of the GraphStore interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/opengovtools/authgraph/internal/domain/entities"
	"github.com/opengovtools/authgraph/internal/domain/ports"
	"github.com/opengovtools/authgraph/internal/infrastructure/config"
)

// relationTypeCacheSize bounds the relation-type name → id cache. The set of
// relation types is small in practice; the bound is for pathological data.
const relationTypeCacheSize = 256

// sampleLimit caps how many example entities a type summary carries.
const sampleLimit = 5

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements ports.GraphStore using SQLite.
type Repository struct {
	db   *sql.DB
	path string

	// typeIDs caches relation-type name → entity id. Entries are added on
	// first resolution and on relation-type creation, and removed when a
	// relation-type entity is deleted. Ids are immutable, so entries never
	// go stale otherwise.
	typeIDs *lru.Cache[string, int64]
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	typeIDs, err := lru.New[string, int64](relationTypeCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating relation type cache: %w", err)
	}

	return &Repository{
		db:      db,
		path:    cfg.Path,
		typeIDs: typeIDs,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Typed nodes; (entity_type, name) is the stable external identity
	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entity_type TEXT NOT NULL,
		name TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		sort_order INTEGER NOT NULL DEFAULT 0,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(entity_type, name)
	);
	CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(entity_type);

	-- Per-node property bag
	CREATE TABLE IF NOT EXISTS entity_properties (
		entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (entity_id, key)
	);

	-- Typed directed edges; the relation type is itself an entity
	CREATE TABLE IF NOT EXISTS relations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		relation_type_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		source_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		target_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(relation_type_id, source_id, target_id)
	);
	CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(relation_type_id, source_id);
	CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(relation_type_id, target_id);

	-- Per-edge property bag
	CREATE TABLE IF NOT EXISTS relation_properties (
		relation_id INTEGER NOT NULL REFERENCES relations(id) ON DELETE CASCADE,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (relation_id, key)
	);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		entity_id INTEGER,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	CREATE INDEX IF NOT EXISTS idx_audit_log_created ON audit_log(created_at);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique constraint failure.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// CreateEntity creates a typed node and returns its id.
func (r *Repository) CreateEntity(ctx context.Context, entityType, name, label string, sortOrder int) (int64, error) {
	now := timeNow()
	query := `
		INSERT INTO entities (entity_type, name, label, sort_order, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query, entityType, name, label, sortOrder, now, now)
	if isUniqueViolation(err) {
		return 0, fmt.Errorf("entity %s:%s: %w", entityType, name, ports.ErrConflict)
	}
	if err != nil {
		return 0, fmt.Errorf("creating entity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading entity id: %w", err)
	}

	if entityType == entities.TypeRelationType {
		r.typeIDs.Add(name, id)
	}
	return id, nil
}

// UpdateEntity updates an entity's name, label, and sort order.
func (r *Repository) UpdateEntity(ctx context.Context, id int64, name, label string, sortOrder int) error {
	query := `UPDATE entities SET name = ?, label = ?, sort_order = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, name, label, sortOrder, timeNow(), id)
	if isUniqueViolation(err) {
		return fmt.Errorf("renaming entity %d to %q: %w", id, name, ports.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("updating entity: %w", err)
	}
	return nil
}

const entityColumns = `id, entity_type, name, label, sort_order, is_active, created_at, updated_at`

// scanEntity scans one entity row from either a *sql.Row or *sql.Rows.
func scanEntity(row interface{ Scan(...any) error }) (*entities.Entity, error) {
	var e entities.Entity
	err := row.Scan(
		&e.ID,
		&e.EntityType,
		&e.Name,
		&e.Label,
		&e.SortOrder,
		&e.IsActive,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindEntityByID finds an entity by its id. Returns nil if absent.
func (r *Repository) FindEntityByID(ctx context.Context, id int64) (*entities.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE id = ?`
	entity, err := scanEntity(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning entity: %w", err)
	}
	return entity, nil
}

// FindEntityByTypeAndName finds an entity by its unique (type, name) pair.
// Returns nil if absent.
func (r *Repository) FindEntityByTypeAndName(ctx context.Context, entityType, name string) (*entities.Entity, error) {
	query := `SELECT ` + entityColumns + ` FROM entities WHERE entity_type = ? AND name = ?`
	entity, err := scanEntity(r.db.QueryRowContext(ctx, query, entityType, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning entity: %w", err)
	}
	return entity, nil
}

// ListEntitiesByType lists all entities of a type ordered by sort_order then id.
func (r *Repository) ListEntitiesByType(ctx context.Context, entityType string) ([]*entities.Entity, error) {
	query := `
		SELECT ` + entityColumns + `
		FROM entities
		WHERE entity_type = ?
		ORDER BY sort_order ASC, id ASC
	`
	return r.queryEntities(ctx, query, entityType)
}

// CountEntitiesByType counts entities of a type.
func (r *Repository) CountEntitiesByType(ctx context.Context, entityType string) (int, error) {
	query := `SELECT COUNT(*) FROM entities WHERE entity_type = ?`
	var count int
	if err := r.db.QueryRowContext(ctx, query, entityType).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return count, nil
}

// SetEntityProperties upserts key/value properties on an entity.
func (r *Repository) SetEntityProperties(ctx context.Context, entityID int64, props map[string]string) error {
	query := `
		INSERT INTO entity_properties (entity_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(entity_id, key) DO UPDATE SET value = excluded.value
	`
	for k, v := range props {
		if _, err := r.db.ExecContext(ctx, query, entityID, k, v); err != nil {
			return fmt.Errorf("setting property %s: %w", k, err)
		}
	}
	return nil
}

// GetEntityProperty reads one property. ok is false when the key is absent.
func (r *Repository) GetEntityProperty(ctx context.Context, entityID int64, key string) (string, bool, error) {
	query := `SELECT value FROM entity_properties WHERE entity_id = ? AND key = ?`
	var value string
	err := r.db.QueryRowContext(ctx, query, entityID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading property: %w", err)
	}
	return value, true, nil
}

// GetEntityProperties reads the full property bag for an entity.
func (r *Repository) GetEntityProperties(ctx context.Context, entityID int64) (map[string]string, error) {
	query := `SELECT key, value FROM entity_properties WHERE entity_id = ?`
	rows, err := r.db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying properties: %w", err)
	}
	defer rows.Close()

	props := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		props[k] = v
	}
	return props, rows.Err()
}

// DeleteEntity deletes an entity. Properties and relations cascade via
// foreign keys.
func (r *Repository) DeleteEntity(ctx context.Context, entityID int64) error {
	entity, err := r.FindEntityByID(ctx, entityID)
	if err != nil {
		return err
	}
	if entity == nil {
		return nil
	}

	if _, err := r.db.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, entityID); err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}
	if entity.EntityType == entities.TypeRelationType {
		r.typeIDs.Remove(entity.Name)
	}
	return nil
}

// relationTypeID resolves a relation-type name to its entity id, consulting
// the cache first. ok is false for unknown names.
func (r *Repository) relationTypeID(ctx context.Context, name string) (int64, bool, error) {
	if id, ok := r.typeIDs.Get(name); ok {
		return id, true, nil
	}

	query := `SELECT id FROM entities WHERE entity_type = ? AND name = ?`
	var id int64
	err := r.db.QueryRowContext(ctx, query, entities.TypeRelationType, name).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("resolving relation type %s: %w", name, err)
	}

	r.typeIDs.Add(name, id)
	return id, true, nil
}

// CreateRelation creates an edge and returns its id. Replaying the same
// triple returns the existing id.
func (r *Repository) CreateRelation(ctx context.Context, relationType string, sourceID, targetID int64) (int64, error) {
	typeID, ok, err := r.relationTypeID(ctx, relationType)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, fmt.Errorf("relation type %s: %w", relationType, ports.ErrNotFound)
	}

	// Atomically insert if not exists, then fetch the id either way.
	insertQuery := `
		INSERT OR IGNORE INTO relations (relation_type_id, source_id, target_id, created_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, insertQuery, typeID, sourceID, targetID, timeNow()); err != nil {
		return 0, fmt.Errorf("inserting relation: %w", err)
	}

	selectQuery := `
		SELECT id FROM relations
		WHERE relation_type_id = ? AND source_id = ? AND target_id = ?
	`
	var id int64
	if err := r.db.QueryRowContext(ctx, selectQuery, typeID, sourceID, targetID).Scan(&id); err != nil {
		return 0, fmt.Errorf("reading relation id: %w", err)
	}
	return id, nil
}

// DeleteRelation deletes one edge.
func (r *Repository) DeleteRelation(ctx context.Context, relationType string, sourceID, targetID int64) error {
	typeID, ok, err := r.relationTypeID(ctx, relationType)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	query := `DELETE FROM relations WHERE relation_type_id = ? AND source_id = ? AND target_id = ?`
	if _, err := r.db.ExecContext(ctx, query, typeID, sourceID, targetID); err != nil {
		return fmt.Errorf("deleting relation: %w", err)
	}
	return nil
}

// DeleteRelationsToTarget deletes every edge of a type into the target.
func (r *Repository) DeleteRelationsToTarget(ctx context.Context, relationType string, targetID int64) error {
	typeID, ok, err := r.relationTypeID(ctx, relationType)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	query := `DELETE FROM relations WHERE relation_type_id = ? AND target_id = ?`
	if _, err := r.db.ExecContext(ctx, query, typeID, targetID); err != nil {
		return fmt.Errorf("deleting relations to target: %w", err)
	}
	return nil
}

// FindRelation finds one edge by its triple. Returns nil if absent.
func (r *Repository) FindRelation(ctx context.Context, relationType string, sourceID, targetID int64) (*entities.Relation, error) {
	typeID, ok, err := r.relationTypeID(ctx, relationType)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	query := `
		SELECT id, relation_type_id, source_id, target_id, created_at
		FROM relations
		WHERE relation_type_id = ? AND source_id = ? AND target_id = ?
	`
	var rel entities.Relation
	err = r.db.QueryRowContext(ctx, query, typeID, sourceID, targetID).Scan(
		&rel.ID,
		&rel.RelationTypeID,
		&rel.SourceID,
		&rel.TargetID,
		&rel.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning relation: %w", err)
	}
	return &rel, nil
}

// SetRelationProperty upserts a key/value property on an edge.
func (r *Repository) SetRelationProperty(ctx context.Context, relationID int64, key, value string) error {
	query := `
		INSERT INTO relation_properties (relation_id, key, value)
		VALUES (?, ?, ?)
		ON CONFLICT(relation_id, key) DO UPDATE SET value = excluded.value
	`
	if _, err := r.db.ExecContext(ctx, query, relationID, key, value); err != nil {
		return fmt.Errorf("setting relation property %s: %w", key, err)
	}
	return nil
}

// GetRelationProperty reads one edge property. ok is false when absent.
func (r *Repository) GetRelationProperty(ctx context.Context, relationID int64, key string) (string, bool, error) {
	query := `SELECT value FROM relation_properties WHERE relation_id = ? AND key = ?`
	var value string
	err := r.db.QueryRowContext(ctx, query, relationID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading relation property: %w", err)
	}
	return value, true, nil
}

// FindTargets returns target entities of edges of the given type leaving sourceID.
func (r *Repository) FindTargets(ctx context.Context, relationType string, sourceID int64) ([]*entities.Entity, error) {
	typeID, ok, err := r.relationTypeID(ctx, relationType)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	query := `
		SELECT e.id, e.entity_type, e.name, e.label, e.sort_order, e.is_active, e.created_at, e.updated_at
		FROM relations r
		JOIN entities e ON e.id = r.target_id
		WHERE r.relation_type_id = ? AND r.source_id = ?
		ORDER BY e.sort_order ASC, e.id ASC
	`
	return r.queryEntities(ctx, query, typeID, sourceID)
}

// FindSources returns source entities of edges of the given type entering targetID.
func (r *Repository) FindSources(ctx context.Context, relationType string, targetID int64) ([]*entities.Entity, error) {
	typeID, ok, err := r.relationTypeID(ctx, relationType)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	query := `
		SELECT e.id, e.entity_type, e.name, e.label, e.sort_order, e.is_active, e.created_at, e.updated_at
		FROM relations r
		JOIN entities e ON e.id = r.source_id
		WHERE r.relation_type_id = ? AND r.target_id = ?
		ORDER BY e.sort_order ASC, e.id ASC
	`
	return r.queryEntities(ctx, query, typeID, targetID)
}

// FindNeighbors returns entities connected to entityID in either direction.
func (r *Repository) FindNeighbors(ctx context.Context, relationType string, entityID int64) ([]*entities.Entity, error) {
	typeID, ok, err := r.relationTypeID(ctx, relationType)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	query := `
		SELECT DISTINCT e.id, e.entity_type, e.name, e.label, e.sort_order, e.is_active, e.created_at, e.updated_at
		FROM relations r
		JOIN entities e ON e.id = CASE WHEN r.source_id = ? THEN r.target_id ELSE r.source_id END
		WHERE r.relation_type_id = ? AND (r.source_id = ? OR r.target_id = ?)
		ORDER BY e.sort_order ASC, e.id ASC
	`
	return r.queryEntities(ctx, query, entityID, typeID, entityID, entityID)
}

// queryEntities is a helper to execute entity-list queries.
func (r *Repository) queryEntities(ctx context.Context, query string, args ...any) ([]*entities.Entity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	result := make([]*entities.Entity, 0, 16)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning entity: %w", err)
		}
		result = append(result, entity)
	}
	return result, rows.Err()
}

// EntityTypeSummaries returns per-type counts, observed property keys, and
// a few sample entities per type.
func (r *Repository) EntityTypeSummaries(ctx context.Context) ([]entities.EntityTypeSummary, error) {
	countQuery := `
		SELECT entity_type, COUNT(*)
		FROM entities
		GROUP BY entity_type
		ORDER BY entity_type ASC
	`
	rows, err := r.db.QueryContext(ctx, countQuery)
	if err != nil {
		return nil, fmt.Errorf("querying entity type counts: %w", err)
	}
	defer rows.Close()

	var summaries []entities.EntityTypeSummary
	for rows.Next() {
		var s entities.EntityTypeSummary
		if err := rows.Scan(&s.EntityType, &s.Count); err != nil {
			return nil, fmt.Errorf("scanning entity type count: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range summaries {
		s := &summaries[i]
		if s.PropertyKeys, err = r.propertyKeysForType(ctx, s.EntityType); err != nil {
			return nil, err
		}
		if s.Samples, err = r.samplesForType(ctx, s.EntityType); err != nil {
			return nil, err
		}
	}
	return summaries, nil
}

func (r *Repository) propertyKeysForType(ctx context.Context, entityType string) ([]string, error) {
	query := `
		SELECT DISTINCT p.key
		FROM entity_properties p
		JOIN entities e ON e.id = p.entity_id
		WHERE e.entity_type = ?
		ORDER BY p.key ASC
	`
	rows, err := r.db.QueryContext(ctx, query, entityType)
	if err != nil {
		return nil, fmt.Errorf("querying property keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning property key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *Repository) samplesForType(ctx context.Context, entityType string) ([]entities.EntitySample, error) {
	query := `
		SELECT id, name, label
		FROM entities
		WHERE entity_type = ?
		ORDER BY sort_order ASC, id ASC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, entityType, sampleLimit)
	if err != nil {
		return nil, fmt.Errorf("querying samples: %w", err)
	}
	defer rows.Close()

	var samples []entities.EntitySample
	for rows.Next() {
		var s entities.EntitySample
		if err := rows.Scan(&s.ID, &s.Name, &s.Label); err != nil {
			return nil, fmt.Errorf("scanning sample: %w", err)
		}
		samples = append(samples, s)
	}
	return samples, rows.Err()
}

// RelationTypeSummaries returns per relation type usage counts and the
// source-type → target-type patterns observed in the data.
func (r *Repository) RelationTypeSummaries(ctx context.Context) ([]entities.RelationTypeSummary, error) {
	types, err := r.ListEntitiesByType(ctx, entities.TypeRelationType)
	if err != nil {
		return nil, err
	}

	patternQuery := `
		SELECT se.entity_type, te.entity_type, COUNT(*)
		FROM relations r
		JOIN entities se ON se.id = r.source_id
		JOIN entities te ON te.id = r.target_id
		WHERE r.relation_type_id = ?
		GROUP BY se.entity_type, te.entity_type
		ORDER BY COUNT(*) DESC, se.entity_type ASC, te.entity_type ASC
	`

	summaries := make([]entities.RelationTypeSummary, 0, len(types))
	for _, rt := range types {
		summary := entities.RelationTypeSummary{Name: rt.Name, Label: rt.Label}

		rows, err := r.db.QueryContext(ctx, patternQuery, rt.ID)
		if err != nil {
			return nil, fmt.Errorf("querying relation patterns: %w", err)
		}
		for rows.Next() {
			var p entities.RelationPattern
			if err := rows.Scan(&p.SourceType, &p.TargetType, &p.Count); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning relation pattern: %w", err)
			}
			summary.Patterns = append(summary.Patterns, p)
			summary.UsageCount += p.Count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// LogAction logs an action to the audit log. entityID 0 means no subject.
func (r *Repository) LogAction(ctx context.Context, action string, entityID int64, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var entityIDPtr sql.NullInt64
	if entityID != 0 {
		entityIDPtr = sql.NullInt64{Int64: entityID, Valid: true}
	}

	query := `INSERT INTO audit_log (action, entity_id, details, created_at) VALUES (?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, action, entityIDPtr, detailsJSON, timeNow()); err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLog finds audit log entries for a specific entity, newest first.
func (r *Repository) FindAuditLog(ctx context.Context, entityID int64) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, entity_id, details, created_at
		FROM audit_log
		WHERE entity_id = ?
		ORDER BY id DESC
	`
	rows, err := r.db.QueryContext(ctx, query, entityID)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	var entries []entities.AuditEntry
	for rows.Next() {
		var entry entities.AuditEntry
		var subject sql.NullInt64
		var details sql.NullString

		if err := rows.Scan(&entry.ID, &entry.Action, &subject, &details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		entry.EntityID = subject.Int64

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
