package entities

import "time"

// Built-in relation type names. A relation type is itself an entity of
// entity_type "relation_type"; its name is the semantic identity of the edge.
// Direction is a convention per name, documented here:
//
//	has_role:        user → role
//	has_permission:  role → permission
//	fills_position:  user → position
//	belongs_to_unit: position → organizational_unit
const (
	RelHasRole       = "has_role"
	RelHasPermission = "has_permission"
	RelFillsPosition = "fills_position"
	RelBelongsToUnit = "belongs_to_unit"
)

// Relation represents a typed directed edge between two entities. The triple
// (RelationTypeID, SourceID, TargetID) is unique; creating the same edge twice
// is a no-op.
type Relation struct {
	ID             int64     `json:"id"`
	RelationTypeID int64     `json:"relation_type_id"`
	SourceID       int64     `json:"source_id"`
	TargetID       int64     `json:"target_id"`
	CreatedAt      time.Time `json:"created_at"`
}
