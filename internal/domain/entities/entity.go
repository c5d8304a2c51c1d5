package entities

import "time"

// Well-known entity types. The store never enforces these — entity_type is an
// open string discriminator — but the resolvers and the seed bootstrap treat
// them as a closed set at their boundary.
const (
	TypeUser         = "user"
	TypeRole         = "role"
	TypePermission   = "permission"
	TypePosition     = "position"
	TypeOrgUnit      = "organizational_unit"
	TypeRelationType = "relation_type"
)

// Entity represents a typed node in the graph. The pair (EntityType, Name) is
// unique; Label is display text and carries no identity.
type Entity struct {
	ID         int64     `json:"id"`
	EntityType string    `json:"entity_type"`
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	SortOrder  int       `json:"sort_order"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Ref returns the "entity_type:name" reference form used by seed documents.
func (e *Entity) Ref() string {
	return e.EntityType + ":" + e.Name
}
