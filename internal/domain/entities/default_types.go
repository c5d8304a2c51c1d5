package entities

// RelationTypeDef describes a built-in relation type for bootstrap seeding.
type RelationTypeDef struct {
	Name  string
	Label string
}

// DefaultRelationTypes are the relation types the resolvers depend on. They
// are seeded by SeedService.Bootstrap before any edges can be created.
var DefaultRelationTypes = []RelationTypeDef{
	{Name: RelHasRole, Label: "Has Role"},
	{Name: RelHasPermission, Label: "Has Permission"},
	{Name: RelFillsPosition, Label: "Fills Position"},
	{Name: RelBelongsToUnit, Label: "Belongs To Unit"},
}

// IsDefaultRelationType checks if a name is a built-in relation type.
func IsDefaultRelationType(name string) bool {
	for _, t := range DefaultRelationTypes {
		if t.Name == name {
			return true
		}
	}
	return false
}
