package entities

// EntitySample is a short preview of an entity for schema summaries.
type EntitySample struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Label string `json:"label"`
}

// EntityTypeSummary describes one entity type: how many entities exist, which
// property keys appear on them, and a few samples.
type EntityTypeSummary struct {
	EntityType   string         `json:"entity_type"`
	Count        int            `json:"count"`
	PropertyKeys []string       `json:"property_keys"`
	Samples      []EntitySample `json:"samples"`
}

// RelationPattern is one observed source-type → target-type shape for a
// relation type.
type RelationPattern struct {
	SourceType string `json:"source_type"`
	TargetType string `json:"target_type"`
	Count      int    `json:"count"`
}

// RelationTypeSummary describes one relation type: total edges and the
// type-level patterns they form.
type RelationTypeSummary struct {
	Name       string            `json:"name"`
	Label      string            `json:"label"`
	UsageCount int               `json:"usage_count"`
	Patterns   []RelationPattern `json:"patterns"`
}
