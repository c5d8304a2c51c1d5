// Package seedfile parses flat seed documents describing graph entities and
// relations. Relation endpoints reference entities as "entity_type:name"
// strings rather than ids, so a document is position-independent: a relation
// may reference an entity defined later in the same file.
package seedfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is a seed payload: ordered entity and relation lists.
type Document struct {
	Entities  []EntitySeed   `yaml:"entities" json:"entities"`
	Relations []RelationSeed `yaml:"relations" json:"relations"`
}

// EntitySeed describes one entity to create.
type EntitySeed struct {
	EntityType string            `yaml:"entity_type" json:"entity_type"`
	Name       string            `yaml:"name" json:"name"`
	Label      string            `yaml:"label" json:"label"`
	SortOrder  int               `yaml:"sort_order,omitempty" json:"sort_order,omitempty"`
	Properties map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Ref returns the "entity_type:name" reference form for this entity.
func (e *EntitySeed) Ref() string {
	return e.EntityType + ":" + e.Name
}

// RelationSeed describes one edge to create, endpoints by reference.
type RelationSeed struct {
	RelationType string            `yaml:"relation_type" json:"relation_type"`
	Source       string            `yaml:"source" json:"source"`
	Target       string            `yaml:"target" json:"target"`
	Properties   map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// ParseRef splits an "entity_type:name" reference. The name part may itself
// contain colons (e.g. permission codes); only the first colon separates.
func ParseRef(ref string) (entityType, name string, err error) {
	entityType, name, ok := strings.Cut(ref, ":")
	if !ok || entityType == "" || name == "" {
		return "", "", fmt.Errorf("invalid entity reference %q (expected \"entity_type:name\")", ref)
	}
	return entityType, name, nil
}

// ParseFile reads and parses a seed document, choosing the format from the
// file extension (.yaml, .yml, or .json).
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q (expected .yaml, .yml, or .json)", filepath.Ext(path))
	}
}

// ParseYAML parses a YAML seed document.
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing seed yaml: %w", err)
	}
	return &doc, nil
}

// ParseJSON parses a JSON seed document.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing seed json: %w", err)
	}
	return &doc, nil
}

// Validate checks that every entity has a type and name and that every
// relation has a type and well-formed endpoint references. Returning the
// first problem keeps the error actionable.
func (d *Document) Validate() error {
	for i := range d.Entities {
		e := &d.Entities[i]
		if e.EntityType == "" {
			return fmt.Errorf("entity %d: missing required field: entity_type", i+1)
		}
		if e.Name == "" {
			return fmt.Errorf("entity %d (%s): missing required field: name", i+1, e.EntityType)
		}
	}
	for i := range d.Relations {
		r := &d.Relations[i]
		if r.RelationType == "" {
			return fmt.Errorf("relation %d: missing required field: relation_type", i+1)
		}
		if _, _, err := ParseRef(r.Source); err != nil {
			return fmt.Errorf("relation %d: source: %w", i+1, err)
		}
		if _, _, err := ParseRef(r.Target); err != nil {
			return fmt.Errorf("relation %d: target: %w", i+1, err)
		}
	}
	return nil
}
