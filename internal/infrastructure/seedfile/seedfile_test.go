package seedfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		wantType string
		wantName string
		wantErr  bool
	}{
		{
			name:     "simple reference",
			ref:      "user:alice",
			wantType: "user",
			wantName: "alice",
		},
		{
			name:     "name containing colons",
			ref:      "permission:tor:sections:approve",
			wantType: "permission",
			wantName: "tor:sections:approve",
		},
		{
			name:    "missing separator",
			ref:     "alice",
			wantErr: true,
		},
		{
			name:    "empty type",
			ref:     ":alice",
			wantErr: true,
		},
		{
			name:    "empty name",
			ref:     "user:",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entityType, name, err := ParseRef(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, entityType)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
entities:
  - entity_type: user
    name: alice
    label: Alice
    sort_order: 2
    properties:
      email: alice@example.org
  - entity_type: role
    name: admin
    label: Administrator

relations:
  - relation_type: has_role
    source: user:alice
    target: role:admin
    properties:
      granted_by: seed
`)

	doc, err := ParseYAML(data)
	require.NoError(t, err)
	require.Len(t, doc.Entities, 2)
	require.Len(t, doc.Relations, 1)

	assert.Equal(t, "user", doc.Entities[0].EntityType)
	assert.Equal(t, "alice", doc.Entities[0].Name)
	assert.Equal(t, 2, doc.Entities[0].SortOrder)
	assert.Equal(t, "alice@example.org", doc.Entities[0].Properties["email"])
	assert.Equal(t, "user:alice", doc.Entities[0].Ref())

	assert.Equal(t, "has_role", doc.Relations[0].RelationType)
	assert.Equal(t, "seed", doc.Relations[0].Properties["granted_by"])

	require.NoError(t, doc.Validate())
}

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"entities": [
			{"entity_type": "user", "name": "alice", "label": "Alice"}
		],
		"relations": []
	}`)

	doc, err := ParseJSON(data)
	require.NoError(t, err)
	require.Len(t, doc.Entities, 1)
	assert.Equal(t, "alice", doc.Entities[0].Name)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "seed.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("entities:\n  - entity_type: user\n    name: alice\n"), 0o644))

	doc, err := ParseFile(yamlPath)
	require.NoError(t, err)
	assert.Len(t, doc.Entities, 1)

	txtPath := filepath.Join(dir, "seed.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0o644))
	_, err = ParseFile(txtPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported seed file extension")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr string
	}{
		{
			name: "missing entity type",
			doc: Document{
				Entities: []EntitySeed{{Name: "alice"}},
			},
			wantErr: "entity_type",
		},
		{
			name: "missing entity name",
			doc: Document{
				Entities: []EntitySeed{{EntityType: "user"}},
			},
			wantErr: "name",
		},
		{
			name: "missing relation type",
			doc: Document{
				Relations: []RelationSeed{{Source: "user:alice", Target: "role:admin"}},
			},
			wantErr: "relation_type",
		},
		{
			name: "malformed source reference",
			doc: Document{
				Relations: []RelationSeed{{RelationType: "has_role", Source: "alice", Target: "role:admin"}},
			},
			wantErr: "source",
		},
		{
			name: "malformed target reference",
			doc: Document{
				Relations: []RelationSeed{{RelationType: "has_role", Source: "user:alice", Target: ""}},
			},
			wantErr: "target",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
