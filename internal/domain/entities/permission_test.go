package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPermissionSet(t *testing.T) {
	set := NewPermissionSet("users.list", "tor.view", "users.list", "users.create")

	assert.Equal(t, PermissionSet{"tor.view", "users.create", "users.list"}, set)
	assert.True(t, set.Has("tor.view"))
	assert.False(t, set.Has("users.delete"))
	assert.False(t, PermissionSet{}.Has("anything"))
}

func TestEntityRef(t *testing.T) {
	e := Entity{EntityType: TypeUser, Name: "alice"}
	assert.Equal(t, "user:alice", e.Ref())
}

func TestPositionViewFilled(t *testing.T) {
	var v PositionView
	assert.False(t, v.Filled())

	id := int64(7)
	v.HolderID = &id
	assert.True(t, v.Filled())
}
