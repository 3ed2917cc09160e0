package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityZero(t *testing.T) {
	var id Identity
	assert.True(t, id.IsZero())
	assert.Equal(t, "", id.String())
	assert.False(t, NewIdentity().IsZero())
	assert.NotEqual(t, NewIdentity(), NewIdentity())
}

func TestParseIdentity(t *testing.T) {
	id := NewIdentity()
	parsed, err := ParseIdentity(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	empty, err := ParseIdentity("")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	_, err = ParseIdentity("not-a-uuid")
	assert.Error(t, err)
	assert.Panics(t, func() { MustParseIdentity("nope") })
}

func TestIdentityJSON(t *testing.T) {
	tag := Tag{Base: Base{ID: NewIdentity()}, WorkspaceID: NewIdentity(), Name: "deep work"}
	raw, err := json.Marshal(tag)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"id":"`+tag.ID.String()+`"`)

	var decoded Tag
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.True(t, tag.Equal(decoded))

	byID := map[Identity]string{tag.ID: tag.Name}
	raw, err = json.Marshal(byID)
	require.NoError(t, err)
	var back map[Identity]string
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, byID, back)
}

func TestIdentityBytes(t *testing.T) {
	id := NewIdentity()
	b := id.Bytes()
	require.Len(t, b, 16)
	b[0] ^= 0xff
	assert.NotEqual(t, b[0], id.Bytes()[0], "Bytes must return a copy")
}
