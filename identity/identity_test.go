package identity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserIDAcceptsNumberOrString(t *testing.T) {
	var a, b, c Identity
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":999,"name":"Guest User","email":"g@acme.com","role":"CEO"}`), &a))
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":"u-7","role":"HR"}`), &b))
	require.NoError(t, json.Unmarshal([]byte(`{"user_id":null,"role":"HR"}`), &c))

	assert.Equal(t, UserID("999"), a.UserID)
	assert.Equal(t, "Guest User", a.Name)
	assert.Equal(t, UserID("u-7"), b.UserID)
	assert.Equal(t, UserID(""), c.UserID)
}

func TestUserIDRejectsObjects(t *testing.T) {
	var i Identity
	assert.Error(t, json.Unmarshal([]byte(`{"user_id":{"x":1}}`), &i))
}

func TestValid(t *testing.T) {
	var nilID *Identity
	assert.False(t, nilID.Valid())
	assert.False(t, (&Identity{UserID: "1"}).Valid())
	assert.True(t, (&Identity{Role: "CFO"}).Valid())
}

func TestWithRole(t *testing.T) {
	id := Identity{UserID: "1", Role: "CEO"}

	other := id.WithRole(" cfo ")

	assert.Equal(t, "CFO", other.Role)
	assert.Equal(t, "CEO", id.Role)
}

func TestNextRole(t *testing.T) {
	assert.Equal(t, "CFO", NextRole("CEO", 1))
	assert.Equal(t, "CEO", NextRole("HR", 1))
	assert.Equal(t, "HR", NextRole("CEO", -1))
	assert.Equal(t, "COO", NextRole("hr", -1))
	assert.Equal(t, "CEO", NextRole("intern", 1))
}
