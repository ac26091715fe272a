package identity

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext() *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c
}

func TestSetGet(t *testing.T) {
	c := newContext()
	req := c.Request

	_, ok := Get(c)
	assert.False(t, ok, "anonymous request should have no identity")

	id := &Identity{UserID: 7, Username: "alice", Role: RoleUser, IsActive: true}
	Set(c, id)

	got, ok := Get(c)
	require.True(t, ok)
	assert.Same(t, id, got)
	assert.Same(t, req, c.Request, "Set should leave the request untouched")
}

func TestGet_NilIdentity(t *testing.T) {
	c := newContext()
	Set(c, nil)

	_, ok := Get(c)
	assert.False(t, ok)
}

func TestIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		id   *Identity
		want bool
	}{
		{name: "admin", id: &Identity{Role: RoleAdmin}, want: true},
		{name: "user", id: &Identity{Role: RoleUser}, want: false},
		{name: "nil", id: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.id.IsAdmin())
		})
	}
}

func TestRole_Valid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("OWNER").Valid())
}
