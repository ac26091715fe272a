// Package identity carries the authenticated caller through a request.
package identity

import "github.com/gin-gonic/gin"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the caller resolved from a session.
type Identity struct {
	UserID    uint
	SessionID string
	Username  string
	Email     string
	Role      Role
	IsActive  bool
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// ginKey is the gin.Context key holding the *Identity.
const ginKey = "identity"

// Set attaches id to the gin context.
func Set(c *gin.Context, id *Identity) {
	c.Set(ginKey, id)
}

// Get returns the caller, or false for anonymous requests.
func Get(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(ginKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*Identity)
	return id, ok && id != nil
}
