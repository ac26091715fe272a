package permission

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/identity"
	"github.com/elskow/medtrack/internal/response"
)

func newTestLogger(t *testing.T) *zap.Logger {
	logger, err := zap.NewDevelopment()
	assert.NoError(t, err)
	return logger
}

func newTestChecker(t *testing.T) (*Checker, *Seeder) {
	repo := newMockRepository()
	grants := DefaultGrants()
	log := newTestLogger(t)

	seeder := NewSeeder(grants, repo, log)
	require.NoError(t, seeder.Seed(context.Background()))

	return NewChecker(grants, repo, log), seeder
}

func TestCapabilityFor(t *testing.T) {
	tests := []struct {
		name     string
		resource Resource
		action   Action
		want     Capability
		wantOK   bool
	}{
		{name: "view medication", resource: ResourceMedication, action: ActionView, want: ViewMedication, wantOK: true},
		{name: "delete medication", resource: ResourceMedication, action: ActionDelete, want: DeleteMedication, wantOK: true},
		{name: "add refill", resource: ResourceRefillRequest, action: ActionAdd, want: AddRefillRequest, wantOK: true},
		{name: "add user", resource: ResourceUser, action: ActionAdd, want: AddUser, wantOK: true},
		{name: "delete refill has no capability", resource: ResourceRefillRequest, action: ActionDelete, wantOK: false},
		{name: "view user has no capability", resource: ResourceUser, action: ActionView, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CapabilityFor(tt.resource, tt.action)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionForMethod(t *testing.T) {
	tests := []struct {
		method string
		want   Action
		wantOK bool
	}{
		{method: http.MethodGet, want: ActionView, wantOK: true},
		{method: http.MethodPost, want: ActionAdd, wantOK: true},
		{method: http.MethodPut, want: ActionChange, wantOK: true},
		{method: http.MethodPatch, want: ActionChange, wantOK: true},
		{method: http.MethodDelete, want: ActionDelete, wantOK: true},
		{method: http.MethodOptions, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			got, ok := ActionForMethod(tt.method)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNewGrants(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		grants, err := NewGrants(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{GroupAdmins, GroupUsers}, grants.GroupNames())
		assert.True(t, grants.Has(GroupAdmins, AddUser))
		assert.False(t, grants.Has(GroupUsers, AddMedication))
	})

	t.Run("override matches group case-insensitively", func(t *testing.T) {
		grants, err := NewGrants(map[string][]string{
			"users": {"view_medication", "add_medication"},
		})
		require.NoError(t, err)
		assert.Len(t, grants, 2)
		assert.True(t, grants.Has(GroupUsers, AddMedication))
		assert.False(t, grants.Has(GroupUsers, ViewRefillRequest))
	})

	t.Run("new group", func(t *testing.T) {
		grants, err := NewGrants(map[string][]string{
			"Pharmacists": {"change_refillrequest"},
		})
		require.NoError(t, err)
		assert.True(t, grants.Has("Pharmacists", ChangeRefillRequest))
	})

	t.Run("unknown codename", func(t *testing.T) {
		_, err := NewGrants(map[string][]string{
			"Users": {"delete_refillrequest"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "delete_refillrequest")
	})
}

func TestGroupForRole(t *testing.T) {
	g, ok := GroupForRole(identity.RoleAdmin)
	assert.True(t, ok)
	assert.Equal(t, GroupAdmins, g)

	g, ok = GroupForRole(identity.RoleUser)
	assert.True(t, ok)
	assert.Equal(t, GroupUsers, g)

	_, ok = GroupForRole(identity.Role("PHARMACIST"))
	assert.False(t, ok)
}

func TestSeeder_SeedIsIdempotent(t *testing.T) {
	repo := newMockRepository()
	seeder := NewSeeder(DefaultGrants(), repo, newTestLogger(t))
	ctx := context.Background()

	require.NoError(t, seeder.Seed(ctx))
	require.NoError(t, seeder.Seed(ctx))

	assert.Len(t, repo.groups, 2)
	admins, err := repo.GetGroupByName(ctx, GroupAdmins)
	require.NoError(t, err)
	assert.Len(t, repo.permissions[admins.ID], 8)

	_, err = repo.GetGroupByName(ctx, "Nobody")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestSeeder_SeedRemovesRevokedPermissions(t *testing.T) {
	repo := newMockRepository()
	ctx := context.Background()

	require.NoError(t, NewSeeder(DefaultGrants(), repo, newTestLogger(t)).Seed(ctx))

	grants, err := NewGrants(map[string][]string{
		"users": {string(ViewMedication)},
	})
	require.NoError(t, err)
	require.NoError(t, NewSeeder(grants, repo, newTestLogger(t)).Seed(ctx))

	users, err := repo.GetGroupByName(ctx, GroupUsers)
	require.NoError(t, err)
	caps, err := repo.GroupPermissions(ctx, users.ID)
	require.NoError(t, err)
	assert.Equal(t, []Capability{ViewMedication}, caps)

	admins, err := repo.GetGroupByName(ctx, GroupAdmins)
	require.NoError(t, err)
	caps, err = repo.GroupPermissions(ctx, admins.ID)
	require.NoError(t, err)
	assert.Len(t, caps, 8)
}

func TestChecker_Allowed(t *testing.T) {
	checker, seeder := newTestChecker(t)
	ctx := context.Background()

	require.NoError(t, seeder.AssignRole(ctx, 1, identity.RoleAdmin))
	require.NoError(t, seeder.AssignRole(ctx, 2, identity.RoleUser))

	admin := &identity.Identity{UserID: 1, Role: identity.RoleAdmin, IsActive: true}
	user := &identity.Identity{UserID: 2, Role: identity.RoleUser, IsActive: true}
	inactive := &identity.Identity{UserID: 1, Role: identity.RoleAdmin, IsActive: false}
	orphan := &identity.Identity{UserID: 3, Role: identity.RoleUser, IsActive: true}

	tests := []struct {
		name     string
		id       *identity.Identity
		resource Resource
		action   Action
		want     bool
	}{
		{name: "admin adds medication", id: admin, resource: ResourceMedication, action: ActionAdd, want: true},
		{name: "admin changes refill", id: admin, resource: ResourceRefillRequest, action: ActionChange, want: true},
		{name: "admin registers users", id: admin, resource: ResourceUser, action: ActionAdd, want: true},
		{name: "admin cannot delete refill", id: admin, resource: ResourceRefillRequest, action: ActionDelete, want: false},
		{name: "user views medication", id: user, resource: ResourceMedication, action: ActionView, want: true},
		{name: "user adds refill", id: user, resource: ResourceRefillRequest, action: ActionAdd, want: true},
		{name: "user cannot add medication", id: user, resource: ResourceMedication, action: ActionAdd, want: false},
		{name: "user cannot change refill", id: user, resource: ResourceRefillRequest, action: ActionChange, want: false},
		{name: "anonymous", id: nil, resource: ResourceMedication, action: ActionView, want: false},
		{name: "inactive", id: inactive, resource: ResourceMedication, action: ActionView, want: false},
		{name: "no groups", id: orphan, resource: ResourceMedication, action: ActionView, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := checker.Allowed(ctx, tt.id, tt.resource, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

type failingRepository struct {
	*mockRepository
}

func (failingRepository) UserGroupNames(context.Context, uint) ([]string, error) {
	return nil, errors.New("connection refused")
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	checker, seeder := newTestChecker(t)
	require.NoError(t, seeder.AssignRole(context.Background(), 2, identity.RoleUser))

	table, err := response.LoadTable("")
	require.NoError(t, err)
	responder := response.NewResponder(table)
	log := newTestLogger(t)

	user := &identity.Identity{UserID: 2, Role: identity.RoleUser, IsActive: true}

	newRouter := func(m *Middleware, id *identity.Identity) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if id != nil {
				identity.Set(c, id)
			}
		})
		handler := func(c *gin.Context) { c.Status(http.StatusOK) }
		r.Any("/medication", m.Require(ResourceMedication), handler)
		r.GET("/aggregate", m.RequireAction(ResourceRefillRequest, ActionView), handler)
		return r
	}

	tests := []struct {
		name       string
		middleware *Middleware
		id         *identity.Identity
		method     string
		path       string
		wantStatus int
		wantCode   string
	}{
		{name: "allowed", middleware: NewMiddleware(checker, responder, log), id: user, method: http.MethodGet, path: "/medication", wantStatus: http.StatusOK},
		{name: "fixed action", middleware: NewMiddleware(checker, responder, log), id: user, method: http.MethodGet, path: "/aggregate", wantStatus: http.StatusOK},
		{name: "denied", middleware: NewMiddleware(checker, responder, log), id: user, method: http.MethodPost, path: "/medication", wantStatus: http.StatusForbidden, wantCode: "E007"},
		{name: "anonymous", middleware: NewMiddleware(checker, responder, log), id: nil, method: http.MethodGet, path: "/medication", wantStatus: http.StatusForbidden, wantCode: "E007"},
		{name: "unmapped method", middleware: NewMiddleware(checker, responder, log), id: user, method: http.MethodOptions, path: "/medication", wantStatus: http.StatusForbidden, wantCode: "E007"},
		{
			name:       "store failure",
			middleware: NewMiddleware(NewChecker(DefaultGrants(), failingRepository{newMockRepository()}, log), responder, log),
			id:         user,
			method:     http.MethodGet,
			path:       "/medication",
			wantStatus: http.StatusInternalServerError,
			wantCode:   "E000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			newRouter(tt.middleware, tt.id).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Contains(t, w.Body.String(), `"code":"`+tt.wantCode+`"`)
			}
		})
	}
}
