package permission

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/identity"
)

// Seeder persists Grants as groups and assigns users to role groups.
type Seeder struct {
	grants Grants
	repo   Repository
	log    *zap.Logger
}

func NewSeeder(grants Grants, repo Repository, log *zap.Logger) *Seeder {
	return &Seeder{
		grants: grants,
		repo:   repo,
		log:    log,
	}
}

// Seed creates every group and makes its stored permissions match Grants.
// Codenames no longer granted are removed.
func (s *Seeder) Seed(ctx context.Context) error {
	for _, name := range s.grants.GroupNames() {
		group, err := s.repo.EnsureGroup(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to ensure group %s: %w", name, err)
		}

		if err := s.repo.AddGroupPermissions(ctx, group.ID, s.grants[name]); err != nil {
			return fmt.Errorf("failed to add permissions to group %s: %w", name, err)
		}

		if err := s.repo.RemoveGroupPermissionsExcept(ctx, group.ID, s.grants[name]); err != nil {
			return fmt.Errorf("failed to prune permissions of group %s: %w", name, err)
		}

		s.log.Info("seeded permission group",
			zap.String("group", name),
			zap.Int("permissions", len(s.grants[name])))
	}
	return nil
}

// AssignRole adds userID to the group derived from role.
func (s *Seeder) AssignRole(ctx context.Context, userID uint, role identity.Role) error {
	name, ok := GroupForRole(role)
	if !ok {
		return fmt.Errorf("no group for role %q", role)
	}

	group, err := s.repo.EnsureGroup(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to ensure group %s: %w", name, err)
	}

	if err := s.repo.AddUserToGroup(ctx, userID, group.ID); err != nil {
		return fmt.Errorf("failed to add user %d to group %s: %w", userID, name, err)
	}
	return nil
}
