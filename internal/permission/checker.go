package permission

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/elskow/medtrack/internal/identity"
)

// Checker decides whether a caller may perform an action on a resource. The
// caller's groups come from the store; what each group may do comes from the
// injected Grants.
type Checker struct {
	grants Grants
	repo   Repository
	log    *zap.Logger
}

func NewChecker(grants Grants, repo Repository, log *zap.Logger) *Checker {
	return &Checker{
		grants: grants,
		repo:   repo,
		log:    log,
	}
}

// Allowed is false for anonymous or inactive callers and for resource/action
// pairs without a capability.
func (c *Checker) Allowed(ctx context.Context, id *identity.Identity, r Resource, a Action) (bool, error) {
	if id == nil || !id.IsActive {
		return false, nil
	}

	capability, ok := CapabilityFor(r, a)
	if !ok {
		return false, nil
	}

	return c.Has(ctx, id.UserID, capability)
}

// Has reports whether any of the user's groups grants capability.
func (c *Checker) Has(ctx context.Context, userID uint, capability Capability) (bool, error) {
	groups, err := c.repo.UserGroupNames(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve groups for user %d: %w", userID, err)
	}

	for _, g := range groups {
		if c.grants.Has(g, capability) {
			return true, nil
		}
	}

	c.log.Debug("permission denied",
		zap.Uint("user_id", userID),
		zap.String("capability", string(capability)),
		zap.Strings("groups", groups))
	return false, nil
}
