package permission

import (
	"fmt"
	"sort"
	"strings"

	"github.com/elskow/medtrack/internal/identity"
)

const (
	GroupAdmins = "Admins"
	GroupUsers  = "Users"
)

// Grants maps a group name to the capabilities its members hold. It is built
// once at startup and shared by the Seeder and the Checker.
type Grants map[string][]Capability

// DefaultGrants is the static group table.
func DefaultGrants() Grants {
	return Grants{
		GroupAdmins: {
			AddUser,
			ViewMedication, AddMedication, ChangeMedication, DeleteMedication,
			ViewRefillRequest, AddRefillRequest, ChangeRefillRequest,
		},
		GroupUsers: {
			ViewMedication,
			ViewRefillRequest, AddRefillRequest,
		},
	}
}

// NewGrants overlays overrides on the defaults. Override keys match default
// group names case-insensitively because viper lowercases map keys. An
// override replaces that group's whole capability list.
func NewGrants(overrides map[string][]string) (Grants, error) {
	grants := DefaultGrants()

	for name, codenames := range overrides {
		group := name
		for existing := range grants {
			if strings.EqualFold(existing, name) {
				group = existing
				break
			}
		}

		caps := make([]Capability, 0, len(codenames))
		for _, codename := range codenames {
			c := Capability(strings.TrimSpace(codename))
			if !Known(c) {
				return nil, fmt.Errorf("group %s: unknown permission %q", group, codename)
			}
			caps = append(caps, c)
		}
		grants[group] = caps
	}

	return grants, nil
}

// GroupNames returns the group names in a stable order.
func (g Grants) GroupNames() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether group holds c.
func (g Grants) Has(group string, c Capability) bool {
	for _, v := range g[group] {
		if v == c {
			return true
		}
	}
	return false
}

// GroupForRole returns the group every user of role joins.
func GroupForRole(role identity.Role) (string, bool) {
	switch role {
	case identity.RoleAdmin:
		return GroupAdmins, true
	case identity.RoleUser:
		return GroupUsers, true
	default:
		return "", false
	}
}
