// Package permission maps (resource, action) pairs to capabilities and
// checks them against the caller's groups.
package permission

import (
	"fmt"
	"net/http"
)

type Resource int

const (
	ResourceUser Resource = iota
	ResourceMedication
	ResourceRefillRequest
)

func (r Resource) String() string {
	switch r {
	case ResourceUser:
		return "user"
	case ResourceMedication:
		return "medication"
	case ResourceRefillRequest:
		return "refillrequest"
	default:
		return fmt.Sprintf("resource(%d)", int(r))
	}
}

type Action int

const (
	ActionView Action = iota
	ActionAdd
	ActionChange
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionView:
		return "view"
	case ActionAdd:
		return "add"
	case ActionChange:
		return "change"
	case ActionDelete:
		return "delete"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// Capability is a permission codename such as "add_medication".
type Capability string

const (
	AddUser = Capability("add_user")

	ViewMedication   = Capability("view_medication")
	AddMedication    = Capability("add_medication")
	ChangeMedication = Capability("change_medication")
	DeleteMedication = Capability("delete_medication")

	ViewRefillRequest   = Capability("view_refillrequest")
	AddRefillRequest    = Capability("add_refillrequest")
	ChangeRefillRequest = Capability("change_refillrequest")
)

type key struct {
	resource Resource
	action   Action
}

// capabilities is the closed resource x action table. Pairs absent from it
// (refill deletion, viewing users) cannot be granted.
var capabilities = map[key]Capability{
	{ResourceUser, ActionAdd}: AddUser,

	{ResourceMedication, ActionView}:   ViewMedication,
	{ResourceMedication, ActionAdd}:    AddMedication,
	{ResourceMedication, ActionChange}: ChangeMedication,
	{ResourceMedication, ActionDelete}: DeleteMedication,

	{ResourceRefillRequest, ActionView}:   ViewRefillRequest,
	{ResourceRefillRequest, ActionAdd}:    AddRefillRequest,
	{ResourceRefillRequest, ActionChange}: ChangeRefillRequest,
}

// CapabilityFor returns the capability guarding action on resource.
func CapabilityFor(r Resource, a Action) (Capability, bool) {
	c, ok := capabilities[key{r, a}]
	return c, ok
}

// Known reports whether c is one of the table's capabilities.
func Known(c Capability) bool {
	for _, v := range capabilities {
		if v == c {
			return true
		}
	}
	return false
}

// ActionForMethod maps an HTTP method to the action it performs.
func ActionForMethod(method string) (Action, bool) {
	switch method {
	case http.MethodGet, http.MethodHead:
		return ActionView, true
	case http.MethodPost:
		return ActionAdd, true
	case http.MethodPut, http.MethodPatch:
		return ActionChange, true
	case http.MethodDelete:
		return ActionDelete, true
	default:
		return 0, false
	}
}
