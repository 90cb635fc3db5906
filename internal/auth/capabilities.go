package auth

import (
	"github.com/careops/dietary-golang/internal/models"
)

// Capabilities is the authorization context passed into scheduling and menu
// authoring calls. It is derived from the caller's role once, at the edge, so
// the core logic never consults session state or the users table itself.
type Capabilities struct {
	CanSchedule    bool
	CanAuthorMenus bool
}

// CapabilitiesForRole maps a staff role onto its capability set.
//
// Managers, dietitians and cooks run the kitchen: they author menus and commit
// schedules. Dietary aides only serve what is planned, so they get read-only
// access to everything and neither capability.
func CapabilitiesForRole(role string) Capabilities {
	switch role {
	case models.RoleManager, models.RoleDietitian, models.RoleCook:
		return Capabilities{CanSchedule: true, CanAuthorMenus: true}
	case models.RoleDietaryAide:
		return Capabilities{}
	}
	return Capabilities{}
}
