package user

import "creator-marketplace/internal/domain/apperr"

// Actor is the authenticated caller, resolved once at the service boundary.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// Capability is the one authorization check a use case runs before it touches
// the state machine: the actor must hold one of the roles, and unless it is an
// admin it must be one of the listed parties.
type Capability struct {
	Roles   []Role
	Parties []string
	// AdminBypass lets admins act regardless of Parties.
	AdminBypass bool
}

func (a Actor) Can(c Capability) error {
	if a.UserID == "" {
		return apperr.ErrForbidden
	}
	if a.IsAdmin() && c.AdminBypass {
		return nil
	}
	if len(c.Roles) > 0 {
		ok := false
		for _, r := range c.Roles {
			if a.Role == r {
				ok = true
				break
			}
		}
		if !ok {
			return apperr.ErrForbidden
		}
	}
	if len(c.Parties) > 0 {
		for _, p := range c.Parties {
			if p == a.UserID {
				return nil
			}
		}
		return apperr.ErrForbidden
	}
	return nil
}
