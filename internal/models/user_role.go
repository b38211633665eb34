package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"estatehub/internal/common"

	"github.com/google/uuid"
)

// Role is a marketplace role a user can hold.
type Role string

const (
	RoleTenant    Role = "tenant"
	RoleLandlord  Role = "landlord"
	RoleAgent     Role = "agent"
	RoleManager   Role = "manager"
	RoleAdmin     Role = "admin"
	RoleVendor    Role = "vendor"
	RoleModerator Role = "moderator"
)

// AllRoles lists roles in canonical order. The default active role is the first held one.
var AllRoles = []Role{
	RoleTenant,
	RoleLandlord,
	RoleAgent,
	RoleManager,
	RoleAdmin,
	RoleVendor,
	RoleModerator,
}

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.IsValid() {
		return "", common.NewValidationError("role", fmt.Sprintf("unknown role %q", s))
	}
	return role, nil
}

func roleRank(r Role) int {
	for i, role := range AllRoles {
		if r == role {
			return i
		}
	}
	return len(AllRoles)
}

// UserRole is a row of user_roles.
type UserRole struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RoleSet is the set of roles a user holds.
type RoleSet map[Role]struct{}

func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// HasAny reports whether the set intersects roles.
func (s RoleSet) HasAny(roles ...Role) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

// Sorted returns the roles in canonical order.
func (s RoleSet) Sorted() []Role {
	out := make([]Role, 0, len(s))
	for r := range s {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return roleRank(out[i]) < roleRank(out[j]) })
	return out
}

// Session is the resolved identity of a request. Active is always a member of Held.
type Session struct {
	userID uuid.UUID
	held   RoleSet
	active Role
}

// NewSession builds a session. An empty active role selects the first held role in canonical
// order. A user without any role gets a session with no active role.
func NewSession(userID uuid.UUID, held RoleSet, active Role) (Session, error) {
	if userID == uuid.Nil {
		return Session{}, common.NewAppError(common.CodeUnauthenticated, "missing user identity")
	}
	if held == nil {
		held = NewRoleSet()
	}
	if active == "" {
		if sorted := held.Sorted(); len(sorted) > 0 {
			active = sorted[0]
		}
		return Session{userID: userID, held: held, active: active}, nil
	}
	if !held.Has(active) {
		return Session{}, &common.AppError{
			Code:    common.CodeRoleNotHeld,
			Message: fmt.Sprintf("role %q is not held by this user", active),
			Details: map[string]string{"role": string(active)},
		}
	}
	return Session{userID: userID, held: held, active: active}, nil
}

func (s Session) UserID() uuid.UUID { return s.userID }
func (s Session) Active() Role      { return s.active }

// Held returns a copy of the held role set.
func (s Session) Held() RoleSet {
	out := make(RoleSet, len(s.held))
	for r := range s.held {
		out[r] = struct{}{}
	}
	return out
}

func (s Session) Holds(roles ...Role) bool {
	return s.held.HasAny(roles...)
}

// SessionView is the JSON shape of a session.
type SessionView struct {
	UserID     uuid.UUID `json:"user_id"`
	ActiveRole Role      `json:"active_role,omitempty"`
	HeldRoles  []Role    `json:"held_roles"`
}

func (s Session) View() SessionView {
	return SessionView{UserID: s.userID, ActiveRole: s.active, HeldRoles: s.held.Sorted()}
}
