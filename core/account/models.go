package account

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/LukaszKielczewski66/fightclub/core"
)

// Role is the closed set of account kinds.
type Role string

// Roles
const (
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "trainer"
	RoleMember  Role = "member"
)

var AllRoles = []Role{RoleAdmin, RoleTrainer, RoleMember}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleTrainer, RoleMember:
		return true
	default:
		return false
	}
}

// ParseRole maps a role name to a Role. "user" is accepted as an alias of member.
func ParseRole(s string) (Role, bool) {
	s = core.CleanString(s, true /* lower */)
	if s == "user" {
		return RoleMember, true
	}
	r := Role(s)
	return r, r.IsValid()
}

// Identity is the authenticated caller, supplied by the identity provider.
type Identity struct {
	ID   string
	Role Role
}

func (id Identity) IsAdmin() bool   { return id.Role == RoleAdmin }
func (id Identity) IsTrainer() bool { return id.Role == RoleTrainer }
func (id Identity) IsMember() bool  { return id.Role == RoleMember }

// CanSchedule reports whether the caller may create sessions.
func (id Identity) CanSchedule() bool {
	return id.Role == RoleAdmin || id.Role == RoleTrainer
}

// CanAssignTrainer reports whether the caller may schedule a session for trainerID.
func (id Identity) CanAssignTrainer(trainerID string) bool {
	switch id.Role {
	case RoleAdmin:
		return true
	case RoleTrainer:
		return trainerID == "" || trainerID == id.ID
	default:
		return false
	}
}

// CanManageSession reports whether the caller may view or edit attendance of a session owned by trainerID.
func (id Identity) CanManageSession(trainerID string) bool {
	switch id.Role {
	case RoleAdmin:
		return true
	case RoleTrainer:
		return trainerID == id.ID
	default:
		return false
	}
}

// ResolveTrainer returns the trainer a trainer-scoped query should target:
// admins may look at any trainer, everyone else only at themselves.
func (id Identity) ResolveTrainer(requested string) string {
	if id.Role == RoleAdmin && requested != "" {
		return requested
	}
	return id.ID
}

type Account struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"` // UTC
	UpdatedAt time.Time `json:"updatedAt"` // UTC
}

// CanTeach reports whether the account may be assigned as a session trainer.
func (a Account) CanTeach() bool {
	return a.IsActive && (a.Role == RoleTrainer || a.Role == RoleAdmin)
}

func (a Account) Identity() Identity {
	return Identity{ID: a.ID, Role: a.Role}
}

// NewAccount contains information needed to create a new Account.
type NewAccount struct {
	Name     string `json:"name" validate:"required,notblank"`
	Email    string `json:"email" validate:"required,email"`
	Role     Role   `json:"role" validate:"required,role"`
	Inactive bool   `json:"inactive"`
}

func (na *NewAccount) Validate(validate *validator.Validate) error {
	na.Name = core.CleanString(na.Name)
	na.Email = core.CleanString(na.Email, true /* lower */)
	if r, ok := ParseRole(string(na.Role)); ok {
		na.Role = r
	}
	return validate.Struct(na)
}

type GetFilter struct {
	ID    string
	Email string
}
