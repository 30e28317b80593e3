package user

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
)

const Collection = "users"

// Roles are written "<group>:<title>". A role with an empty title grants the
// whole group.
const (
	RoleAdmin          = "admin:"
	RoleAdminOwner     = "admin:owner"
	RoleAdminPrincipal = "admin:principal"

	RoleTeacher = "teacher:"
	RoleStudent = "student:"
)

// roleTable ranks every known role. Admins sit in 21-30, teachers in 11-20 and
// students in 1-10 so that a higher group always outranks a lower one.
var roleTable = []struct {
	role     string
	priority int
}{
	{RoleAdmin, 21},
	{RoleAdminOwner, 30},
	{RoleAdminPrincipal, 29},
	{RoleTeacher, 11},
	{RoleStudent, 1},
}

var (
	AdminRoles   = rolesOf(RoleAdmin)
	TeacherRoles = rolesOf(RoleTeacher)
	StudentRoles = rolesOf(RoleStudent)
	AllRoles     = rolesOf("")
)

// rolesOf lists the roles of group, or every role when group is empty.
func rolesOf(group string) []string {
	var roles []string
	for _, r := range roleTable {
		if group == "" || roleGroup(r.role) == roleGroup(group) {
			roles = append(roles, r.role)
		}
	}
	return roles
}

func roleGroup(role string) string {
	group, _, _ := strings.Cut(role, ":")
	return group
}

// RolePriority returns the rank of role, 0 when unknown.
func RolePriority(role string) int {
	for _, r := range roleTable {
		if r.role == role {
			return r.priority
		}
	}
	return 0
}

func MaxRolePriority(roles []string) int {
	top := 0
	for _, role := range roles {
		top = max(top, RolePriority(role))
	}
	return top
}

// Ref references a User from another document (teacher, mentor, uploader...).
type Ref = resource.Ref[User]

type User struct {
	resource.Base `bson:",inline"`
	Name          string    `bson:"name" json:"name"`
	Username      string    `bson:"username" json:"username"`
	Email         string    `bson:"email" json:"email"`
	IsActive      bool      `bson:"isActive" json:"isActive"`
	Roles         []string  `bson:"roles" json:"roles"`
	PasswordHash  string    `bson:"passwordHash" json:"-"`
	LastLogin     time.Time `bson:"lastLogin,omitempty" json:"lastLogin,omitzero"`
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(pwd))
}

// InGroup reports whether any role of u belongs to the group of role.
func (u *User) InGroup(role string) bool {
	group := roleGroup(role)
	for _, r := range u.Roles {
		if roleGroup(r) == group {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool   { return u.InGroup(RoleAdmin) }
func (u *User) IsTeacher() bool { return u.InGroup(RoleTeacher) }
func (u *User) IsStudent() bool { return u.InGroup(RoleStudent) }

// CanGrant reports whether u outranks or equals every role in roles.
func (u *User) CanGrant(roles []string) bool {
	return MaxRolePriority(roles) <= MaxRolePriority(u.Roles)
}

// NewUser is the registration payload of an account.
type NewUser struct {
	Name            string   `json:"name" validate:"required"`
	Username        string   `json:"username" validate:"required,min=4,alphanum_"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required"`
	PasswordConfirm string   `json:"passwordConfirm" validate:"required,eqfield=Password"`
	Roles           []string `json:"roles" validate:"omitempty,allroles"`
}

func (nu *NewUser) Clean() {
	nu.Name = core.CleanString(nu.Name)
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
}

// PasswordChange replaces the password of the current user under the policy.
type PasswordChange struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

type QueryFilter struct {
	Role     string `query:"role"`
	IsActive *bool  `query:"isActive"`
}
