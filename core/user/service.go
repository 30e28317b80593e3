package user

import (
	"context"

	"github.com/pkg/errors"

	"github.com/LEKKALA-BHASKAR/AITS-sub001/core"
	"github.com/LEKKALA-BHASKAR/AITS-sub001/core/resource"
)

var (
	// errors
	ErrNotFound             = errors.New("user not found")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccountDeactivated   = errors.New("account deactivated")
)

// Definition of the users collection.
var Definition = resource.Definition[User]{
	Name:       "user",
	Collection: Collection,
	Unique:     []string{"username", "email"},
	Filters:    []string{"isActive"},
}

// Service manages user accounts.
type Service struct {
	res *resource.Service[User, *User]
}

func NewService(deps resource.Deps) *Service {
	return &Service{res: resource.NewService(Definition, deps)}
}

func (svc *Service) EnsureIndexes(ctx context.Context) error {
	return svc.res.EnsureIndexes(ctx)
}

// Create validates nu against the password policy and stores the new active user.
func (svc *Service) Create(ctx context.Context, nu NewUser) (*User, error) {
	nu.Clean()
	if err := svc.res.Validate(ctx, &nu); err != nil {
		return nil, err
	}

	usr := &User{
		Name:     nu.Name,
		Username: nu.Username,
		Email:    nu.Email,
		IsActive: true,
		Roles:    nu.Roles,
	}
	if usr.Roles == nil {
		usr.Roles = []string{}
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	return svc.res.Create(ctx, usr)
}

func (svc *Service) Query(ctx context.Context, qf QueryFilter) ([]*User, error) {
	filter := make(core.Filter)
	if qf.IsActive != nil {
		filter["isActive"] = *qf.IsActive
	}
	if qf.Role != "" {
		filter["roles"] = qf.Role
	}
	return svc.res.List(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id string) (*User, error) {
	usr, err := svc.res.Lookup(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrNotFound
	}
	return usr, err
}

// GetByUsernameOrEmail looks a user up by username first, then by email.
func (svc *Service) GetByUsernameOrEmail(ctx context.Context, uname string) (*User, error) {
	uname = core.CleanString(uname, true /* lower */)
	for _, field := range []string{"username", "email"} {
		users, err := svc.res.List(ctx, core.Filter{field: uname})
		if err != nil {
			return nil, errors.Wrapf(err, "finding user by %s", field)
		}
		if len(users) > 0 {
			return users[0], nil
		}
	}
	return nil, ErrNotFound
}

// Authenticate checks the credentials of an active user and records the login.
func (svc *Service) Authenticate(ctx context.Context, uname, pwd string) (*User, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrAuthenticationFailed
		}
		return nil, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return nil, ErrAuthenticationFailed
	}
	if !usr.IsActive {
		return nil, ErrAccountDeactivated
	}
	return svc.res.Patch(ctx, usr.ID, core.Fields{"lastLogin": core.NowFunc()})
}

// SetPassword replaces the password of usr without applying the policy (admin only).
func (svc *Service) SetPassword(ctx context.Context, usr *User, pwd string) (*User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	return svc.res.Patch(ctx, usr.ID, core.Fields{"passwordHash": usr.PasswordHash})
}

// ChangePassword checks the old password of usr and stores the new one under the policy.
func (svc *Service) ChangePassword(ctx context.Context, usr *User, pc PasswordChange) (*User, error) {
	if err := svc.res.Validate(ctx, &pc); err != nil {
		return nil, err
	}
	if err := usr.CheckPassword(pc.OldPassword); err != nil {
		return nil, core.NewFieldError("oldPassword", "wrong password")
	}
	if tag := checkPassword(pc.Password, usr.Name, usr.Username, usr.Email); tag != "" {
		return nil, policyError(tag)
	}
	return svc.SetPassword(ctx, usr, pc.Password)
}

// SetActive (de)activates the account with id. Deactivated users cannot log in.
func (svc *Service) SetActive(ctx context.Context, id string, active bool) (*User, error) {
	usr, err := svc.res.Patch(ctx, id, core.Fields{"isActive": active})
	if errors.Is(err, core.ErrNotFound) {
		return nil, ErrNotFound
	}
	return usr, err
}

// UpdateOrCreate activates the user with username or email and sets its password,
// creating it first when it does not exist.
func (svc *Service) UpdateOrCreate(ctx context.Context, name, uname, email, pwd string, isAdmin bool) (*User, error) {
	usr, err := svc.GetByUsernameOrEmail(ctx, uname)
	if errors.Is(err, ErrNotFound) && email != "" {
		usr, err = svc.GetByUsernameOrEmail(ctx, email)
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	roles := []string{}
	if isAdmin {
		roles = AllRoles
	}

	if usr == nil {
		if name == "" {
			name = uname
		}
		usr = &User{
			Name:     name,
			Username: core.CleanString(uname, true /* lower */),
			Email:    core.CleanString(email, true /* lower */),
			IsActive: true,
			Roles:    roles,
		}
		if err := usr.SetPassword(pwd); err != nil {
			return nil, errors.Wrap(err, "hashing password")
		}
		return svc.res.Create(ctx, usr)
	}

	if err := usr.SetPassword(pwd); err != nil {
		return nil, errors.Wrap(err, "hashing password")
	}
	fields := core.Fields{"isActive": true, "passwordHash": usr.PasswordHash}
	if isAdmin {
		fields["roles"] = roles
	}
	return svc.res.Patch(ctx, usr.ID, fields)
}
