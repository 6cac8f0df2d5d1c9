package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/darasa/core"
)

// Role is a closed set: a user is a tutor XOR an admin. Any other value is
// an invariant violation and callers fail fast on it.
type Role string

const (
	RoleTutor Role = "tutor"
	RoleAdmin Role = "admin"
)

var ErrUnknownRole = errors.New("unknown user role")

func (r Role) IsValid() bool {
	switch r {
	case RoleTutor, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID           int          `json:"id"`
	FirstName    string       `json:"first_name"`
	LastName     string       `json:"last_name"`
	Email        string       `json:"email"`
	Role         Role         `json:"user_type"`
	TCID         string       `json:"tc_id,omitempty"`
	CompanyIDs   core.IntList `json:"company_ids"`
	IsActive     bool         `json:"is_active"`
	PasswordHash []byte       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"` // UTC
	UpdatedAt    *time.Time   `json:"updated_at"` // UTC
}

func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hashing password")
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u *User) IsTutor() bool { return u.Role == RoleTutor }
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// NewUser contains information needed to create a new User.
// Users are only created at seed time or through the admin CLI.
type NewUser struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Role       Role   `json:"user_type" validate:"required"`
	TCID       string `json:"tc_id"`
	CompanyIDs []int  `json:"company_ids"`
	Password   string `json:"password" validate:"required"`
}

func (nu *NewUser) Validate(validate *validator.Validate, svc *Service) error {
	nu.FirstName = core.CleanString(nu.FirstName)
	nu.LastName = core.CleanString(nu.LastName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)

	if err := validate.Struct(nu); err != nil {
		return err
	}
	if !nu.Role.IsValid() {
		return core.NewValidationError(ErrUnknownRole, core.FieldError{Field: "user_type", Error: ErrUnknownRole.Error()})
	}
	return svc.checkUniqueness(nu.Email)
}

// UpdateUser defines what information a user may change on their own profile,
// including credential rotation.
type UpdateUser struct {
	FirstName  string  `json:"first_name"`
	LastName   string  `json:"last_name"`
	Email      string  `json:"email" validate:"omitempty,email"`
	Role       Role    `json:"user_type"`
	TCID       *string `json:"tc_id"`
	CompanyIDs []int   `json:"company_ids"`
	Password   string  `json:"password"`
}

func (uu *UpdateUser) Validate(origUsr User, validate *validator.Validate, svc *Service) error {
	uu.FirstName = core.CleanString(uu.FirstName)
	uu.LastName = core.CleanString(uu.LastName)
	uu.Email = core.CleanString(uu.Email, true /* lower */)

	if err := validate.Struct(uu); err != nil {
		return err
	}
	if uu.Role != "" && !uu.Role.IsValid() {
		return core.NewValidationError(ErrUnknownRole, core.FieldError{Field: "user_type", Error: ErrUnknownRole.Error()})
	}
	if uu.Password != "" {
		if err := validatePassword(uu.Password, origUsr.FullName(), uu.Email, origUsr.Email); err != nil {
			return err
		}
	}
	if uu.Email != "" && uu.Email != origUsr.Email {
		return svc.checkUniqueness(uu.Email, origUsr)
	}
	return nil
}
