package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Student belongs to exactly one Client and is optionally linked to one
// Company. Once CompanyID is set the external system of record owns the
// student and it becomes read-only here.
type Student struct {
	ID         int             `json:"id"`
	ClientID   int             `json:"client_id"`
	FirstName  string          `json:"first_name"`
	LastName   string          `json:"last_name"`
	Email      string          `json:"email"`
	Phone      string          `json:"phone"`
	Grade      string          `json:"grade"`
	CompanyID  *int            `json:"company_id"`
	TCPath     string          `json:"tc_path,omitempty"`
	Strengths  core.StringList `json:"strengths"`
	Weaknesses core.StringList `json:"weaknesses"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  *time.Time      `json:"updated_at"`
}

func (s *Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

func (s *Student) IsCompanyLinked() bool {
	return s.CompanyID != nil
}

// Read is a Student rendered with its computed fields.
type Read struct {
	Student
	LessonsCompleted int    `json:"lessons_completed"`
	CompanyName      string `json:"company_name,omitempty"`
	TutorCruncherURL string `json:"tutorcruncher_url,omitempty"`
}

// NewStudent contains information needed to create a new Student.
// Strengths and weaknesses are only settable here; they are excluded from
// updates by contract.
type NewStudent struct {
	ClientID   int      `json:"client_id" validate:"required"`
	FirstName  string   `json:"first_name" validate:"required"`
	LastName   string   `json:"last_name" validate:"required"`
	Email      string   `json:"email" validate:"required,email"`
	Phone      string   `json:"phone" validate:"required"`
	Grade      string   `json:"grade" validate:"required"`
	CompanyID  *int     `json:"company_id"`
	TCPath     string   `json:"tc_path"`
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.FirstName = core.CleanString(ns.FirstName)
	ns.LastName = core.CleanString(ns.LastName)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	return validate.Struct(ns)
}

// UpdateStudent defines the mutable subset of Student fields.
type UpdateStudent struct {
	ClientID  *int    `json:"client_id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Grade     *string `json:"grade"`
	CompanyID *int    `json:"company_id"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	if us.Email != nil {
		email := core.CleanString(*us.Email, true /* lower */)
		us.Email = &email
	}
	return validate.Struct(us)
}

type QueryFilter struct {
	ClientID *int `query:"client_id"`
}
