package client

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Client is a billing/contact entity (parent or guardian) owning zero or
// more students.
type Client struct {
	ID        int        `json:"id"`
	FirstName string     `json:"first_name"`
	LastName  string     `json:"last_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	CompanyID *int       `json:"company_id"`
	TCID      string     `json:"tc_id,omitempty"`
	TCPath    string     `json:"tc_path,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type NewClient struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address"`
	Notes     string `json:"notes"`
	CompanyID *int   `json:"company_id"`
	TCID      string `json:"tc_id"`
	TCPath    string `json:"tc_path"`
}

func (nc *NewClient) Validate(validate *validator.Validate) error {
	nc.FirstName = core.CleanString(nc.FirstName)
	nc.LastName = core.CleanString(nc.LastName)
	nc.Email = core.CleanString(nc.Email, true /* lower */)
	return validate.Struct(nc)
}

// UpdateClient defines the mutable subset of Client fields.
// CompanyID is intentionally excluded from updates.
type UpdateClient struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
	Notes     *string `json:"notes"`
	TCID      *string `json:"tc_id"`
	TCPath    *string `json:"tc_path"`
}

func (uc *UpdateClient) Validate(validate *validator.Validate) error {
	if uc.Email != nil {
		email := core.CleanString(*uc.Email, true /* lower */)
		uc.Email = &email
	}
	return validate.Struct(uc)
}
