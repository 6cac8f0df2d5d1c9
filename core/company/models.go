package company

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

// Company is an organizational tenant owning students and lessons. Its
// domain is used to build deep links back to the external system of record.
type Company struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	TCID      string     `json:"tc_id,omitempty"`
	Domain    string     `json:"tutorcruncher_domain,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// DeepLink joins the company domain with an entity's path in the external
// system of record. Empty when either part is missing.
func (c Company) DeepLink(tcPath string) string {
	if c.Domain == "" || tcPath == "" {
		return ""
	}
	return strings.TrimRight(c.Domain, "/") + "/" + strings.TrimLeft(tcPath, "/")
}

type NewCompany struct {
	Name   string `json:"name" validate:"required"`
	TCID   string `json:"tc_id"`
	Domain string `json:"tutorcruncher_domain"`
}

func (nc *NewCompany) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

type UpdateCompany struct {
	Name   *string `json:"name"`
	TCID   *string `json:"tc_id"`
	Domain *string `json:"tutorcruncher_domain"`
}
