package company

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("Company not found")

type (
	Repository interface {
		CreateCompany(ctx context.Context, co Company) (Company, error)
		QueryAllCompanies(ctx context.Context) ([]Company, error)
		GetCompanyByID(ctx context.Context, id int) (Company, error)
		UpdateCompany(ctx context.Context, co Company) (Company, error)
		DeleteCompany(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCompany) (Company, error) {
	co := Company{
		Name:      nc.Name,
		TCID:      nc.TCID,
		Domain:    nc.Domain,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateCompany(ctx, co)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Company, error) {
	return svc.repo.QueryAllCompanies(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Company, error) {
	return svc.repo.GetCompanyByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateCompany) (Company, error) {
	co, err := svc.repo.GetCompanyByID(ctx, id)
	if err != nil {
		return Company{}, err
	}
	if uc.Name != nil {
		co.Name = *uc.Name
	}
	if uc.TCID != nil {
		co.TCID = *uc.TCID
	}
	if uc.Domain != nil {
		co.Domain = *uc.Domain
	}
	now := time.Now().UTC()
	co.UpdatedAt = &now
	return svc.repo.UpdateCompany(ctx, co)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	if _, err := svc.repo.GetCompanyByID(ctx, id); err != nil {
		return err
	}
	return svc.repo.DeleteCompany(ctx, id)
}
